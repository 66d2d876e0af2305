package recorder

import "errors"

var (
	// ErrAlreadyStarted is returned when Record is called on a recorder that is not idle.
	ErrAlreadyStarted = errors.New("recorder: recording already started")

	// ErrCancelled is returned when the recording was cancelled before or during recording.
	ErrCancelled = errors.New("recorder: recording cancelled")

	// ErrFailedToStartEncoding is returned when the video writer could not begin writing.
	ErrFailedToStartEncoding = errors.New("recorder: failed to start encoding")

	// ErrFrameConversionFailed is returned when a frame image could not be turned into a pixel buffer.
	ErrFrameConversionFailed = errors.New("recorder: frame conversion failed")

	// ErrFrameProviderFailed is returned when the frame provider ended the stream with an error.
	ErrFrameProviderFailed = errors.New("recorder: frame provider failed")

	// ErrUnexpectedInternalState is returned on invariant violations.
	ErrUnexpectedInternalState = errors.New("recorder: unexpected internal state")

	// ErrInvalidSettings is returned by New for unusable options.
	ErrInvalidSettings = errors.New("recorder: invalid settings")

	// ErrNilFrameProvider is returned when Record is called without a frame provider.
	ErrNilFrameProvider = errors.New("recorder: frame provider is nil")
)
