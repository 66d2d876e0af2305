// Package recorder records video files from frames pulled out of a
// ports.FrameProvider and pushed into a backpressured ports.VideoWriter.
//
// A Recorder is a one-shot instance: it records at most one video. Create a
// new Recorder for every recording.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/user/framerecorder/pkg/ports"
)

const (
	// DefaultFPS is the frame rate used when Options.FPS is zero.
	DefaultFPS = 60

	// MaxFPS is the highest frame rate that still yields distinct timestamps.
	MaxFPS = int(Timescale)

	// DefaultCodec is the codec used when Options.Codec is empty.
	DefaultCodec = ports.CodecH264
)

// DefaultFrameSize is the size used when Options.Size is the zero value.
var DefaultFrameSize = FrameSize720p

// State is the lifecycle state of a Recorder.
type State int

const (
	// StateIdle means recording has not started yet.
	StateIdle State = iota
	// StateRecording means a recording is in progress.
	StateRecording
	// StateCancelled means the recording was cancelled.
	StateCancelled
	// StateFailed means the recording failed.
	StateFailed
	// StateEnded means the recording completed successfully.
	StateEnded
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Options configures a Recorder.
type Options struct {
	Size    FrameSize   // Output frame size (default: 720p)
	FPS     int         // Target frames per second, 1-600 (default: 60)
	Codec   ports.Codec // Output codec (default: h264)
	Quality int         // CRF: 0-63, 0 uses the writer default

	Writers    ports.VideoWriterFactory
	Converter  ports.PixelConverter
	FileSystem ports.FileSystem
	Logger     ports.Logger
	Sink       ports.DebugSink // Optional

	// OnFrameRecorded is called on the recording goroutine after each frame
	// has been appended to the writer.
	OnFrameRecorded func(frame int, at float64)
}

// Recorder records one video by pulling frames from a provider.
type Recorder struct {
	opts   Options
	logger ports.Logger

	mu      sync.Mutex
	state   State
	session *session
}

// New creates a Recorder. Zero Size, FPS and Codec take their defaults.
func New(opts Options) (*Recorder, error) {
	if opts.Size == (FrameSize{}) {
		opts.Size = DefaultFrameSize
	}
	if opts.FPS == 0 {
		opts.FPS = DefaultFPS
	}
	if opts.Codec == "" {
		opts.Codec = DefaultCodec
	}

	if !opts.Size.Valid() {
		return nil, fmt.Errorf("%w: frame size %s", ErrInvalidSettings, opts.Size)
	}
	if opts.FPS < 1 || opts.FPS > MaxFPS {
		return nil, fmt.Errorf("%w: fps %d out of range 1-%d", ErrInvalidSettings, opts.FPS, MaxFPS)
	}
	if opts.Quality < 0 || opts.Quality > 63 {
		return nil, fmt.Errorf("%w: quality %d out of range 0-63", ErrInvalidSettings, opts.Quality)
	}
	if opts.Writers == nil || opts.Converter == nil || opts.FileSystem == nil || opts.Logger == nil {
		return nil, fmt.Errorf("%w: writers, converter, file system and logger are required", ErrInvalidSettings)
	}

	return &Recorder{
		opts:   opts,
		logger: opts.Logger.WithComponent("recorder"),
		state:  StateIdle,
	}, nil
}

// Size returns the output frame size.
func (r *Recorder) Size() FrameSize {
	return r.opts.Size
}

// FPS returns the target frame rate.
func (r *Recorder) FPS() int {
	return r.opts.FPS
}

// State returns the current lifecycle state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Record writes a video to path, requesting one frame per output frame from
// frames until it returns nil. An existing file at path is overwritten.
//
// Record blocks until the recording ends. It returns path on success. On
// cancellation (Cancel or ctx) it returns an error wrapping ErrCancelled; on
// failure it returns the cause. In both cases the partial output is removed.
func (r *Recorder) Record(ctx context.Context, path string, frames ports.FrameProvider) (string, error) {
	if frames == nil {
		return "", ErrNilFrameProvider
	}

	r.mu.Lock()
	switch r.state {
	case StateIdle:
	case StateCancelled:
		r.mu.Unlock()
		return "", ErrCancelled
	default:
		r.mu.Unlock()
		return "", ErrAlreadyStarted
	}
	sess := newSession(path, r.opts, r.opts.Logger.WithComponent("session"))
	r.state = StateRecording
	r.session = sess
	r.mu.Unlock()

	r.logger.Info("Recording %s at %d fps to %s", r.opts.Size, r.opts.FPS, path)

	err := sess.record(ctx, frames)

	var final State
	switch {
	case err == nil:
		final = StateEnded
		r.logger.Info("Recording finished: %d frames written to %s", sess.framesRecorded(), path)
	case errors.Is(err, ErrCancelled):
		final = StateCancelled
		r.logger.Info("Recording cancelled")
		r.removeOutput(path)
	default:
		final = StateFailed
		r.logger.Error("Recording failed: %s", err)
		r.removeOutput(path)
	}

	r.mu.Lock()
	r.session = nil
	r.state = final
	r.mu.Unlock()

	if err != nil {
		return "", err
	}
	return path, nil
}

// Cancel cancels the recording. Before Record it moves the recorder straight
// to StateCancelled; during Record the running session stops at its next
// checkpoint. Cancel is a no-op once the recording has ended.
func (r *Recorder) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case StateIdle:
		r.state = StateCancelled
	case StateRecording:
		r.session.cancel()
	}
}

// removeOutput deletes a partially written file. Failures are logged only.
func (r *Recorder) removeOutput(path string) {
	exists, err := r.opts.FileSystem.Exists(path)
	if err != nil {
		r.logger.Warn("Failed to remove partial output %s: %s", path, err)
		return
	}
	if !exists {
		return
	}
	if err := r.opts.FileSystem.Remove(path); err != nil {
		r.logger.Warn("Failed to remove partial output %s: %s", path, err)
		return
	}
	r.logger.Debug("Removed partial output %s", path)
}
