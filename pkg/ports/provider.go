// Package ports defines interfaces for external dependencies of the recorder.
package ports

import (
	"image"
)

// FrameProvider is a pull-based source of frames.
type FrameProvider interface {
	// RequestFrame returns the image for the given zero-based frame index.
	// at is the presentation time of the frame in seconds (frame / fps).
	// A nil image means there are no more frames.
	RequestFrame(frame int, at float64, fps int) image.Image
}

// FrameProviderError is implemented by providers that can fail while producing
// frames. Err is consulted when RequestFrame returns nil; a non-nil error turns
// the end of the stream into a failed recording.
type FrameProviderError interface {
	Err() error
}

// FrameProviderFunc adapts a function to FrameProvider.
type FrameProviderFunc func(frame int, at float64, fps int) image.Image

// RequestFrame implements FrameProvider.
func (f FrameProviderFunc) RequestFrame(frame int, at float64, fps int) image.Image {
	return f(frame, at, fps)
}
