package mocks

import (
	"image"
	"image/color"

	"github.com/user/framerecorder/pkg/ports"
)

// FrameRequest records a call to RequestFrame.
type FrameRequest struct {
	Frame int
	At    float64
	FPS   int
}

// FrameProvider is a mock implementation of ports.FrameProvider.
// It returns Frames solid images and then nil.
type FrameProvider struct {
	Frames int
	Width  int // default: 8
	Height int // default: 8

	// OnRequest is called before each frame is produced.
	OnRequest func(frame int)

	// Error is reported through Err once the provider runs out of frames.
	Error error

	// Recorded calls for verification
	Requests []FrameRequest
}

func (m *FrameProvider) RequestFrame(frame int, at float64, fps int) image.Image {
	m.Requests = append(m.Requests, FrameRequest{Frame: frame, At: at, FPS: fps})
	if m.OnRequest != nil {
		m.OnRequest(frame)
	}
	if frame >= m.Frames {
		return nil
	}

	w, h := m.Width, m.Height
	if w == 0 {
		w = 8
	}
	if h == 0 {
		h = 8
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	shade := uint8(frame % 256)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = shade
		img.Pix[i+3] = 255
	}
	return img
}

func (m *FrameProvider) Err() error {
	return m.Error
}

// SolidColor returns a provider function that yields n frames of c.
func SolidColor(n, width, height int, c color.Color) ports.FrameProviderFunc {
	return func(frame int, at float64, fps int) image.Image {
		if frame >= n {
			return nil
		}
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.Set(x, y, c)
			}
		}
		return img
	}
}

var (
	_ ports.FrameProvider      = (*FrameProvider)(nil)
	_ ports.FrameProviderError = (*FrameProvider)(nil)
)
