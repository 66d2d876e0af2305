package mocks

import (
	"fmt"
	"image"

	"github.com/user/framerecorder/pkg/pixelbuffer"
	"github.com/user/framerecorder/pkg/ports"
)

// PixelConverter is a mock implementation of ports.PixelConverter.
// By default it returns an empty buffer from the pool.
type PixelConverter struct {
	ConvertFunc func(img image.Image, width, height int, pool *pixelbuffer.Pool) (*pixelbuffer.Buffer, error)

	// Recorded calls for verification
	ConvertCalls int
}

func (m *PixelConverter) Convert(img image.Image, width, height int, pool *pixelbuffer.Pool) (*pixelbuffer.Buffer, error) {
	m.ConvertCalls++
	if m.ConvertFunc != nil {
		return m.ConvertFunc(img, width, height, pool)
	}
	buf, err := pool.Get()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pixelbuffer.ErrBufferAllocationFailed, err)
	}
	return buf, nil
}

var _ ports.PixelConverter = (*PixelConverter)(nil)
