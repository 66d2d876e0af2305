package ports

import (
	"image"

	"github.com/user/framerecorder/pkg/pixelbuffer"
)

// PixelConverter turns decoded images into raw frame buffers.
type PixelConverter interface {
	// Convert draws img into a buffer from pool, scaled to width x height.
	// Errors wrap pixelbuffer.ErrImageAccessFailed,
	// pixelbuffer.ErrBufferAllocationFailed or pixelbuffer.ErrDrawContextFailed.
	Convert(img image.Image, width, height int, pool *pixelbuffer.Pool) (*pixelbuffer.Buffer, error)
}
