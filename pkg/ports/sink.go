package ports

import (
	"image"
)

// DebugSink receives recorded frames for inspection.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveFrame saves the source image of a recorded frame.
	SaveFrame(index int, img image.Image) error
}
