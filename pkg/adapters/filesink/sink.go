// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/framerecorder/pkg/ports"
)

// Sink saves recorded source frames as PNG files under baseDir/frames.
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer

	dirReady bool
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// FramePath returns the path a frame with the given index is saved to.
func (s *Sink) FramePath(index int) string {
	return filepath.Join(s.baseDir, "frames", fmt.Sprintf("frame-%04d.png", index))
}

// SaveFrame encodes img as PNG and writes it to FramePath(index).
func (s *Sink) SaveFrame(index int, img image.Image) error {
	if !s.dirReady {
		if err := s.fs.MkdirAll(filepath.Join(s.baseDir, "frames")); err != nil {
			return err
		}
		s.dirReady = true
	}

	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", index, err)
	}
	return s.fs.WriteFile(s.FramePath(index), data)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
