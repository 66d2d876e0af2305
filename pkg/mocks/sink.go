package mocks

import (
	"image"
	"sync"

	"github.com/user/framerecorder/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	Disabled     bool
	SaveFrameErr error

	mu     sync.Mutex
	frames []int
}

func (m *DebugSink) Enabled() bool {
	return !m.Disabled
}

func (m *DebugSink) SaveFrame(index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, index)
	return m.SaveFrameErr
}

// SavedFrames returns the indices passed to SaveFrame (for test verification).
func (m *DebugSink) SavedFrames() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.frames...)
}

var _ ports.DebugSink = (*DebugSink)(nil)
