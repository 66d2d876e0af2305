package mocks

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/user/framerecorder/pkg/pixelbuffer"
	"github.com/user/framerecorder/pkg/ports"
)

// VideoWriterFactory is a mock implementation of ports.VideoWriterFactory.
type VideoWriterFactory struct {
	OpenFunc func(path string, settings ports.VideoSettings) (ports.VideoWriter, error)

	// Writer is returned by Open when OpenFunc is nil. It is configured with
	// the requested settings on Open; nil creates a default writer.
	Writer *VideoWriter

	// Recorded calls for verification
	OpenCalls []OpenCall
}

// OpenCall records a call to Open.
type OpenCall struct {
	Path     string
	Settings ports.VideoSettings
}

func (m *VideoWriterFactory) Open(path string, settings ports.VideoSettings) (ports.VideoWriter, error) {
	m.OpenCalls = append(m.OpenCalls, OpenCall{Path: path, Settings: settings})
	if m.OpenFunc != nil {
		return m.OpenFunc(path, settings)
	}
	if m.Writer == nil {
		m.Writer = &VideoWriter{}
	}
	if err := m.Writer.open(path, settings); err != nil {
		return nil, err
	}
	return m.Writer, nil
}

// VideoWriter is a mock implementation of ports.VideoWriter.
//
// It accepts Burst frames per readiness signal, then reports not ready and
// queues the next signal, emulating an encoder that drains its input between
// callbacks. When WriteFiles is set the output file is created on Open and
// rewritten with the appended timestamps on FinishWriting.
type VideoWriter struct {
	Burst      int // Frames accepted per readiness signal (default: 1)
	WriteFiles bool
	NoPool     bool

	StartSessionErr  error
	AppendFunc       func(buf *pixelbuffer.Buffer, pts ports.MediaTime) error
	FinishWritingErr error

	// Recorded calls for verification
	Path                string
	Settings            ports.VideoSettings
	StartSessionCalled  bool
	Appends             []AppendCall
	MarkAsFinishedCalls int
	FinishWritingCalls  int
	CancelWritingCalls  int

	ready    chan struct{}
	pool     *pixelbuffer.Pool
	accepted int
}

// AppendCall records a call to Append.
type AppendCall struct {
	PTS    ports.MediaTime
	Width  int
	Height int
}

func (m *VideoWriter) open(path string, settings ports.VideoSettings) error {
	m.Path = path
	m.Settings = settings
	m.ready = make(chan struct{}, 1)
	if !m.NoPool {
		pool, err := pixelbuffer.NewPool(settings.Width, settings.Height, 0)
		if err != nil {
			return err
		}
		m.pool = pool
	}
	if m.WriteFiles {
		return os.WriteFile(path, nil, 0644)
	}
	return nil
}

func (m *VideoWriter) StartSession() error {
	m.StartSessionCalled = true
	if m.StartSessionErr != nil {
		return m.StartSessionErr
	}
	m.signal()
	return nil
}

func (m *VideoWriter) Ready() <-chan struct{} {
	return m.ready
}

func (m *VideoWriter) IsReadyForMoreData() bool {
	burst := m.Burst
	if burst <= 0 {
		burst = 1
	}
	if m.accepted < burst {
		return true
	}
	m.accepted = 0
	m.signal()
	return false
}

func (m *VideoWriter) PixelBufferPool() *pixelbuffer.Pool {
	if m.NoPool {
		return nil
	}
	return m.pool
}

func (m *VideoWriter) Append(buf *pixelbuffer.Buffer, pts ports.MediaTime) error {
	if m.AppendFunc != nil {
		if err := m.AppendFunc(buf, pts); err != nil {
			return err
		}
	}
	m.Appends = append(m.Appends, AppendCall{PTS: pts, Width: buf.Width(), Height: buf.Height()})
	m.accepted++
	buf.Release()
	return nil
}

func (m *VideoWriter) MarkAsFinished() {
	m.MarkAsFinishedCalls++
}

func (m *VideoWriter) FinishWriting(ctx context.Context) error {
	m.FinishWritingCalls++
	if m.FinishWritingErr != nil {
		return m.FinishWritingErr
	}
	if m.WriteFiles {
		var sb strings.Builder
		for _, a := range m.Appends {
			fmt.Fprintf(&sb, "%d/%d\n", a.PTS.Value, a.PTS.Timescale)
		}
		return os.WriteFile(m.Path, []byte(sb.String()), 0644)
	}
	return nil
}

func (m *VideoWriter) CancelWriting() {
	m.CancelWritingCalls++
}

func (m *VideoWriter) signal() {
	select {
	case m.ready <- struct{}{}:
	default:
	}
}

var (
	_ ports.VideoWriterFactory = (*VideoWriterFactory)(nil)
	_ ports.VideoWriter        = (*VideoWriter)(nil)
)
