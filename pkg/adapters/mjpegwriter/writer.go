// Package mjpegwriter writes Motion-JPEG AVI files without external tools.
package mjpegwriter

import (
	"errors"
	"fmt"
	"sync"

	"github.com/icza/mjpeg"

	"github.com/user/framerecorder/pkg/adapters/asyncwriter"
	"github.com/user/framerecorder/pkg/adapters/logger"
	"github.com/user/framerecorder/pkg/pixelbuffer"
	"github.com/user/framerecorder/pkg/ports"
)

// DefaultJPEGQuality is used when VideoSettings.Quality is zero.
const DefaultJPEGQuality = 90

var (
	// ErrUnsupportedCodec is returned for any codec other than MJPEG.
	ErrUnsupportedCodec = errors.New("mjpegwriter: unsupported codec")

	// ErrAborted is returned for frames written after Abort.
	ErrAborted = errors.New("mjpegwriter: aborted")
)

// Options configures a Factory.
type Options struct {
	QueueDepth int // default: asyncwriter.DefaultDepth
	Logger     ports.Logger
}

// Factory opens Motion-JPEG writers. Frames are JPEG-encoded with renderer.
type Factory struct {
	renderer ports.Renderer
	opts     Options
}

// New creates a new Factory.
func New(renderer ports.Renderer, opts Options) *Factory {
	if opts.Logger == nil {
		opts.Logger = logger.NewNoop()
	}
	return &Factory{renderer: renderer, opts: opts}
}

// Open creates the AVI file at path.
func (f *Factory) Open(path string, settings ports.VideoSettings) (ports.VideoWriter, error) {
	if settings.Codec != ports.CodecMJPEG {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, settings.Codec)
	}

	aw, err := mjpeg.New(path, int32(settings.Width), int32(settings.Height), int32(settings.FPS))
	if err != nil {
		return nil, fmt.Errorf("create avi: %w", err)
	}

	enc := &encoder{
		aw:        aw,
		renderer:  f.renderer,
		quality:   JPEGQuality(settings.Quality),
		timescale: int64(settings.Timescale),
		ticks:     int64(settings.Timescale) / int64(settings.FPS),
	}

	w, err := asyncwriter.New(enc, asyncwriter.Options{
		Width:  settings.Width,
		Height: settings.Height,
		Depth:  f.opts.QueueDepth,
		Logger: f.opts.Logger,
	})
	if err != nil {
		enc.Abort()
		return nil, fmt.Errorf("create writer: %w", err)
	}
	return w, nil
}

// JPEGQuality maps the 0-63 quality scale (lower is better, 0 is default)
// onto JPEG quality 100-10.
func JPEGQuality(q int) int {
	if q <= 0 {
		return DefaultJPEGQuality
	}
	jq := 100 - q*90/63
	if jq < 10 {
		jq = 10
	}
	return jq
}

// encoder appends JPEG frames to an AVI. Skipped timestamps repeat the frame.
type encoder struct {
	renderer  ports.Renderer
	quality   int
	timescale int64
	ticks     int64

	mu      sync.Mutex
	aw      mjpeg.AviWriter
	next    int64
	aborted bool
	closed  bool
}

func (e *encoder) EncodeFrame(buf *pixelbuffer.Buffer, pts ports.MediaTime) error {
	data, err := e.renderer.EncodeImage(buf.RGBA, ports.FormatJPEG, e.quality)
	if err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.aborted {
		return ErrAborted
	}

	slot := pts.Value * e.timescale / (int64(pts.Timescale) * e.ticks)
	if slot < e.next {
		slot = e.next
	}
	for ; e.next <= slot; e.next++ {
		if err := e.aw.AddFrame(data); err != nil {
			return fmt.Errorf("add frame: %w", err)
		}
	}
	return nil
}

func (e *encoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.aw.Close()
}

// Abort closes the file as is; the caller removes it.
func (e *encoder) Abort() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.aborted = true
	if !e.closed {
		e.closed = true
		_ = e.aw.Close()
	}
}

var _ ports.VideoWriterFactory = (*Factory)(nil)
