// Package smartwriter selects a video writer backend for the requested codec,
// falling back to Motion-JPEG when ffmpeg is not installed.
package smartwriter

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/user/framerecorder/pkg/adapters/ffmpegwriter"
	"github.com/user/framerecorder/pkg/adapters/logger"
	"github.com/user/framerecorder/pkg/adapters/mjpegwriter"
	"github.com/user/framerecorder/pkg/ports"
)

// Backend represents the writing backend.
type Backend string

const (
	// BackendAuto uses ffmpeg when available and Motion-JPEG otherwise.
	BackendAuto Backend = "auto"
	// BackendFFmpeg pipes frames to an external ffmpeg process.
	BackendFFmpeg Backend = "ffmpeg"
	// BackendMJPEG writes Motion-JPEG AVI files in process.
	BackendMJPEG Backend = "mjpeg"
)

// ParseBackend parses a backend name. An empty name is BackendAuto.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case "", BackendAuto:
		return BackendAuto, nil
	case BackendFFmpeg, BackendMJPEG:
		return Backend(s), nil
	default:
		return "", fmt.Errorf("unknown backend %q", s)
	}
}

// Containers written by the backends.
const (
	ContainerMP4 = "mp4"
	ContainerAVI = "avi"
)

// Info describes the backend chosen for a recording.
type Info struct {
	Backend        Backend
	Codec          ports.Codec
	RequestedCodec ports.Codec
	Container      string // ContainerMP4 or ContainerAVI
	FallbackUsed   bool
}

// Options configures the smart writer behavior.
type Options struct {
	Backend         Backend
	FFmpegPath      string // Optional explicit ffmpeg binary
	QueueDepth      int
	DisableFallback bool           // Fail instead of falling back to Motion-JPEG
	Renderer        ports.Renderer // JPEG encoding for the Motion-JPEG backend
	Logger          ports.Logger
}

var (
	// ErrNoWriterAvailable is returned when no backend can write the codec.
	ErrNoWriterAvailable = errors.New("smartwriter: no writer available")
)

// Factory implements ports.VideoWriterFactory by delegating to the selected
// backend on every Open.
type Factory struct {
	opts   Options
	logger ports.Logger

	ffmpeg          ports.VideoWriterFactory
	mjpeg           ports.VideoWriterFactory
	ffmpegAvailable func() bool

	mu   sync.Mutex
	last Info
}

// New creates a new Factory.
func New(opts Options) *Factory {
	if opts.Backend == "" {
		opts.Backend = BackendAuto
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoop()
	}
	return &Factory{
		opts:   opts,
		logger: opts.Logger,
		ffmpeg: ffmpegwriter.New(ffmpegwriter.Options{
			FFmpegPath: opts.FFmpegPath,
			QueueDepth: opts.QueueDepth,
			Logger:     opts.Logger.WithComponent("ffmpeg"),
		}),
		mjpeg: mjpegwriter.New(opts.Renderer, mjpegwriter.Options{
			QueueDepth: opts.QueueDepth,
			Logger:     opts.Logger.WithComponent("mjpeg"),
		}),
		ffmpegAvailable: func() bool {
			return ffmpegwriter.IsAvailable(opts.FFmpegPath)
		},
	}
}

// Select chooses the backend and output codec for the requested codec.
//
// The selection flow for H.264 and HEVC:
//  1. Use ffmpeg when it can be found
//  2. Unless fallback is disabled, write Motion-JPEG instead
//
// Motion-JPEG is always written in process.
func (f *Factory) Select(requested ports.Codec) (Info, error) {
	info := Info{RequestedCodec: requested}

	if requested == ports.CodecMJPEG || f.opts.Backend == BackendMJPEG {
		if f.opts.Renderer == nil {
			return Info{}, fmt.Errorf("%w: Motion-JPEG needs a renderer", ErrNoWriterAvailable)
		}
		info.Backend = BackendMJPEG
		info.Codec = ports.CodecMJPEG
		info.Container = ContainerAVI
		info.FallbackUsed = requested != ports.CodecMJPEG
		return info, nil
	}

	if f.ffmpegAvailable() {
		info.Backend = BackendFFmpeg
		info.Codec = requested
		info.Container = ContainerMP4
		return info, nil
	}

	if f.opts.Backend == BackendFFmpeg || f.opts.DisableFallback || f.opts.Renderer == nil {
		return Info{}, fmt.Errorf("%w: %s needs ffmpeg: %w", ErrNoWriterAvailable, requested, ffmpegwriter.ErrFFmpegNotFound)
	}

	f.logger.Warn("ffmpeg not available, falling back to Motion-JPEG in an AVI container")
	info.Backend = BackendMJPEG
	info.Codec = ports.CodecMJPEG
	info.Container = ContainerAVI
	info.FallbackUsed = true
	return info, nil
}

// Open selects a backend for settings.Codec and opens a writer with it.
func (f *Factory) Open(path string, settings ports.VideoSettings) (ports.VideoWriter, error) {
	info, err := f.Select(settings.Codec)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.last = info
	f.mu.Unlock()

	settings.Codec = info.Codec
	f.logger.Debug("Using %s backend for %s", info.Backend, info.Codec)
	if info.Container == ContainerAVI && !strings.EqualFold(filepath.Ext(path), ".avi") {
		f.logger.Warn("Writing an AVI container to %s", path)
	}

	if info.Backend == BackendFFmpeg {
		return f.ffmpeg.Open(path, settings)
	}
	return f.mjpeg.Open(path, settings)
}

// LastInfo returns the selection made by the most recent Open.
func (f *Factory) LastInfo() Info {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

var _ ports.VideoWriterFactory = (*Factory)(nil)
