// Package ffmpegwriter writes H.264 or HEVC MP4 files by piping raw RGBA
// frames into an external ffmpeg process.
package ffmpegwriter

import (
	"errors"
	"fmt"

	"github.com/user/framerecorder/pkg/adapters/asyncwriter"
	"github.com/user/framerecorder/pkg/adapters/logger"
	"github.com/user/framerecorder/pkg/ports"
)

var (
	// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
	ErrFFmpegNotFound = errors.New("ffmpegwriter: ffmpeg not found")

	// ErrUnsupportedCodec is returned for codecs ffmpeg is not set up to write.
	ErrUnsupportedCodec = errors.New("ffmpegwriter: unsupported codec")

	// ErrInvalidSettings is returned for unusable video settings.
	ErrInvalidSettings = errors.New("ffmpegwriter: invalid settings")

	// ErrAborted is returned for frames written after Abort.
	ErrAborted = errors.New("ffmpegwriter: aborted")
)

// Options configures a Factory.
type Options struct {
	FFmpegPath string // Optional explicit ffmpeg binary
	QueueDepth int    // Frames queued ahead of ffmpeg (default: asyncwriter.DefaultDepth)
	Logger     ports.Logger
}

// Factory opens ffmpeg-backed video writers.
type Factory struct {
	opts Options
}

// New creates a new Factory.
func New(opts Options) *Factory {
	if opts.Logger == nil {
		opts.Logger = logger.NewNoop()
	}
	return &Factory{opts: opts}
}

// Open starts ffmpeg writing to path and returns a writer feeding it.
func (f *Factory) Open(path string, settings ports.VideoSettings) (ports.VideoWriter, error) {
	args, err := BuildArgs(path, settings)
	if err != nil {
		return nil, err
	}
	ffmpegPath, err := FindFFmpeg(f.opts.FFmpegPath)
	if err != nil {
		return nil, err
	}

	proc, err := startProcess(ffmpegPath, args, settings)
	if err != nil {
		return nil, err
	}
	f.opts.Logger.Debug("Started %s for %s", ffmpegPath, settings.Codec)

	w, err := asyncwriter.New(proc, asyncwriter.Options{
		Width:  settings.Width,
		Height: settings.Height,
		Depth:  f.opts.QueueDepth,
		Logger: f.opts.Logger,
	})
	if err != nil {
		proc.Abort()
		return nil, fmt.Errorf("create writer: %w", err)
	}
	return w, nil
}

var _ ports.VideoWriterFactory = (*Factory)(nil)
