// Package main provides the CLI entry point for framerec.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"github.com/ideamans/go-l10n"

	"github.com/user/framerecorder/pkg/adapters/filesink"
	"github.com/user/framerecorder/pkg/adapters/ggrenderer"
	"github.com/user/framerecorder/pkg/adapters/htmlprovider"
	"github.com/user/framerecorder/pkg/adapters/imagesequence"
	"github.com/user/framerecorder/pkg/adapters/logger"
	"github.com/user/framerecorder/pkg/adapters/mp4probe"
	"github.com/user/framerecorder/pkg/adapters/nullsink"
	"github.com/user/framerecorder/pkg/adapters/osfilesystem"
	"github.com/user/framerecorder/pkg/adapters/pixelconv"
	"github.com/user/framerecorder/pkg/adapters/smartwriter"
	"github.com/user/framerecorder/pkg/adapters/testpattern"
	"github.com/user/framerecorder/pkg/config"
	"github.com/user/framerecorder/pkg/ports"
	"github.com/user/framerecorder/pkg/recorder"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Record  RecordCmd  `cmd:"" help:"Record frames from a source into a video file."`
	Inspect InspectCmd `cmd:"" help:"Show the video track of an MP4 file."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// RecordCmd defines the record subcommand.
type RecordCmd struct {
	// Required arguments
	Source string   `arg:"" enum:"pattern,images,html" help:"Frame source (pattern, images or html)."`
	Inputs []string `arg:"" optional:"" help:"Image files or globs for images, a URL or HTML file for html."`
	Output string   `short:"o" required:"" help:"Output video file path."`

	// Configuration file; flags override its values
	Config string `short:"c" help:"YAML configuration file."`

	// Recording
	Size    string `short:"s" help:"Frame size: 720p, 1080p, 4k or WIDTHxHEIGHT (default: 720p)."`
	FPS     *int   `short:"r" name:"fps" help:"Frames per second, 1-600 (default: 60)."`
	Codec   string `help:"Video codec (h264, hevc, mjpeg)."`
	Quality string `short:"q" help:"Quality preset (low, medium, high) or CRF 0-63."`

	// Writer
	Backend    string `help:"Writer backend (auto, ffmpeg, mjpeg)."`
	FFmpegPath string `name:"ffmpeg" help:"Path to ffmpeg (falls back to FFMPEG_PATH env, then PATH)."`
	QueueDepth *int   `name:"queue" help:"Frames buffered ahead of the encoder (default: 4)."`

	// Sources
	Frames          *int     `short:"n" help:"Frames to record from pattern, or maximum frames from html."`
	SecondsPerImage *float64 `help:"Seconds each image is shown (images source)."`
	Fit             string   `help:"How frames of another size are fitted (contain, stretch)."`
	Background      string   `help:"Background color for letterboxing (hex, e.g., #000000)."`
	ChromePath      string   `help:"Path to Chrome executable (falls back to CHROME_PATH env, then system default)."`
	Headful         bool     `help:"Show the browser window for the html source."`

	// Debug options
	DebugDir string `help:"Save every recorded frame as PNG under this directory."`

	// Logging options
	LogLevel string `short:"l" help:"Log level (debug, info, warn, error)."`
	Quiet    bool   `short:"Q" help:"Suppress all log output."`
}

// InspectCmd defines the inspect subcommand.
type InspectCmd struct {
	Path string `arg:"" type:"existingfile" help:"MP4 file to inspect."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("framerec"),
		kong.Description(l10n.T("Record frame-by-frame animations as video files.")),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// Run executes the record command.
func (cmd *RecordCmd) Run() error {
	cfg, err := cmd.buildConfig()
	if err != nil {
		return err
	}
	opts, err := cfg.RecorderOptions()
	if err != nil {
		return err
	}

	// Create logger
	level := ports.ParseLogLevel(cfg.LogLevel)
	if cmd.Quiet {
		level = ports.LevelQuiet
	}
	log := logger.New(level)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, cancelling recording...")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Create adapters
	fs := osfilesystem.New()
	renderer := ggrenderer.New()

	fit, _ := cfg.FitMode()
	background, _ := config.ParseColor(cfg.BackgroundColor)
	backend, _ := smartwriter.ParseBackend(cfg.Backend)

	writers := smartwriter.New(smartwriter.Options{
		Backend:    backend,
		FFmpegPath: cfg.FFmpegPath,
		QueueDepth: cfg.QueueDepth,
		Renderer:   renderer,
		Logger:     log.WithComponent("writer"),
	})

	// Create debug sink
	var sink ports.DebugSink
	if cfg.DebugDir != "" {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, fs, renderer)
	} else {
		sink = nullsink.New()
	}

	frames, closeFrames, err := cmd.frameProvider(ctx, cfg, opts.Size, fs, renderer, log)
	if err != nil {
		return err
	}
	defer closeFrames()

	opts.Writers = writers
	opts.Converter = pixelconv.New(pixelconv.Options{Fit: fit, Background: background})
	opts.FileSystem = fs
	opts.Logger = log
	opts.Sink = sink
	opts.OnFrameRecorded = func(frame int, at float64) {
		if (frame+1)%opts.FPS == 0 {
			log.Debug("Recorded %d frames (%.1fs)", frame+1, at)
		}
	}

	rec, err := recorder.New(opts)
	if err != nil {
		return err
	}

	path, err := rec.Record(ctx, cmd.Output, frames)
	if err != nil {
		if errors.Is(err, recorder.ErrCancelled) {
			return errors.New(l10n.T("recording cancelled"))
		}
		return err
	}

	info := writers.LastInfo()
	if info.FallbackUsed {
		log.Warn("Wrote %s instead of %s; the file is a Motion-JPEG AVI", info.Codec, info.RequestedCodec)
	}
	if st, err := os.Stat(path); err == nil {
		log.Info("Output saved to %s (%s)", path, humanize.Bytes(uint64(st.Size())))
	} else {
		log.Info("Output saved to %s", path)
	}
	return nil
}

// buildConfig loads the configuration file, if any, and applies flag overrides.
func (cmd *RecordCmd) buildConfig() (config.Config, error) {
	cfg := config.Defaults()
	if cmd.Config != "" {
		loaded, err := config.LoadFromFile(cmd.Config)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	setString(&cfg.Size, cmd.Size)
	setInt(&cfg.FPS, cmd.FPS)
	setString(&cfg.Codec, cmd.Codec)
	setString(&cfg.Quality, cmd.Quality)
	setString(&cfg.Backend, cmd.Backend)
	setString(&cfg.FFmpegPath, cmd.FFmpegPath)
	setInt(&cfg.QueueDepth, cmd.QueueDepth)
	setInt(&cfg.Frames, cmd.Frames)
	if cmd.SecondsPerImage != nil {
		cfg.SecondsPerImage = *cmd.SecondsPerImage
	}
	setString(&cfg.Fit, cmd.Fit)
	setString(&cfg.BackgroundColor, cmd.Background)
	setString(&cfg.ChromePath, cmd.ChromePath)
	setString(&cfg.DebugDir, cmd.DebugDir)
	setString(&cfg.LogLevel, cmd.LogLevel)

	return cfg, cfg.Validate()
}

// frameProvider creates the provider for cmd.Source. The returned function
// releases provider resources.
func (cmd *RecordCmd) frameProvider(ctx context.Context, cfg config.Config, size recorder.FrameSize, fs ports.FileSystem, renderer ports.Renderer, log ports.Logger) (ports.FrameProvider, func(), error) {
	noop := func() {}

	switch cmd.Source {
	case "pattern":
		return testpattern.New(renderer, testpattern.Options{
			Frames: cfg.Frames,
			Width:  size.Width(),
			Height: size.Height(),
			Label:  "framerec",
		}), noop, nil

	case "images":
		var paths []string
		for _, input := range cmd.Inputs {
			matches, err := imagesequence.Glob(input)
			if err != nil {
				return nil, noop, err
			}
			paths = append(paths, matches...)
		}
		seq, err := imagesequence.New(fs, renderer, imagesequence.Options{
			Paths:           paths,
			SecondsPerImage: cfg.SecondsPerImage,
		})
		if err != nil {
			return nil, noop, err
		}
		return seq, noop, nil

	case "html":
		if len(cmd.Inputs) != 1 {
			return nil, noop, errors.New(l10n.T("html source takes exactly one URL or file"))
		}
		page := htmlprovider.New(renderer, log.WithComponent("html"), htmlprovider.Options{
			Source:     cmd.Inputs[0],
			Width:      size.Width(),
			Height:     size.Height(),
			MaxFrames:  cfg.Frames,
			ChromePath: cfg.ChromePath,
			Headful:    cmd.Headful,
		})
		if err := page.Start(ctx); err != nil {
			page.Close()
			return nil, noop, err
		}
		return page, page.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown source %q", cmd.Source)
	}
}

// Run executes the inspect command.
func (cmd *InspectCmd) Run() error {
	info, err := mp4probe.ProbeFile(cmd.Path)
	if err != nil {
		return err
	}
	st, err := os.Stat(cmd.Path)
	if err != nil {
		return err
	}

	fmt.Println(l10n.F("File:       %s (%s)", cmd.Path, humanize.Bytes(uint64(st.Size()))))

	fmt.Println(l10n.F("Codec:      %s", info.Codec))
	fmt.Println(l10n.F("Size:       %dx%d", info.Width, info.Height))
	fmt.Println(l10n.F("Timescale:  %d", info.Timescale))
	fmt.Println(l10n.F("Frames:     %d", info.Samples))
	if info.Duration > 0 {
		fmt.Println(l10n.F("Duration:   %s", info.Duration))
	}
	if info.Fragmented {
		fmt.Println(l10n.T("Fragmented: yes"))
	}
	return nil
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("framerec version %s", version))
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
