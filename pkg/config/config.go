// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/user/framerecorder/pkg/adapters/pixelconv"
	"github.com/user/framerecorder/pkg/adapters/smartwriter"
	"github.com/user/framerecorder/pkg/ports"
	"github.com/user/framerecorder/pkg/recorder"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate for out-of-range or unknown values.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// QualityPreset represents a video quality preset name.
type QualityPreset string

const (
	QualityLow    QualityPreset = "low"
	QualityMedium QualityPreset = "medium"
	QualityHigh   QualityPreset = "high"
)

// presetCRF maps quality presets to CRF values on the 0-63 scale.
var presetCRF = map[QualityPreset]int{
	QualityLow:    35,
	QualityMedium: 25,
	QualityHigh:   15,
}

// Config represents the full configuration for framerec.
type Config struct {
	// Recording
	Size    string `yaml:"size"`    // Preset (720p, 1080p, 4k) or WxH
	FPS     int    `yaml:"fps"`     // 1-600
	Codec   string `yaml:"codec"`   // h264, hevc, mjpeg
	Quality string `yaml:"quality"` // low, medium, high or a CRF 0-63

	// Writer
	Backend    string `yaml:"backend"` // auto, ffmpeg, mjpeg
	FFmpegPath string `yaml:"ffmpeg_path"`
	QueueDepth int    `yaml:"queue_depth"`

	// Conversion
	Fit             string `yaml:"fit"` // stretch, contain
	BackgroundColor string `yaml:"background_color"`

	// Sources
	Frames          int     `yaml:"frames"`            // Test pattern and HTML frame cap
	SecondsPerImage float64 `yaml:"seconds_per_image"` // Image sequence
	ChromePath      string  `yaml:"chrome_path"`

	// Output
	LogLevel string `yaml:"log_level"`
	DebugDir string `yaml:"debug_dir"` // Empty disables frame dumps
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Size:    recorder.DefaultFrameSize.String(),
		FPS:     recorder.DefaultFPS,
		Codec:   string(recorder.DefaultCodec),
		Quality: string(QualityMedium),

		Backend:    string(smartwriter.BackendAuto),
		QueueDepth: 4,

		Fit:             "contain",
		BackgroundColor: "#000000",

		Frames:          300,
		SecondsPerImage: 1.0,

		LogLevel: ports.LevelInfo.String(),
	}
}

// LoadFromFile loads configuration from a YAML file on top of Defaults.
// Unknown keys are rejected.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field and returns the first problem found.
func (c Config) Validate() error {
	if _, err := recorder.ParseFrameSize(c.Size); err != nil {
		return fmt.Errorf("%w: size: %w", ErrInvalidConfig, err)
	}
	if c.FPS < 1 || c.FPS > recorder.MaxFPS {
		return fmt.Errorf("%w: fps %d out of range 1-%d", ErrInvalidConfig, c.FPS, recorder.MaxFPS)
	}
	if _, err := ports.ParseCodec(c.Codec); err != nil {
		return fmt.Errorf("%w: codec: %w", ErrInvalidConfig, err)
	}
	if _, err := c.CRF(); err != nil {
		return err
	}
	if _, err := smartwriter.ParseBackend(c.Backend); err != nil {
		return fmt.Errorf("%w: backend: %w", ErrInvalidConfig, err)
	}
	if c.QueueDepth < 1 {
		return fmt.Errorf("%w: queue_depth must be at least 1", ErrInvalidConfig)
	}
	if _, err := c.FitMode(); err != nil {
		return err
	}
	if _, err := ParseColor(c.BackgroundColor); err != nil {
		return fmt.Errorf("%w: background_color: %w", ErrInvalidConfig, err)
	}
	if c.Frames < 0 {
		return fmt.Errorf("%w: frames must not be negative", ErrInvalidConfig)
	}
	if c.SecondsPerImage <= 0 {
		return fmt.Errorf("%w: seconds_per_image must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error", "quiet":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

// CRF resolves Quality to a CRF value. An empty quality means the writer default (0).
func (c Config) CRF() (int, error) {
	q := strings.ToLower(strings.TrimSpace(c.Quality))
	if q == "" {
		return 0, nil
	}
	if crf, ok := presetCRF[QualityPreset(q)]; ok {
		return crf, nil
	}
	crf, err := strconv.Atoi(q)
	if err != nil || crf < 0 || crf > 63 {
		return 0, fmt.Errorf("%w: quality %q is neither a preset nor a CRF 0-63", ErrInvalidConfig, c.Quality)
	}
	return crf, nil
}

// FitMode returns the pixel conversion fit for Fit.
func (c Config) FitMode() (pixelconv.Fit, error) {
	switch strings.ToLower(c.Fit) {
	case "", "contain":
		return pixelconv.FitContain, nil
	case "stretch":
		return pixelconv.FitStretch, nil
	default:
		return 0, fmt.Errorf("%w: unknown fit %q", ErrInvalidConfig, c.Fit)
	}
}

// RecorderOptions returns the recording settings part of recorder.Options.
// The caller supplies the writer, converter, file system and logger.
func (c Config) RecorderOptions() (recorder.Options, error) {
	if err := c.Validate(); err != nil {
		return recorder.Options{}, err
	}
	size, _ := recorder.ParseFrameSize(c.Size)
	codec, _ := ports.ParseCodec(c.Codec)
	crf, _ := c.CRF()

	return recorder.Options{
		Size:    size,
		FPS:     c.FPS,
		Codec:   codec,
		Quality: crf,
	}, nil
}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa" (leading # optional).
func ParseColor(hex string) (color.RGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) == 6 {
		s += "ff"
	}
	if len(s) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", hex)
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", hex)
	}
	return color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}
