// Package imagesequence turns a list of still images into a frame stream,
// showing each image for a fixed duration.
package imagesequence

import (
	"errors"
	"fmt"
	"image"
	"math"
	"path/filepath"
	"sort"

	"github.com/user/framerecorder/pkg/ports"
)

// DefaultSecondsPerImage is used when Options.SecondsPerImage is zero.
const DefaultSecondsPerImage = 1.0

var (
	// ErrNoImages is returned when the sequence is empty.
	ErrNoImages = errors.New("imagesequence: no images")

	// ErrLoadFailed is reported through Err when an image cannot be loaded.
	ErrLoadFailed = errors.New("imagesequence: failed to load image")
)

// Options configures a Provider.
type Options struct {
	Paths           []string
	SecondsPerImage float64
}

// Provider implements ports.FrameProvider over image files.
// It is used from a single recording goroutine.
type Provider struct {
	fs       ports.FileSystem
	renderer ports.Renderer
	paths    []string
	seconds  float64

	current int
	img     image.Image
	err     error
}

// New creates a new Provider.
func New(fs ports.FileSystem, renderer ports.Renderer, opts Options) (*Provider, error) {
	if len(opts.Paths) == 0 {
		return nil, ErrNoImages
	}
	if opts.SecondsPerImage <= 0 {
		opts.SecondsPerImage = DefaultSecondsPerImage
	}
	return &Provider{
		fs:       fs,
		renderer: renderer,
		paths:    opts.Paths,
		seconds:  opts.SecondsPerImage,
		current:  -1,
	}, nil
}

// Glob returns the files matching pattern in lexical order.
func Glob(pattern string) ([]string, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: nothing matches %s", ErrNoImages, pattern)
	}
	sort.Strings(paths)
	return paths, nil
}

// FramesPerImage returns how many frames each image is shown for at fps.
func (p *Provider) FramesPerImage(fps int) int {
	n := int(math.Round(p.seconds * float64(fps)))
	if n < 1 {
		n = 1
	}
	return n
}

// TotalFrames returns the length of the stream at fps.
func (p *Provider) TotalFrames(fps int) int {
	return len(p.paths) * p.FramesPerImage(fps)
}

// RequestFrame returns the image shown at frame, or nil past the last image
// or after a load failure.
func (p *Provider) RequestFrame(frame int, at float64, fps int) image.Image {
	if p.err != nil || frame < 0 || fps <= 0 {
		return nil
	}

	index := frame / p.FramesPerImage(fps)
	if index >= len(p.paths) {
		return nil
	}
	if index == p.current {
		return p.img
	}

	img, err := p.load(p.paths[index])
	if err != nil {
		p.err = err
		return nil
	}
	p.current = index
	p.img = img
	return img
}

// Err returns the load failure that ended the stream, if any.
func (p *Provider) Err() error {
	return p.err
}

func (p *Provider) load(path string) (image.Image, error) {
	data, err := p.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadFailed, path, err)
	}
	img, err := p.renderer.DecodeImage(data, ports.FormatAuto)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadFailed, path, err)
	}
	return img, nil
}

var (
	_ ports.FrameProvider      = (*Provider)(nil)
	_ ports.FrameProviderError = (*Provider)(nil)
)
