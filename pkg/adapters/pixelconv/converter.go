// Package pixelconv converts provider images into pooled RGBA frame buffers.
package pixelconv

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/user/framerecorder/pkg/pixelbuffer"
	"github.com/user/framerecorder/pkg/ports"
)

// Fit controls how an image whose size differs from the frame is placed.
type Fit int

const (
	// FitStretch scales the image to fill the whole frame.
	FitStretch Fit = iota
	// FitContain scales the image to fit inside the frame keeping its aspect
	// ratio, filling the remaining area with the background color.
	FitContain
)

// Options configures a Converter.
type Options struct {
	Fit        Fit
	Background color.Color      // Used by FitContain (default: black)
	Scaler     draw.Interpolator // default: draw.ApproxBiLinear
}

// Converter implements ports.PixelConverter using golang.org/x/image/draw.
type Converter struct {
	fit        Fit
	background *image.Uniform
	scaler     draw.Interpolator
}

// New creates a new Converter.
func New(opts Options) *Converter {
	if opts.Background == nil {
		opts.Background = color.Black
	}
	if opts.Scaler == nil {
		opts.Scaler = draw.ApproxBiLinear
	}
	return &Converter{
		fit:        opts.Fit,
		background: image.NewUniform(opts.Background),
		scaler:     opts.Scaler,
	}
}

// Convert draws img into a width x height buffer taken from pool.
func (c *Converter) Convert(img image.Image, width, height int, pool *pixelbuffer.Pool) (*pixelbuffer.Buffer, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", pixelbuffer.ErrImageAccessFailed)
	}
	src := img.Bounds()
	if src.Empty() {
		return nil, fmt.Errorf("%w: empty bounds %v", pixelbuffer.ErrImageAccessFailed, src)
	}
	if pool == nil {
		return nil, fmt.Errorf("%w: no pool", pixelbuffer.ErrDrawContextFailed)
	}
	if pool.Width() != width || pool.Height() != height {
		return nil, fmt.Errorf("%w: pool is %dx%d, frame is %dx%d",
			pixelbuffer.ErrDrawContextFailed, pool.Width(), pool.Height(), width, height)
	}

	buf, err := pool.Get()
	if err != nil {
		if !errors.Is(err, pixelbuffer.ErrBufferAllocationFailed) {
			err = fmt.Errorf("%w: %w", pixelbuffer.ErrBufferAllocationFailed, err)
		}
		return nil, err
	}

	dst := buf.Bounds()
	switch {
	case src.Dx() == width && src.Dy() == height:
		draw.Draw(buf.RGBA, dst, img, src.Min, draw.Src)
	case c.fit == FitContain:
		draw.Draw(buf.RGBA, dst, c.background, image.Point{}, draw.Src)
		c.scaler.Scale(buf.RGBA, containRect(src, dst), img, src, draw.Over, nil)
	default:
		c.scaler.Scale(buf.RGBA, dst, img, src, draw.Src, nil)
	}
	return buf, nil
}

// containRect returns the largest rectangle with src's aspect ratio centered in dst.
func containRect(src, dst image.Rectangle) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	dw, dh := dst.Dx(), dst.Dy()

	w, h := dw, sh*dw/sw
	if h > dh {
		w, h = sw*dh/sh, dh
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	x := dst.Min.X + (dw-w)/2
	y := dst.Min.Y + (dh-h)/2
	return image.Rect(x, y, x+w, y+h)
}

var _ ports.PixelConverter = (*Converter)(nil)
