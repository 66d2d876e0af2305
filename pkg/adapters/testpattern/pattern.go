// Package testpattern generates synthetic frames for trying out recordings.
package testpattern

import (
	"fmt"
	"image"
	"image/color"

	"github.com/user/framerecorder/pkg/ports"
)

// Options configures a Provider.
type Options struct {
	Frames     int         // Number of frames before the stream ends
	Width      int         // Canvas width (default: 640)
	Height     int         // Canvas height (default: 360)
	Background color.Color // default: dark gray
	Foreground color.Color // default: white
	Label      string      // Optional title drawn on a plate above the frame counter
}

var plateColor = color.RGBA{A: 0x99}

// Provider draws a moving bar, a progress line, the frame number and the
// frame time in the bottom-right corner.
type Provider struct {
	renderer ports.Renderer
	opts     Options
}

// New creates a new Provider.
func New(renderer ports.Renderer, opts Options) *Provider {
	if opts.Width <= 0 {
		opts.Width = 640
	}
	if opts.Height <= 0 {
		opts.Height = 360
	}
	if opts.Background == nil {
		opts.Background = color.RGBA{R: 0x20, G: 0x20, B: 0x28, A: 0xFF}
	}
	if opts.Foreground == nil {
		opts.Foreground = color.White
	}
	return &Provider{renderer: renderer, opts: opts}
}

// RequestFrame draws frame number frame, or returns nil past the last frame.
func (p *Provider) RequestFrame(frame int, at float64, fps int) image.Image {
	if frame < 0 || frame >= p.opts.Frames {
		return nil
	}

	w, h := p.opts.Width, p.opts.Height
	canvas := p.renderer.CreateCanvas(w, h, p.opts.Background)

	// The bar crosses the canvas once per second.
	barWidth := w / 16
	if barWidth < 1 {
		barWidth = 1
	}
	frac := at - float64(int(at))
	canvas.DrawRect(int(frac*float64(w-barWidth)), 0, barWidth, h, barColor(int(at)))

	if p.opts.Frames > 1 {
		progress := w * frame / (p.opts.Frames - 1)
		canvas.DrawLine(0, h-4, progress, h-4, p.opts.Foreground, 4)
	}

	size := float64(h) / 8
	if p.opts.Label != "" {
		plateH := int(size * 0.9)
		canvas.DrawRoundedRect(w/4, h/4-plateH/2, w/2, plateH, plateH/4, plateColor)
		canvas.DrawText(p.opts.Label, w/2, h/4, ports.TextStyle{
			FontSize: size * 0.6,
			Color:    p.opts.Foreground,
			Align:    ports.AlignCenter,
		})
	}
	canvas.DrawText(fmt.Sprintf("Frame %d", frame), w/2, h/2, ports.TextStyle{
		FontSize: size,
		Color:    p.opts.Foreground,
		Align:    ports.AlignCenter,
	})
	canvas.DrawText(fmt.Sprintf("%.3fs @ %d fps", at, fps), w-w/32, h-8-int(size*0.5), ports.TextStyle{
		FontSize: size * 0.5,
		Color:    p.opts.Foreground,
		Align:    ports.AlignRight,
	})

	return canvas.ToImage()
}

var barColors = []color.RGBA{
	{R: 0xE0, G: 0x40, B: 0x40, A: 0xFF},
	{R: 0x40, G: 0xC0, B: 0x40, A: 0xFF},
	{R: 0x40, G: 0x80, B: 0xE0, A: 0xFF},
}

// barColor changes the bar color every second.
func barColor(second int) color.RGBA {
	return barColors[second%len(barColors)]
}

var _ ports.FrameProvider = (*Provider)(nil)
