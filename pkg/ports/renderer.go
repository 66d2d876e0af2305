package ports

import (
	"image"
	"image/color"
)

// Renderer abstracts 2D drawing and image codecs.
type Renderer interface {
	// CreateCanvas creates a new drawing canvas filled with bg.
	CreateCanvas(width, height int, bg color.Color) Canvas

	// DecodeImage decodes image data. FormatAuto detects the format from the data.
	DecodeImage(data []byte, format ImageFormat) (image.Image, error)

	// EncodeImage encodes an image. quality applies to JPEG only.
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)
}

// Canvas provides the drawing operations used by generated frames.
type Canvas interface {
	DrawRect(x, y, w, h int, c color.Color)
	DrawRoundedRect(x, y, w, h, radius int, c color.Color)
	DrawText(text string, x, y int, style TextStyle)
	DrawLine(x1, y1, x2, y2 int, c color.Color, width float64)

	// ToImage returns the canvas as an image.Image.
	ToImage() image.Image
}

// TextStyle defines text rendering properties.
// An empty FontPath uses the built-in Go Regular face.
type TextStyle struct {
	FontSize float64
	FontPath string
	Color    color.Color
	Align    TextAlign
}

// TextAlign specifies text alignment.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// ImageFormat specifies an image encoding.
type ImageFormat int

const (
	FormatJPEG ImageFormat = iota
	FormatPNG
	FormatAuto
)
