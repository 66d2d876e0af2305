package mocks

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/user/framerecorder/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	DecodeImageFunc func(data []byte, format ports.ImageFormat) (image.Image, error)
	EncodeImageFunc func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)

	// Canvases created so far, in order.
	Canvases []*Canvas
}

func (m *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	c := &Canvas{img: img}
	m.Canvases = append(m.Canvases, c)
	return c
}

func (m *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	if m.DecodeImageFunc != nil {
		return m.DecodeImageFunc(data, format)
	}
	return image.NewRGBA(image.Rect(0, 0, 16, 16)), nil
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte{0xFF, 0xD8, 0xFF, 0xD9}, nil
}

var _ ports.Renderer = (*Renderer)(nil)

// Canvas is a mock implementation of ports.Canvas. Rectangles are filled so
// tests can sample colors; other operations are only counted.
type Canvas struct {
	img *image.RGBA

	Texts        []string
	Aligns       []ports.TextAlign
	Lines        int
	RoundedRects int
}

func (m *Canvas) DrawRect(x, y, w, h int, c color.Color) {
	draw.Draw(m.img, image.Rect(x, y, x+w, y+h), image.NewUniform(c), image.Point{}, draw.Src)
}

func (m *Canvas) DrawRoundedRect(x, y, w, h, radius int, c color.Color) {
	m.RoundedRects++
	m.DrawRect(x, y, w, h, c)
}

func (m *Canvas) DrawText(text string, x, y int, style ports.TextStyle) {
	m.Texts = append(m.Texts, text)
	m.Aligns = append(m.Aligns, style.Align)
}

func (m *Canvas) DrawLine(x1, y1, x2, y2 int, c color.Color, width float64) {
	m.Lines++
}

func (m *Canvas) ToImage() image.Image {
	return m.img
}

var _ ports.Canvas = (*Canvas)(nil)
