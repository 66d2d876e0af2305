package ggrenderer

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/user/framerecorder/pkg/ports"
)

func TestRenderer_CreateCanvas(t *testing.T) {
	r := New()

	canvas := r.CreateCanvas(100, 60, color.White)
	img := canvas.ToImage()
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 60 {
		t.Errorf("expected 100x60, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}

	r0, g0, b0, _ := img.At(50, 30).RGBA()
	if r0>>8 != 255 || g0>>8 != 255 || b0>>8 != 255 {
		t.Errorf("expected white background, got %v", img.At(50, 30))
	}
}

func TestCanvas_DrawRect(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(20, 20, color.White)
	canvas.DrawRect(0, 0, 10, 20, color.RGBA{R: 255, A: 255})

	img := canvas.ToImage()
	if cr, cg, _, _ := img.At(5, 10).RGBA(); cr>>8 != 255 || cg>>8 != 0 {
		t.Errorf("expected red inside the rectangle, got %v", img.At(5, 10))
	}
	if _, cg, _, _ := img.At(15, 10).RGBA(); cg>>8 != 255 {
		t.Errorf("expected white outside the rectangle, got %v", img.At(15, 10))
	}
}

func TestCanvas_DrawRoundedRect(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(40, 40, color.White)
	canvas.DrawRoundedRect(0, 0, 40, 40, 12, color.RGBA{B: 255, A: 255})

	img := canvas.ToImage()
	if _, _, cb, _ := img.At(20, 20).RGBA(); cb>>8 != 255 {
		t.Errorf("expected blue inside the plate, got %v", img.At(20, 20))
	}
	if cr, _, _, _ := img.At(0, 0).RGBA(); cr>>8 != 255 {
		t.Errorf("expected the corner to stay white, got %v", img.At(0, 0))
	}
}

func TestCanvas_DrawTextRightAligned(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(200, 50, color.White)
	canvas.DrawText("30 fps", 190, 25, ports.TextStyle{
		FontSize: 24,
		Color:    color.Black,
		Align:    ports.AlignRight,
	})

	img := canvas.ToImage()
	left, right := 0, 0
	for y := 0; y < 50; y++ {
		for x := 0; x < 200; x++ {
			if cr, _, _, _ := img.At(x, y).RGBA(); cr>>8 < 128 {
				if x < 100 {
					left++
				} else {
					right++
				}
			}
		}
	}
	if right == 0 || left != 0 {
		t.Errorf("expected text only right of center, got left=%d right=%d", left, right)
	}
}

func TestCanvas_DrawTextWithBuiltInFont(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(200, 50, color.White)
	canvas.DrawText("Frame 42", 100, 25, ports.TextStyle{
		FontSize: 24,
		Color:    color.Black,
		Align:    ports.AlignCenter,
	})

	img := canvas.ToImage()
	dark := 0
	for y := 0; y < 50; y++ {
		for x := 0; x < 200; x++ {
			if cr, _, _, _ := img.At(x, y).RGBA(); cr>>8 < 128 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("expected text pixels to be drawn")
	}

	// Missing font files fall back to the built-in face
	canvas.DrawText("fallback", 10, 10, ports.TextStyle{FontPath: "/nonexistent.ttf"})
}

func TestRenderer_EncodeDecode(t *testing.T) {
	r := New()

	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
		img.Pix[i+3] = 255
	}

	for _, format := range []ports.ImageFormat{ports.FormatJPEG, ports.FormatPNG} {
		data, err := r.EncodeImage(img, format, 80)
		if err != nil {
			t.Fatalf("EncodeImage(%d) failed: %v", format, err)
		}

		decoded, err := r.DecodeImage(data, format)
		if err != nil {
			t.Fatalf("DecodeImage(%d) failed: %v", format, err)
		}
		if decoded.Bounds().Dx() != 16 || decoded.Bounds().Dy() != 8 {
			t.Errorf("format %d: expected 16x8, got %v", format, decoded.Bounds())
		}

		auto, err := r.DecodeImage(data, ports.FormatAuto)
		if err != nil {
			t.Fatalf("DecodeImage(auto) failed: %v", err)
		}
		if auto.Bounds() != decoded.Bounds() {
			t.Errorf("format %d: auto-detected bounds %v differ from %v", format, auto.Bounds(), decoded.Bounds())
		}
	}

	if _, err := r.EncodeImage(img, ports.FormatAuto, 0); err == nil {
		t.Error("expected error encoding with FormatAuto")
	}
}

func TestRenderer_DecodeBMP(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 5))); err != nil {
		t.Fatal(err)
	}

	img, err := New().DecodeImage(buf.Bytes(), ports.FormatAuto)
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 5 {
		t.Errorf("expected 3x5, got %v", img.Bounds())
	}
}

func TestRenderer_DecodeGarbage(t *testing.T) {
	if _, err := New().DecodeImage([]byte("not an image"), ports.FormatAuto); err == nil {
		t.Error("expected error for invalid data")
	}
}
