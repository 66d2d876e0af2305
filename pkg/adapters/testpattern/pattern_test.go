package testpattern

import (
	"testing"

	"github.com/user/framerecorder/pkg/adapters/ggrenderer"
	"github.com/user/framerecorder/pkg/mocks"
	"github.com/user/framerecorder/pkg/ports"
)

func TestProvider_EndsAfterFrames(t *testing.T) {
	p := New(&mocks.Renderer{}, Options{Frames: 3, Width: 64, Height: 36})

	for frame := 0; frame < 3; frame++ {
		img := p.RequestFrame(frame, float64(frame)/30, 30)
		if img == nil {
			t.Fatalf("expected frame %d", frame)
		}
		if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 36 {
			t.Errorf("frame %d: expected 64x36, got %v", frame, img.Bounds())
		}
	}
	if img := p.RequestFrame(3, 0.1, 30); img != nil {
		t.Error("expected nil after the last frame")
	}
}

func TestProvider_DrawsCounterAndTime(t *testing.T) {
	renderer := &mocks.Renderer{}
	p := New(renderer, Options{Frames: 10, Label: "demo"})

	p.RequestFrame(7, 7.0/30, 30)

	canvas := renderer.Canvases[0]
	want := []string{"demo", "Frame 7", "0.233s @ 30 fps"}
	if len(canvas.Texts) != len(want) {
		t.Fatalf("expected texts %v, got %v", want, canvas.Texts)
	}
	for i := range want {
		if canvas.Texts[i] != want[i] {
			t.Errorf("text %d: expected %q, got %q", i, want[i], canvas.Texts[i])
		}
	}
	if canvas.Lines != 1 {
		t.Errorf("expected a progress line, got %d lines", canvas.Lines)
	}
	if canvas.RoundedRects != 1 {
		t.Errorf("expected a plate behind the label, got %d rounded rects", canvas.RoundedRects)
	}
	if canvas.Aligns[2] != ports.AlignRight {
		t.Errorf("expected the time to be right aligned, got %v", canvas.Aligns[2])
	}
}

func TestProvider_NoPlateWithoutLabel(t *testing.T) {
	renderer := &mocks.Renderer{}
	p := New(renderer, Options{Frames: 2})

	p.RequestFrame(0, 0, 30)

	if n := renderer.Canvases[0].RoundedRects; n != 0 {
		t.Errorf("expected no plate without a label, got %d", n)
	}
}

func TestProvider_BarMoves(t *testing.T) {
	renderer := &mocks.Renderer{}
	p := New(renderer, Options{Frames: 60, Width: 160, Height: 16})

	first := p.RequestFrame(0, 0, 30)
	later := p.RequestFrame(15, 0.5, 30)

	// At t=0 the bar sits at the left edge, half a second later it has moved
	if r, _, _, _ := first.At(2, 8).RGBA(); r>>8 != 0xE0 {
		t.Errorf("expected bar at the left edge at t=0, got %v", first.At(2, 8))
	}
	if r, _, _, _ := later.At(2, 8).RGBA(); r>>8 == 0xE0 {
		t.Errorf("expected bar to have moved at t=0.5, got %v", later.At(2, 8))
	}
}

func TestProvider_WithGGRenderer(t *testing.T) {
	p := New(ggrenderer.New(), Options{Frames: 1, Width: 128, Height: 72, Label: "pattern"})
	if img := p.RequestFrame(0, 0, 60); img == nil || img.Bounds().Dx() != 128 {
		t.Errorf("expected a 128 pixel wide frame, got %v", img)
	}
}
