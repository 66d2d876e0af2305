package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/user/framerecorder/pkg/recorder"
)

func intPtr(v int) *int { return &v }

func mustSize(t *testing.T, s string) recorder.FrameSize {
	t.Helper()
	size, err := recorder.ParseFrameSize(s)
	if err != nil {
		t.Fatalf("ParseFrameSize(%q) failed: %v", s, err)
	}
	return size
}

func TestBuildConfig_Defaults(t *testing.T) {
	cmd := &RecordCmd{Source: "pattern", Output: "out.mp4"}

	cfg, err := cmd.buildConfig()
	if err != nil {
		t.Fatalf("buildConfig failed: %v", err)
	}
	if cfg.FPS != 60 || cfg.Codec != "h264" || cfg.QueueDepth != 4 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestBuildConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "framerec.yaml")
	if err := os.WriteFile(path, []byte("fps: 24\ncodec: hevc\nsize: 1080p\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := &RecordCmd{
		Source:  "pattern",
		Output:  "out.mp4",
		Config:  path,
		FPS:     intPtr(30),
		Quality: "high",
	}
	cfg, err := cmd.buildConfig()
	if err != nil {
		t.Fatalf("buildConfig failed: %v", err)
	}
	if cfg.FPS != 30 {
		t.Errorf("expected flag fps 30, got %d", cfg.FPS)
	}
	if cfg.Codec != "hevc" || cfg.Size != "1080p" {
		t.Errorf("expected file values to be kept, got codec=%s size=%s", cfg.Codec, cfg.Size)
	}
	if cfg.Quality != "high" {
		t.Errorf("expected quality high, got %s", cfg.Quality)
	}
}

func TestBuildConfig_Invalid(t *testing.T) {
	cmd := &RecordCmd{Source: "pattern", Output: "out.mp4", FPS: intPtr(1000)}
	if _, err := cmd.buildConfig(); err == nil {
		t.Error("expected error for fps out of range")
	}
}

func TestFrameProvider_HTMLNeedsOneInput(t *testing.T) {
	cmd := &RecordCmd{Source: "html", Output: "out.mp4"}
	cfg, _ := cmd.buildConfig()

	if _, _, err := cmd.frameProvider(t.Context(), cfg, mustSize(t, cfg.Size), nil, nil, nil); err == nil {
		t.Error("expected error without an input")
	}
}

func TestFrameProvider_ImagesNeedInputs(t *testing.T) {
	cmd := &RecordCmd{Source: "images", Output: "out.mp4", Inputs: []string{filepath.Join(t.TempDir(), "*.png")}}
	cfg, _ := cmd.buildConfig()

	if _, _, err := cmd.frameProvider(t.Context(), cfg, mustSize(t, cfg.Size), nil, nil, nil); err == nil {
		t.Error("expected error when no images match")
	}
}
