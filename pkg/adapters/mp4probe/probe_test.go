package mp4probe

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Eyevinn/mp4ff/mp4"
)

// buildFragmented writes a fragmented MP4 with one avc1 track of n samples.
func buildFragmented(t *testing.T, width, height uint16, n int) []byte {
	t.Helper()

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(600, "video", "und")
	trak := init.Moov.Trak
	trak.Mdia.Minf.Stbl.Stsd.AddChild(mp4.CreateVisualSampleEntryBox("avc1", width, height, nil))
	trak.Tkhd.Width = mp4.Fixed32(uint32(width) << 16)
	trak.Tkhd.Height = mp4.Fixed32(uint32(height) << 16)

	frag, err := mp4.CreateFragment(1, trak.Tkhd.TrackID)
	if err != nil {
		t.Fatalf("CreateFragment failed: %v", err)
	}
	for i := 0; i < n; i++ {
		data := []byte{0, 0, 0, 1, 0x65}
		frag.AddFullSample(mp4.FullSample{
			Sample: mp4.Sample{
				Flags: mp4.SyncSampleFlags,
				Size:  uint32(len(data)),
				Dur:   10,
			},
			DecodeTime: uint64(i * 10),
			Data:       data,
		})
	}

	var buf bytes.Buffer
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "avc1", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		t.Fatalf("encode ftyp: %v", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		t.Fatalf("encode moov: %v", err)
	}
	if err := frag.Encode(&buf); err != nil {
		t.Fatalf("encode fragment: %v", err)
	}
	return buf.Bytes()
}

func TestProbe_Fragmented(t *testing.T) {
	data := buildFragmented(t, 64, 36, 5)

	info, err := Probe(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if info.Codec != "h264" {
		t.Errorf("expected codec h264, got %s", info.Codec)
	}
	if info.Width != 64 || info.Height != 36 {
		t.Errorf("expected 64x36, got %dx%d", info.Width, info.Height)
	}
	if info.Timescale != 600 {
		t.Errorf("expected timescale 600, got %d", info.Timescale)
	}
	if !info.Fragmented {
		t.Error("expected fragmented file")
	}
	if info.Samples != 5 {
		t.Errorf("expected 5 samples, got %d", info.Samples)
	}
}

func TestProbeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, buildFragmented(t, 32, 32, 2), 0644); err != nil {
		t.Fatal(err)
	}

	info, err := ProbeFile(path)
	if err != nil {
		t.Fatalf("ProbeFile failed: %v", err)
	}
	if info.Samples != 2 {
		t.Errorf("expected 2 samples, got %d", info.Samples)
	}

	if _, err := ProbeFile(filepath.Join(t.TempDir(), "missing.mp4")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestProbe_NoVideoTrack(t *testing.T) {
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(48000, "audio", "en")

	var buf bytes.Buffer
	if err := mp4.NewFtyp("isom", 0x200, []string{"isom"}).Encode(&buf); err != nil {
		t.Fatal(err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		t.Fatal(err)
	}

	if _, err := Probe(bytes.NewReader(buf.Bytes())); !errors.Is(err, ErrNoVideoTrack) {
		t.Errorf("expected ErrNoVideoTrack, got %v", err)
	}
}

func TestCodecName(t *testing.T) {
	tests := map[string]string{
		"avc1": "h264",
		"avc3": "h264",
		"hvc1": "hevc",
		"hev1": "hevc",
		"av01": "av1",
		"mp4v": "mp4v",
	}
	for entry, want := range tests {
		if got := codecName(entry); got != want {
			t.Errorf("codecName(%q) = %q, want %q", entry, got, want)
		}
	}
}
