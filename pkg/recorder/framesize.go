package recorder

import (
	"fmt"
	"strconv"
	"strings"
)

// FrameSize is the pixel resolution of recorded frames.
type FrameSize struct {
	width  int
	height int
}

// Preset frame sizes.
var (
	FrameSize720p  = FrameSize{width: 1280, height: 720}
	FrameSize1080p = FrameSize{width: 1920, height: 1080}
	FrameSize4K    = FrameSize{width: 3840, height: 2160}
)

var presetNames = map[string]FrameSize{
	"720p":  FrameSize720p,
	"1080p": FrameSize1080p,
	"4k":    FrameSize4K,
}

// NewFrameSize returns a frame size of width x height pixels.
func NewFrameSize(width, height int) FrameSize {
	return FrameSize{width: width, height: height}
}

// ParseFrameSize parses a preset name ("720p", "1080p", "4k") or "WIDTHxHEIGHT".
func ParseFrameSize(s string) (FrameSize, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if size, ok := presetNames[s]; ok {
		return size, nil
	}

	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return FrameSize{}, fmt.Errorf("invalid frame size %q", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return FrameSize{}, fmt.Errorf("invalid frame width %q: %w", w, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return FrameSize{}, fmt.Errorf("invalid frame height %q: %w", h, err)
	}

	size := NewFrameSize(width, height)
	if !size.Valid() {
		return FrameSize{}, fmt.Errorf("invalid frame size %q", s)
	}
	return size, nil
}

// Width returns the width in pixels.
func (s FrameSize) Width() int {
	return s.width
}

// Height returns the height in pixels.
func (s FrameSize) Height() int {
	return s.height
}

// Valid reports whether both dimensions are positive.
func (s FrameSize) Valid() bool {
	return s.width > 0 && s.height > 0
}

// String returns the size as "WIDTHxHEIGHT".
func (s FrameSize) String() string {
	return fmt.Sprintf("%dx%d", s.width, s.height)
}
