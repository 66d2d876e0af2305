package ffmpegwriter

import (
	"fmt"
	"strconv"

	"github.com/user/framerecorder/pkg/ports"
)

// Default CRF values when VideoSettings.Quality is zero.
const (
	defaultCRFH264 = 23
	defaultCRFHEVC = 28
)

// evenPadFilter pads odd frame sizes with one black row or column.
const evenPadFilter = "pad=ceil(iw/2)*2:ceil(ih/2)*2"

// BuildArgs returns the ffmpeg arguments that read raw RGBA frames from stdin
// and write an MP4 to dest.
func BuildArgs(dest string, s ports.VideoSettings) ([]string, error) {
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSettings, s.Width, s.Height)
	}
	if s.FPS <= 0 || s.Timescale <= 0 || int(s.Timescale) < s.FPS {
		return nil, fmt.Errorf("%w: %d fps at timescale %d", ErrInvalidSettings, s.FPS, s.Timescale)
	}

	var codecArgs []string
	var crf int
	switch s.Codec {
	case ports.CodecH264:
		codecArgs = []string{"-c:v", "libx264", "-preset", "fast"}
		crf = defaultCRFH264
	case ports.CodecHEVC:
		codecArgs = []string{"-c:v", "libx265", "-preset", "fast", "-tag:v", "hvc1"}
		crf = defaultCRFHEVC
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, s.Codec)
	}
	if s.Quality > 0 {
		crf = crfFromQuality(s.Quality)
	}

	ticks := int(s.Timescale) / s.FPS
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", s.Width, s.Height),
		"-framerate", fmt.Sprintf("%d/%d", s.Timescale, ticks),
		"-i", "pipe:0",
	}
	args = append(args, codecArgs...)
	if s.Width%2 != 0 || s.Height%2 != 0 {
		// yuv420p needs even dimensions
		args = append(args, "-vf", evenPadFilter)
	}
	args = append(args,
		"-pix_fmt", "yuv420p",
		"-crf", strconv.Itoa(crf),
		"-movflags", "+faststart",
		"-f", "mp4",
		dest,
	)
	return args, nil
}

// crfFromQuality maps the 0-63 quality scale onto the encoder CRF range 0-51.
func crfFromQuality(q int) int {
	crf := q * 51 / 63
	if crf > 51 {
		crf = 51
	}
	return crf
}
