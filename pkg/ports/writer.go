package ports

import (
	"context"
	"fmt"

	"github.com/user/framerecorder/pkg/pixelbuffer"
)

// Codec identifies the video codec written to the output file.
type Codec string

const (
	// CodecH264 is H.264/AVC.
	CodecH264 Codec = "h264"
	// CodecHEVC is H.265/HEVC.
	CodecHEVC Codec = "hevc"
	// CodecMJPEG is Motion-JPEG.
	CodecMJPEG Codec = "mjpeg"
)

// ParseCodec parses a codec name. Unknown names return an error.
func ParseCodec(s string) (Codec, error) {
	switch s {
	case "h264", "avc":
		return CodecH264, nil
	case "hevc", "h265":
		return CodecHEVC, nil
	case "mjpeg":
		return CodecMJPEG, nil
	default:
		return "", fmt.Errorf("unknown codec %q", s)
	}
}

// MediaTime is a time value expressed in ticks of a fixed timescale.
type MediaTime struct {
	Value     int64
	Timescale int32
}

// Seconds returns the time in seconds.
func (t MediaTime) Seconds() float64 {
	if t.Timescale == 0 {
		return 0
	}
	return float64(t.Value) / float64(t.Timescale)
}

// VideoSettings configures a video writer.
type VideoSettings struct {
	Codec     Codec
	Width     int
	Height    int
	FPS       int
	Timescale int32 // Presentation timestamp ticks per second
	Quality   int   // CRF: 0-63 (lower is higher quality), 0 uses the backend default
}

// VideoWriterFactory opens video writers.
type VideoWriterFactory interface {
	// Open creates a writer for the file at path. The file is created by the
	// writer; callers prepare the destination beforehand.
	Open(path string, settings VideoSettings) (VideoWriter, error)
}

// VideoWriter is a push-based encoder sink that applies backpressure by
// signalling readiness instead of blocking on writes.
//
// Except for Ready, a writer is driven from a single goroutine.
type VideoWriter interface {
	// StartSession starts the output timeline at time zero.
	StartSession() error

	// Ready delivers a signal whenever the writer may accept more data.
	// Signals are coalesced; receivers must re-check IsReadyForMoreData.
	Ready() <-chan struct{}

	// IsReadyForMoreData reports whether Append would be accepted now.
	IsReadyForMoreData() bool

	// PixelBufferPool returns the pool buffers passed to Append must come from.
	PixelBufferPool() *pixelbuffer.Pool

	// Append queues one frame. On success the writer takes ownership of buf
	// and releases it to the pool once encoded.
	Append(buf *pixelbuffer.Buffer, pts MediaTime) error

	// MarkAsFinished signals that no more frames will be appended.
	MarkAsFinished()

	// FinishWriting waits for queued frames and finalizes the output file.
	FinishWriting(ctx context.Context) error

	// CancelWriting discards queued frames and stops the encoder.
	CancelWriting()
}
