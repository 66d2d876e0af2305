package ffmpegwriter

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/user/framerecorder/pkg/pixelbuffer"
	"github.com/user/framerecorder/pkg/ports"
)

// process feeds raw frames to a running ffmpeg process. A frame whose
// timestamp skips ahead is written repeatedly to keep the rate constant.
type process struct {
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stderr     lockedBuffer
	frameBytes int
	timescale  int64
	ticks      int64

	next int64 // index of the next frame slot

	aborted  atomic.Bool
	waitOnce sync.Once
	waitErr  error
}

// lockedBuffer collects ffmpeg's stderr, which exec copies from its own
// goroutine while the encoder may read it after a failed write.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func startProcess(ffmpegPath string, args []string, s ports.VideoSettings) (*process, error) {
	p := &process{
		frameBytes: s.Width * s.Height * 4,
		timescale:  int64(s.Timescale),
		ticks:      int64(s.Timescale) / int64(s.FPS),
	}

	p.cmd = exec.Command(ffmpegPath, args...)
	p.cmd.Stderr = &p.stderr

	stdin, err := p.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	p.stdin = stdin

	if err := p.cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	return p, nil
}

func (p *process) EncodeFrame(buf *pixelbuffer.Buffer, pts ports.MediaTime) error {
	if p.aborted.Load() {
		return ErrAborted
	}
	data := buf.Bytes()
	if len(data) != p.frameBytes {
		return fmt.Errorf("frame is %d bytes, want %d", len(data), p.frameBytes)
	}

	slot := pts.Value * p.timescale / (int64(pts.Timescale) * p.ticks)
	if slot < p.next {
		slot = p.next
	}
	for ; p.next <= slot; p.next++ {
		if _, err := p.stdin.Write(data); err != nil {
			if p.aborted.Load() {
				return ErrAborted
			}
			return fmt.Errorf("failed to write frame: %w: %s", err, p.stderr.String())
		}
	}
	return nil
}

func (p *process) Close() error {
	if err := p.stdin.Close(); err != nil {
		return fmt.Errorf("failed to close stdin: %w", err)
	}
	if err := p.wait(); err != nil {
		return fmt.Errorf("ffmpeg encoding failed: %w\nstderr: %s", err, p.stderr.String())
	}
	return nil
}

func (p *process) Abort() {
	if !p.aborted.CompareAndSwap(false, true) {
		return
	}
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	_ = p.wait()
}

func (p *process) wait() error {
	p.waitOnce.Do(func() {
		p.waitErr = p.cmd.Wait()
	})
	return p.waitErr
}
