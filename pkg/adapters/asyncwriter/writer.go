// Package asyncwriter adapts a synchronous frame encoder into a
// ports.VideoWriter that signals readiness as its queue drains.
package asyncwriter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/user/framerecorder/pkg/pixelbuffer"
	"github.com/user/framerecorder/pkg/ports"
)

// DefaultDepth is the queue depth used when Options.Depth is zero.
const DefaultDepth = 4

var (
	// ErrNotStarted is returned when frames are appended before StartSession.
	ErrNotStarted = errors.New("asyncwriter: session not started")

	// ErrAlreadyStarted is returned when StartSession is called twice.
	ErrAlreadyStarted = errors.New("asyncwriter: session already started")

	// ErrFinished is returned when frames are appended after MarkAsFinished.
	ErrFinished = errors.New("asyncwriter: input already finished")

	// ErrNotReady is returned when frames are appended while the queue is full.
	ErrNotReady = errors.New("asyncwriter: not ready for more data")

	// ErrOutOfOrder is returned when a timestamp does not increase.
	ErrOutOfOrder = errors.New("asyncwriter: presentation time out of order")

	// ErrSizeMismatch is returned when a buffer does not match the output size.
	ErrSizeMismatch = errors.New("asyncwriter: buffer size mismatch")

	// ErrEncodeFailed wraps the first error returned by the encoder.
	ErrEncodeFailed = errors.New("asyncwriter: encoding failed")

	// ErrCancelled is returned by FinishWriting after CancelWriting.
	ErrCancelled = errors.New("asyncwriter: writing cancelled")
)

// FrameEncoder writes frames synchronously. EncodeFrame and Close are only
// called from the writer's worker goroutine; Abort may be called from any
// goroutine, also while EncodeFrame is running, and must make it return.
type FrameEncoder interface {
	EncodeFrame(buf *pixelbuffer.Buffer, pts ports.MediaTime) error
	Close() error
	Abort()
}

// Options configures a Writer.
type Options struct {
	Width  int
	Height int
	Depth  int // Queued frames before the writer reports not ready (default: 4)
	Logger ports.Logger
}

type item struct {
	buf *pixelbuffer.Buffer
	pts ports.MediaTime
}

// Writer implements ports.VideoWriter on top of a FrameEncoder.
type Writer struct {
	encoder FrameEncoder
	pool    *pixelbuffer.Pool
	depth   int
	logger  ports.Logger

	ready chan struct{}
	queue chan item
	done  chan struct{}

	mu       sync.Mutex
	started  bool
	finished bool
	aborted  bool
	closed   bool
	queued   int
	encoded  int
	hasLast  bool
	lastPTS  ports.MediaTime
	err      error
}

// New creates a Writer that feeds encoder.
func New(encoder FrameEncoder, opts Options) (*Writer, error) {
	if opts.Depth <= 0 {
		opts.Depth = DefaultDepth
	}
	// Queued frames plus one being encoded and one being converted.
	pool, err := pixelbuffer.NewPool(opts.Width, opts.Height, opts.Depth+2)
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		return nil, fmt.Errorf("asyncwriter: logger is required")
	}

	return &Writer{
		encoder: encoder,
		pool:    pool,
		depth:   opts.Depth,
		logger:  opts.Logger,
		ready:   make(chan struct{}, 1),
		queue:   make(chan item, opts.Depth),
		done:    make(chan struct{}),
	}, nil
}

// StartSession starts the worker and signals the first readiness.
func (w *Writer) StartSession() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}
	if w.finished {
		return ErrFinished
	}
	w.started = true
	go w.run()
	w.signal()
	return nil
}

// Ready returns the readiness channel. Signals are coalesced.
func (w *Writer) Ready() <-chan struct{} {
	return w.ready
}

// IsReadyForMoreData reports whether Append will accept a frame. After an
// encoder failure it reports true so the next Append surfaces the error.
func (w *Writer) IsReadyForMoreData() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started || w.finished {
		return false
	}
	if w.err != nil {
		return true
	}
	return w.queued < w.depth
}

// PixelBufferPool returns the pool frames must be allocated from.
func (w *Writer) PixelBufferPool() *pixelbuffer.Pool {
	return w.pool
}

// Append queues buf for encoding. The writer owns buf only when Append
// returns nil.
func (w *Writer) Append(buf *pixelbuffer.Buffer, pts ports.MediaTime) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case !w.started:
		return ErrNotStarted
	case w.finished:
		return ErrFinished
	case w.err != nil:
		return w.err
	case w.queued >= w.depth:
		return ErrNotReady
	case buf.Width() != w.pool.Width() || buf.Height() != w.pool.Height():
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrSizeMismatch,
			buf.Width(), buf.Height(), w.pool.Width(), w.pool.Height())
	case w.hasLast && !after(pts, w.lastPTS):
		return fmt.Errorf("%w: %d/%d after %d/%d", ErrOutOfOrder,
			pts.Value, pts.Timescale, w.lastPTS.Value, w.lastPTS.Timescale)
	}

	w.hasLast = true
	w.lastPTS = pts
	w.queued++
	// Never blocks: the channel holds depth items and queued < depth.
	w.queue <- item{buf: buf, pts: pts}
	return nil
}

// MarkAsFinished stops accepting input. Queued frames are still encoded.
func (w *Writer) MarkAsFinished() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.markFinishedLocked()
}

// FinishWriting waits for queued frames to be encoded and closes the
// encoder. If ctx ends first the writer is cancelled.
func (w *Writer) FinishWriting(ctx context.Context) error {
	w.mu.Lock()
	w.markFinishedLocked()
	started := w.started
	w.mu.Unlock()

	if !started {
		return ErrNotStarted
	}

	select {
	case <-w.done:
	case <-ctx.Done():
		w.CancelWriting()
		return ctx.Err()
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.aborted {
		return ErrCancelled
	}
	if w.closed {
		return w.err
	}
	w.closed = true
	defer w.pool.Close()

	if w.err != nil {
		w.encoder.Abort()
		return w.err
	}
	if err := w.encoder.Close(); err != nil {
		w.err = fmt.Errorf("%w: %w", ErrEncodeFailed, err)
		return w.err
	}
	w.logger.Debug("Encoded %d frames", w.encoded)
	return nil
}

// CancelWriting discards queued frames and aborts the encoder.
func (w *Writer) CancelWriting() {
	w.mu.Lock()
	w.markFinishedLocked()
	if w.closed || w.aborted {
		w.mu.Unlock()
		return
	}
	w.aborted = true
	started := w.started
	w.mu.Unlock()

	w.encoder.Abort()
	if started {
		<-w.done
	}

	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.pool.Close()
	w.logger.Debug("Writing cancelled after %d frames", w.encoded)
}

// Encoded returns the number of frames the encoder has accepted.
func (w *Writer) Encoded() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.encoded
}

func (w *Writer) run() {
	defer close(w.done)

	for it := range w.queue {
		w.mu.Lock()
		skip := w.aborted || w.err != nil
		w.mu.Unlock()

		var err error
		if !skip {
			err = w.encoder.EncodeFrame(it.buf, it.pts)
		}
		it.buf.Release()

		w.mu.Lock()
		w.queued--
		switch {
		case skip || w.aborted:
		case err != nil:
			w.err = fmt.Errorf("%w: %w", ErrEncodeFailed, err)
			w.logger.Warn("Encoder failed at %d/%d: %s", it.pts.Value, it.pts.Timescale, err)
		default:
			w.encoded++
		}
		w.mu.Unlock()

		w.signal()
	}
}

func (w *Writer) markFinishedLocked() {
	if w.finished {
		return
	}
	w.finished = true
	if w.started {
		close(w.queue)
	}
}

func (w *Writer) signal() {
	select {
	case w.ready <- struct{}{}:
	default:
	}
}

// after reports whether a is strictly later than b.
func after(a, b ports.MediaTime) bool {
	return a.Value*int64(b.Timescale) > b.Value*int64(a.Timescale)
}

var _ ports.VideoWriter = (*Writer)(nil)
