package asyncwriter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/user/framerecorder/pkg/adapters/logger"
	"github.com/user/framerecorder/pkg/pixelbuffer"
	"github.com/user/framerecorder/pkg/ports"
)

var errBoom = errors.New("boom")

type fakeEncoder struct {
	gate    chan struct{} // when set, each frame waits for a receive
	failAt  int
	aborted chan struct{}
	once    sync.Once

	mu         sync.Mutex
	frames     []ports.MediaTime
	closeCalls int
	abortCalls int
}

func newFakeEncoder() *fakeEncoder {
	return &fakeEncoder{failAt: -1, aborted: make(chan struct{})}
}

func (e *fakeEncoder) EncodeFrame(buf *pixelbuffer.Buffer, pts ports.MediaTime) error {
	if e.gate != nil {
		select {
		case <-e.gate:
		case <-e.aborted:
			return errors.New("aborted")
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.frames) == e.failAt {
		return errBoom
	}
	e.frames = append(e.frames, pts)
	return nil
}

func (e *fakeEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeCalls++
	return nil
}

func (e *fakeEncoder) Abort() {
	e.mu.Lock()
	e.abortCalls++
	e.mu.Unlock()
	e.once.Do(func() { close(e.aborted) })
}

func newTestWriter(t *testing.T, enc *fakeEncoder, depth int) *Writer {
	t.Helper()
	w, err := New(enc, Options{Width: 4, Height: 2, Depth: depth, Logger: logger.NewNoop()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return w
}

func pts(v int64) ports.MediaTime {
	return ports.MediaTime{Value: v, Timescale: 600}
}

func waitReady(t *testing.T, w *Writer) {
	t.Helper()
	select {
	case <-w.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for readiness")
	}
}

func getBuffer(t *testing.T, w *Writer) *pixelbuffer.Buffer {
	t.Helper()
	buf, err := w.PixelBufferPool().Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	return buf
}

func TestWriter_Backpressure(t *testing.T) {
	enc := newFakeEncoder()
	enc.gate = make(chan struct{})
	w := newTestWriter(t, enc, 2)

	if w.IsReadyForMoreData() {
		t.Error("expected not ready before StartSession")
	}
	if err := w.StartSession(); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	waitReady(t, w)

	for i := int64(0); i < 2; i++ {
		if !w.IsReadyForMoreData() {
			t.Fatalf("expected ready before frame %d", i)
		}
		if err := w.Append(getBuffer(t, w), pts(i*10)); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	if w.IsReadyForMoreData() {
		t.Error("expected not ready with a full queue")
	}
	third := getBuffer(t, w)
	if err := w.Append(third, pts(20)); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}

	// Let one frame through; the writer signals and accepts again
	enc.gate <- struct{}{}
	waitReady(t, w)
	if !w.IsReadyForMoreData() {
		t.Fatal("expected ready after a frame was encoded")
	}
	if err := w.Append(third, pts(20)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	close(enc.gate)
	w.MarkAsFinished()
	if err := w.FinishWriting(context.Background()); err != nil {
		t.Fatalf("FinishWriting failed: %v", err)
	}

	if len(enc.frames) != 3 || enc.frames[2].Value != 20 {
		t.Errorf("unexpected encoded frames %v", enc.frames)
	}
	if enc.closeCalls != 1 || enc.abortCalls != 0 {
		t.Errorf("expected close=1 abort=0, got close=%d abort=%d", enc.closeCalls, enc.abortCalls)
	}
	if w.Encoded() != 3 {
		t.Errorf("expected 3 encoded frames, got %d", w.Encoded())
	}
	if n := w.PixelBufferPool().Outstanding(); n != 0 {
		t.Errorf("expected all buffers released, got %d", n)
	}
}

func TestWriter_AppendValidation(t *testing.T) {
	w := newTestWriter(t, newFakeEncoder(), 4)
	buf := getBuffer(t, w)

	if err := w.Append(buf, pts(0)); !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
	if err := w.StartSession(); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if err := w.StartSession(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}

	other, _ := pixelbuffer.NewPool(8, 8, 0)
	wrong, _ := other.Get()
	if err := w.Append(wrong, pts(0)); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("expected ErrSizeMismatch, got %v", err)
	}

	if err := w.Append(buf, pts(10)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	// 20/1200 is the same instant as 10/600
	dup := getBuffer(t, w)
	if err := w.Append(dup, ports.MediaTime{Value: 20, Timescale: 1200}); !errors.Is(err, ErrOutOfOrder) {
		t.Errorf("expected ErrOutOfOrder, got %v", err)
	}

	w.MarkAsFinished()
	if err := w.Append(dup, pts(20)); !errors.Is(err, ErrFinished) {
		t.Errorf("expected ErrFinished, got %v", err)
	}
	dup.Release()

	if err := w.FinishWriting(context.Background()); err != nil {
		t.Fatalf("FinishWriting failed: %v", err)
	}
}

func TestWriter_EncoderFailureIsSticky(t *testing.T) {
	enc := newFakeEncoder()
	enc.failAt = 0
	w := newTestWriter(t, enc, 4)

	if err := w.StartSession(); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if err := w.Append(getBuffer(t, w), pts(0)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	var appendErr error
	deadline := time.Now().Add(5 * time.Second)
	for v := int64(10); time.Now().Before(deadline); v += 10 {
		waitReady(t, w)
		if !w.IsReadyForMoreData() {
			continue
		}
		buf := getBuffer(t, w)
		if appendErr = w.Append(buf, pts(v)); appendErr != nil {
			buf.Release()
			break
		}
	}
	if !errors.Is(appendErr, ErrEncodeFailed) || !errors.Is(appendErr, errBoom) {
		t.Fatalf("expected sticky encoder error, got %v", appendErr)
	}

	err := w.FinishWriting(context.Background())
	if !errors.Is(err, errBoom) {
		t.Errorf("expected FinishWriting to report the encoder error, got %v", err)
	}
	if enc.abortCalls != 1 || enc.closeCalls != 0 {
		t.Errorf("expected abort=1 close=0, got abort=%d close=%d", enc.abortCalls, enc.closeCalls)
	}
}

func TestWriter_CancelWriting(t *testing.T) {
	enc := newFakeEncoder()
	enc.gate = make(chan struct{})
	w := newTestWriter(t, enc, 4)

	if err := w.StartSession(); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	for i := int64(0); i < 3; i++ {
		if err := w.Append(getBuffer(t, w), pts(i*10)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	w.CancelWriting()
	w.CancelWriting()

	if enc.abortCalls != 1 {
		t.Errorf("expected Abort once, got %d", enc.abortCalls)
	}
	if enc.closeCalls != 0 {
		t.Errorf("expected Close not to be called, got %d", enc.closeCalls)
	}
	if len(enc.frames) != 0 {
		t.Errorf("expected no frames encoded, got %d", len(enc.frames))
	}
	if n := w.PixelBufferPool().Outstanding(); n != 0 {
		t.Errorf("expected all buffers released, got %d", n)
	}
	if err := w.FinishWriting(context.Background()); !errors.Is(err, ErrCancelled) {
		t.Errorf("expected ErrCancelled, got %v", err)
	}
}

func TestWriter_CancelBeforeStart(t *testing.T) {
	enc := newFakeEncoder()
	w := newTestWriter(t, enc, 4)

	w.CancelWriting()
	if enc.abortCalls != 1 {
		t.Errorf("expected Abort once, got %d", enc.abortCalls)
	}
	if err := w.StartSession(); !errors.Is(err, ErrFinished) {
		t.Errorf("expected ErrFinished, got %v", err)
	}
}

func TestWriter_FinishWritingContextCancelled(t *testing.T) {
	enc := newFakeEncoder()
	enc.gate = make(chan struct{})
	w := newTestWriter(t, enc, 4)

	if err := w.StartSession(); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if err := w.Append(getBuffer(t, w), pts(0)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := w.FinishWriting(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if enc.abortCalls != 1 {
		t.Errorf("expected Abort once, got %d", enc.abortCalls)
	}
}

func TestNew_RequiresLogger(t *testing.T) {
	if _, err := New(newFakeEncoder(), Options{Width: 2, Height: 2}); err == nil {
		t.Error("expected error without a logger")
	}
	if _, err := New(newFakeEncoder(), Options{Width: 0, Height: 2, Logger: logger.NewNoop()}); !errors.Is(err, pixelbuffer.ErrBufferAllocationFailed) {
		t.Errorf("expected ErrBufferAllocationFailed for zero width, got %v", err)
	}
}
