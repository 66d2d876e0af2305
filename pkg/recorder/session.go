package recorder

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/user/framerecorder/pkg/ports"
)

// Timescale is the number of presentation timestamp ticks per second.
const Timescale int32 = 600

type batchStatus int

const (
	batchContinue batchStatus = iota
	batchFinished
)

// session drives a single recording: it pulls frames from a provider whenever
// the video writer signals readiness and pushes them with presentation
// timestamps derived from the frame index. A session is used once.
type session struct {
	path    string
	size    FrameSize
	fps     int
	codec   ports.Codec
	quality int

	ticksPerFrame int64

	fs        ports.FileSystem
	writers   ports.VideoWriterFactory
	converter ports.PixelConverter
	sink      ports.DebugSink
	logger    ports.Logger
	onFrame   func(frame int, at float64)

	used       atomic.Bool
	cancelled  atomic.Bool
	cancelCh   chan struct{}
	cancelOnce sync.Once

	// frame is only touched by the goroutine running record.
	frame int
}

func newSession(path string, opts Options, logger ports.Logger) *session {
	return &session{
		path:          path,
		size:          opts.Size,
		fps:           opts.FPS,
		codec:         opts.Codec,
		quality:       opts.Quality,
		ticksPerFrame: int64(Timescale) / int64(opts.FPS),
		fs:            opts.FileSystem,
		writers:       opts.Writers,
		converter:     opts.Converter,
		sink:          opts.Sink,
		logger:        logger,
		onFrame:       opts.OnFrameRecorded,
		cancelCh:      make(chan struct{}),
	}
}

// cancel requests cooperative cancellation. It may be called from any
// goroutine and never touches the writer.
func (s *session) cancel() {
	s.cancelled.Store(true)
	s.cancelOnce.Do(func() {
		close(s.cancelCh)
	})
}

// framesRecorded returns the number of frames appended so far.
func (s *session) framesRecorded() int {
	return s.frame
}

// record runs the recording to completion. It returns nil when the provider
// ran out of frames, an error wrapping ErrCancelled when cancelled, and any
// other error on failure.
func (s *session) record(ctx context.Context, frames ports.FrameProvider) error {
	if !s.used.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: session already used", ErrUnexpectedInternalState)
	}

	if err := s.prepareOutput(); err != nil {
		return fmt.Errorf("prepare output: %w", err)
	}

	writer, err := s.writers.Open(s.path, s.settings())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToStartEncoding, err)
	}
	if err := writer.StartSession(); err != nil {
		s.abort(writer)
		return fmt.Errorf("%w: %w", ErrFailedToStartEncoding, err)
	}
	s.logger.Debug("Writing %s at %d fps to %s", s.size, s.fps, s.path)

	done := ctx.Done()
	for {
		select {
		case <-writer.Ready():
		case <-s.cancelCh:
		case <-done:
			s.cancel()
			done = nil
		}

		status, err := s.processNextBatch(writer, frames)
		if err != nil {
			s.abort(writer)
			return err
		}
		if status == batchFinished {
			return s.finish(ctx, writer)
		}
	}
}

// processNextBatch appends frames for as long as the writer stays ready.
func (s *session) processNextBatch(writer ports.VideoWriter, frames ports.FrameProvider) (batchStatus, error) {
	if s.cancelled.Load() {
		return batchContinue, ErrCancelled
	}

	pool := writer.PixelBufferPool()
	if pool == nil {
		return batchContinue, fmt.Errorf("%w: writer has no pixel buffer pool", ErrUnexpectedInternalState)
	}

	first := s.frame
	for writer.IsReadyForMoreData() {
		at := s.frameTime(s.frame)
		img := frames.RequestFrame(s.frame, at, s.fps)
		if img == nil {
			if pe, ok := frames.(ports.FrameProviderError); ok {
				if err := pe.Err(); err != nil {
					return batchContinue, fmt.Errorf("%w: frame %d: %w", ErrFrameProviderFailed, s.frame, err)
				}
			}
			s.logger.Debug("End of frames after %d frames", s.frame)
			return batchFinished, nil
		}

		buf, err := s.converter.Convert(img, s.size.Width(), s.size.Height(), pool)
		if err != nil {
			return batchContinue, fmt.Errorf("%w: frame %d: %w", ErrFrameConversionFailed, s.frame, err)
		}

		if err := writer.Append(buf, s.presentationTime(s.frame)); err != nil {
			buf.Release()
			return batchContinue, fmt.Errorf("append frame %d: %w", s.frame, err)
		}
		s.frameRecorded(img, at)

		if s.cancelled.Load() {
			return batchContinue, ErrCancelled
		}

		s.frame++
	}

	if s.frame > first {
		s.logger.Debug("Appended frames %d-%d", first, s.frame-1)
	}
	return batchContinue, nil
}

func (s *session) finish(ctx context.Context, writer ports.VideoWriter) error {
	writer.MarkAsFinished()
	if err := writer.FinishWriting(ctx); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		return fmt.Errorf("finish writing: %w", err)
	}
	s.logger.Debug("Finished writing %d frames", s.frame)
	return nil
}

func (s *session) abort(writer ports.VideoWriter) {
	writer.MarkAsFinished()
	writer.CancelWriting()
}

// prepareOutput removes an existing file at the destination, or creates the
// destination directory when there is none.
func (s *session) prepareOutput() error {
	exists, err := s.fs.Exists(s.path)
	if err != nil {
		return err
	}
	if exists {
		return s.fs.Remove(s.path)
	}
	return s.fs.MkdirAll(filepath.Dir(s.path))
}

func (s *session) frameRecorded(img image.Image, at float64) {
	if s.sink != nil && s.sink.Enabled() {
		if err := s.sink.SaveFrame(s.frame, img); err != nil {
			s.logger.Warn("Failed to save debug frame %d: %s", s.frame, err)
		}
	}
	if s.onFrame != nil {
		s.onFrame(s.frame, at)
	}
}

func (s *session) settings() ports.VideoSettings {
	return ports.VideoSettings{
		Codec:     s.codec,
		Width:     s.size.Width(),
		Height:    s.size.Height(),
		FPS:       s.fps,
		Timescale: Timescale,
		Quality:   s.quality,
	}
}

// frameTime returns the presentation time of frame in seconds, derived from
// the target frame rate only.
func (s *session) frameTime(frame int) float64 {
	return float64(frame) / float64(s.fps)
}

func (s *session) presentationTime(frame int) ports.MediaTime {
	return ports.MediaTime{
		Value:     int64(frame) * s.ticksPerFrame,
		Timescale: Timescale,
	}
}
