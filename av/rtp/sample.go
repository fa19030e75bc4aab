package rtp

import (
	"fmt"
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pion/webrtc/v3/pkg/media"
	"github.com/sirupsen/logrus"
)

// defaultQueueSize matches a few frames of latency at 30 fps.
const defaultQueueSize = 4

// SampleWriter accepts media samples, for example a
// webrtc.TrackLocalStaticSample, which packetizes them itself.
type SampleWriter interface {
	WriteSample(sample media.Sample) error
}

// WriteAccessUnits writes each encoded access unit as one sample of
// frameDuration and returns the number written. Empty units are skipped.
func WriteAccessUnits(w SampleWriter, units iter.Seq[[]byte], frameDuration time.Duration) (int, error) {
	written := 0
	for unit := range units {
		if len(unit) == 0 {
			continue
		}
		if err := w.WriteSample(media.Sample{Data: unit, Duration: frameDuration}); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "WriteAccessUnits",
				"sample":   written,
				"error":    err.Error(),
			}).Error("Failed to write sample")
			return written, fmt.Errorf("write sample %d: %w", written, err)
		}
		written++
	}

	logrus.WithFields(logrus.Fields{
		"function": "WriteAccessUnits",
		"samples":  written,
	}).Debug("Access units delivered")

	return written, nil
}

// AsyncSampleWriter decouples an encoding loop from a slow SampleWriter.
//
// Samples go through a bounded queue to a single goroutine. When the queue
// is full the sample is dropped rather than blocking the caller.
type AsyncSampleWriter struct {
	w       SampleWriter
	ch      chan media.Sample
	quit    chan struct{}
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
	failed  atomic.Uint64
	written atomic.Uint64
}

// NewAsyncSampleWriter starts the writer goroutine. A queueSize of zero or
// less uses a queue of four samples.
func NewAsyncSampleWriter(w SampleWriter, queueSize int) *AsyncSampleWriter {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	aw := &AsyncSampleWriter{
		w:    w,
		ch:   make(chan media.Sample, queueSize),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}

	logrus.WithFields(logrus.Fields{
		"function":   "NewAsyncSampleWriter",
		"queue_size": queueSize,
	}).Info("Starting async sample writer")

	go aw.run()
	return aw
}

func (aw *AsyncSampleWriter) run() {
	defer close(aw.done)
	for {
		select {
		case s := <-aw.ch:
			aw.deliver(s)
		case <-aw.quit:
			for {
				select {
				case s := <-aw.ch:
					aw.deliver(s)
				default:
					return
				}
			}
		}
	}
}

func (aw *AsyncSampleWriter) deliver(s media.Sample) {
	if err := aw.w.WriteSample(s); err != nil {
		aw.failed.Add(1)
		logrus.WithFields(logrus.Fields{
			"function": "AsyncSampleWriter.deliver",
			"size":     len(s.Data),
			"error":    err.Error(),
		}).Warn("Sample write failed")
		return
	}
	aw.written.Add(1)
}

// WriteSample queues s without blocking. It returns ErrQueueFull when the
// sample was dropped and ErrWriterClosed after Close.
func (aw *AsyncSampleWriter) WriteSample(s media.Sample) error {
	aw.mu.RLock()
	defer aw.mu.RUnlock()

	if aw.closed {
		return ErrWriterClosed
	}
	select {
	case aw.ch <- s:
		return nil
	default:
		aw.dropped.Add(1)
		logrus.WithFields(logrus.Fields{
			"function": "AsyncSampleWriter.WriteSample",
			"dropped":  aw.dropped.Load(),
		}).Warn("Sample queue full; dropping sample")
		return ErrQueueFull
	}
}

// Close stops accepting samples, delivers the ones already queued and
// waits for the goroutine to exit.
func (aw *AsyncSampleWriter) Close() error {
	aw.mu.Lock()
	if aw.closed {
		aw.mu.Unlock()
		return nil
	}
	aw.closed = true
	close(aw.quit)
	aw.mu.Unlock()

	<-aw.done

	logrus.WithFields(logrus.Fields{
		"function": "AsyncSampleWriter.Close",
		"written":  aw.written.Load(),
		"dropped":  aw.dropped.Load(),
		"failed":   aw.failed.Load(),
	}).Info("Async sample writer stopped")
	return nil
}

// Stats returns how many samples were written, dropped at the queue and
// rejected by the underlying writer.
func (aw *AsyncSampleWriter) Stats() (written, dropped, failed uint64) {
	return aw.written.Load(), aw.dropped.Load(), aw.failed.Load()
}
