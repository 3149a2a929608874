// ABOUTME: Coalesces bursts of edits into one write per key after a quiet interval.
// ABOUTME: Pending writes can be flushed early or cancelled.
package debounce

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/gymlog/internal/logging"
	"github.com/harperreed/gymlog/internal/metrics"
)

// DefaultInterval is how long a key must stay quiet before its write runs.
const DefaultInterval = 500 * time.Millisecond

// Writer runs the most recently scheduled write for each key once the key
// has been quiet for the interval.
type Writer struct {
	interval time.Duration
	logger   *log.Logger
	onError  func(key string, err error)

	mu      sync.Mutex
	pending map[string]*pendingWrite
}

type pendingWrite struct {
	timer *time.Timer
	fn    func() error
}

// Option configures a Writer.
type Option func(*Writer)

// WithInterval overrides DefaultInterval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(w *Writer) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithLogger sets the logger used for failed background writes.
func WithLogger(l *log.Logger) Option {
	return func(w *Writer) { w.logger = l }
}

// OnError registers a callback for writes that fail after their timer fires.
// Flush and FlushAll return errors to the caller instead.
func OnError(fn func(key string, err error)) Option {
	return func(w *Writer) { w.onError = fn }
}

// New creates a Writer.
func New(opts ...Option) *Writer {
	w := &Writer{
		interval: DefaultInterval,
		logger:   logging.Discard(),
		pending:  make(map[string]*pendingWrite),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Key builds a key from an entity name, its id and the edited field.
func Key(entity string, id int64, field string) string {
	return fmt.Sprintf("%s:%d:%s", entity, id, field)
}

// Interval returns the quiet interval.
func (w *Writer) Interval() time.Duration {
	return w.interval
}

// Schedule replaces any pending write for key with fn and restarts its timer.
func (w *Writer) Schedule(key string, fn func() error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if prev, ok := w.pending[key]; ok {
		prev.timer.Stop()
	}
	pw := &pendingWrite{fn: fn}
	pw.timer = time.AfterFunc(w.interval, func() { w.fire(key, pw) })
	w.pending[key] = pw
	w.updateGauge()
}

// fire runs pw if it is still the pending write for key.
func (w *Writer) fire(key string, pw *pendingWrite) {
	if !w.take(key, pw) {
		return
	}
	if err := pw.fn(); err != nil {
		w.logger.Error("debounced write failed", "key", key, "err", err)
		if w.onError != nil {
			w.onError(key, err)
		}
	}
}

// take removes key from the pending set if it still maps to pw.
func (w *Writer) take(key string, pw *pendingWrite) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending[key] != pw {
		return false
	}
	delete(w.pending, key)
	w.updateGauge()
	return true
}

// Flush runs the pending write for key now. It is a no-op when nothing is pending.
func (w *Writer) Flush(key string) error {
	w.mu.Lock()
	pw, ok := w.pending[key]
	if ok {
		pw.timer.Stop()
		delete(w.pending, key)
		w.updateGauge()
	}
	w.mu.Unlock()

	if !ok {
		return nil
	}
	if err := pw.fn(); err != nil {
		return fmt.Errorf("flush %s: %w", key, err)
	}
	return nil
}

// FlushAll runs every pending write now and joins their errors.
func (w *Writer) FlushAll() error {
	w.mu.Lock()
	drained := w.pending
	w.pending = make(map[string]*pendingWrite)
	for _, pw := range drained {
		pw.timer.Stop()
	}
	w.updateGauge()
	w.mu.Unlock()

	var errs []error
	for key, pw := range drained {
		if err := pw.fn(); err != nil {
			errs = append(errs, fmt.Errorf("flush %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Cancel drops the pending write for key without running it.
func (w *Writer) Cancel(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	pw, ok := w.pending[key]
	if !ok {
		return false
	}
	pw.timer.Stop()
	delete(w.pending, key)
	w.updateGauge()
	return true
}

// Pending returns the number of writes waiting to run.
func (w *Writer) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Must be called with mu held.
func (w *Writer) updateGauge() {
	metrics.PendingWrites.Set(float64(len(w.pending)))
}
