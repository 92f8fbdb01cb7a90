package collab

import (
	"context"
	"sync"
	"time"

	"github.com/yashjaiswal5859/Doc-Collab/pkg/logger"
	"github.com/yashjaiswal5859/Doc-Collab/pkg/metrics"
)

// SaveFunc persists content for a (document, user) pair and returns the
// document's version count after the write. The scheduler calls it from
// timer goroutines and from Flush.
type SaveFunc func(ctx context.Context, docID, userID, content string) (int, error)

type pendingKey struct {
	docID  string
	userID string
}

type pendingSave struct {
	content string
	timer   *time.Timer
}

// Scheduler coalesces bursts of edits into a single durable write per
// (document, user) pair. Each edit replaces the pair's pending save and
// restarts the debounce timer; on expiry the latest content is persisted
// once, best effort. Explicit saves flush immediately and report their
// outcome; auto-save failures are logged and not retried.
type Scheduler struct {
	mu      sync.Mutex
	pending map[pendingKey]*pendingSave
	delay   time.Duration
	save    SaveFunc

	// flushOnDisconnect trades teardown latency for durability: when set,
	// CancelAll persists pending content instead of discarding it.
	flushOnDisconnect bool
}

func NewScheduler(delay time.Duration, save SaveFunc) *Scheduler {
	return &Scheduler{
		pending: make(map[pendingKey]*pendingSave),
		delay:   delay,
		save:    save,
	}
}

// SetFlushOnDisconnect switches CancelAll from discard to flush.
func (s *Scheduler) SetFlushOnDisconnect(v bool) {
	s.mu.Lock()
	s.flushOnDisconnect = v
	s.mu.Unlock()
}

// OnEdit records the latest content for the pair and (re)starts its
// debounce timer. At most one pending save exists per pair.
func (s *Scheduler) OnEdit(docID, userID, content string) {
	key := pendingKey{docID: docID, userID: userID}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pending[key]; ok {
		p.timer.Stop()
	}
	p := &pendingSave{content: content}
	p.timer = time.AfterFunc(s.delay, func() { s.fire(key, p) })
	s.pending[key] = p
}

// fire runs on timer expiry. The identity check guards against the race
// where an edit replaced the entry after this timer could no longer be
// stopped: only the still-current pending save is persisted.
func (s *Scheduler) fire(key pendingKey, p *pendingSave) {
	s.mu.Lock()
	cur, ok := s.pending[key]
	if !ok || cur != p {
		s.mu.Unlock()
		return
	}
	content := cur.content
	delete(s.pending, key)
	s.mu.Unlock()

	if _, err := s.save(context.Background(), key.docID, key.userID, content); err != nil {
		metrics.SaveFailures.WithLabelValues("auto").Inc()
		logger.Warnf("auto-save failed for document %s (user %s): %v", key.docID, key.userID, err)
		return
	}
	metrics.SavesTotal.WithLabelValues("auto").Inc()
}

// Flush cancels the pair's pending timer and persists content right now.
// It returns the version count reported by the save, so callers announce
// the count of the write they just made rather than re-reading state
// that a concurrent save may have moved.
func (s *Scheduler) Flush(ctx context.Context, docID, userID, content string) (int, error) {
	s.Cancel(docID, userID)

	n, err := s.save(ctx, docID, userID, content)
	if err != nil {
		metrics.SaveFailures.WithLabelValues("explicit").Inc()
		return 0, err
	}
	metrics.SavesTotal.WithLabelValues("explicit").Inc()
	return n, nil
}

// Cancel discards the pair's pending save, if any.
func (s *Scheduler) Cancel(docID, userID string) {
	key := pendingKey{docID: docID, userID: userID}
	s.mu.Lock()
	if p, ok := s.pending[key]; ok {
		p.timer.Stop()
		delete(s.pending, key)
	}
	s.mu.Unlock()
}

// CancelAll removes every pending save belonging to userID, across all
// documents. By default the unsaved content is discarded (the source
// system's lossy disconnect policy); with flush-on-disconnect enabled it
// is persisted best effort instead.
func (s *Scheduler) CancelAll(userID string) {
	s.mu.Lock()
	flush := s.flushOnDisconnect
	var flushes []struct {
		key     pendingKey
		content string
	}
	for key, p := range s.pending {
		if key.userID != userID {
			continue
		}
		p.timer.Stop()
		delete(s.pending, key)
		if flush {
			flushes = append(flushes, struct {
				key     pendingKey
				content string
			}{key, p.content})
		}
	}
	s.mu.Unlock()

	for _, f := range flushes {
		if _, err := s.save(context.Background(), f.key.docID, f.key.userID, f.content); err != nil {
			metrics.SaveFailures.WithLabelValues("auto").Inc()
			logger.Warnf("disconnect flush failed for document %s (user %s): %v", f.key.docID, f.key.userID, err)
		}
	}
}

// HasPending reports whether a save is scheduled for the pair.
func (s *Scheduler) HasPending(docID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[pendingKey{docID: docID, userID: userID}]
	return ok
}
