// Package presence owns last-seen bookkeeping and the derived online/offline
// classification for every (session, client) pair.
package presence

import (
	"sync"
	"time"
)

// Status is the derived presence classification.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
	StatusUnknown Status = "unknown"
)

// StatusOf classifies a last-seen timestamp against a threshold. This is the
// single source of truth for online/offline decisions; callers must not
// reimplement the comparison.
func StatusOf(lastSeen, now time.Time, threshold time.Duration) Status {
	if lastSeen.IsZero() {
		return StatusUnknown
	}
	if now.Sub(lastSeen) <= threshold {
		return StatusOnline
	}
	return StatusOffline
}

// Record is a snapshot of one client's presence state.
type Record struct {
	ClientID      string
	SessionID     string
	Status        Status
	FirstSeen     time.Time
	LastSeen      time.Time
	WentOfflineAt time.Time // zero unless stamped by ForceReevaluate
}

// ClientStatus is the detailed per-client view used by status listings.
type ClientStatus struct {
	ClientID             string
	SessionID            string
	Status               Status
	LastSeen             time.Time
	SecondsSinceLastSeen int64
	ThresholdSeconds     int
	EligibleForCommands  bool
	WentOfflineAt        time.Time
}

// CheckStats summarizes one forced re-evaluation sweep.
type CheckStats struct {
	Checked        int
	NewlyOffline   int
	AlreadyOffline int
}

type key struct {
	sessionID string
	clientID  string
}

// Tracker is the in-memory presence store. All mutations are serialized by a
// single mutex; status is recomputed from timestamps on every read.
type Tracker struct {
	mu               sync.Mutex
	records          map[key]*Record
	thresholdSeconds int
	staleWindow      int
	clock            func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(t *Tracker) { t.clock = clock }
}

// NewTracker creates a tracker with the given offline threshold and stale
// cleanup window, both in seconds.
func NewTracker(thresholdSeconds, staleWindowSeconds int, opts ...Option) *Tracker {
	t := &Tracker{
		records:          make(map[key]*Record),
		thresholdSeconds: thresholdSeconds,
		staleWindow:      staleWindowSeconds,
		clock:            time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) threshold() time.Duration {
	return time.Duration(t.thresholdSeconds) * time.Second
}

// RecordSeen upserts the presence record for (clientID, sessionID). If the
// record exists only the last-seen timestamp moves; first-seen is preserved.
// A zero `at` means "now". Returns the record with a freshly computed status.
func (t *Tracker) RecordSeen(clientID, sessionID string, at time.Time) Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	if at.IsZero() {
		at = t.clock()
	}
	k := key{sessionID: sessionID, clientID: clientID}
	rec, ok := t.records[k]
	if !ok {
		rec = &Record{
			ClientID:  clientID,
			SessionID: sessionID,
			FirstSeen: at,
		}
		t.records[k] = rec
	}
	rec.LastSeen = at
	rec.Status = StatusOf(rec.LastSeen, t.clock(), t.threshold())
	return *rec
}

// Get returns the presence record with status recomputed against the current
// time. It never mutates went-offline-at; only ForceReevaluate does that.
func (t *Tracker) Get(clientID, sessionID string) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[key{sessionID: sessionID, clientID: clientID}]
	if !ok {
		return Record{}, false
	}
	out := *rec
	out.Status = StatusOf(rec.LastSeen, t.clock(), t.threshold())
	return out, true
}

// ForceReevaluate sweeps all records (or only those of sessionID when it is
// non-empty), recomputing status. Records crossing online→offline get
// went-offline-at stamped; records coming back online get it cleared. This is
// the only writer of went-offline-at.
func (t *Tracker) ForceReevaluate(sessionID string) CheckStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock()
	var stats CheckStats
	for k, rec := range t.records {
		if sessionID != "" && k.sessionID != sessionID {
			continue
		}
		stats.Checked++
		status := StatusOf(rec.LastSeen, now, t.threshold())
		rec.Status = status
		switch status {
		case StatusOffline:
			if rec.WentOfflineAt.IsZero() {
				rec.WentOfflineAt = now
				stats.NewlyOffline++
			} else {
				stats.AlreadyOffline++
			}
		case StatusOnline:
			rec.WentOfflineAt = time.Time{}
		}
	}
	return stats
}

// DetailedStatus returns per-client snapshots for a session, or for all
// sessions when sessionID is empty.
func (t *Tracker) DetailedStatus(sessionID string) []ClientStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock()
	out := make([]ClientStatus, 0)
	for k, rec := range t.records {
		if sessionID != "" && k.sessionID != sessionID {
			continue
		}
		status := StatusOf(rec.LastSeen, now, t.threshold())
		out = append(out, ClientStatus{
			ClientID:             rec.ClientID,
			SessionID:            rec.SessionID,
			Status:               status,
			LastSeen:             rec.LastSeen,
			SecondsSinceLastSeen: int64(now.Sub(rec.LastSeen) / time.Second),
			ThresholdSeconds:     t.thresholdSeconds,
			EligibleForCommands:  status == StatusOnline,
			WentOfflineAt:        rec.WentOfflineAt,
		})
	}
	return out
}

// EvictStale removes records unseen for longer than the given window. Memory
// hygiene only; online/offline correctness never depends on eviction.
func (t *Tracker) EvictStale(staleWindowSeconds int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock()
	window := time.Duration(staleWindowSeconds) * time.Second
	removed := 0
	for k, rec := range t.records {
		if now.Sub(rec.LastSeen) > window {
			delete(t.records, k)
			removed++
		}
	}
	return removed
}

// Threshold returns the current offline threshold in seconds.
func (t *Tracker) Threshold() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.thresholdSeconds
}

// StaleWindow returns the configured stale cleanup window in seconds.
func (t *Tracker) StaleWindow() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.staleWindow
}

// UpdateThreshold swaps the process-wide offline threshold. Returns the
// previous value and the number of distinct sessions with presence records,
// all of which are affected immediately.
func (t *Tracker) UpdateThreshold(newSeconds int) (previous, affectedSessions int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	previous = t.thresholdSeconds
	t.thresholdSeconds = newSeconds

	seen := make(map[string]struct{})
	for k := range t.records {
		seen[k.sessionID] = struct{}{}
	}
	return previous, len(seen)
}
