// Package offline decides whether clients may receive work, on top of the raw
// timestamp mechanics owned by the presence tracker.
package offline

import (
	"time"

	"github.com/pubtunnel/relayd/internal/presence"
)

// CheckSummary packages the outcome of a forced offline sweep for callers.
type CheckSummary struct {
	SessionID      string // empty for a system-wide check
	Checked        int
	NewlyOffline   int
	AlreadyOffline int
	CheckedAt      time.Time
}

// ThresholdConfig is the current classification configuration.
type ThresholdConfig struct {
	OfflineThresholdSeconds   int
	StaleCleanupWindowSeconds int
}

// ThresholdUpdate reports a threshold change.
type ThresholdUpdate struct {
	PreviousSeconds  int
	CurrentSeconds   int
	AffectedSessions int
	UpdatedAt        time.Time
}

// Coordinator wraps a presence tracker with command-eligibility policy.
// Keeping the decision separate from timestamp math lets it grow additional
// factors (rate limits, quotas) without touching the tracker.
type Coordinator struct {
	tracker *presence.Tracker
	clock   func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(c *Coordinator) { c.clock = clock }
}

// NewCoordinator wraps the given tracker.
func NewCoordinator(tracker *presence.Tracker, opts ...Option) *Coordinator {
	c := &Coordinator{tracker: tracker, clock: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EligibleForCommands is the single gate every submission path must pass.
// A client with no presence record (never polled) is not eligible, and
// neither is one whose current status is anything but online.
func (c *Coordinator) EligibleForCommands(clientID, sessionID string) bool {
	rec, ok := c.tracker.Get(clientID, sessionID)
	if !ok {
		return false
	}
	return rec.Status == presence.StatusOnline
}

// ForceCheck runs a forced re-evaluation for one session, or for all sessions
// when sessionID is empty.
func (c *Coordinator) ForceCheck(sessionID string) CheckSummary {
	stats := c.tracker.ForceReevaluate(sessionID)
	return CheckSummary{
		SessionID:      sessionID,
		Checked:        stats.Checked,
		NewlyOffline:   stats.NewlyOffline,
		AlreadyOffline: stats.AlreadyOffline,
		CheckedAt:      c.clock(),
	}
}

// Threshold returns the current classification configuration.
func (c *Coordinator) Threshold() ThresholdConfig {
	return ThresholdConfig{
		OfflineThresholdSeconds:   c.tracker.Threshold(),
		StaleCleanupWindowSeconds: c.tracker.StaleWindow(),
	}
}

// UpdateThreshold changes the process-wide offline threshold.
func (c *Coordinator) UpdateThreshold(newSeconds int) ThresholdUpdate {
	previous, affected := c.tracker.UpdateThreshold(newSeconds)
	return ThresholdUpdate{
		PreviousSeconds:  previous,
		CurrentSeconds:   newSeconds,
		AffectedSessions: affected,
		UpdatedAt:        c.clock(),
	}
}

// DetailedStatus returns per-client status snapshots, for one session or all.
func (c *Coordinator) DetailedStatus(sessionID string) []presence.ClientStatus {
	return c.tracker.DetailedStatus(sessionID)
}
