package schedule

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Manager owns the current schedule state: the last successfully fetched raw
// payload, the Snapshot normalized from it, and the most recent load error.
// A failed refresh never clobbers the last good snapshot.
type Manager struct {
	fetcher *Fetcher

	mu       sync.RWMutex
	tz       *time.Location
	raw      *RawSchedule
	snapshot *Snapshot
	loadErr  error

	// Refreshes are serialized by a monotonically increasing token so a slow
	// older fetch cannot overwrite the result of a newer one.
	nextToken    uint64
	appliedToken uint64

	cron *cron.Cron
}

// NewManager builds a Manager around the given fetcher and display timezone.
func NewManager(fetcher *Fetcher, tz *time.Location) *Manager {
	if tz == nil {
		tz = time.UTC
	}
	return &Manager{fetcher: fetcher, tz: tz}
}

// Refresh fetches a complete raw payload and, if the fetch is still the
// newest one, normalizes and installs it. On failure the previous snapshot
// is kept and the error is recorded for the API's load-error flag.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	m.nextToken++
	token := m.nextToken
	m.mu.Unlock()

	raw, err := m.fetcher.Fetch(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if token <= m.appliedToken {
		// A newer refresh finished while this one was in flight.
		return nil
	}
	m.appliedToken = token

	if err != nil {
		m.loadErr = err
		return err
	}

	snap, err := Normalize(raw, m.tz)
	if err != nil {
		m.loadErr = err
		return err
	}

	m.raw = raw
	m.snapshot = snap
	m.loadErr = nil
	return nil
}

// SetTimezone changes the display timezone and re-normalizes the current raw
// payload against it. A nil location is ignored.
func (m *Manager) SetTimezone(tz *time.Location) error {
	if tz == nil {
		return fmt.Errorf("set timezone: location is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.tz = tz
	if m.raw == nil {
		return nil
	}
	snap, err := Normalize(m.raw, tz)
	if err != nil {
		return err
	}
	m.snapshot = snap
	return nil
}

// Snapshot returns the current normalized snapshot, or nil when no fetch has
// succeeded yet.
func (m *Manager) Snapshot() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// LoadError returns the error recorded by the most recent refresh attempt,
// or nil if it succeeded.
func (m *Manager) LoadError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loadErr
}

// StartPeriodicRefresh schedules refreshes on the given cron expression
// (standard five-field syntax). Failures are logged and the last good
// snapshot stays live until a later refresh succeeds.
func (m *Manager) StartPeriodicRefresh(spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := m.Refresh(ctx); err != nil {
			log.Printf("[WARN] scheduled refresh failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule refresh %q: %w", spec, err)
	}
	c.Start()
	m.cron = c
	return nil
}

// StopPeriodicRefresh stops the cron scheduler, waiting for a running
// refresh to finish.
func (m *Manager) StopPeriodicRefresh() {
	if m.cron == nil {
		return
	}
	<-m.cron.Stop().Done()
	m.cron = nil
}
