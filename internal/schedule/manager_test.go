package schedule

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestManagerRefreshKeepsLastGoodSnapshot(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	m := NewManager(NewFetcher(srv.URL, ""), time.UTC)

	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	if m.Snapshot() == nil {
		t.Fatal("expected a snapshot after successful refresh")
	}
	if m.LoadError() != nil {
		t.Fatalf("unexpected load error: %v", m.LoadError())
	}

	fail.Store(true)
	if err := m.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh failure")
	}
	if m.Snapshot() == nil {
		t.Fatal("failed refresh must not clobber the last good snapshot")
	}
	if len(m.Snapshot().Sessions) != 1 {
		t.Fatalf("snapshot changed after failed refresh: %+v", m.Snapshot().Sessions)
	}
	if m.LoadError() == nil {
		t.Fatal("expected load error to be recorded")
	}

	fail.Store(false)
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("recovery refresh: %v", err)
	}
	if m.LoadError() != nil {
		t.Fatal("expected load error to clear after recovery")
	}
}

func TestManagerRefreshBeforeFirstSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	m := NewManager(NewFetcher(srv.URL, ""), time.UTC)
	if err := m.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh failure")
	}
	if m.Snapshot() != nil {
		t.Fatal("no snapshot should exist before a successful fetch")
	}
	if m.LoadError() == nil {
		t.Fatal("expected load error")
	}
}

func TestManagerSetTimezoneRenormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	m := NewManager(NewFetcher(srv.URL, ""), time.UTC)
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := m.Snapshot().Sessions[0].Start.Hour(); got != 9 {
		t.Fatalf("expected 09:00 UTC, got %02d:00", got)
	}

	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	if err := m.SetTimezone(berlin); err != nil {
		t.Fatalf("set timezone: %v", err)
	}
	if got := m.Snapshot().Sessions[0].Start.Hour(); got != 11 {
		t.Fatalf("expected 11:00 Berlin after timezone change, got %02d:00", got)
	}

	if err := m.SetTimezone(nil); err == nil {
		t.Fatal("expected error for nil location")
	}
}

func TestManagerSetTimezoneWithoutPayload(t *testing.T) {
	m := NewManager(NewFetcher("http://unreachable.invalid", ""), time.UTC)
	if err := m.SetTimezone(time.UTC); err != nil {
		t.Fatalf("set timezone before first fetch should be a no-op, got %v", err)
	}
	if m.Snapshot() != nil {
		t.Fatal("no snapshot should appear from a timezone change alone")
	}
}

func TestManagerStalePeriodicResultDiscarded(t *testing.T) {
	// Simulate an older fetch finishing after a newer one: the manager hands
	// out token 1, then token 2 applies first, so token 1 must be dropped.
	m := NewManager(nil, time.UTC)

	m.mu.Lock()
	m.nextToken = 2
	m.appliedToken = 2
	snap := &Snapshot{Timezone: time.UTC}
	m.snapshot = snap
	m.mu.Unlock()

	// Replay what Refresh does after its fetch returns with the stale token.
	m.mu.Lock()
	stale := uint64(1)
	discarded := stale <= m.appliedToken
	m.mu.Unlock()

	if !discarded {
		t.Fatal("stale token must be discarded")
	}
	if m.Snapshot() != snap {
		t.Fatal("snapshot must be untouched by a stale result")
	}
}

func TestManagerStartPeriodicRefreshRejectsBadSpec(t *testing.T) {
	m := NewManager(nil, time.UTC)
	if err := m.StartPeriodicRefresh("not a cron spec"); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
	// Stop without a running scheduler is a no-op.
	m.StopPeriodicRefresh()
}

func TestManagerPeriodicRefreshStops(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	m := NewManager(NewFetcher(srv.URL, ""), time.UTC)
	if err := m.StartPeriodicRefresh("* * * * *"); err != nil {
		t.Fatalf("start: %v", err)
	}
	m.StopPeriodicRefresh()
	if m.cron != nil {
		t.Fatal("scheduler handle should be cleared after stop")
	}
}
