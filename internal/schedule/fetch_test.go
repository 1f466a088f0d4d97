package schedule

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const payload = `{
	"talks": [
		{"code": "TALK-1", "title": "Hello", "start": "2026-09-12T09:00:00Z", "end": "2026-09-12T10:00:00Z", "room": 1}
	],
	"speakers": [],
	"rooms": [{"id": 1, "name": {"en": "Stage A"}}],
	"tracks": []
}`

func TestFetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("expected Accept: application/json, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	raw, err := NewFetcher(srv.URL, "").Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(raw.Talks) != 1 || raw.Talks[0].Code != "TALK-1" {
		t.Fatalf("unexpected payload: %+v", raw)
	}
	if len(raw.Rooms) != 1 || raw.Rooms[0].Name.Resolve("en") != "Stage A" {
		t.Fatalf("rooms not decoded: %+v", raw.Rooms)
	}
}

func TestFetchHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewFetcher(srv.URL, "").Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if fe.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", fe.StatusCode)
	}
}

func TestFetchHTTPMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	if _, err := NewFetcher(srv.URL, "").Fetch(context.Background()); err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestFetchSnapshotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.json")
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	// URL must be ignored when a snapshot file is configured.
	raw, err := NewFetcher("http://unreachable.invalid", path).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(raw.Talks) != 1 {
		t.Fatalf("expected 1 talk, got %d", len(raw.Talks))
	}
}

func TestFetchSnapshotFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	if _, err := NewFetcher("", path).Fetch(context.Background()); err == nil {
		t.Fatal("expected error for missing snapshot file")
	}
}
