package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// FetchError reports a failed HTTP retrieval of the schedule payload.
// Callers are expected to keep their last-good state and surface a
// load-error flag instead of failing hard.
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch schedule %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch schedule %s: %s", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher obtains the raw schedule payload. When a snapshot file is
// configured it is read instead of the network; this mirrors the backend's
// server-side render optimization of injecting the payload directly into
// the host page.
type Fetcher struct {
	client       *http.Client
	url          string
	snapshotFile string
}

// NewFetcher builds a Fetcher. Either url or snapshotFile must be set;
// snapshotFile wins when both are.
func NewFetcher(url, snapshotFile string) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		url:          url,
		snapshotFile: snapshotFile,
	}
}

// Fetch returns one complete RawSchedule. There is no retry and no caching;
// the caller holds the single in-memory copy.
func (f *Fetcher) Fetch(ctx context.Context) (*RawSchedule, error) {
	if f.snapshotFile != "" {
		return f.fetchSnapshot()
	}
	return f.fetchHTTP(ctx)
}

func (f *Fetcher) fetchSnapshot() (*RawSchedule, error) {
	data, err := os.ReadFile(f.snapshotFile)
	if err != nil {
		return nil, fmt.Errorf("read schedule snapshot %s: %w", f.snapshotFile, err)
	}
	var raw RawSchedule
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode schedule snapshot %s: %w", f.snapshotFile, err)
	}
	return &raw, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context) (*RawSchedule, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, &FetchError{URL: f.url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: f.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: f.url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var raw RawSchedule
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &FetchError{URL: f.url, Err: err}
	}
	return &raw, nil
}
