package favorites

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// MergeError reports a failed reconciliation with the remote favorites API.
type MergeError struct {
	URL    string
	Status string
	Err    error
}

func (e *MergeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("merge favorites at %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("merge favorites at %s: %s", e.URL, e.Status)
}

func (e *MergeError) Unwrap() error { return e.Err }

// RemoteClient talks to the backend's favorites merge endpoint: it POSTs the
// local id list and receives the authoritative merged list. Union semantics
// are the server's business; nothing is recomputed client-side.
type RemoteClient struct {
	client   *http.Client
	mergeURL string
}

// NewRemoteClient builds an authenticated client. The bearer token is
// attached through an oauth2 static token source.
func NewRemoteClient(mergeURL, token string) *RemoteClient {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := oauth2.NewClient(context.Background(), src)
	client.Timeout = 15 * time.Second
	return &RemoteClient{client: client, mergeURL: mergeURL}
}

// Merge implements Merger.
func (c *RemoteClient) Merge(ctx context.Context, local []string) ([]string, error) {
	if local == nil {
		local = []string{}
	}
	body, err := json.Marshal(local)
	if err != nil {
		return nil, &MergeError{URL: c.mergeURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.mergeURL, bytes.NewReader(body))
	if err != nil {
		return nil, &MergeError{URL: c.mergeURL, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &MergeError{URL: c.mergeURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &MergeError{URL: c.mergeURL, Status: resp.Status}
	}

	var merged []string
	if err := json.NewDecoder(resp.Body).Decode(&merged); err != nil {
		return nil, &MergeError{URL: c.mergeURL, Err: err}
	}
	return merged, nil
}
