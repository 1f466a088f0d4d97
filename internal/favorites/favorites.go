// Package favorites tracks the set of favorited session codes for one
// event. The set lives in memory, is persisted through a pluggable Storage
// backend on every mutation, and can be reconciled against the conference
// backend's authoritative favorites list.
package favorites

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
)

// GenericStorageKey is used when no event slug can be determined at all.
const GenericStorageKey = "schedule_favs"

// StorageKey derives the persistence key for an event's favorites.
//
// Resolution order is deterministic: an explicitly configured slug wins;
// otherwise the slug is the last non-"video" segment of the base path
// (e.g. "/org/acmeconf/video" -> "acmeconf"); otherwise the generic key.
func StorageKey(slug, basePath string) string {
	if slug != "" {
		return slug + "_favs"
	}
	var segments []string
	for _, seg := range strings.Split(basePath, "/") {
		if seg != "" && seg != "video" {
			segments = append(segments, seg)
		}
	}
	if len(segments) == 0 {
		return GenericStorageKey
	}
	return segments[len(segments)-1] + "_favs"
}

// Storage persists the full favorite-id set under a key. Every Save is a
// complete overwrite; there is no append path to corrupt.
type Storage interface {
	// Load returns the stored set, or an empty result when the key is absent
	// or its contents are unreadable. Implementations never fail on malformed
	// data, only on genuine I/O errors.
	Load(ctx context.Context, key string) ([]string, error)
	Save(ctx context.Context, key string, ids []string) error
}

// Merger reconciles the local set with a remote authoritative copy.
type Merger interface {
	Merge(ctx context.Context, local []string) ([]string, error)
}

// Service is the in-memory favorite set plus its persistence glue.
type Service struct {
	key     string
	storage Storage
	remote  Merger // nil when the user is not authenticated

	mu  sync.Mutex
	ids map[string]struct{}
}

// NewService builds a Service persisting under key. remote may be nil.
func NewService(storage Storage, remote Merger, key string) *Service {
	return &Service{
		key:     key,
		storage: storage,
		remote:  remote,
		ids:     make(map[string]struct{}),
	}
}

// Load seeds the in-memory set from storage. An absent or unreadable stored
// set is treated as "no favorites yet"; storage resets itself implicitly on
// the next write.
func (s *Service) Load(ctx context.Context) error {
	ids, err := s.storage.Load(ctx, s.key)
	if err != nil {
		return fmt.Errorf("load favorites %q: %w", s.key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			s.ids[id] = struct{}{}
		}
	}
	return nil
}

// Fav adds id to the set and persists the full set before returning.
// It is idempotent; favoriting an already-favorited id is a no-op write.
// Empty ids are rejected: sessions without a code are not addressable.
func (s *Service) Fav(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("fav: session has no id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return nil
	}
	s.ids[id] = struct{}{}
	return s.persistLocked(ctx)
}

// Unfav removes id and persists. Removing a never-favorited id is a no-op.
func (s *Service) Unfav(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; !ok {
		return nil
	}
	delete(s.ids, id)
	return s.persistLocked(ctx)
}

// Has reports whether id is currently favorited.
func (s *Service) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// List returns the favorited ids in sorted order.
func (s *Service) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked()
}

// MergeWithRemote sends the local set to the merge endpoint and adopts the
// authoritative list it returns, in memory and in storage. On failure the
// local set is left untouched; the caller logs and carries on, since
// favorites keep working locally.
func (s *Service) MergeWithRemote(ctx context.Context) error {
	if s.remote == nil {
		return fmt.Errorf("merge favorites: no remote configured")
	}

	s.mu.Lock()
	local := s.sortedLocked()
	s.mu.Unlock()

	merged, err := s.remote.Merge(ctx, local)
	if err != nil {
		return fmt.Errorf("merge favorites %q: %w", s.key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[string]struct{}, len(merged))
	for _, id := range merged {
		if id != "" {
			s.ids[id] = struct{}{}
		}
	}
	if err := s.persistLocked(ctx); err != nil {
		// The merge itself succeeded; the set is adopted in memory either way.
		log.Printf("[WARN] persisting merged favorites failed: %v", err)
	}
	return nil
}

// Authenticated reports whether a remote merge target is configured.
func (s *Service) Authenticated() bool {
	return s.remote != nil
}

func (s *Service) persistLocked(ctx context.Context) error {
	if err := s.storage.Save(ctx, s.key, s.sortedLocked()); err != nil {
		return fmt.Errorf("save favorites %q: %w", s.key, err)
	}
	return nil
}

func (s *Service) sortedLocked() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
