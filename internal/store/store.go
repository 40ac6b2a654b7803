// Package store persists suggestions across two backends: an authoritative
// remote Postgres store and a local key-value fallback that is always
// available. Writes go remote-first and transparently retry once against the
// local backend when the remote attempt fails.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"contentops/internal/metrics"
	"contentops/internal/models"
)

// Domain-level store error sentinels.
var (
	ErrSuggestionNotFound = errors.New("suggestion not found")

	// ErrPersistence means both backends failed; the operation had no effect.
	ErrPersistence = errors.New("suggestion could not be persisted")
)

// Backend names, as reported by LastBackend and the metrics labels.
const (
	BackendRemote = "remote"
	BackendLocal  = "local"
)

// StatusChange describes a review transition to apply to a stored
// suggestion. The backend stamps updatedAt and the matching approvedAt or
// rejectedAt field from At.
type StatusChange struct {
	Status string
	At     time.Time
}

// Backend is the persistence surface each storage tier implements.
type Backend interface {
	Create(ctx context.Context, s *models.Suggestion) (string, error)
	Query(ctx context.Context, articleID string) ([]models.Suggestion, error)
	Get(ctx context.Context, id string) (*models.Suggestion, error)
	UpdateStatus(ctx context.Context, id string, ch StatusChange) error
	AppendComment(ctx context.Context, id string, c models.Comment) error
}

// Store is the dual-backend façade. The remote backend may be nil, in which
// case every call is served by the local backend.
type Store struct {
	remote Backend
	local  Backend
	last   atomic.Value // string: backend that served the last successful write
}

// New creates a store over the given backends. remote may be nil when no
// remote store is configured; local must not be.
func New(remote, local Backend) *Store {
	return &Store{remote: remote, local: local}
}

// LastBackend reports which backend served the most recent successful write,
// so callers and tests can observe degraded-mode transitions.
func (s *Store) LastBackend() string {
	if v, ok := s.last.Load().(string); ok {
		return v
	}
	return ""
}

// Create persists a new suggestion and returns its id. The remote backend
// assigns server-side ids; the local fallback generates timestamp-based ones.
func (s *Store) Create(ctx context.Context, sg *models.Suggestion) (string, error) {
	var remoteErr error
	if s.remote != nil {
		id, err := s.remote.Create(ctx, sg)
		if err == nil {
			s.last.Store(BackendRemote)
			metrics.RecordSuggestionCreated(BackendRemote)
			return id, nil
		}
		remoteErr = err
		s.fellBack(ctx, "create", err)
	}

	id, err := s.local.Create(ctx, sg)
	if err != nil {
		return "", s.wrap("create", remoteErr, err)
	}
	s.last.Store(BackendLocal)
	metrics.RecordSuggestionCreated(BackendLocal)
	return id, nil
}

// Query returns all suggestions for an article, newest first. A configured
// remote backend exhausts the read: records written to the local fallback
// while the remote was unreachable are not merged in. This consistency gap
// is deliberate.
func (s *Store) Query(ctx context.Context, articleID string) ([]models.Suggestion, error) {
	if s.remote != nil {
		return s.remote.Query(ctx, articleID)
	}
	return s.local.Query(ctx, articleID)
}

// Get returns a single suggestion by id. Unlike Query, Get falls back to the
// local backend when the remote read fails, so review transitions keep
// working against locally persisted records while the remote is down.
func (s *Store) Get(ctx context.Context, id string) (*models.Suggestion, error) {
	var remoteErr error
	if s.remote != nil {
		sg, err := s.remote.Get(ctx, id)
		if err == nil {
			return sg, nil
		}
		remoteErr = err
	}

	sg, err := s.local.Get(ctx, id)
	if err != nil {
		if s.remote == nil {
			return nil, err
		}
		return nil, s.wrap("get", remoteErr, err)
	}
	return sg, nil
}

// UpdateStatus applies a review transition.
func (s *Store) UpdateStatus(ctx context.Context, id string, ch StatusChange) error {
	return s.write(ctx, "update_status", func(b Backend) error {
		return b.UpdateStatus(ctx, id, ch)
	})
}

// AppendComment appends a comment to a suggestion's thread. The remote
// backend appends atomically; the local backend does a read-modify-write
// under its own lock. Both preserve append order.
func (s *Store) AppendComment(ctx context.Context, id string, c models.Comment) error {
	return s.write(ctx, "append_comment", func(b Backend) error {
		return b.AppendComment(ctx, id, c)
	})
}

// write runs one logical write remote-first with a single fallback hop to
// the local backend. At most one backend succeeds per call.
func (s *Store) write(ctx context.Context, op string, fn func(Backend) error) error {
	var remoteErr error
	if s.remote != nil {
		if err := fn(s.remote); err == nil {
			s.last.Store(BackendRemote)
			return nil
		} else {
			remoteErr = err
			s.fellBack(ctx, op, err)
		}
	}

	if err := fn(s.local); err != nil {
		if s.remote == nil {
			return err
		}
		return s.wrap(op, remoteErr, err)
	}
	s.last.Store(BackendLocal)
	return nil
}

func (s *Store) fellBack(ctx context.Context, op string, err error) {
	metrics.RecordStoreFallback(op)
	slog.WarnContext(ctx, "remote suggestion store failed, falling back to local",
		"op", op, "error", err)
}

// wrap combines a remote and a local failure. A clean miss on both tiers
// stays a not-found; anything else counts as a persistence failure.
func (s *Store) wrap(op string, remoteErr, localErr error) error {
	if errors.Is(localErr, ErrSuggestionNotFound) &&
		(remoteErr == nil || errors.Is(remoteErr, ErrSuggestionNotFound)) {
		return ErrSuggestionNotFound
	}
	return fmt.Errorf("%w: %s (remote: %v; local: %v)", ErrPersistence, op, remoteErr, localErr)
}
