// Package review implements the three-state suggestion lifecycle:
// pending, then approved or rejected. Approved and rejected are terminal.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contentops/internal/metrics"
	"contentops/internal/models"
	"contentops/internal/store"
)

var (
	// ErrAlreadyResolved means a transition tried to move a suggestion out
	// of a terminal state while reopening is disabled.
	ErrAlreadyResolved = errors.New("suggestion already resolved")

	// ErrCommentsClosed means comments on resolved suggestions are disabled.
	ErrCommentsClosed = errors.New("comments are closed for resolved suggestions")
)

// Store is the persistence surface the state machine needs.
type Store interface {
	Get(ctx context.Context, id string) (*models.Suggestion, error)
	UpdateStatus(ctx context.Context, id string, ch store.StatusChange) error
	AppendComment(ctx context.Context, id string, c models.Comment) error
}

// Options control the lifecycle policy for terminal suggestions.
type Options struct {
	// AllowReopen permits approving a rejected suggestion and vice versa.
	AllowReopen bool
	// AllowResolvedComments permits post-hoc discussion on terminal
	// suggestions.
	AllowResolvedComments bool
}

// Machine applies review transitions to persisted suggestions. Store
// failures surface as transition failures; the record is never mutated
// optimistically.
type Machine struct {
	store Store
	opts  Options
	now   func() time.Time
}

// New creates a state machine over the given store.
func New(s Store, opts Options) *Machine {
	return &Machine{store: s, opts: opts, now: func() time.Time { return time.Now().UTC() }}
}

// Approve marks a pending suggestion approved, stamping approvedAt and
// updatedAt. Re-approving an approved suggestion rewrites the same fields.
func (m *Machine) Approve(ctx context.Context, id string) error {
	return m.transition(ctx, id, models.StatusApproved)
}

// Reject marks a pending suggestion rejected, stamping rejectedAt and
// updatedAt.
func (m *Machine) Reject(ctx context.Context, id string) error {
	return m.transition(ctx, id, models.StatusRejected)
}

func (m *Machine) transition(ctx context.Context, id, target string) error {
	if !m.opts.AllowReopen {
		cur, err := m.store.Get(ctx, id)
		if err != nil {
			return err
		}
		// Re-applying the same terminal status is an idempotent rewrite;
		// crossing terminal states is not.
		if cur.IsResolved() && cur.Status != target {
			return ErrAlreadyResolved
		}
	}

	if err := m.store.UpdateStatus(ctx, id, store.StatusChange{Status: target, At: m.now()}); err != nil {
		return fmt.Errorf("transition to %s: %w", target, err)
	}
	metrics.RecordReviewTransition(target)
	return nil
}

// AddComment appends a comment to the suggestion's thread and returns it.
func (m *Machine) AddComment(ctx context.Context, id, text string, author models.Author) (*models.Comment, error) {
	if !m.opts.AllowResolvedComments {
		cur, err := m.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if cur.IsResolved() {
			return nil, ErrCommentsClosed
		}
	}

	now := m.now()
	c := models.Comment{
		ID:           fmt.Sprintf("comment_%d", now.UnixNano()),
		Text:         text,
		AuthorID:     author.ID,
		AuthorName:   author.Name,
		AuthorAvatar: author.Avatar,
		CreatedAt:    now,
	}
	if err := m.store.AppendComment(ctx, id, c); err != nil {
		return nil, fmt.Errorf("append comment: %w", err)
	}
	return &c, nil
}
