// Package workflow ties the session tracker, differ, suggestion store and
// review machinery into the single entry point the HTTP handlers use.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"contentops/internal/diff"
	"contentops/internal/models"
	"contentops/internal/review"
	"contentops/internal/session"
)

var (
	// ErrNoBaseline is returned when a suggestion is saved for an article
	// that has no active edit session and no cached baseline to diff against.
	ErrNoBaseline = errors.New("no baseline captured for article")

	// ErrNoChanges is returned when the modified content is identical to
	// the baseline. Nothing is persisted in that case.
	ErrNoChanges = errors.New("content is unchanged")
)

// Store is the subset of the suggestion store the engine writes through.
type Store interface {
	Create(ctx context.Context, s *models.Suggestion) (string, error)
	Query(ctx context.Context, articleID string) ([]models.Suggestion, error)
}

// BaselineCache persists article baselines across sessions so that a
// restarted process can still diff against the last known content.
type BaselineCache interface {
	CacheArticle(articleID, content string) error
	CachedArticle(articleID string) (string, bool)
}

// Notifier is told about newly created suggestions. Implementations must
// not block; delivery failures never fail the save.
type Notifier interface {
	SuggestionCreated(ctx context.Context, s *models.Suggestion)
}

// Engine orchestrates the suggestion lifecycle: baseline capture, diffing,
// persistence, review transitions and notification fan-out.
type Engine struct {
	tracker  *session.Tracker
	differ   diff.Differ
	store    Store
	reviews  *review.Machine
	baseline BaselineCache
	notifier Notifier
}

// New assembles an engine. A nil differ falls back to the coarse strategy,
// and notifier may be nil when notifications are disabled.
func New(tracker *session.Tracker, differ diff.Differ, store Store, reviews *review.Machine, baseline BaselineCache, notifier Notifier) *Engine {
	if differ == nil {
		differ = diff.Coarse{}
	}
	return &Engine{
		tracker:  tracker,
		differ:   differ,
		store:    store,
		reviews:  reviews,
		baseline: baseline,
		notifier: notifier,
	}
}

// StartSession captures the article's current content as the baseline for
// subsequent diffs. Starting a session for an article that already has one
// replaces the old baseline.
func (e *Engine) StartSession(articleID, content string) {
	e.tracker.Start(articleID, content)
	if e.baseline != nil {
		if err := e.baseline.CacheArticle(articleID, content); err != nil {
			slog.Warn("failed to cache article baseline", "article_id", articleID, "error", err)
		}
	}
}

// UpdateBaseline records new article content without starting a session.
// Used when an article is saved outside the suggestion flow, so later
// sessions diff against the current text.
func (e *Engine) UpdateBaseline(articleID, content string) error {
	if e.tracker != nil {
		e.tracker.End(articleID)
	}
	if e.baseline == nil {
		return nil
	}
	return e.baseline.CacheArticle(articleID, content)
}

// SaveSuggestion diffs the modified content against the article baseline and
// persists the result as a pending suggestion. Returns the new suggestion id.
//
// The baseline comes from the active session when there is one, otherwise
// from the baseline cache. When neither holds the article, ErrNoBaseline is
// returned. An unchanged document returns ErrNoChanges without persisting.
func (e *Engine) SaveSuggestion(ctx context.Context, articleID, modified string, author models.Author) (string, error) {
	baseline, ok := e.tracker.Baseline(articleID)
	if !ok && e.baseline != nil {
		baseline, ok = e.baseline.CachedArticle(articleID)
	}
	if !ok {
		return "", ErrNoBaseline
	}

	result := e.differ.Diff(baseline, modified)
	if result.IsNoop() {
		return "", ErrNoChanges
	}

	s := &models.Suggestion{
		ArticleID:       articleID,
		OriginalContent: baseline,
		NewContent:      modified,
		Diff:            result,
		Author:          author,
		Status:          models.StatusPending,
		Comments:        []models.Comment{},
	}

	id, err := e.store.Create(ctx, s)
	if err != nil {
		return "", fmt.Errorf("persisting suggestion: %w", err)
	}
	s.ID = id

	if e.notifier != nil {
		e.notifier.SuggestionCreated(ctx, s)
	}
	return id, nil
}

// ListSuggestions returns all suggestions for an article, newest first.
func (e *Engine) ListSuggestions(ctx context.Context, articleID string) ([]models.Suggestion, error) {
	return e.store.Query(ctx, articleID)
}

// Approve marks a pending suggestion approved.
func (e *Engine) Approve(ctx context.Context, suggestionID string) error {
	return e.reviews.Approve(ctx, suggestionID)
}

// Reject marks a pending suggestion rejected.
func (e *Engine) Reject(ctx context.Context, suggestionID string) error {
	return e.reviews.Reject(ctx, suggestionID)
}

// AddComment appends a review comment to a suggestion.
func (e *Engine) AddComment(ctx context.Context, suggestionID, text string, author models.Author) (*models.Comment, error) {
	return e.reviews.AddComment(ctx, suggestionID, text, author)
}

// EndSession drops the in-memory baseline for an article. The cached
// baseline survives so a later save can still recover it.
func (e *Engine) EndSession(articleID string) {
	e.tracker.End(articleID)
}
