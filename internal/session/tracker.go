// Package session tracks transient edit sessions. A session captures the
// text of an article at the moment an editor opened it, so a structural diff
// can be computed against the edited text later.
package session

import (
	"sync"
	"time"
)

// Session is the per-article baseline captured when an edit began. Sessions
// are process-local and deliberately not persisted: a restart loses the
// baseline and the workflow falls back to the cached copy of the article.
type Session struct {
	ArticleID       string
	OriginalContent string
	StartedAt       time.Time
}

// Tracker holds at most one session per article.
type Tracker struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{sessions: make(map[string]Session)}
}

// Start captures the baseline for an article, overwriting any session that
// already exists for it.
func (t *Tracker) Start(articleID, originalContent string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[articleID] = Session{
		ArticleID:       articleID,
		OriginalContent: originalContent,
		StartedAt:       time.Now().UTC(),
	}
}

// Baseline returns the captured original content for an article, or false if
// no session was started.
func (t *Tracker) Baseline(articleID string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[articleID]
	return s.OriginalContent, ok
}

// End discards the session for an article, if any.
func (t *Tracker) End(articleID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, articleID)
}
