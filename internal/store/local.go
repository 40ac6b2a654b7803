package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"contentops/internal/models"
)

// Local KV layout: the whole suggestion collection lives under one
// namespace key as a serialized JSON array, and cached article text lives
// under one key per article.
const (
	suggestionsKey = "contentops:suggestions"
	articlePrefix  = "contentops:article:"
)

// KV is the narrow key-value surface the local backend needs. The bbolt
// storage adapter satisfies it; tests use an in-memory map.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
}

// Local is the single-device fallback backend. All suggestion mutations are
// read-modify-write on the serialized collection, guarded by a process-local
// mutex; writes are immediately visible to local reads.
type Local struct {
	mu sync.Mutex
	kv KV
}

// NewLocal creates a local backend over the given key-value store.
func NewLocal(kv KV) *Local {
	return &Local{kv: kv}
}

func (l *Local) load() ([]models.Suggestion, error) {
	raw, err := l.kv.Get(suggestionsKey)
	if err != nil {
		return nil, fmt.Errorf("read local suggestions: %w", err)
	}
	if len(raw) == 0 {
		return []models.Suggestion{}, nil
	}
	var list []models.Suggestion
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode local suggestions: %w", err)
	}
	return list, nil
}

func (l *Local) save(list []models.Suggestion) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode local suggestions: %w", err)
	}
	if err := l.kv.Set(suggestionsKey, raw, 0); err != nil {
		return fmt.Errorf("write local suggestions: %w", err)
	}
	return nil
}

// Create appends the suggestion to the local collection under a
// client-generated timestamp-based id.
func (l *Local) Create(ctx context.Context, s *models.Suggestion) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, err := l.load()
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	stored := *s
	stored.ID = fmt.Sprintf("suggestion_%s_%d", s.ArticleID, now.UnixNano())
	if stored.Status == "" {
		stored.Status = models.StatusPending
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = stored.CreatedAt
	}
	if stored.Comments == nil {
		stored.Comments = []models.Comment{}
	}

	list = append(list, stored)
	if err := l.save(list); err != nil {
		return "", err
	}
	return stored.ID, nil
}

// Query returns the article's suggestions newest first. Records are appended
// in creation order, so reverse iteration gives the right ordering without a
// sort.
func (l *Local) Query(ctx context.Context, articleID string) ([]models.Suggestion, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, err := l.load()
	if err != nil {
		return nil, err
	}

	result := []models.Suggestion{}
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].ArticleID == articleID {
			result = append(result, list[i])
		}
	}
	return result, nil
}

// Get returns a single suggestion by id.
func (l *Local) Get(ctx context.Context, id string) (*models.Suggestion, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, err := l.load()
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			s := list[i]
			return &s, nil
		}
	}
	return nil, ErrSuggestionNotFound
}

// UpdateStatus applies a review transition to the stored record.
func (l *Local) UpdateStatus(ctx context.Context, id string, ch StatusChange) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, err := l.load()
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID != id {
			continue
		}
		at := ch.At
		list[i].Status = ch.Status
		list[i].UpdatedAt = at
		switch ch.Status {
		case models.StatusApproved:
			list[i].ApprovedAt = &at
		case models.StatusRejected:
			list[i].RejectedAt = &at
		}
		return l.save(list)
	}
	return ErrSuggestionNotFound
}

// AppendComment appends to the record's comment thread. Prior comments are
// never removed or reordered.
func (l *Local) AppendComment(ctx context.Context, id string, c models.Comment) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, err := l.load()
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID != id {
			continue
		}
		list[i].Comments = append(list[i].Comments, c)
		list[i].UpdatedAt = c.CreatedAt
		return l.save(list)
	}
	return ErrSuggestionNotFound
}

// CacheArticle stores the last saved copy of an article's text. The cached
// copy doubles as the baseline recovery source when no edit session exists.
func (l *Local) CacheArticle(articleID, content string) error {
	if err := l.kv.Set(articlePrefix+articleID, []byte(content), 0); err != nil {
		return fmt.Errorf("cache article %s: %w", articleID, err)
	}
	return nil
}

// CachedArticle returns the cached text for an article, if any.
func (l *Local) CachedArticle(articleID string) (string, bool) {
	raw, err := l.kv.Get(articlePrefix + articleID)
	if err != nil || len(raw) == 0 {
		return "", false
	}
	return string(raw), true
}
