package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"contentops/internal/diff"
	"contentops/internal/models"
	"contentops/internal/review"
	"contentops/internal/session"
	"contentops/internal/store"
)

// memKV is an in-memory stand-in for the bbolt adapter.
type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemKV() *memKV { return &memKV{data: map[string][]byte{}} }

func (m *memKV) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memKV) Set(key string, val []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), val...)
	return nil
}

// countingStore wraps a real backend and counts Create calls.
type countingStore struct {
	Store
	creates int
}

func (c *countingStore) Create(ctx context.Context, s *models.Suggestion) (string, error) {
	c.creates++
	return c.Store.Create(ctx, s)
}

// spyNotifier records every suggestion it was told about.
type spyNotifier struct {
	mu   sync.Mutex
	seen []*models.Suggestion
}

func (n *spyNotifier) SuggestionCreated(_ context.Context, s *models.Suggestion) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seen = append(n.seen, s)
}

func newTestEngine(t *testing.T) (*Engine, *store.Local, *countingStore, *spyNotifier) {
	t.Helper()
	local := store.NewLocal(newMemKV())
	st := store.New(nil, local)
	counting := &countingStore{Store: st}
	notifier := &spyNotifier{}
	machine := review.New(st, review.Options{AllowResolvedComments: true})
	eng := New(session.NewTracker(), diff.New(), counting, machine, local, notifier)
	return eng, local, counting, notifier
}

func TestSaveSuggestionWithoutBaseline(t *testing.T) {
	eng, _, counting, _ := newTestEngine(t)

	_, err := eng.SaveSuggestion(context.Background(), "art-1", "new text", models.Author{ID: "u1"})
	if !errors.Is(err, ErrNoBaseline) {
		t.Fatalf("err = %v, want ErrNoBaseline", err)
	}
	if counting.creates != 0 {
		t.Errorf("creates = %d, want 0", counting.creates)
	}
}

func TestUnchangedContentPersistsNothing(t *testing.T) {
	eng, _, counting, notifier := newTestEngine(t)

	eng.StartSession("art-1", "same text")
	_, err := eng.SaveSuggestion(context.Background(), "art-1", "same text", models.Author{ID: "u1"})
	if !errors.Is(err, ErrNoChanges) {
		t.Fatalf("err = %v, want ErrNoChanges", err)
	}
	if counting.creates != 0 {
		t.Errorf("creates = %d, want 0", counting.creates)
	}
	if len(notifier.seen) != 0 {
		t.Errorf("notifications = %d, want 0", len(notifier.seen))
	}
}

func TestSaveSuggestionHappyPath(t *testing.T) {
	eng, _, _, notifier := newTestEngine(t)
	ctx := context.Background()

	eng.StartSession("art-1", "the cat sat")
	id, err := eng.SaveSuggestion(ctx, "art-1", "the dog sat", models.Author{ID: "u1", Name: "Pat"})
	if err != nil {
		t.Fatalf("SaveSuggestion: %v", err)
	}
	if id == "" {
		t.Fatal("expected a suggestion id")
	}

	list, err := eng.ListSuggestions(ctx, "art-1")
	if err != nil {
		t.Fatalf("ListSuggestions: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
	s := list[0]
	if s.Status != models.StatusPending {
		t.Errorf("Status = %q, want pending", s.Status)
	}
	if s.OriginalContent != "the cat sat" || s.NewContent != "the dog sat" {
		t.Errorf("content not preserved: %q -> %q", s.OriginalContent, s.NewContent)
	}
	if s.Diff.IsNoop() {
		t.Error("diff should not be a no-op")
	}

	if len(notifier.seen) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifier.seen))
	}
	if notifier.seen[0].ID != id {
		t.Errorf("notified id = %q, want %q", notifier.seen[0].ID, id)
	}
}

func TestBaselineRecoveredFromCache(t *testing.T) {
	eng, local, _, _ := newTestEngine(t)
	ctx := context.Background()

	// Session started, then the process "restarts": tracker state is gone
	// but the cached article survives.
	eng.StartSession("art-1", "original text")
	eng.EndSession("art-1")

	if got, ok := local.CachedArticle("art-1"); !ok || got != "original text" {
		t.Fatalf("cached article = %q, %v", got, ok)
	}

	id, err := eng.SaveSuggestion(ctx, "art-1", "revised text", models.Author{ID: "u1"})
	if err != nil {
		t.Fatalf("SaveSuggestion after restart: %v", err)
	}
	if id == "" {
		t.Fatal("expected a suggestion id")
	}
}

func TestUpdateBaselineEndsSession(t *testing.T) {
	eng, local, _, _ := newTestEngine(t)
	ctx := context.Background()

	eng.StartSession("art-1", "stale baseline")
	if err := eng.UpdateBaseline("art-1", "fresh baseline"); err != nil {
		t.Fatalf("UpdateBaseline: %v", err)
	}

	if got, ok := local.CachedArticle("art-1"); !ok || got != "fresh baseline" {
		t.Fatalf("cached article = %q, %v", got, ok)
	}

	// The next save must diff against the fresh baseline, not the stale
	// session one.
	_, err := eng.SaveSuggestion(ctx, "art-1", "fresh baseline", models.Author{ID: "u1"})
	if !errors.Is(err, ErrNoChanges) {
		t.Fatalf("err = %v, want ErrNoChanges against fresh baseline", err)
	}
}

func TestRejectThenListShowsRejected(t *testing.T) {
	eng, _, _, _ := newTestEngine(t)
	ctx := context.Background()

	eng.StartSession("art-1", "before")
	id, err := eng.SaveSuggestion(ctx, "art-1", "after", models.Author{ID: "u1"})
	if err != nil {
		t.Fatalf("SaveSuggestion: %v", err)
	}

	if err := eng.Reject(ctx, id); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	list, err := eng.ListSuggestions(ctx, "art-1")
	if err != nil {
		t.Fatalf("ListSuggestions: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
	if list[0].Status != models.StatusRejected {
		t.Errorf("Status = %q, want rejected", list[0].Status)
	}
	if list[0].RejectedAt == nil {
		t.Error("RejectedAt should be set")
	}
	if list[0].ApprovedAt != nil {
		t.Error("ApprovedAt should be nil")
	}
}

func TestAddCommentRoundTrip(t *testing.T) {
	eng, _, _, _ := newTestEngine(t)
	ctx := context.Background()

	eng.StartSession("art-1", "before")
	id, err := eng.SaveSuggestion(ctx, "art-1", "after", models.Author{ID: "u1"})
	if err != nil {
		t.Fatalf("SaveSuggestion: %v", err)
	}

	c, err := eng.AddComment(ctx, id, "looks good", models.Author{ID: "u2", Name: "Reviewer"})
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if c.ID == "" || c.Text != "looks good" {
		t.Errorf("comment = %+v", c)
	}

	list, err := eng.ListSuggestions(ctx, "art-1")
	if err != nil {
		t.Fatalf("ListSuggestions: %v", err)
	}
	if len(list[0].Comments) != 1 {
		t.Fatalf("comments = %d, want 1", len(list[0].Comments))
	}
	if list[0].Comments[0].AuthorName != "Reviewer" {
		t.Errorf("AuthorName = %q", list[0].Comments[0].AuthorName)
	}
}

func TestNilDifferFallsBackToCoarse(t *testing.T) {
	local := store.NewLocal(newMemKV())
	st := store.New(nil, local)
	machine := review.New(st, review.Options{})
	eng := New(session.NewTracker(), nil, st, machine, local, nil)
	ctx := context.Background()

	eng.StartSession("art-1", "before")
	id, err := eng.SaveSuggestion(ctx, "art-1", "after", models.Author{ID: "u1"})
	if err != nil {
		t.Fatalf("SaveSuggestion: %v", err)
	}

	list, err := eng.ListSuggestions(ctx, "art-1")
	if err != nil {
		t.Fatalf("ListSuggestions: %v", err)
	}
	entries := list[0].Diff.Entries
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want coarse delete+insert", len(entries))
	}
	if entries[0].Op != models.OpDelete || entries[1].Op != models.OpInsert {
		t.Errorf("ops = %q, %q", entries[0].Op, entries[1].Op)
	}
	if id == "" {
		t.Error("expected a suggestion id")
	}
}
