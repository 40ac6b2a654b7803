package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"

	"contentops/internal/diff"
	"contentops/internal/review"
	"contentops/internal/session"
	"contentops/internal/store"
	"contentops/internal/workflow"
)

type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

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

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	local := store.NewLocal(&memKV{data: map[string][]byte{}})
	st := store.New(nil, local)
	machine := review.New(st, review.Options{AllowResolvedComments: true})
	engine := workflow.New(session.NewTracker(), diff.New(), st, machine, local, nil)

	app := fiber.New()
	sh := NewSuggestionHandler(engine)
	ah := NewArticleHandler(engine)

	api := app.Group("/api")
	api.Post("/articles/:id/session", sh.StartSession)
	api.Put("/articles/:id/content", ah.UpdateContent)
	api.Post("/articles/:id/suggestions", sh.Create)
	api.Get("/articles/:id/suggestions", sh.List)
	api.Post("/suggestions/:id/approve", sh.Approve)
	api.Post("/suggestions/:id/reject", sh.Reject)
	api.Post("/suggestions/:id/comments", sh.AddComment)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	raw, _ := io.ReadAll(resp.Body)
	var decoded map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("%s %s: invalid JSON %q", method, path, raw)
		}
	}
	return resp, decoded
}

func testAuthor() map[string]any {
	return map[string]any{"id": "u1", "name": "Pat Doe", "email": "pat@example.com"}
}

func startSessionAndSuggest(t *testing.T, app *fiber.App, articleID, baseline, modified string) string {
	t.Helper()

	resp, _ := doJSON(t, app, "POST", "/api/articles/"+articleID+"/session", map[string]any{"content": baseline})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("start session: status %d", resp.StatusCode)
	}

	resp, body := doJSON(t, app, "POST", "/api/articles/"+articleID+"/suggestions", map[string]any{
		"content": modified,
		"author":  testAuthor(),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create suggestion: status %d, body %v", resp.StatusCode, body)
	}

	data := body["data"].(map[string]any)
	id, _ := data["id"].(string)
	if id == "" {
		t.Fatalf("create suggestion: no id in %v", body)
	}
	return id
}

func TestCreateAndListSuggestions(t *testing.T) {
	app := newTestApp(t)

	id := startSessionAndSuggest(t, app, "art-1", "the cat sat", "the dog sat")

	resp, body := doJSON(t, app, "GET", "/api/articles/art-1/suggestions", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: status %d", resp.StatusCode)
	}
	list := body["data"].([]any)
	if len(list) != 1 {
		t.Fatalf("list: %d suggestions, want 1", len(list))
	}
	s := list[0].(map[string]any)
	if s["id"] != id {
		t.Errorf("id = %v, want %v", s["id"], id)
	}
	if s["status"] != "pending" {
		t.Errorf("status = %v, want pending", s["status"])
	}
	if s["originalContent"] != "the cat sat" || s["newContent"] != "the dog sat" {
		t.Errorf("content not preserved: %v -> %v", s["originalContent"], s["newContent"])
	}
}

func TestCreateSuggestionUnchangedContent(t *testing.T) {
	app := newTestApp(t)

	doJSON(t, app, "POST", "/api/articles/art-1/session", map[string]any{"content": "same"})

	resp, body := doJSON(t, app, "POST", "/api/articles/art-1/suggestions", map[string]any{
		"content": "same",
		"author":  testAuthor(),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["data"] != nil {
		t.Errorf("data = %v, want null", body["data"])
	}

	resp, body = doJSON(t, app, "GET", "/api/articles/art-1/suggestions", nil)
	if n := len(body["data"].([]any)); n != 0 {
		t.Errorf("suggestions = %d, want 0", n)
	}
	_ = resp
}

func TestCreateSuggestionWithoutBaseline(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, "POST", "/api/articles/art-1/suggestions", map[string]any{
		"content": "text",
		"author":  testAuthor(),
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
}

func TestCreateSuggestionMissingAuthor(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, "POST", "/api/articles/art-1/suggestions", map[string]any{
		"content": "text",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestApproveAndRejectFlow(t *testing.T) {
	app := newTestApp(t)

	id := startSessionAndSuggest(t, app, "art-1", "before", "after")

	resp, _ := doJSON(t, app, "POST", "/api/suggestions/"+id+"/approve", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve: status %d", resp.StatusCode)
	}

	// Crossing terminal states is a conflict.
	resp, _ = doJSON(t, app, "POST", "/api/suggestions/"+id+"/reject", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("reject after approve: status %d, want 409", resp.StatusCode)
	}

	// Re-approving is idempotent.
	resp, _ = doJSON(t, app, "POST", "/api/suggestions/"+id+"/approve", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("re-approve: status %d", resp.StatusCode)
	}

	_, body := doJSON(t, app, "GET", "/api/articles/art-1/suggestions", nil)
	s := body["data"].([]any)[0].(map[string]any)
	if s["status"] != "approved" {
		t.Errorf("status = %v, want approved", s["status"])
	}
	if s["approvedAt"] == nil {
		t.Error("approvedAt should be set")
	}
}

func TestTransitionUnknownSuggestion(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, "POST", "/api/suggestions/does-not-exist/approve", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestAddCommentFlow(t *testing.T) {
	app := newTestApp(t)

	id := startSessionAndSuggest(t, app, "art-1", "before", "after")

	resp, body := doJSON(t, app, "POST", "/api/suggestions/"+id+"/comments", map[string]any{
		"text":   "needs a source",
		"author": testAuthor(),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add comment: status %d, body %v", resp.StatusCode, body)
	}
	c := body["data"].(map[string]any)
	if c["text"] != "needs a source" {
		t.Errorf("text = %v", c["text"])
	}
	if c["id"] == "" || c["id"] == nil {
		t.Error("comment id missing")
	}

	_, body = doJSON(t, app, "GET", "/api/articles/art-1/suggestions", nil)
	s := body["data"].([]any)[0].(map[string]any)
	comments := s["comments"].([]any)
	if len(comments) != 1 {
		t.Fatalf("comments = %d, want 1", len(comments))
	}
}

func TestAddCommentEmptyText(t *testing.T) {
	app := newTestApp(t)

	id := startSessionAndSuggest(t, app, "art-1", "before", "after")

	resp, _ := doJSON(t, app, "POST", "/api/suggestions/"+id+"/comments", map[string]any{
		"text":   "   ",
		"author": testAuthor(),
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUpdateContentResetsBaseline(t *testing.T) {
	app := newTestApp(t)

	doJSON(t, app, "POST", "/api/articles/art-1/session", map[string]any{"content": "stale"})

	resp, _ := doJSON(t, app, "PUT", "/api/articles/art-1/content", map[string]any{"content": "fresh"})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("update content: status %d", resp.StatusCode)
	}

	// Identical to the fresh baseline, so no suggestion is created.
	resp, body := doJSON(t, app, "POST", "/api/articles/art-1/suggestions", map[string]any{
		"content": "fresh",
		"author":  testAuthor(),
	})
	if resp.StatusCode != http.StatusOK || body["data"] != nil {
		t.Fatalf("status = %d, data = %v; want 200 with null data", resp.StatusCode, body["data"])
	}
}

func TestListOrderedNewestFirst(t *testing.T) {
	app := newTestApp(t)

	for i := 0; i < 3; i++ {
		doJSON(t, app, "POST", "/api/articles/art-1/session", map[string]any{"content": "base"})
		doJSON(t, app, "POST", "/api/articles/art-1/suggestions", map[string]any{
			"content": fmt.Sprintf("revision %d", i),
			"author":  testAuthor(),
		})
	}

	_, body := doJSON(t, app, "GET", "/api/articles/art-1/suggestions", nil)
	list := body["data"].([]any)
	if len(list) != 3 {
		t.Fatalf("suggestions = %d, want 3", len(list))
	}
	first := list[0].(map[string]any)
	if first["newContent"] != "revision 2" {
		t.Errorf("first = %v, want newest (revision 2)", first["newContent"])
	}
}
