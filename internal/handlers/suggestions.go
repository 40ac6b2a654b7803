package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"

	"contentops/internal/models"
	"contentops/internal/review"
	"contentops/internal/store"
	"contentops/internal/validation"
	"contentops/internal/workflow"
)

// SuggestionHandler exposes the suggestion lifecycle over HTTP.
type SuggestionHandler struct {
	engine *workflow.Engine
}

// NewSuggestionHandler creates a new suggestion handler.
func NewSuggestionHandler(engine *workflow.Engine) *SuggestionHandler {
	return &SuggestionHandler{engine: engine}
}

type sessionRequest struct {
	Content string `json:"content"`
}

// StartSession begins an edit session for an article, capturing its current
// content as the baseline for later diffs.
func (h *SuggestionHandler) StartSession(c fiber.Ctx) error {
	articleID := c.Params("id")
	if valid, msg := validation.ValidateArticleID(articleID); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	var req sessionRequest
	if err := c.Bind().Body(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	h.engine.StartSession(articleID, req.Content)
	return c.SendStatus(fiber.StatusNoContent)
}

type createSuggestionRequest struct {
	Content string        `json:"content"`
	Author  models.Author `json:"author"`
}

// Create diffs the submitted content against the article baseline and
// persists it as a pending suggestion.
func (h *SuggestionHandler) Create(c fiber.Ctx) error {
	articleID := c.Params("id")
	if valid, msg := validation.ValidateArticleID(articleID); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	var req createSuggestionRequest
	if err := c.Bind().Body(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if valid, msg := validation.ValidateAuthor(req.Author.ID, req.Author.Name); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	id, err := h.engine.SaveSuggestion(c.Context(), articleID, req.Content, req.Author)
	switch {
	case errors.Is(err, workflow.ErrNoChanges):
		// Nothing to suggest; not an error for the caller.
		return jsonSuccess(c, fiber.StatusOK, nil)
	case errors.Is(err, workflow.ErrNoBaseline):
		return jsonError(c, fiber.StatusUnprocessableEntity, "no edit session or cached baseline for article")
	case err != nil:
		return jsonError(c, fiber.StatusInternalServerError, "failed to save suggestion")
	}

	return jsonSuccess(c, fiber.StatusCreated, fiber.Map{"id": id})
}

// List returns an article's suggestions, newest first.
func (h *SuggestionHandler) List(c fiber.Ctx) error {
	articleID := c.Params("id")
	if valid, msg := validation.ValidateArticleID(articleID); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	list, err := h.engine.ListSuggestions(c.Context(), articleID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load suggestions")
	}
	return jsonSuccess(c, fiber.StatusOK, list)
}

// Approve marks a suggestion approved.
func (h *SuggestionHandler) Approve(c fiber.Ctx) error {
	return h.transition(c, h.engine.Approve)
}

// Reject marks a suggestion rejected.
func (h *SuggestionHandler) Reject(c fiber.Ctx) error {
	return h.transition(c, h.engine.Reject)
}

func (h *SuggestionHandler) transition(c fiber.Ctx, fn func(ctx context.Context, id string) error) error {
	id := c.Params("id")
	if id == "" {
		return jsonError(c, fiber.StatusBadRequest, "suggestion id is required")
	}

	err := fn(c.Context(), id)
	switch {
	case errors.Is(err, store.ErrSuggestionNotFound):
		return jsonError(c, fiber.StatusNotFound, "suggestion not found")
	case errors.Is(err, review.ErrAlreadyResolved):
		return jsonError(c, fiber.StatusConflict, "suggestion already resolved")
	case err != nil:
		return jsonError(c, fiber.StatusInternalServerError, "failed to update suggestion")
	}

	return jsonSuccess(c, fiber.StatusOK, nil)
}

type commentRequest struct {
	Text   string        `json:"text"`
	Author models.Author `json:"author"`
}

// AddComment appends a comment to a suggestion's thread.
func (h *SuggestionHandler) AddComment(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return jsonError(c, fiber.StatusBadRequest, "suggestion id is required")
	}

	var req commentRequest
	if err := c.Bind().Body(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if valid, msg := validation.ValidateCommentText(req.Text); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	if valid, msg := validation.ValidateAuthor(req.Author.ID, req.Author.Name); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	comment, err := h.engine.AddComment(c.Context(), id, req.Text, req.Author)
	switch {
	case errors.Is(err, store.ErrSuggestionNotFound):
		return jsonError(c, fiber.StatusNotFound, "suggestion not found")
	case errors.Is(err, review.ErrCommentsClosed):
		return jsonError(c, fiber.StatusConflict, "comments are closed for this suggestion")
	case err != nil:
		return jsonError(c, fiber.StatusInternalServerError, "failed to add comment")
	}

	return jsonSuccess(c, fiber.StatusCreated, comment)
}
