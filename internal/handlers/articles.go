package handlers

import (
	"github.com/gofiber/fiber/v3"

	"contentops/internal/extract"
	"contentops/internal/validation"
	"contentops/internal/workflow"
)

// ArticleHandler covers the article-side operations: recording saved content
// as the diff baseline and seeding drafts from external pages.
type ArticleHandler struct {
	engine *workflow.Engine
}

// NewArticleHandler creates a new article handler.
func NewArticleHandler(engine *workflow.Engine) *ArticleHandler {
	return &ArticleHandler{engine: engine}
}

type contentRequest struct {
	Content string `json:"content"`
}

// UpdateContent records an article's saved content so future suggestion
// sessions diff against the current text. Any open session for the article
// is ended.
func (h *ArticleHandler) UpdateContent(c fiber.Ctx) error {
	articleID := c.Params("id")
	if valid, msg := validation.ValidateArticleID(articleID); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	var req contentRequest
	if err := c.Bind().Body(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.engine.UpdateBaseline(articleID, req.Content); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to record article content")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Fetch extracts readable content from an external page. The URL is
// validated against private and reserved addresses before any request is
// made.
func (h *ArticleHandler) Fetch(c fiber.Ctx) error {
	url := c.Query("url")
	if valid, msg := validation.ValidateFetchURL(url); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	result, err := extract.FromURL(url)
	if err != nil {
		return jsonError(c, fiber.StatusBadGateway, "failed to extract content")
	}
	return jsonSuccess(c, fiber.StatusOK, result)
}
