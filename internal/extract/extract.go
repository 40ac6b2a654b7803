// Package extract pulls readable article text from external web pages, so
// editors can seed a draft from a source URL.
package extract

import (
	"fmt"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const extractTimeout = 30 * time.Second

// Result is the readable portion of a fetched page.
type Result struct {
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	Content string `json:"content"` // plain text
	HTML    string `json:"html"`    // sanitized article HTML
}

// FromURL fetches the page at url and extracts its readable content.
// The caller is expected to have validated the URL first.
func FromURL(url string) (*Result, error) {
	article, err := readability.FromURL(url, extractTimeout)
	if err != nil {
		return nil, fmt.Errorf("readability extraction failed: %w", err)
	}

	return &Result{
		Title:   article.Title,
		Excerpt: article.Excerpt,
		Content: article.TextContent,
		HTML:    article.Content,
	}, nil
}
