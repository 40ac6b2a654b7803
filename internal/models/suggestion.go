package models

import (
	"fmt"
	"time"
)

// Suggestion status values.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Diff operation kinds.
const (
	OpEqual  = "equal"
	OpInsert = "insert"
	OpDelete = "delete"
)

// Author identifies the already-authenticated user a suggestion or comment
// came from. The fields are copied from the caller-supplied identity and are
// not re-validated against an identity provider.
type Author struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Avatar *string `json:"avatar,omitempty"`
}

// DiffEntry is a single operation in a computed diff.
type DiffEntry struct {
	Op   string `json:"op"` // equal, insert, delete
	Text string `json:"text"`
}

// DiffResult is the cached summary of a suggestion's change. It is derived
// from the two content blobs, which remain the source of truth; the result
// can always be recomputed from them.
type DiffResult struct {
	Entries       []DiffEntry `json:"entries"`
	AddedLines    int         `json:"addedLines"`
	DeletedLines  int         `json:"deletedLines"`
	ModifiedLines int         `json:"modifiedLines"`
}

// IsNoop reports whether the diff describes no change at all: no entries, or
// a single equal entry spanning the whole text.
func (d *DiffResult) IsNoop() bool {
	if len(d.Entries) == 0 {
		return true
	}
	return len(d.Entries) == 1 && d.Entries[0].Op == OpEqual
}

// Summary returns a short human-readable description of the change, suitable
// for notification emails.
func (d *DiffResult) Summary() string {
	return fmt.Sprintf("added: %d, deleted: %d, modified: %d", d.AddedLines, d.DeletedLines, d.ModifiedLines)
}

// Comment is a single entry in a suggestion's append-only discussion thread.
type Comment struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	AuthorID     string    `json:"authorId"`
	AuthorName   string    `json:"authorName"`
	AuthorAvatar *string   `json:"authorAvatar,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Suggestion is a durable record proposing a replacement of an article's
// text, carrying its review status and discussion thread. OriginalContent
// and NewContent are immutable after creation; only Status, Comments and the
// timestamps mutate.
type Suggestion struct {
	ID              string     `json:"id"`
	ArticleID       string     `json:"articleId"`
	Author          Author     `json:"author"`
	OriginalContent string     `json:"originalContent"`
	NewContent      string     `json:"newContent"`
	Diff            DiffResult `json:"diff"`
	Status          string     `json:"status"` // pending, approved, rejected
	Comments        []Comment  `json:"comments"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty"`
}

// IsPending returns true if the suggestion is still awaiting review.
func (s *Suggestion) IsPending() bool {
	return s.Status == StatusPending
}

// IsResolved returns true if the suggestion reached a terminal status.
func (s *Suggestion) IsResolved() bool {
	return s.Status == StatusApproved || s.Status == StatusRejected
}
