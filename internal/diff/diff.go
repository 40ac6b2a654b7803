// Package diff computes the structural difference between two text blobs.
//
// Two strategies exist: Semantic, backed by a character-level LCS diff with a
// semantic cleanup pass that merges adjacent micro-edits into readable spans,
// and Coarse, a whole-blob fallback that trades precision for availability.
// Neither strategy ever fails.
package diff

import (
	"github.com/sergi/go-diff/diffmatchpatch"

	"contentops/internal/models"
)

// Differ computes a diff between an original and a modified text blob.
// Implementations always return a result; they degrade in precision instead
// of erroring.
type Differ interface {
	Diff(original, modified string) models.DiffResult
}

// New returns the default differ used in production.
func New() Differ {
	return Semantic{}
}

// Semantic produces a character-level diff cleaned up into coherent edit
// spans, so a single word-level edit is not split into multiple one-character
// operations.
type Semantic struct{}

// Diff implements Differ.
func (Semantic) Diff(original, modified string) models.DiffResult {
	m := diffmatchpatch.New()
	diffs := m.DiffMain(original, modified, false)
	diffs = m.DiffCleanupSemantic(diffs)

	entries := make([]models.DiffEntry, 0, len(diffs))
	var added, deleted int
	for _, d := range diffs {
		var op string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = models.OpInsert
			added++
		case diffmatchpatch.DiffDelete:
			op = models.OpDelete
			deleted++
		default:
			op = models.OpEqual
		}
		entries = append(entries, models.DiffEntry{Op: op, Text: d.Text})
	}

	return summarize(entries, added, deleted)
}

// Coarse is the fallback strategy: identical blobs yield a single equal
// entry, anything else yields one delete of the original followed by one
// insert of the modified text.
type Coarse struct{}

// Diff implements Differ.
func (Coarse) Diff(original, modified string) models.DiffResult {
	if original == modified {
		return summarize([]models.DiffEntry{{Op: models.OpEqual, Text: original}}, 0, 0)
	}

	entries := make([]models.DiffEntry, 0, 2)
	var added, deleted int
	if original != "" {
		entries = append(entries, models.DiffEntry{Op: models.OpDelete, Text: original})
		deleted++
	}
	if modified != "" {
		entries = append(entries, models.DiffEntry{Op: models.OpInsert, Text: modified})
		added++
	}
	return summarize(entries, added, deleted)
}

// summarize attaches the derived counters. ModifiedLines is defined as
// max(AddedLines, DeletedLines).
func summarize(entries []models.DiffEntry, added, deleted int) models.DiffResult {
	modified := added
	if deleted > modified {
		modified = deleted
	}
	return models.DiffResult{
		Entries:       entries,
		AddedLines:    added,
		DeletedLines:  deleted,
		ModifiedLines: modified,
	}
}
