// Package metadata records where a note was published in its own header.
package metadata

import (
	"context"
	"fmt"

	"github.com/starford/gistnote/internal/frontmatter"
	"github.com/starford/gistnote/internal/models"
	"github.com/starford/gistnote/internal/workspace"
)

// Writer sets gist_id and gist_url on a document's header.
type Writer struct {
	headers workspace.HeaderStore
}

// NewWriter creates a Writer over headers.
func NewWriter(headers workspace.HeaderStore) *Writer {
	return &Writer{headers: headers}
}

// RecordMetadata merges meta into the header of doc, creating the header if
// needed. Other keys and the body are left as they are. Nothing is written
// when the header already holds the same values.
func (w *Writer) RecordMetadata(ctx context.Context, doc models.Document, meta models.SnippetMetadata) error {
	h, err := w.headers.ReadHeader(ctx, doc)
	if err != nil {
		return fmt.Errorf("metadata: read header: %w", err)
	}
	if h == nil {
		h = frontmatter.NewHeader()
	}
	if !frontmatter.Merge(h, meta.ID, meta.URL) {
		return nil
	}
	if err := w.headers.WriteHeader(ctx, doc, h); err != nil {
		return fmt.Errorf("metadata: write header: %w", err)
	}
	return nil
}

// TrackingID returns the gist_id recorded in doc's header, or "" when absent.
func (w *Writer) TrackingID(ctx context.Context, doc models.Document) (string, error) {
	h, err := w.headers.ReadHeader(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("metadata: read header: %w", err)
	}
	if h == nil {
		return "", nil
	}
	id, _ := h.Get(frontmatter.KeyGistID)
	return id, nil
}
