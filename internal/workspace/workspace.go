// Package workspace exposes the vault to commands the way an editor would:
// an active document, its full text, the current selection, and its header.
package workspace

import (
	"context"
	"fmt"
	"path"

	"github.com/starford/gistnote/internal/frontmatter"
	"github.com/starford/gistnote/internal/models"
	"github.com/starford/gistnote/internal/storage"
)

// DocumentReader reads the document a command was invoked on.
type DocumentReader interface {
	// ActiveDocument returns the active document, or ok=false when none is open.
	ActiveDocument() (models.Document, bool)
	// ReadFullText returns the complete current text of doc.
	ReadFullText(ctx context.Context, doc models.Document) (string, error)
	// ReadSelection returns the selected text, or "" when nothing is selected.
	ReadSelection(ctx context.Context) (string, error)
}

// HeaderStore reads and writes a document's frontmatter.
type HeaderStore interface {
	// ReadHeader returns the header of doc, or nil when it has none.
	ReadHeader(ctx context.Context, doc models.Document) (*frontmatter.Header, error)
	// WriteHeader replaces the header of doc, keeping the body unchanged.
	WriteHeader(ctx context.Context, doc models.Document, h *frontmatter.Header) error
}

// Vault is the HeaderStore for notes kept in a storage.Provider, and the
// factory for per-invocation sessions.
type Vault struct {
	store storage.Provider
}

var _ HeaderStore = (*Vault)(nil)

// NewVault wraps store.
func NewVault(store storage.Provider) *Vault {
	return &Vault{store: store}
}

// Store returns the underlying provider.
func (v *Vault) Store() storage.Provider {
	return v.store
}

// Session opens notePath as the active document with an optional selection.
// An empty notePath means no document is active.
func (v *Vault) Session(notePath string, sel *models.Selection) *Session {
	return &Session{vault: v, path: notePath, selection: sel}
}

// Document describes the note at notePath.
func (v *Vault) Document(notePath string) models.Document {
	return models.Document{Path: notePath, Name: path.Base(notePath)}
}

// ReadHeader implements HeaderStore.
func (v *Vault) ReadHeader(_ context.Context, doc models.Document) (*frontmatter.Header, error) {
	data, err := v.store.Read(doc.Path)
	if err != nil {
		return nil, err
	}
	h, _, err := frontmatter.Split(data)
	if err != nil {
		return nil, fmt.Errorf("workspace: %s: %w", doc.Path, err)
	}
	return h, nil
}

// WriteHeader implements HeaderStore. The file is re-read so the body
// written back is the one on disk at write time.
func (v *Vault) WriteHeader(_ context.Context, doc models.Document, h *frontmatter.Header) error {
	data, err := v.store.Read(doc.Path)
	if err != nil {
		return err
	}
	_, body, err := frontmatter.Split(data)
	if err != nil {
		return fmt.Errorf("workspace: %s: %w", doc.Path, err)
	}
	out, err := frontmatter.Render(h, body)
	if err != nil {
		return err
	}
	return v.store.Write(doc.Path, out)
}

// Session is the DocumentReader for one command invocation.
type Session struct {
	vault     *Vault
	path      string
	selection *models.Selection
}

var _ DocumentReader = (*Session)(nil)

// ActiveDocument implements DocumentReader.
func (s *Session) ActiveDocument() (models.Document, bool) {
	if s.path == "" {
		return models.Document{}, false
	}
	doc := s.vault.Document(s.path)
	if doc.Name == "" || doc.Name == "." || doc.Name == "/" {
		return models.Document{}, false
	}
	return doc, true
}

// ReadFullText implements DocumentReader.
func (s *Session) ReadFullText(_ context.Context, doc models.Document) (string, error) {
	data, err := s.vault.store.Read(doc.Path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadSelection implements DocumentReader.
func (s *Session) ReadSelection(ctx context.Context) (string, error) {
	doc, ok := s.ActiveDocument()
	if !ok || s.selection == nil {
		return "", nil
	}
	text, err := s.ReadFullText(ctx, doc)
	if err != nil {
		return "", err
	}
	return Extract(text, *s.selection), nil
}
