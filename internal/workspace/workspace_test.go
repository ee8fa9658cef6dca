package workspace

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/gistnote/internal/apperr"
	"github.com/starford/gistnote/internal/frontmatter"
	"github.com/starford/gistnote/internal/models"
	"github.com/starford/gistnote/internal/storage"
)

func testVault(t *testing.T) (*Vault, storage.Provider) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewVault(store), store
}

func TestSession_NoActiveDocument(t *testing.T) {
	v, _ := testVault(t)
	if _, ok := v.Session("", nil).ActiveDocument(); ok {
		t.Error("empty path should mean no active document")
	}
}

func TestSession_ReadFullTextAndName(t *testing.T) {
	v, store := testVault(t)
	_ = store.Write("dir/notes.md", []byte("---\ntitle: x\n---\nhello"))

	s := v.Session("dir/notes.md", nil)
	doc, ok := s.ActiveDocument()
	if !ok {
		t.Fatal("expected active document")
	}
	if doc.Name != "notes.md" || doc.Path != "dir/notes.md" {
		t.Errorf("doc = %+v", doc)
	}
	text, err := s.ReadFullText(context.Background(), doc)
	if err != nil {
		t.Fatalf("ReadFullText: %v", err)
	}
	if text != "---\ntitle: x\n---\nhello" {
		t.Errorf("text = %q", text)
	}
}

func TestSession_ReadSelection(t *testing.T) {
	v, store := testVault(t)
	_ = store.Write("n.md", []byte("before SELECTED after"))

	sel := models.Selection{From: models.Position{Ch: 7}, To: models.Position{Ch: 15}}
	got, err := v.Session("n.md", &sel).ReadSelection(context.Background())
	if err != nil {
		t.Fatalf("ReadSelection: %v", err)
	}
	if got != "SELECTED" {
		t.Errorf("selection = %q", got)
	}

	got, err = v.Session("n.md", nil).ReadSelection(context.Background())
	if err != nil || got != "" {
		t.Errorf("no selection = %q, %v", got, err)
	}
}

func TestSession_MissingFile(t *testing.T) {
	v, _ := testVault(t)
	s := v.Session("gone.md", nil)
	doc, _ := s.ActiveDocument()
	if _, err := s.ReadFullText(context.Background(), doc); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestVault_HeaderRoundTrip(t *testing.T) {
	v, store := testVault(t)
	_ = store.Write("n.md", []byte("---\ntitle: T\n---\nbody\n"))
	doc := v.Document("n.md")
	ctx := context.Background()

	h, err := v.ReadHeader(ctx, doc)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	h.Set("extra", "1")
	if err := v.WriteHeader(ctx, doc, h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}

	data, _ := store.Read("n.md")
	h2, body, err := frontmatter.Split(data)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if v, _ := h2.Get("extra"); v != "1" {
		t.Errorf("extra = %q", v)
	}
	if string(body) != "body\n" {
		t.Errorf("body = %q", body)
	}
}

func TestVault_ReadHeaderNone(t *testing.T) {
	v, store := testVault(t)
	_ = store.Write("n.md", []byte("just text"))
	h, err := v.ReadHeader(context.Background(), v.Document("n.md"))
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h != nil {
		t.Error("expected nil header")
	}
}
