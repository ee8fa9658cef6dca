package metadata

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/gistnote/internal/frontmatter"
	"github.com/starford/gistnote/internal/models"
	"github.com/starford/gistnote/internal/storage"
	"github.com/starford/gistnote/internal/workspace"
)

func testWriter(t *testing.T) (*Writer, *workspace.Vault, *storage.FS) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	v := workspace.NewVault(store)
	return NewWriter(v), v, store
}

func TestRecordMetadata_CreatesHeader(t *testing.T) {
	w, v, store := testWriter(t)
	_ = store.Write("notes.md", []byte("hello"))

	meta := models.SnippetMetadata{ID: "abc123", URL: "https://gist.example/abc123"}
	if err := w.RecordMetadata(context.Background(), v.Document("notes.md"), meta); err != nil {
		t.Fatalf("RecordMetadata: %v", err)
	}

	data, _ := store.Read("notes.md")
	want := "---\ngist_id: abc123\ngist_url: https://gist.example/abc123\n---\nhello"
	if string(data) != want {
		t.Errorf("file =\n%s\nwant\n%s", data, want)
	}
}

func TestRecordMetadata_MergesIntoExistingHeader(t *testing.T) {
	w, v, store := testWriter(t)
	_ = store.Write("n.md", []byte("---\ntitle: Keep me\naliases:\n  - k\n---\n# Body\n"))

	meta := models.SnippetMetadata{ID: "id1", URL: "https://gist.example/id1"}
	if err := w.RecordMetadata(context.Background(), v.Document("n.md"), meta); err != nil {
		t.Fatalf("RecordMetadata: %v", err)
	}

	data, _ := store.Read("n.md")
	h, body, err := frontmatter.Split(data)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if got, _ := h.Get("title"); got != "Keep me" {
		t.Errorf("title = %q", got)
	}
	m, _ := h.Map()
	if _, ok := m["aliases"]; !ok {
		t.Error("aliases key lost")
	}
	if got, _ := h.Get(frontmatter.KeyGistURL); got != meta.URL {
		t.Errorf("gist_url = %q", got)
	}
	if string(body) != "# Body\n" {
		t.Errorf("body = %q", body)
	}
}

func TestRecordMetadata_UnchangedSkipsWrite(t *testing.T) {
	w, v, store := testWriter(t)
	_ = store.Write("n.md", []byte("x"))
	doc := v.Document("n.md")
	meta := models.SnippetMetadata{ID: "a", URL: "https://gist.example/a"}
	if err := w.RecordMetadata(context.Background(), doc, meta); err != nil {
		t.Fatal(err)
	}

	abs := filepath.Join(store.Root(), "n.md")
	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	_ = os.Chtimes(abs, old, old)

	if err := w.RecordMetadata(context.Background(), doc, meta); err != nil {
		t.Fatal(err)
	}
	info, _ := os.Stat(abs)
	if !info.ModTime().Equal(old) {
		t.Error("identical metadata should not rewrite the file")
	}
}

func TestTrackingID(t *testing.T) {
	w, v, store := testWriter(t)
	_ = store.Write("plain.md", []byte("x"))
	_ = store.Write("tracked.md", []byte("---\ngist_id: g1\n---\nx"))

	id, err := w.TrackingID(context.Background(), v.Document("plain.md"))
	if err != nil || id != "" {
		t.Errorf("plain: id = %q, err = %v", id, err)
	}
	id, err = w.TrackingID(context.Background(), v.Document("tracked.md"))
	if err != nil || id != "g1" {
		t.Errorf("tracked: id = %q, err = %v", id, err)
	}
}
