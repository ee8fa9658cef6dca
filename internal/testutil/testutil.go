// Package testutil provides shared test helpers for setting up vaults,
// ledgers and a fake Gist API.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/starford/gistnote/internal/gist"
	"github.com/starford/gistnote/internal/index"
	"github.com/starford/gistnote/internal/storage"
)

// TestLedger creates a temporary SQLite ledger that is automatically cleaned up.
func TestLedger(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "gistnote-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, *storage.FS) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// WriteNote writes content to rel inside store, failing the test on error.
func WriteNote(t *testing.T, store storage.Provider, rel, content string) {
	t.Helper()
	if err := store.Write(rel, []byte(content)); err != nil {
		t.Fatal(err)
	}
}

// ReadNote reads rel from store, failing the test on error.
func ReadNote(t *testing.T, store storage.Provider, rel string) string {
	t.Helper()
	data, err := store.Read(rel)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// Token is a fixed gist.TokenSource. An empty Token means no credential.
type Token string

// Token implements gist.TokenSource.
func (t Token) Token() string { return string(t) }

// GistCall is one request received by a GistServer.
type GistCall struct {
	Method   string
	Path     string
	Auth     string
	Public   *bool
	FileName string
	Content  string
}

// GistServer is an in-memory stand-in for the Gist REST API. Creates are
// assigned ids gist1, gist2, ... and URLs under BaseURL.
type GistServer struct {
	*httptest.Server

	// URLBase prefixes returned html_url values.
	URLBase string
	// Status, when non-zero, is returned for every request with an empty body.
	Status int

	mu    sync.Mutex
	calls []GistCall
	next  int
}

// NewGistServer starts a fake Gist API closed on test cleanup.
func NewGistServer(t *testing.T) *GistServer {
	t.Helper()
	g := &GistServer{URLBase: "https://gist.example/"}
	g.Server = httptest.NewServer(http.HandlerFunc(g.serve))
	t.Cleanup(g.Close)
	return g
}

// Client returns a gist.Client pointed at the server using token.
func (g *GistServer) Client(t *testing.T, token gist.TokenSource) *gist.Client {
	t.Helper()
	base, err := gist.ParseBaseURL(g.URL)
	if err != nil {
		t.Fatal(err)
	}
	return gist.NewClient(token, gist.WithBaseURL(base), gist.WithHTTPClient(g.Server.Client()))
}

// Calls returns a copy of the requests received so far.
func (g *GistServer) Calls() []GistCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]GistCall(nil), g.calls...)
}

func (g *GistServer) serve(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Public *bool `json:"public"`
		Files  map[string]struct {
			Content string `json:"content"`
		} `json:"files"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	call := GistCall{
		Method: r.Method,
		Path:   r.URL.Path,
		Auth:   r.Header.Get("Authorization"),
		Public: body.Public,
	}
	for name, f := range body.Files {
		call.FileName, call.Content = name, f.Content
	}

	g.mu.Lock()
	g.calls = append(g.calls, call)
	status := g.Status
	var id string
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/gists":
		g.next++
		id = fmt.Sprintf("gist%d", g.next)
	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/gists/"):
		id = strings.TrimPrefix(r.URL.Path, "/gists/")
	}
	g.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}
	if id == "" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if r.Method == http.MethodPost {
		w.WriteHeader(http.StatusCreated)
	}
	_ = json.NewEncoder(w).Encode(map[string]string{
		"id":       id,
		"html_url": g.URLBase + id,
	})
}
