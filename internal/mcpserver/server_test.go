package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/gistnote/internal/commands"
	"github.com/starford/gistnote/internal/notify"
	"github.com/starford/gistnote/internal/storage"
	"github.com/starford/gistnote/internal/testutil"
	"github.com/starford/gistnote/internal/workspace"
)

func testServer(t *testing.T, token string) (*Server, storage.Provider, *testutil.GistServer) {
	t.Helper()

	_, store := testutil.TestVault(t)
	ledger := testutil.TestLedger(t)
	gists := testutil.NewGistServer(t)
	vault := workspace.NewVault(store)
	dispatch := commands.NewDispatcher(gists.Client(t, testutil.Token(token)), vault,
		commands.WithLedger(ledger),
		commands.WithNotifier(&notify.Recorder{}))

	srv := New(dispatch, vault, ledger, "test")
	return srv, store, gists
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no "call tool" test helper, so handlers are invoked directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_gist_commands":
		result, err = srv.listCommands(ctx, req)
	case "save_as_new_gist":
		result, err = srv.saveAsNewGist(ctx, req)
	case "save_selection_as_new_gist":
		result, err = srv.saveSelection(ctx, req)
	case "save_as_new_updateable_gist":
		result, err = srv.saveTracked(ctx, req)
	case "update_existing_gist":
		result, err = srv.updateExisting(ctx, req)
	case "list_tracked_gists":
		result, err = srv.listTracked(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListGistCommands(t *testing.T) {
	srv, _, _ := testServer(t, "tok")
	text := resultText(callTool(t, srv, "list_gist_commands", nil))
	for _, id := range []string{"save-as-new-gist", "save-as-new-gist-selection", "save-as-new-updateable-gist", "update-existing-gist"} {
		if !strings.Contains(text, id) {
			t.Errorf("missing %s in %s", id, text)
		}
	}
}

func TestSaveAsNewGist(t *testing.T) {
	srv, store, gists := testServer(t, "tok")
	testutil.WriteNote(t, store, "notes.md", "hello")

	r := callTool(t, srv, "save_as_new_gist", map[string]interface{}{"path": "notes.md"})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "https://gist.example/gist1") {
		t.Errorf("result missing url: %s", resultText(r))
	}
	if calls := gists.Calls(); len(calls) != 1 || calls[0].Content != "hello" {
		t.Errorf("calls = %+v", calls)
	}
}

func TestSaveSelection(t *testing.T) {
	srv, store, gists := testServer(t, "tok")
	testutil.WriteNote(t, store, "snip.md", "alpha\nbeta\ngamma\n")

	r := callTool(t, srv, "save_selection_as_new_gist", map[string]interface{}{
		"path": "snip.md",
		"from": "0:2",
		"to":   "1:2",
	})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	if calls := gists.Calls(); len(calls) != 1 || calls[0].Content != "pha\nbe" {
		t.Errorf("calls = %+v", calls)
	}
}

func TestSaveSelection_RequiresRange(t *testing.T) {
	srv, store, gists := testServer(t, "tok")
	testutil.WriteNote(t, store, "snip.md", "alpha\n")

	r := callTool(t, srv, "save_selection_as_new_gist", map[string]interface{}{"path": "snip.md"})
	if !r.IsError {
		t.Error("expected error without a range")
	}
	r = callTool(t, srv, "save_selection_as_new_gist", map[string]interface{}{"path": "snip.md", "lines": "1", "from": "0:0"})
	if !r.IsError {
		t.Error("expected error for lines and from together")
	}
	if len(gists.Calls()) != 0 {
		t.Error("no remote call expected")
	}
}

func TestTrackedFlow(t *testing.T) {
	srv, store, gists := testServer(t, "tok")
	testutil.WriteNote(t, store, "notes.md", "---\ntitle: Notes\n---\nhello")

	r := callTool(t, srv, "save_as_new_updateable_gist", map[string]interface{}{"path": "notes.md"})
	if r.IsError {
		t.Fatalf("save: %s", resultText(r))
	}
	got := testutil.ReadNote(t, store, "notes.md")
	if !strings.HasPrefix(got, "---\ntitle: Notes\ngist_id: gist1\n") {
		t.Errorf("header = %q", got)
	}

	r = callTool(t, srv, "update_existing_gist", map[string]interface{}{"path": "notes.md"})
	if r.IsError {
		t.Fatalf("update: %s", resultText(r))
	}
	calls := gists.Calls()
	if len(calls) != 2 || calls[1].Path != "/gists/gist1" {
		t.Errorf("calls = %+v", calls)
	}

	text := resultText(callTool(t, srv, "list_tracked_gists", nil))
	if !strings.Contains(text, `"path": "notes.md"`) {
		t.Errorf("tracked list = %s", text)
	}
}

func TestUpdateExistingGist_MissingGistID(t *testing.T) {
	srv, store, _ := testServer(t, "tok")
	testutil.WriteNote(t, store, "notes.md", "hello")

	r := callTool(t, srv, "update_existing_gist", map[string]interface{}{"path": "notes.md"})
	if !r.IsError {
		t.Fatal("expected error")
	}
	if !strings.Contains(resultText(r), "gist_id") {
		t.Errorf("error should mention gist_id: %s", resultText(r))
	}
}

func TestMissingToken(t *testing.T) {
	srv, store, gists := testServer(t, "")
	testutil.WriteNote(t, store, "notes.md", "hello")

	r := callTool(t, srv, "save_as_new_gist", map[string]interface{}{"path": "notes.md"})
	if !r.IsError {
		t.Fatal("expected error")
	}
	if !strings.Contains(resultText(r), "token") {
		t.Errorf("error should mention token: %s", resultText(r))
	}
	if len(gists.Calls()) != 0 {
		t.Error("no remote call expected")
	}
}

func TestMissingPathArgument(t *testing.T) {
	srv, _, _ := testServer(t, "tok")
	r := callTool(t, srv, "save_as_new_gist", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error for missing path")
	}
}

func TestListTracked_Empty(t *testing.T) {
	srv, _, _ := testServer(t, "tok")
	if text := resultText(callTool(t, srv, "list_tracked_gists", nil)); text != "no tracked notes" {
		t.Errorf("text = %q", text)
	}
}
