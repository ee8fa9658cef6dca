// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the gist publishing commands for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/gistnote/internal/commands"
	"github.com/starford/gistnote/internal/models"
	"github.com/starford/gistnote/internal/workspace"
)

const formatURI = "gistnote://tracked-note-format"

// Executor runs registered commands.
type Executor interface {
	Execute(ctx context.Context, id commands.ID, docs workspace.DocumentReader) (*commands.Result, error)
}

// Ledger lists tracked notes.
type Ledger interface {
	ListTracked(ctx context.Context) ([]models.TrackedNote, error)
}

// Server wraps the MCP server with gistnote tools.
type Server struct {
	mcp    *server.MCPServer
	exec   Executor
	vault  *workspace.Vault
	ledger Ledger
}

// New creates a new MCP server with all gistnote tools registered.
// The GitHub token is deliberately not settable through MCP.
func New(exec Executor, vault *workspace.Vault, ledger Ledger, version string) *Server {
	s := &Server{exec: exec, vault: vault, ledger: ledger}

	s.mcp = server.NewMCPServer(
		"gistnote",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	pathArg := mcp.WithString("path", mcp.Required(),
		mcp.Description("Vault-relative path of the note (e.g. folder/note.md)"))

	s.mcp.AddTool(mcp.NewTool("list_gist_commands",
		mcp.WithDescription("List the available gist publishing commands."),
	), s.listCommands)

	s.mcp.AddTool(mcp.NewTool("save_as_new_gist",
		mcp.WithDescription("Publish the full note as a new private gist. The note is not modified."),
		pathArg,
	), s.saveAsNewGist)

	s.mcp.AddTool(mcp.NewTool("save_selection_as_new_gist",
		mcp.WithDescription("Publish part of a note as a new private gist. "+
			"Give either lines (1-based, inclusive, e.g. 3:7) or from and to (zero-based line:ch)."),
		pathArg,
		mcp.WithString("lines", mcp.Description("Whole-line range a:b")),
		mcp.WithString("from", mcp.Description("Selection start as line:ch")),
		mcp.WithString("to", mcp.Description("Selection end as line:ch")),
	), s.saveSelection)

	s.mcp.AddTool(mcp.NewTool("save_as_new_updateable_gist",
		mcp.WithDescription("Publish the full note as a new private gist and record gist_id and gist_url "+
			"in its frontmatter so it can be updated later. See "+formatURI+"."),
		pathArg,
	), s.saveTracked)

	s.mcp.AddTool(mcp.NewTool("update_existing_gist",
		mcp.WithDescription("Push the current note to the gist named by gist_id in its frontmatter."),
		pathArg,
	), s.updateExisting)

	s.mcp.AddTool(mcp.NewTool("list_tracked_gists",
		mcp.WithDescription("List notes that are linked to a gist."),
	), s.listTracked)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Tracked Note Format",
			mcp.WithResourceDescription("How a note records the gist it is published to."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listCommands(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(commands.All(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) saveAsNewGist(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.run(ctx, req, commands.SaveAsNewGist, nil)
}

func (s *Server) saveTracked(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.run(ctx, req, commands.SaveAsNewUpdateableGist, nil)
}

func (s *Server) updateExisting(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.run(ctx, req, commands.UpdateExistingGist, nil)
}

func (s *Server) saveSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel, err := selectionArgs(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.run(ctx, req, commands.SaveSelectionAsNewGist, &sel)
}

func (s *Server) run(ctx context.Context, req mcp.CallToolRequest, id commands.ID, sel *models.Selection) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.exec.Execute(ctx, id, s.vault.Session(path, sel))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if res == nil {
		return mcp.NewToolResultText("no note given, nothing published"), nil
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func selectionArgs(req mcp.CallToolRequest) (models.Selection, error) {
	lines := req.GetString("lines", "")
	from := req.GetString("from", "")
	to := req.GetString("to", "")
	switch {
	case lines != "" && (from != "" || to != ""):
		return models.Selection{}, fmt.Errorf("use either lines or from/to")
	case lines != "":
		return workspace.ParseLineRange(lines)
	case from != "" && to != "":
		f, err := workspace.ParsePosition(from)
		if err != nil {
			return models.Selection{}, err
		}
		t, err := workspace.ParsePosition(to)
		if err != nil {
			return models.Selection{}, err
		}
		return models.Selection{From: f, To: t}, nil
	}
	return models.Selection{}, fmt.Errorf("a selection is required: lines or from and to")
}

func (s *Server) listTracked(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.ledger.ListTracked(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no tracked notes"), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     TrackedNoteFormat,
		},
	}, nil
}
