package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/gistnote/internal/models"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.Writer = &out
	cmd.ErrWriter = &bytes.Buffer{}
	err := cmd.Run(context.Background(), append([]string{"gistnote"}, args...))
	return out.String(), err
}

func TestParseSelection(t *testing.T) {
	sel, err := parseSelection("", "0:1", "2:3")
	if err != nil {
		t.Fatal(err)
	}
	want := models.Selection{From: models.Position{Line: 0, Ch: 1}, To: models.Position{Line: 2, Ch: 3}}
	if sel != want {
		t.Errorf("sel = %+v", sel)
	}

	sel, err = parseSelection("2:4", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if sel.From.Line != 1 || sel.To.Line != 3 {
		t.Errorf("lines sel = %+v", sel)
	}

	for _, tc := range [][3]string{
		{"", "", ""},
		{"1:2", "0:0", ""},
		{"", "0:0", ""},
		{"", "x", "1:1"},
	} {
		if _, err := parseSelection(tc[0], tc[1], tc[2]); err == nil {
			t.Errorf("parseSelection(%q, %q, %q) should fail", tc[0], tc[1], tc[2])
		}
	}
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmd := newRootCommand()
	names := map[string]bool{}
	for _, c := range cmd.Commands {
		names[c.Name] = true
	}
	for _, want := range []string{
		"save-as-new-gist", "save-as-new-gist-selection", "save-as-new-updateable-gist",
		"update-existing-gist", "settings", "list", "history", "serve", "mcp",
	} {
		if !names[want] {
			t.Errorf("missing subcommand %q", want)
		}
	}
}

func TestSettingsToken_PersistsAndMasks(t *testing.T) {
	vault := t.TempDir()
	missing := filepath.Join(t.TempDir(), "none.yaml")

	out, err := runCLI(t, "--config", missing, "--vault", vault, "settings", "token", "ghp_secret4321")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "saved") {
		t.Errorf("out = %q", out)
	}

	data, err := os.ReadFile(filepath.Join(vault, ".gistnote", "data.json"))
	if err != nil {
		t.Fatal(err)
	}
	var stored map[string]string
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatal(err)
	}
	if stored["githubApiToken"] != "ghp_secret4321" {
		t.Errorf("stored = %v", stored)
	}

	out, err = runCLI(t, "--config", missing, "--vault", vault, "settings", "token")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "GitHub token ****4321" {
		t.Errorf("out = %q", out)
	}
}

func TestSelectionCommand_RequiresRange(t *testing.T) {
	vault := t.TempDir()
	missing := filepath.Join(t.TempDir(), "none.yaml")
	_, err := runCLI(t, "--config", missing, "--vault", vault, "save-as-new-gist-selection", "notes.md")
	if err == nil || !strings.Contains(err.Error(), "selection is required") {
		t.Fatalf("err = %v", err)
	}
}

func TestConfigFile_Invalid(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("app:\n  http:\n    port: 99999\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := runCLI(t, "--config", cfgPath, "--vault", t.TempDir(), "list")
	if err == nil || !strings.Contains(err.Error(), "failed to parse config") {
		t.Fatalf("err = %v", err)
	}
}
