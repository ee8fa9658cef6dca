// Package models defines the domain types for gistnote.
package models

import "time"

// Document is a note in the vault that a command acts on.
type Document struct {
	Path string `json:"path"` // relative to the vault root
	Name string `json:"name"` // base file name, used as the gist file name
}

// SnippetMetadata is what a successful create or update returns.
type SnippetMetadata struct {
	ID  string `json:"gist_id"`
	URL string `json:"gist_url"`
}

// Position is an editor cursor position. Line and Ch are zero-based; Ch counts runes.
type Position struct {
	Line int `json:"line"`
	Ch   int `json:"ch"`
}

// Selection is the text range between From and To.
type Selection struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// TrackedNote is a ledger row for a note whose header carries a gist_id.
type TrackedNote struct {
	Path        string    `json:"path"`
	GistID      string    `json:"gist_id"`
	GistURL     string    `json:"gist_url"`
	Checksum    string    `json:"checksum"`
	PublishedAt time.Time `json:"published_at"`
}

// Publication records one successful create or update.
type Publication struct {
	ID        int64     `json:"id"`
	Command   string    `json:"command"`
	Path      string    `json:"path"`
	GistID    string    `json:"gist_id"`
	GistURL   string    `json:"gist_url"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}
