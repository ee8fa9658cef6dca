// Package storage gives the rest of gistnote file access to the Markdown vault.
package storage

import "time"

// NoteInfo describes a Markdown file found in the vault.
type NoteInfo struct {
	Path      string
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the interface for vault file operations.
type Provider interface {
	// Root returns the absolute vault directory.
	Root() string
	// List returns every .md file under dir (relative to vault root).
	List(dir string) ([]NoteInfo, error)
	// Read returns the raw bytes of the file at path (relative to vault root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to vault root).
	Write(path string, content []byte) error
}
