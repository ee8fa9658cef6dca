// Package autosync keeps tracked notes and their gists in step: it watches
// the vault for edits and republishes notes whose header carries a gist_id.
package autosync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/gistnote/internal/apperr"
	"github.com/starford/gistnote/internal/checksum"
	"github.com/starford/gistnote/internal/commands"
	"github.com/starford/gistnote/internal/frontmatter"
	"github.com/starford/gistnote/internal/models"
	"github.com/starford/gistnote/internal/workspace"
)

// Event kinds passed to an EventCallback.
const (
	EventTracked   = "tracked"
	EventPublished = "published"
	EventUntracked = "untracked"
)

// EventCallback is called after a sync changed the ledger or a gist.
type EventCallback func(kind string, path string)

// Ledger is the part of the publish ledger the syncer needs.
type Ledger interface {
	GetTracked(ctx context.Context, path string) (*models.TrackedNote, error)
	UpsertTracked(ctx context.Context, n models.TrackedNote) error
	DeleteTracked(ctx context.Context, path string) error
	AllChecksums(ctx context.Context) (map[string]string, error)
}

// Executor runs a registered command. *commands.Dispatcher implements it.
type Executor interface {
	Execute(ctx context.Context, id commands.ID, docs workspace.DocumentReader) (*commands.Result, error)
}

const defaultDebounce = 500 * time.Millisecond

// Syncer republishes tracked notes after they change.
type Syncer struct {
	vault    *workspace.Vault
	ledger   Ledger
	exec     Executor
	logger   *slog.Logger
	debounce time.Duration
	cb       EventCallback
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithDebounce sets how long the watcher waits for writes to settle.
func WithDebounce(d time.Duration) Option {
	return func(s *Syncer) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithCallback registers cb for sync events.
func WithCallback(cb EventCallback) Option {
	return func(s *Syncer) { s.cb = cb }
}

// New creates a Syncer.
func New(vault *workspace.Vault, ledger Ledger, exec Executor, logger *slog.Logger, opts ...Option) *Syncer {
	s := &Syncer{
		vault:    vault,
		ledger:   ledger,
		exec:     exec,
		logger:   logger,
		debounce: defaultDebounce,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncPath brings one note in line with the ledger. A note seen for the
// first time is recorded without publishing; a known note whose content
// changed is pushed through update-existing-gist. It reports whether a
// gist was updated.
func (s *Syncer) SyncPath(ctx context.Context, rel string) (bool, error) {
	data, err := s.vault.Store().Read(rel)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, s.untrack(ctx, rel)
	}
	if err != nil {
		return false, err
	}

	id, url, err := trackingInfo(data)
	if err != nil {
		return false, fmt.Errorf("autosync: %s: %w", rel, err)
	}
	if id == "" {
		return false, s.untrack(ctx, rel)
	}

	sum := checksum.Sum(data)
	row, err := s.ledger.GetTracked(ctx, rel)
	if errors.Is(err, apperr.ErrNotFound) {
		if err := s.ledger.UpsertTracked(ctx, models.TrackedNote{Path: rel, GistID: id, GistURL: url, Checksum: sum}); err != nil {
			return false, err
		}
		s.logger.Debug("autosync: tracked", slog.String("path", rel), slog.String("gist_id", id))
		s.emit(EventTracked, rel)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if row.Checksum == sum {
		return false, nil
	}

	if _, err := s.exec.Execute(ctx, commands.UpdateExistingGist, s.vault.Session(rel, nil)); err != nil {
		return false, err
	}
	s.logger.Info("autosync: published", slog.String("path", rel), slog.String("gist_id", id))
	s.emit(EventPublished, rel)
	return true, nil
}

func (s *Syncer) untrack(ctx context.Context, rel string) error {
	if _, err := s.ledger.GetTracked(ctx, rel); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.ledger.DeleteTracked(ctx, rel); err != nil {
		return err
	}
	s.logger.Debug("autosync: untracked", slog.String("path", rel))
	s.emit(EventUntracked, rel)
	return nil
}

func (s *Syncer) emit(kind, rel string) {
	if s.cb != nil {
		s.cb(kind, rel)
	}
}

// trackingInfo returns the gist_id and gist_url in the header of data.
func trackingInfo(data []byte) (id, url string, err error) {
	h, _, err := frontmatter.Split(data)
	if err != nil || h == nil {
		return "", "", err
	}
	id, _ = h.Get(frontmatter.KeyGistID)
	url, _ = h.Get(frontmatter.KeyGistURL)
	return id, url, nil
}
