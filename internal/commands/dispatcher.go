package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/gistnote/internal/apperr"
	"github.com/starford/gistnote/internal/checksum"
	"github.com/starford/gistnote/internal/clipboard"
	"github.com/starford/gistnote/internal/metadata"
	"github.com/starford/gistnote/internal/models"
	"github.com/starford/gistnote/internal/notify"
	"github.com/starford/gistnote/internal/workspace"
)

// User-facing notice texts.
const (
	msgMissingToken   = "GitHub token not found, check your settings"
	msgRemoteFailure  = "There was an error %s your gist, check your token and connection"
	msgMissingGistID  = "No gist_id found in the frontmatter of %s, save it as a new updateable gist first"
	msgHeaderFailure  = "Could not read the frontmatter of %s"
	msgRecordFailure  = "Gist %s at %s but its gist_id could not be written to %s"
	msgPublished      = "Gist %s %s - URL copied to your clipboard"
	msgPublishedNoCpy = "Gist %s %s"
)

// SnippetClient is the remote side of a publish.
type SnippetClient interface {
	Create(ctx context.Context, fileName, content string) (models.SnippetMetadata, error)
	Update(ctx context.Context, id, fileName, content string) (models.SnippetMetadata, error)
}

// Ledger records publications. It is optional.
type Ledger interface {
	RecordPublication(ctx context.Context, p models.Publication) error
	UpsertTracked(ctx context.Context, n models.TrackedNote) error
}

// Result describes a completed command.
type Result struct {
	Command  ID                     `json:"command"`
	Document models.Document        `json:"document"`
	Metadata models.SnippetMetadata `json:"metadata"`
	Tracked  bool                   `json:"tracked"`
}

// Dispatcher runs commands. It keeps no state between invocations, and
// concurrent invocations are not coordinated.
type Dispatcher struct {
	client    SnippetClient
	metadata  *metadata.Writer
	clipboard clipboard.Writer
	notifier  notify.Sink
	ledger    Ledger
	observer  func(Result)
	logger    *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClipboard sets where published URLs are copied.
func WithClipboard(w clipboard.Writer) Option {
	return func(d *Dispatcher) { d.clipboard = w }
}

// WithNotifier sets the notice sink.
func WithNotifier(s notify.Sink) Option {
	return func(d *Dispatcher) { d.notifier = s }
}

// WithLedger records every publish in l.
func WithLedger(l Ledger) Option {
	return func(d *Dispatcher) { d.ledger = l }
}

// WithObserver calls fn after every command that published a gist.
func WithObserver(fn func(Result)) Option {
	return func(d *Dispatcher) { d.observer = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// NewDispatcher creates a dispatcher publishing through client and
// recording metadata through headers.
func NewDispatcher(client SnippetClient, headers workspace.HeaderStore, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		client:    client,
		metadata:  metadata.NewWriter(headers),
		clipboard: clipboard.Nop{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.notifier == nil {
		d.notifier = notify.LogSink{Logger: d.logger}
	}
	return d
}

// Execute runs the command id against the document docs has open.
// A nil result with a nil error means no document was active.
func (d *Dispatcher) Execute(ctx context.Context, id ID, docs workspace.DocumentReader) (*Result, error) {
	var res *Result
	var err error
	switch id {
	case SaveAsNewGist:
		res, err = d.SaveFile(ctx, docs)
	case SaveSelectionAsNewGist:
		res, err = d.SaveSelection(ctx, docs)
	case SaveAsNewUpdateableGist:
		res, err = d.SaveTrackedFile(ctx, docs)
	case UpdateExistingGist:
		res, err = d.UpdateTracked(ctx, docs)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, id)
	}
	if err == nil && res != nil && d.observer != nil {
		d.observer(*res)
	}
	return res, err
}

// SaveFile publishes the full text of the active document as a new gist.
func (d *Dispatcher) SaveFile(ctx context.Context, docs workspace.DocumentReader) (*Result, error) {
	doc, ok := docs.ActiveDocument()
	if !ok {
		return nil, nil
	}
	body, err := docs.ReadFullText(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", SaveAsNewGist, err)
	}
	meta, err := d.publish(ctx, SaveAsNewGist, doc, "", body)
	if err != nil {
		return nil, err
	}
	return &Result{Command: SaveAsNewGist, Document: doc, Metadata: meta}, nil
}

// SaveSelection publishes the current selection as a new gist named after
// the active document.
func (d *Dispatcher) SaveSelection(ctx context.Context, docs workspace.DocumentReader) (*Result, error) {
	doc, ok := docs.ActiveDocument()
	if !ok {
		return nil, nil
	}
	body, err := docs.ReadSelection(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", SaveSelectionAsNewGist, err)
	}
	meta, err := d.publish(ctx, SaveSelectionAsNewGist, doc, "", body)
	if err != nil {
		return nil, err
	}
	return &Result{Command: SaveSelectionAsNewGist, Document: doc, Metadata: meta}, nil
}

// SaveTrackedFile publishes the active document as a new gist and records
// gist_id and gist_url in its header.
func (d *Dispatcher) SaveTrackedFile(ctx context.Context, docs workspace.DocumentReader) (*Result, error) {
	doc, ok := docs.ActiveDocument()
	if !ok {
		return nil, nil
	}
	body, err := docs.ReadFullText(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", SaveAsNewUpdateableGist, err)
	}
	meta, err := d.publish(ctx, SaveAsNewUpdateableGist, doc, "", body)
	if err != nil {
		return nil, err
	}
	if err := d.record(ctx, SaveAsNewUpdateableGist, docs, doc, meta); err != nil {
		return nil, err
	}
	return &Result{Command: SaveAsNewUpdateableGist, Document: doc, Metadata: meta, Tracked: true}, nil
}

// UpdateTracked pushes the active document to the gist named by the gist_id
// in its header, then refreshes the header.
func (d *Dispatcher) UpdateTracked(ctx context.Context, docs workspace.DocumentReader) (*Result, error) {
	doc, ok := docs.ActiveDocument()
	if !ok {
		return nil, nil
	}
	id, err := d.metadata.TrackingID(ctx, doc)
	if err != nil {
		d.notify(ctx, notify.Error(fmt.Sprintf(msgHeaderFailure, doc.Name)))
		return nil, fmt.Errorf("%s: %w", UpdateExistingGist, err)
	}
	if id == "" {
		d.notify(ctx, notify.Error(fmt.Sprintf(msgMissingGistID, doc.Name)))
		return nil, fmt.Errorf("%s %s: %w", UpdateExistingGist, doc.Path, apperr.ErrMissingTrackingID)
	}
	body, err := docs.ReadFullText(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", UpdateExistingGist, err)
	}
	meta, err := d.publish(ctx, UpdateExistingGist, doc, id, body)
	if err != nil {
		return nil, err
	}
	if err := d.record(ctx, UpdateExistingGist, docs, doc, meta); err != nil {
		return nil, err
	}
	return &Result{Command: UpdateExistingGist, Document: doc, Metadata: meta, Tracked: true}, nil
}

// publish creates (id == "") or updates a gist, copies the URL and notifies.
func (d *Dispatcher) publish(ctx context.Context, cmd ID, doc models.Document, id, content string) (models.SnippetMetadata, error) {
	verb, gerund := "created", "creating"
	var meta models.SnippetMetadata
	var err error
	if id == "" {
		meta, err = d.client.Create(ctx, doc.Name, content)
	} else {
		verb, gerund = "updated", "updating"
		meta, err = d.client.Update(ctx, id, doc.Name, content)
	}
	if err != nil {
		if errors.Is(err, apperr.ErrMissingCredential) {
			d.notify(ctx, notify.Error(msgMissingToken))
		} else {
			d.notify(ctx, notify.Error(fmt.Sprintf(msgRemoteFailure, gerund)))
			d.logger.Error("gist publish failed",
				slog.String("command", string(cmd)),
				slog.String("path", doc.Path),
				slog.String("error", err.Error()))
		}
		return models.SnippetMetadata{}, fmt.Errorf("%s %s: %w", cmd, doc.Path, err)
	}

	if err := d.clipboard.WriteText(meta.URL); err != nil {
		d.logger.Warn("clipboard write failed", slog.String("error", err.Error()))
		d.notify(ctx, notify.Info(msgPublishedNoCpy, verb, meta.URL))
	} else {
		d.notify(ctx, notify.Info(msgPublished, verb, meta.URL))
	}

	d.logger.Info("gist published",
		slog.String("command", string(cmd)),
		slog.String("path", doc.Path),
		slog.String("gist_id", meta.ID))

	if d.ledger != nil {
		err := d.ledger.RecordPublication(ctx, models.Publication{
			Command:  string(cmd),
			Path:     doc.Path,
			GistID:   meta.ID,
			GistURL:  meta.URL,
			Checksum: checksum.SumString(content),
		})
		if err != nil {
			d.logger.Warn("ledger: record publication failed", slog.String("error", err.Error()))
		}
	}
	return meta, nil
}

// record writes meta into the header of doc and updates the ledger with the
// checksum of the file as it stands afterwards. The gist is not rolled back
// when the header write fails.
func (d *Dispatcher) record(ctx context.Context, cmd ID, docs workspace.DocumentReader, doc models.Document, meta models.SnippetMetadata) error {
	if err := d.metadata.RecordMetadata(ctx, doc, meta); err != nil {
		verb := "created"
		if cmd == UpdateExistingGist {
			verb = "updated"
		}
		d.notify(ctx, notify.Error(fmt.Sprintf(msgRecordFailure, verb, meta.URL, doc.Name)))
		return fmt.Errorf("%s %s: %w", cmd, doc.Path, err)
	}
	if d.ledger == nil {
		return nil
	}
	text, err := docs.ReadFullText(ctx, doc)
	if err != nil {
		d.logger.Warn("ledger: re-read failed", slog.String("path", doc.Path), slog.String("error", err.Error()))
		return nil
	}
	err = d.ledger.UpsertTracked(ctx, models.TrackedNote{
		Path:     doc.Path,
		GistID:   meta.ID,
		GistURL:  meta.URL,
		Checksum: checksum.SumString(text),
	})
	if err != nil {
		d.logger.Warn("ledger: upsert tracked failed", slog.String("path", doc.Path), slog.String("error", err.Error()))
	}
	return nil
}

func (d *Dispatcher) notify(ctx context.Context, n notify.Notice) {
	d.notifier.Notify(ctx, n)
}
