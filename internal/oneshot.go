package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/starford/gistnote/internal/commands"
	"github.com/starford/gistnote/internal/mcpserver"
	"github.com/starford/gistnote/internal/models"
	"github.com/starford/gistnote/internal/notify"
	"github.com/starford/gistnote/internal/settings"
)

// oneShot opens the runtime for a single CLI invocation. Logs go to the
// log output so the output writer carries only notices and listings.
func oneShot(opts []Option) (*application, *runtime, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(app.logOut, app.config.App.LogLevel)
	rt, err := newRuntime(app.config, logger)
	if err != nil {
		return nil, nil, err
	}
	return app, rt, nil
}

// RunCommand runs one publish command on notePath. An empty notePath is a
// silent no-op. Notices are printed to the output writer.
func RunCommand(ctx context.Context, id commands.ID, notePath string, sel *models.Selection, opts ...Option) error {
	app, rt, err := oneShot(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	dispatch := rt.dispatcher(notify.NewWriterSink(app.out))
	_, err = dispatch.Execute(ctx, id, rt.vault.Session(notePath, sel))
	return err
}

// SetToken stores value as the GitHub token and persists it immediately.
func SetToken(_ context.Context, value string, opts ...Option) error {
	app, rt, err := oneShot(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.settings.SetToken(value); err != nil {
		return err
	}
	_, err = fmt.Fprintf(app.out, "GitHub token saved to %s\n", rt.settings.Path())
	return err
}

// ShowToken prints the configured token masked.
func ShowToken(_ context.Context, opts ...Option) error {
	app, rt, err := oneShot(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	if !rt.settings.HasToken() {
		_, err = fmt.Fprintln(app.out, "GitHub token not set")
		return err
	}
	_, err = fmt.Fprintf(app.out, "GitHub token %s\n", settings.Mask(rt.settings.Token()))
	return err
}

// ListTracked prints the notes linked to a gist.
func ListTracked(ctx context.Context, opts ...Option) error {
	app, rt, err := oneShot(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	items, err := rt.ledger.ListTracked(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tGIST\tPUBLISHED")
	for _, n := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", n.Path, n.GistURL, formatTime(n.PublishedAt))
	}
	return tw.Flush()
}

// History prints recent publications, optionally for one note.
func History(ctx context.Context, notePath string, limit int, opts ...Option) error {
	app, rt, err := oneShot(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	items, err := rt.ledger.ListPublications(ctx, notePath, limit)
	if err != nil {
		return err
	}
	return writeHistory(app.out, items)
}

func writeHistory(w io.Writer, items []models.Publication) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tCOMMAND\tPATH\tGIST")
	for _, p := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", formatTime(p.CreatedAt), p.Command, p.Path, p.GistURL)
	}
	return tw.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

// ServeMCP runs the MCP server on stdio until the client disconnects.
// Logs go to the log output since stdout carries the protocol.
func ServeMCP(_ context.Context, opts ...Option) error {
	app, rt, err := oneShot(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	dispatch := rt.dispatcher(notify.LogSink{Logger: rt.logger})
	srv := mcpserver.New(dispatch, rt.vault, rt.ledger, app.version)
	rt.logger.Info("MCP server starting", slog.String("vault_path", app.config.Vault.Path))
	return srv.ServeStdio()
}
