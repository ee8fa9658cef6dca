package internal

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/starford/gistnote/internal/clipboard"
	"github.com/starford/gistnote/internal/commands"
	"github.com/starford/gistnote/internal/gist"
	"github.com/starford/gistnote/internal/index"
	"github.com/starford/gistnote/internal/notify"
	"github.com/starford/gistnote/internal/settings"
	"github.com/starford/gistnote/internal/storage"
	"github.com/starford/gistnote/internal/workspace"
)

// newApplication applies opts and fills in defaults.
func newApplication(opts []Option) (*application, error) {
	app := &application{
		out:     os.Stdout,
		logOut:  os.Stderr,
		version: "dev",
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// newLogger builds the structured JSON logger and installs it as default.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// runtime is the set of components every entry point shares.
type runtime struct {
	cfg      *Config
	logger   *slog.Logger
	store    *storage.FS
	vault    *workspace.Vault
	settings *settings.Store
	ledger   index.Ledger
	client   *gist.Client
}

func newRuntime(cfg *Config, logger *slog.Logger) (*runtime, error) {
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	st, err := settings.Open(cfg.SettingsPath())
	if err != nil {
		return nil, fmt.Errorf("init settings: %w", err)
	}

	base, err := gist.ParseBaseURL(cfg.GitHub.APIURL)
	if err != nil {
		return nil, fmt.Errorf("init gist client: %w", err)
	}
	clientOpts := []gist.Option{gist.WithTimeout(cfg.GitHub.Timeout)}
	if base != nil {
		clientOpts = append(clientOpts, gist.WithBaseURL(base))
	}

	db, err := index.Open(cfg.LedgerPath())
	if err != nil {
		return nil, fmt.Errorf("init ledger: %w", err)
	}

	return &runtime{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		vault:    workspace.NewVault(store),
		settings: st,
		ledger:   db,
		client:   gist.NewClient(st, clientOpts...),
	}, nil
}

// dispatcher builds a command dispatcher that reports through sink.
func (rt *runtime) dispatcher(sink notify.Sink, opts ...commands.Option) *commands.Dispatcher {
	base := []commands.Option{
		commands.WithClipboard(clipboard.New(rt.cfg.Clipboard.Enabled)),
		commands.WithNotifier(sink),
		commands.WithLedger(rt.ledger),
		commands.WithLogger(rt.logger),
	}
	return commands.NewDispatcher(rt.client, rt.vault, append(base, opts...)...)
}

func (rt *runtime) Close() error {
	return rt.ledger.Close()
}
