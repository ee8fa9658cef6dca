package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/starford/gistnote/internal"
	"github.com/starford/gistnote/internal/commands"
	"github.com/starford/gistnote/internal/models"
	"github.com/starford/gistnote/internal/workspace"
	pkgconfig "github.com/starford/gistnote/pkg/config"
)

// newRootCommand creates the CLI with all subcommands.
func newRootCommand() *cli.Command {
	cmds := make([]*cli.Command, 0, 8)
	for _, c := range commands.All() {
		cmds = append(cmds, publishCmd(c))
	}
	cmds = append(cmds, settingsCmd(), listCmd(), historyCmd(), serveCmd(), mcpCmd())

	return &cli.Command{
		Name:    "gistnote",
		Usage:   "Publish Markdown notes as private GitHub Gists and keep them in sync",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "vault",
				Usage:   "Vault directory (overrides vault.path)",
				Sources: cli.EnvVars("GISTNOTE_VAULT"),
			},
		},
		Commands: cmds,
	}
}

// appOptions loads the config named by --config (a missing file means
// defaults) and applies --vault.
func appOptions(cmd *cli.Command) ([]internal.Option, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if vault := cmd.String("vault"); vault != "" {
		cfg.Vault.Path = vault
	}
	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithOutput(cmd.Root().Writer),
		internal.WithVersion(Version),
	}, nil
}

// publishCmd creates the subcommand for one registered publish command.
func publishCmd(c commands.Command) *cli.Command {
	var flags []cli.Flag
	if c.UsesSelection {
		flags = []cli.Flag{
			&cli.StringFlag{Name: "lines", Aliases: []string{"l"}, Usage: "Whole lines a:b (1-based, inclusive)"},
			&cli.StringFlag{Name: "from", Usage: "Selection start line:ch (zero-based)"},
			&cli.StringFlag{Name: "to", Usage: "Selection end line:ch (zero-based)"},
		}
	}
	return &cli.Command{
		Name:      string(c.ID),
		Usage:     c.Name,
		ArgsUsage: "NOTE",
		Flags:     flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var sel *models.Selection
			if c.UsesSelection {
				s, err := parseSelection(cmd.String("lines"), cmd.String("from"), cmd.String("to"))
				if err != nil {
					return err
				}
				sel = &s
			}
			opts, err := appOptions(cmd)
			if err != nil {
				return err
			}
			return internal.RunCommand(ctx, c.ID, cmd.Args().First(), sel, opts...)
		},
	}
}

// parseSelection turns --lines or --from/--to into a selection.
func parseSelection(lines, from, to string) (models.Selection, error) {
	switch {
	case lines != "" && (from != "" || to != ""):
		return models.Selection{}, fmt.Errorf("use either --lines or --from/--to")
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
	return models.Selection{}, fmt.Errorf("a selection is required: --lines a:b or --from l:c --to l:c")
}

func settingsCmd() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change settings",
		Commands: []*cli.Command{
			{
				Name:      "token",
				Usage:     "Show the GitHub token (masked), or set it when VALUE is given",
				ArgsUsage: "[VALUE]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := appOptions(cmd)
					if err != nil {
						return err
					}
					if cmd.Args().Len() == 0 {
						return internal.ShowToken(ctx, opts...)
					}
					return internal.SetToken(ctx, cmd.Args().First(), opts...)
				},
			},
		},
	}
}

func listCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List notes linked to a gist",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := appOptions(cmd)
			if err != nil {
				return err
			}
			return internal.ListTracked(ctx, opts...)
		},
	}
}

func historyCmd() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "Show recent publications",
		ArgsUsage: "[NOTE]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "Max entries"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := appOptions(cmd)
			if err != nil {
				return err
			}
			return internal.History(ctx, cmd.Args().First(), int(cmd.Int("limit")), opts...)
		},
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API and republish tracked notes on edit",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := appOptions(cmd)
			if err != nil {
				return err
			}
			opts = append(opts, internal.WithLogOutput(os.Stdout))
			if err := internal.Run(ctx, opts...); err != nil {
				return fmt.Errorf("app run error: %w", err)
			}
			return nil
		},
	}
}

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the publish tools over MCP (stdio)",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := appOptions(cmd)
			if err != nil {
				return err
			}
			return internal.ServeMCP(ctx, opts...)
		},
	}
}
