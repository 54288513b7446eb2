package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/vaultlink/internal"
	pkgconfig "github.com/starford/vaultlink/pkg/config"
)

func run(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(configPath, cfg, flagOverrides(cmd)); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

// flagOverrides applies explicitly set flags and environment variables on
// top of the config file.
func flagOverrides(cmd *cli.Command) func(*internal.Config) {
	return func(cfg *internal.Config) {
		if cmd.IsSet("vault") {
			cfg.Vault.Path = cmd.String("vault")
		}
		if cmd.IsSet("templates") {
			cfg.Vault.TemplateDir = cmd.String("templates")
		}
		if cmd.IsSet("transport") {
			cfg.App.Transport = cmd.String("transport")
		}
		if cmd.IsSet("port") {
			cfg.App.HTTP.Port = int(cmd.Int("port"))
		}
	}
}

func main() {
	cmd := &cli.Command{
		Name:   "vaultlink",
		Usage:  "MCP and REST server for tag, link and backlink management in a Markdown vault",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (optional)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "vault",
				Usage:   "Path to the vault directory",
				Sources: cli.EnvVars("OBSIDIAN_VAULT_PATH"),
			},
			&cli.StringFlag{
				Name:    "templates",
				Usage:   "Template folder, relative to the vault",
				Sources: cli.EnvVars("OBSIDIAN_TEMPLATE_DIR"),
			},
			&cli.StringFlag{
				Name:    "transport",
				Usage:   "stdio or http",
				Sources: cli.EnvVars("APP_TRANSPORT"),
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "HTTP port for the http transport",
				Sources: cli.EnvVars("APP_HTTP_PORT"),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
