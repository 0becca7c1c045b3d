package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/rounded/internal"
	pkgconfig "github.com/starford/rounded/pkg/config"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}
}

func loadConfig(cmd *cli.Command, required bool) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	load := pkgconfig.Load[internal.Config]
	if !required {
		load = pkgconfig.LoadOptional[internal.Config]
	}
	if err := load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg))
}

func fetchOnce(ctx context.Context, cmd *cli.Command) error {
	urls := cmd.Args().Slice()

	// Explicit URLs make the config file optional.
	cfg := internal.NewDefaultConfig()
	if len(urls) > 0 {
		cfg.Catalog.Sources = urls
	}
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return internal.Fetch(ctx,
		internal.WithConfig(cfg),
		internal.WithSources(urls),
		internal.WithJSON(cmd.Bool("json")),
		internal.WithOutput(os.Stdout),
	)
}

func main() {
	cmd := &cli.Command{
		Name:    "rounded",
		Usage:   "Tweak repository catalog: loads JSON manifests and serves them over HTTP and MCP",
		Version: internal.Version,
		Action:  serve,
		Flags:   []cli.Flag{configFlag()},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Load the catalog and serve the HTTP API (default)",
				Action: serve,
				Flags:  []cli.Flag{configFlag()},
			},
			{
				Name:      "fetch",
				Usage:     "Load every manifest once and print the catalog",
				ArgsUsage: "[manifest-url...]",
				Action:    fetchOnce,
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the catalog as JSON",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve the catalog over MCP on stdin/stdout",
				Action: runMCP,
				Flags:  []cli.Flag{configFlag()},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
