package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	pkgconfig "github.com/starford/ansuz/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	report, err := internal.RunCheck(ctx, cmd.String("format"), internal.WithConfig(cfg))
	if err != nil {
		return err
	}
	if !report.Clean() {
		return cli.Exit(fmt.Sprintf("lint failed: %d errors", report.Errors), 1)
	}
	return nil
}

func runBuild(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if _, err := internal.RunBuild(ctx, internal.WithConfig(cfg)); err != nil {
		return err
	}
	return nil
}

func runPreview(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	docPath := cmd.Args().First()
	if docPath == "" {
		return cli.Exit("usage: ansuz preview <path/to/doc.md>", 2)
	}
	return internal.RunPreview(ctx, docPath, cmd.String("style"), int(cmd.Int("width")),
		internal.WithConfig(cfg))
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg))
}

func main() {
	cmd := &cli.Command{
		Name:  "ansuz",
		Usage: "Markdown guideline corpus with lint rules, full-text search, and static site output",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("ANSUZ_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server with live file watching",
				Action: runServe,
			},
			{
				Name:  "check",
				Usage: "Lint the corpus and exit non-zero on errors",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format (text, json)",
						Value: "text",
					},
				},
				Action: runCheck,
			},
			{
				Name:   "build",
				Usage:  "Render the corpus into a static HTML site",
				Action: runBuild,
			},
			{
				Name:      "preview",
				Usage:     "Render one document to the terminal",
				ArgsUsage: "<path/to/doc.md>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "style",
						Usage: "Glamour style (auto, dark, light, notty)",
						Value: "auto",
					},
					&cli.IntFlag{
						Name:  "width",
						Usage: "Word wrap width",
						Value: 100,
					},
				},
				Action: runPreview,
			},
			{
				Name:   "mcp",
				Usage:  "Serve corpus tools over the Model Context Protocol on stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
