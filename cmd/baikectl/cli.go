package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/phrazzld/baike-api/internal/app"
	"github.com/phrazzld/baike-api/internal/config"
	"github.com/phrazzld/baike-api/internal/platform/logger"
)

// loader produces the configuration a command runs with.
type loader func() (*config.Config, error)

func defaultLoader() (*config.Config, error) {
	return config.Load()
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "yaml",
		Usage:   "output format: yaml or json",
	}
}

func newCLI(load loader) *cli.App {
	return &cli.App{
		Name:    "baikectl",
		Usage:   "extract and annotate encyclopedia articles",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override server.log_level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "extract",
				Usage: "fetch an article and print its title and content blocks",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Required: true, Usage: "article URL"},
					formatFlag(),
				},
				Action: withApp(load, extractAction),
			},
			{
				Name:  "enrich",
				Usage: "annotate an article and wait for the result",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Required: true, Usage: "article URL"},
					&cli.DurationFlag{Name: "poll-interval", Value: time.Second, Usage: "delay between status checks"},
					&cli.DurationFlag{Name: "wait", Value: 5 * time.Minute, Usage: "give up after this long"},
					formatFlag(),
				},
				Action: withApp(load, enrichAction),
			},
			{
				Name:  "define",
				Usage: "define a term in the context of an article",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "term", Required: true, Usage: "term to define"},
					&cli.StringFlag{Name: "line", Usage: "line the term appears in"},
					&cli.StringFlag{Name: "context", Usage: "full article text"},
					formatFlag(),
				},
				Action: withApp(load, defineAction),
			},
			{
				Name:   "mcp",
				Usage:  "serve the tools over stdio using the Model Context Protocol",
				Action: withApp(load, mcpAction),
			},
			{
				Name:  "token",
				Usage: "issue an API bearer token signed with auth.jwt_secret",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "subject", Value: "baikectl", Usage: "token subject"},
				},
				Action: withApp(load, tokenAction),
			},
		},
	}
}

// withApp loads configuration, logs to the app's error writer and hands the
// action a wired application that is closed afterwards.
func withApp(load loader, action func(*cli.Context, *app.App) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		if format := c.String("format"); format != "" {
			if err := checkFormat(format); err != nil {
				return err
			}
		}

		cfg, err := load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if level := c.String("log-level"); level != "" {
			cfg.Server.LogLevel = level
		}

		l, err := logger.SetupWithWriter(cfg.Server, c.App.ErrWriter)
		if err != nil {
			return fmt.Errorf("failed to set up logger: %w", err)
		}

		a, err := app.New(c.Context, cfg, l)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer func() {
			if err := a.Close(); err != nil {
				l.Error("failed to close application", "error", err)
			}
		}()

		return action(c, a)
	}
}

func checkFormat(format string) error {
	switch format {
	case "json", "yaml":
		return nil
	default:
		return fmt.Errorf("unsupported format %q: want json or yaml", format)
	}
}

func write(w io.Writer, format string, v any) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	}

	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = w.Write(out)
	return err
}
