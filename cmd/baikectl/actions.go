package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/phrazzld/baike-api/internal/app"
	"github.com/phrazzld/baike-api/internal/generation"
	"github.com/phrazzld/baike-api/internal/mcpserver"
	"github.com/phrazzld/baike-api/internal/service"
	"github.com/phrazzld/baike-api/internal/task"
)

// enrichOutput is printed by the enrich command.
type enrichOutput struct {
	ID      string                      `json:"id"      yaml:"id"`
	Status  task.Status                 `json:"status"  yaml:"status"`
	Article generation.AnnotatedArticle `json:"article" yaml:"article"`
}

func extractAction(c *cli.Context, a *app.App) error {
	result, err := a.Extraction.Run(c.Context, c.String("url"))
	if err != nil {
		return err
	}
	return write(c.App.Writer, c.String("format"), result)
}

func enrichAction(c *cli.Context, a *app.App) error {
	sub, err := a.Enrichment.Submit(c.Context, c.String("url"))
	if err != nil {
		return err
	}
	a.Logger.Info("enrichment submitted", "task_id", sub.ID, "title", sub.Title)

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("wait"))
	defer cancel()

	tk, err := awaitTask(ctx, a.Enrichment, sub.ID, c.Duration("poll-interval"))
	if err != nil {
		return err
	}
	if tk.Status == task.StatusFailed {
		return fmt.Errorf("enrichment %s failed: %s", tk.ID, tk.Error)
	}

	return write(c.App.Writer, c.String("format"), enrichOutput{
		ID:      tk.ID,
		Status:  tk.Status,
		Article: generation.ParseAnnotated(tk.Result),
	})
}

type poller interface {
	Poll(ctx context.Context, id string) (task.Task, error)
}

// awaitTask polls id until it reaches a terminal state or ctx ends.
func awaitTask(ctx context.Context, p poller, id string, interval time.Duration) (task.Task, error) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		tk, err := p.Poll(ctx, id)
		if err != nil {
			return task.Task{}, err
		}
		if tk.Status.IsTerminal() {
			return tk, nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return task.Task{}, fmt.Errorf("enrichment %s still pending: gave up waiting", id)
			}
			return task.Task{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func defineAction(c *cli.Context, a *app.App) error {
	def, err := a.Definitions.Define(c.Context, service.DefinitionQuery{
		Term:    c.String("term"),
		Line:    c.String("line"),
		Article: c.String("context"),
	})
	if err != nil {
		return err
	}
	return write(c.App.Writer, c.String("format"), def)
}

func mcpAction(c *cli.Context, a *app.App) error {
	tools := mcpserver.NewTools(a.Extraction, a.Enrichment, a.Definitions, a.Logger)
	return mcpserver.Serve(c.Context, tools, version)
}

func tokenAction(c *cli.Context, a *app.App) error {
	if a.JWT == nil {
		return errors.New("auth.jwt_secret is not set: the API accepts requests without a token")
	}
	token, err := a.JWT.GenerateToken(c.Context, c.String("subject"))
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}
	_, err = fmt.Fprintln(c.App.Writer, token)
	return err
}
