// Package mcpserver exposes extraction, enrichment and term lookup as Model
// Context Protocol tools so an assistant can drive them over stdio.
package mcpserver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/phrazzld/baike-api/internal/domain"
	"github.com/phrazzld/baike-api/internal/generation"
	"github.com/phrazzld/baike-api/internal/redact"
	"github.com/phrazzld/baike-api/internal/service"
	"github.com/phrazzld/baike-api/internal/task"
)

// Name is the implementation name announced to clients.
const Name = "baike"

// ExtractionRunner extracts a single article.
type ExtractionRunner interface {
	Run(ctx context.Context, url string) (domain.ExtractionResult, error)
}

// Enricher submits and polls enrichment tasks.
type Enricher interface {
	Submit(ctx context.Context, url string) (service.Submission, error)
	Poll(ctx context.Context, id string) (task.Task, error)
}

// TermDefiner looks up a single term.
type TermDefiner interface {
	Define(ctx context.Context, q service.DefinitionQuery) (domain.TermDefinition, error)
}

// Tools holds the services behind the MCP tools.
type Tools struct {
	extraction  ExtractionRunner
	enrichment  Enricher
	definitions TermDefiner
	logger      *slog.Logger
}

// NewTools creates the tool handlers.
func NewTools(extraction ExtractionRunner, enrichment Enricher, definitions TermDefiner, logger *slog.Logger) *Tools {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tools{
		extraction:  extraction,
		enrichment:  enrichment,
		definitions: definitions,
		logger:      logger.With("component", "mcp_tools"),
	}
}

// NewServer registers every tool on a new MCP server.
func NewServer(tools *Tools, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: Name, Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_article",
		Description: "Fetch an encyclopedia article and return its title and classified content blocks.",
	}, tools.Extract)
	mcp.AddTool(server, &mcp.Tool{
		Name: "submit_enrichment",
		Description: "Start annotating an article in the background. Returns a task ID; " +
			"poll it with check_enrichment.",
	}, tools.Submit)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_enrichment",
		Description: "Check an enrichment task. Completed tasks include the annotated article and its marked terms.",
	}, tools.Check)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "define_term",
		Description: "Define a term in the context of the article it appears in.",
	}, tools.Define)

	return server
}

// Serve runs the tools over stdio until the client disconnects or ctx ends.
func Serve(ctx context.Context, tools *Tools, version string) error {
	return NewServer(tools, version).Run(ctx, &mcp.StdioTransport{})
}

// Extract handles the extract_article tool.
func (t *Tools) Extract(ctx context.Context, _ *mcp.CallToolRequest, args ExtractArgs) (*mcp.CallToolResult, ExtractOutput, error) {
	result, err := t.extraction.Run(ctx, args.URL)
	if err != nil {
		return nil, ExtractOutput{}, t.toolError("extract_article", err)
	}
	return nil, ExtractOutput{Title: result.Title, Blocks: result.Blocks}, nil
}

// Submit handles the submit_enrichment tool.
func (t *Tools) Submit(ctx context.Context, _ *mcp.CallToolRequest, args SubmitArgs) (*mcp.CallToolResult, SubmitOutput, error) {
	sub, err := t.enrichment.Submit(ctx, args.URL)
	if err != nil {
		return nil, SubmitOutput{}, t.toolError("submit_enrichment", err)
	}
	return nil, SubmitOutput{ID: sub.ID, Title: sub.Title, Status: string(sub.Status)}, nil
}

// Check handles the check_enrichment tool.
func (t *Tools) Check(ctx context.Context, _ *mcp.CallToolRequest, args CheckArgs) (*mcp.CallToolResult, CheckOutput, error) {
	tk, err := t.enrichment.Poll(ctx, args.ID)
	if err != nil {
		return nil, CheckOutput{}, t.toolError("check_enrichment", err)
	}

	out := CheckOutput{ID: tk.ID, Status: string(tk.Status), Error: tk.Error}
	if tk.Status == task.StatusCompleted {
		article := generation.ParseAnnotated(tk.Result)
		out.Article = &article
	}
	return nil, out, nil
}

// Define handles the define_term tool.
func (t *Tools) Define(ctx context.Context, _ *mcp.CallToolRequest, args DefineArgs) (*mcp.CallToolResult, DefineOutput, error) {
	def, err := t.definitions.Define(ctx, service.DefinitionQuery{
		Term:    args.Term,
		Line:    args.Line,
		Article: args.Context,
	})
	if err != nil {
		return nil, DefineOutput{}, t.toolError("define_term", err)
	}
	return nil, def, nil
}

// toolError logs err and returns a credential-free copy for the client.
func (t *Tools) toolError(tool string, err error) error {
	t.logger.Warn("tool call failed", "tool", tool, "error", redact.Error(err))
	return errors.New(redact.Error(err))
}
