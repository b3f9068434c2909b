package batchrename

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/thrawn01/batch-rename/overview"
)

// Parameter structures for MCP tools
type ScanDirectoryParams struct {
	Directory string `json:"directory"`
	Recursive bool   `json:"recursive,omitempty"`
}

type RenameParams struct {
	Directory string `json:"directory"`
	Prefix    string `json:"prefix"`
	Mode      string `json:"mode,omitempty"`
	Start     *int   `json:"start,omitempty"`
	Recursive bool   `json:"recursive,omitempty"`
}

type UndoRenameParams struct{}

// ScanDirectoryResult is the structured output of scan_directory.
type ScanDirectoryResult struct {
	Directory string      `json:"directory"`
	Files     []FileEntry `json:"files"`
}

// PartialFailure reports an operation that returned an error after changing
// some files, so the client still learns what changed on disk.
type PartialFailure struct {
	Error  string `json:"error"`
	Result any    `json:"result"`
}

type GenerateOverviewParams struct {
	Root    string `json:"root"`
	BaseURL string `json:"base_url,omitempty"`
}

// Tool handler functions
func ScanDirectoryTool(ctx context.Context, req *mcp.CallToolRequest, args ScanDirectoryParams, renamer Renamer) (*mcp.CallToolResult, any, error) {
	files, err := renamer.Scan(ctx, args.Directory, args.Recursive)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan directory: %w", err)
	}
	if files == nil {
		files = []FileEntry{}
	}
	return toolResult(ScanDirectoryResult{Directory: args.Directory, Files: files}, false)
}

func PreviewRenameTool(ctx context.Context, req *mcp.CallToolRequest, args RenameParams, renamer Renamer) (*mcp.CallToolResult, any, error) {
	plan, err := planFromParams(ctx, args, renamer)
	if err != nil {
		return nil, nil, err
	}
	return toolResult(plan, false)
}

func ExecuteRenameTool(ctx context.Context, req *mcp.CallToolRequest, args RenameParams, renamer Renamer) (*mcp.CallToolResult, any, error) {
	plan, err := planFromParams(ctx, args, renamer)
	if err != nil {
		return nil, nil, err
	}

	result, err := renamer.Execute(ctx, args.Directory, plan)
	if err != nil {
		if result == nil {
			return nil, nil, fmt.Errorf("failed to execute rename: %w", err)
		}
		return toolResult(PartialFailure{Error: err.Error(), Result: result}, true)
	}
	return toolResult(result, false)
}

func UndoRenameTool(ctx context.Context, req *mcp.CallToolRequest, args UndoRenameParams, renamer Renamer) (*mcp.CallToolResult, any, error) {
	result, err := renamer.Undo(ctx)
	if err != nil {
		if result == nil {
			return nil, nil, fmt.Errorf("failed to undo rename: %w", err)
		}
		return toolResult(PartialFailure{Error: err.Error(), Result: result}, true)
	}
	return toolResult(result, false)
}

func GenerateOverviewTool(ctx context.Context, req *mcp.CallToolRequest, args GenerateOverviewParams, config overview.Config, logger *slog.Logger) (*mcp.CallToolResult, any, error) {
	if args.BaseURL != "" {
		config.BaseURL = args.BaseURL
	}

	generator, err := overview.NewGenerator(config, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid overview config: %w", err)
	}

	result, err := generator.Generate(ctx, args.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate overview: %w", err)
	}
	return toolResult(result, false)
}

// toolResult returns v as structured content and as JSON text for clients
// that only read Content.
func toolResult(v any, isError bool) (*mcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return &mcp.CallToolResult{
		IsError: isError,
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, v, nil
}

func planFromParams(ctx context.Context, args RenameParams, renamer Renamer) (*RenamePlan, error) {
	mode, err := ParseNamingMode(args.Mode)
	if err != nil {
		return nil, err
	}

	start := 1
	if args.Start != nil {
		start = *args.Start
	}

	files, err := renamer.Scan(ctx, args.Directory, args.Recursive)
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}

	plan, err := renamer.Plan(files, PlanOptions{Prefix: args.Prefix, Mode: mode, Start: start})
	if err != nil {
		return nil, fmt.Errorf("failed to plan rename: %w", err)
	}
	return plan, nil
}

// RunMCPServer serves the rename and overview tools until ctx is cancelled
// or the client disconnects. If transport is nil, it will use stdio transport
func RunMCPServer(ctx context.Context, config *Config, logger *slog.Logger, transport mcp.Transport) error {
	renamer, err := NewDefaultRenamer(config, logger)
	if err != nil {
		return fmt.Errorf("failed to create renamer: %w", err)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "batch-rename",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scan_directory",
		Description: "List the files a batch rename would include, sorted by name",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ScanDirectoryParams) (*mcp.CallToolResult, any, error) {
		return ScanDirectoryTool(ctx, req, args, renamer)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "preview_rename",
		Description: "Compute the new names for a directory without renaming anything",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args RenameParams) (*mcp.CallToolResult, any, error) {
		return PreviewRenameTool(ctx, req, args, renamer)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "execute_rename",
		Description: "Rename all files in a directory and record the batch for undo",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args RenameParams) (*mcp.CallToolResult, any, error) {
		return ExecuteRenameTool(ctx, req, args, renamer)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "undo_rename",
		Description: "Undo the most recent batch rename",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args UndoRenameParams) (*mcp.CallToolResult, any, error) {
		return UndoRenameTool(ctx, req, args, renamer)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_overview",
		Description: "Write a Markdown overview of the images under a project root",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args GenerateOverviewParams) (*mcp.CallToolResult, any, error) {
		return GenerateOverviewTool(ctx, req, args, config.Overview, logger)
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	if transport == nil {
		transport = &mcp.StdioTransport{}
	}
	return server.Run(ctx, transport)
}
