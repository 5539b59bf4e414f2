// Command aavanam-mcp is an MCP (Model Context Protocol) server that lets AI
// assistants render document templates.
//
// # Installation
//
//	go install github.com/jafranjemal/aavanamkit/cmd/aavanam-mcp@latest
//
// # Configuration for Claude Desktop
//
// Add to ~/.config/claude/claude_desktop_config.json:
//
//	{
//	  "mcpServers": {
//	    "aavanam": {
//	      "command": "aavanam-mcp",
//	      "env": {"AAVANAM_ALLOW_FILE_ASSETS": "true"}
//	    }
//	  }
//	}
//
// # Available Tools
//
//   - generate_document: Render a template with data as PDF, DOCX or HTML
//   - layout_table: Preview how the template's table paginates
//
// # Available Resources
//
//   - aavanam://page-presets : Named page sizes in points
//   - aavanam://formats : Output types and content types
//
// The asset fetcher is configured from the same AAVANAM_* environment
// variables as aavanamd. Logs go to stderr.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jafranjemal/aavanamkit/internal/app"
	"github.com/jafranjemal/aavanamkit/internal/config"
	"github.com/jafranjemal/aavanamkit/mcp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "aavanam-mcp: %v\n", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		// Unblock the stdin reader.
		<-ctx.Done()
		os.Stdin.Close()
	}()

	server := mcp.NewServer(logger)
	mcp.RegisterDefaultTools(server, app.NewEngine(cfg, app.AssetCache(cfg, nil, logger), logger))
	mcp.RegisterDefaultResources(server)

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "aavanam-mcp: %v\n", err)
		os.Exit(1)
	}
}
