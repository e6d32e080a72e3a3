// Package mcpserver exposes the assistant as MCP (Model Context Protocol)
// tools over stdio.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"vault-assistant/internal/service"
)

// Server wraps the MCP server with the assistant tools.
type Server struct {
	mcp       *server.MCPServer
	assistant service.Assistant
}

// New creates a new MCP server with all tools registered.
func New(assistant service.Assistant, version string) *Server {
	s := &Server{assistant: assistant}

	s.mcp = server.NewMCPServer(
		"vault-assistant",
		version,
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("initialize_vault",
		mcp.WithDescription("Bind the assistant to a notes vault. Replaces any previously bound vault and clears its cache."),
		mcp.WithString("vault_path", mcp.Required(), mcp.Description("Absolute path of the vault directory")),
		mcp.WithString("model_name", mcp.Description("Model used to answer questions (defaults to the configured model)")),
	), s.initializeVault)

	s.mcp.AddTool(mcp.NewTool("ask_notes",
		mcp.WithDescription("Answer a question using the notes of the bound vault. "+
			"Notes containing any word of the question are used as context."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The question to answer")),
	), s.askNotes)

	s.mcp.AddTool(mcp.NewTool("list_vaults",
		mcp.WithDescription("List vault candidates found in the configured search locations."),
	), s.listVaults)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full content of a note in the bound vault."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path relative to the vault root (e.g. folder/note.md)")),
	), s.readNote)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) initializeVault(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vaultPath, err := req.RequireString("vault_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	model := req.GetString("model_name", "")

	info, err := s.assistant.Initialize(ctx, vaultPath, model)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("initialized vault %s with model %s (session %s)",
		info.VaultPath, info.Model, info.ID)), nil
}

func (s *Server) askNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	answer, err := s.assistant.AnswerQuery(ctx, query)
	if err != nil {
		if errors.Is(err, service.ErrNotInitialized) {
			return mcp.NewToolResultError("no vault initialized: call initialize_vault first"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString(answer.Response)
	if len(answer.Files) > 0 {
		b.WriteString("\n\nSources:")
		for _, f := range answer.Files {
			b.WriteString("\n- ")
			b.WriteString(f.RelPath)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) listVaults(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vaults := s.assistant.Vaults(ctx)
	if len(vaults) == 0 {
		return mcp.NewToolResultText("no vaults found"), nil
	}
	return mcp.NewToolResultText(strings.Join(vaults, "\n")), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rel, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, ok := s.assistant.Session()
	if !ok {
		return mcp.NewToolResultError("no vault initialized: call initialize_vault first"), nil
	}

	content, err := s.assistant.Note(ctx, filepath.Join(info.VaultPath, filepath.FromSlash(rel)))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", rel)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(content), nil
}
