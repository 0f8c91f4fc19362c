package tools

import "context"

//go:generate mockgen -source=callback.go -destination=../mocks/mocktools/tools_mock.gen.go -package mocktools

// Callback receives tool lifecycle events from the Registry.
type Callback interface {
	OnToolStart(ctx context.Context, tool, input string)
	OnToolEnd(ctx context.Context, tool, input, output string)
	OnToolError(ctx context.Context, tool, input string, err error)
	OnToolNotFound(ctx context.Context, tool string)
}

// McpServerRegistrator exposes tools to an MCP server.
type McpServerRegistrator interface {
	RegisterTool(name string, description string, params any, handler Handler) error
}
