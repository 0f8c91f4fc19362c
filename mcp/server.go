// Package mcp exposes the tool registry over the Model Context Protocol.
//
// Transports are provided by mcp-go: streamable HTTP for network hosts
// and stdio for desktop hosts that launch the server as a subprocess.
package mcp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpbrief/pkg/schema"
	"github.com/effective-security/mcpbrief/tools"
	"github.com/effective-security/xlog"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcpbrief", "mcp")

// DefaultEndpointPath is the streamable HTTP endpoint
const DefaultEndpointPath = "/mcp"

// Server adapts tools.Handler functions to an MCP server
type Server struct {
	name    string
	version string
	mcp     *server.MCPServer

	lock sync.Mutex
	http *server.StreamableHTTPServer
}

// ensure Server implements the tools.McpServerRegistrator interface
var _ tools.McpServerRegistrator = (*Server)(nil)

func NewServer(name, version string) *Server {
	return &Server{
		name:    name,
		version: version,
		mcp: server.NewMCPServer(name, version,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
		),
	}
}

// MCPServer returns the underlying mcp-go server
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// RegisterTool adds the tool to the server.
// params is the JSON schema of the arguments object, nil for a tool without arguments.
func (s *Server) RegisterTool(name, description string, params any, handler tools.Handler) error {
	if handler == nil {
		return errors.Errorf("handler is required: %s", name)
	}

	raw, err := rawSchema(params)
	if err != nil {
		return errors.WithMessagef(err, "invalid parameters schema for %s", name)
	}

	tool := mcpgo.NewToolWithRawSchema(name, description, raw)
	s.mcp.AddTool(tool, toolHandler(name, handler))

	logger.KV(xlog.DEBUG, "status", "registered", "tool", name)
	return nil
}

func rawSchema(params any) (json.RawMessage, error) {
	if params == nil {
		return schema.Raw(nil)
	}
	s, err := schema.FromAny(params)
	if err != nil {
		return nil, err
	}
	return schema.Raw(s)
}

// toolHandler converts the MCP arguments into the JSON input of the handler.
// A failed call is returned as a tool result with isError set,
// the text carries the error kind so the agent can react to it.
func toolHandler(name string, handler tools.Handler) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		input, err := json.Marshal(req.GetArguments())
		if err != nil {
			return mcpgo.NewToolResultError(tools.ErrorText(tools.InvalidInput("invalid arguments: %s", err.Error()))), nil
		}

		out, err := handler(ctx, string(input))
		if err != nil {
			logger.ContextKV(ctx, xlog.DEBUG,
				"tool", name,
				"kind", tools.KindOf(err),
				"err", err.Error(),
			)
			return mcpgo.NewToolResultError(tools.ErrorText(err)), nil
		}
		return mcpgo.NewToolResultText(out), nil
	}
}

// Handler returns the streamable HTTP handler,
// it can be mounted on an existing mux.
func (s *Server) Handler() http.Handler {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.streamable()
}

func (s *Server) streamable() *server.StreamableHTTPServer {
	if s.http == nil {
		s.http = server.NewStreamableHTTPServer(s.mcp,
			server.WithEndpointPath(DefaultEndpointPath),
		)
	}
	return s.http
}

// ListenAndServe serves streamable HTTP on addr until Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	s.lock.Lock()
	h := s.streamable()
	s.lock.Unlock()

	logger.KV(xlog.INFO,
		"status", "serving",
		"transport", "http",
		"addr", addr,
		"path", DefaultEndpointPath,
	)
	err := h.Start(addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrapf(err, "failed to serve on %s", addr)
	}
	return nil
}

// ServeStdio serves newline delimited JSON-RPC on in and out until ctx is done
// or the input is closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	logger.KV(xlog.INFO, "status", "serving", "transport", "stdio")

	err := server.NewStdioServer(s.mcp).Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return errors.Wrap(err, "stdio transport failed")
	}
	return nil
}

// Shutdown stops the HTTP transport, if it was started.
func (s *Server) Shutdown(ctx context.Context) error {
	s.lock.Lock()
	h := s.http
	s.lock.Unlock()

	if h == nil {
		return nil
	}
	if err := h.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "failed to shutdown")
	}
	logger.KV(xlog.INFO, "status", "stopped", "name", s.name)
	return nil
}
