// Package mcptools exposes SchoolAssist as Model Context Protocol tools so
// other agents can format text and hold tutoring conversations.
package mcptools

import (
	"context"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tool is one MCP tool.
type Tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Registry holds the tools served by an MCP server.
type Registry struct {
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool, replacing any tool with the same name.
func (r *Registry) Register(tool Tool) {
	r.tools[tool.Definition().Name] = tool
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	return tool, nil
}

// List returns all registered tools sorted by name.
func (r *Registry) List() []Tool {
	ts := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		ts = append(ts, t)
	}
	sort.Slice(ts, func(i, j int) bool {
		return ts[i].Definition().Name < ts[j].Definition().Name
	})
	return ts
}

// Server builds an MCP server exposing every registered tool.
func (r *Registry) Server(name, version string) *server.MCPServer {
	s := server.NewMCPServer(name, version, server.WithToolCapabilities(false))
	for _, t := range r.List() {
		s.AddTool(t.Definition(), t.Handle)
	}
	return s
}

func stringArg(req mcp.CallToolRequest, key string) string {
	args, _ := any(req.Params.Arguments).(map[string]any)
	s, _ := args[key].(string)
	return s
}
