package tools

import (
	"context"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/loqalabs/taskflow/internal/analyzer"
	"github.com/loqalabs/taskflow/internal/interview"
	"github.com/loqalabs/taskflow/internal/issue"
)

// Tool is one MCP tool handler.
type Tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Registry holds the tools by name. The MCP server and the HTTP gateway
// share one Registry, so both transports run the same handlers.
type Registry struct {
	byName map[string]Tool
	order  []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Tool)}
}

// Add registers t under its definition name, replacing any previous tool
// with that name.
func (r *Registry) Add(t Tool) {
	name := t.Definition().Name
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byName[name] = t
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Tools returns the tools in registration order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}

// Deps are the components the tools operate on.
type Deps struct {
	Engine   *interview.Engine
	Analyzer *analyzer.Analyzer
	Backend  issue.Backend // nil when no issue tracker is configured
	Target   IssueTarget
}

// Build returns a Registry with every taskflow tool.
func Build(d Deps) *Registry {
	r := NewRegistry()

	r.Add(NewInterviewStartTool(d.Engine))
	r.Add(NewInterviewAnswerTool(d.Engine))
	r.Add(NewInterviewListActiveTool(d.Engine))
	r.Add(NewInterviewStatusTool(d.Engine))
	r.Add(NewInterviewCleanupTool(d.Engine))

	r.Add(NewClassifyTool(d.Analyzer))
	r.Add(NewFindRelatedTool(d.Analyzer))
	r.Add(NewAssessTool(d.Analyzer))
	r.Add(NewThoughtCaptureTool(d.Analyzer))

	r.Add(NewIssueCreateTool(d.Engine, d.Backend, d.Target))
	return r
}
