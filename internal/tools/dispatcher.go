package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lydakis/pcli2-mcp/internal/logging"
	"github.com/lydakis/pcli2-mcp/internal/thumbnail"
)

// Runner executes pcli2 with the given argv and returns its stdout.
type Runner interface {
	Run(ctx context.Context, args []string, label string) (string, error)
}

// Dispatcher resolves tools/call requests against the catalog.
type Dispatcher struct {
	runner Runner
	cache  *thumbnail.Cache
	tools  []*Tool
	byName map[string]*Tool
}

// NewDispatcher builds a dispatcher over the full catalog. cache may be nil,
// in which case thumbnails are returned inline.
func NewDispatcher(runner Runner, cache *thumbnail.Cache) *Dispatcher {
	catalog := Catalog()
	byName := make(map[string]*Tool, len(catalog))
	for _, t := range catalog {
		byName[t.Name] = t
	}
	return &Dispatcher{
		runner: runner,
		cache:  cache,
		tools:  catalog,
		byName: byName,
	}
}

// Tools lists the catalog in tools/list form.
func (d *Dispatcher) Tools() []mcp.Tool {
	out := make([]mcp.Tool, 0, len(d.tools))
	for _, t := range d.tools {
		out = append(out, t.MCPTool())
	}
	return out
}

// Call runs the tool named in params. params is the tools/call params object.
func (d *Dispatcher) Call(ctx context.Context, params map[string]any) (*mcp.CallToolResult, error) {
	name, ok := params["name"].(string)
	if !ok {
		return nil, invalidArgs("Missing tool name")
	}

	var args map[string]any
	switch v := params["arguments"].(type) {
	case nil:
		args = map[string]any{}
	case map[string]any:
		args = v
	default:
		return nil, invalidArgs("Invalid arguments: expected an object")
	}

	tool, ok := d.byName[name]
	if !ok {
		return nil, fmt.Errorf("Unknown tool '%s'", name)
	}

	compiled, err := tool.compileArgs(args)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var result *mcp.CallToolResult
	switch tool.kind {
	case kindThumbnail:
		result, err = d.callThumbnail(ctx, tool, compiled)
	case kindCacheCleanup:
		result, err = d.callCacheCleanup()
	default:
		result, err = d.callCommand(ctx, tool, compiled)
	}

	log := logging.Ctx(ctx).With().Str("tool", name).Dur("elapsed", time.Since(start)).Logger()
	if err != nil {
		log.Warn().Err(err).Msg("tool call failed")
		return nil, err
	}
	log.Debug().Msg("tool call finished")
	return result, nil
}

func (d *Dispatcher) callCommand(ctx context.Context, tool *Tool, args map[string]any) (*mcp.CallToolResult, error) {
	label := tool.label(args)
	out, err := d.runner.Run(ctx, tool.argv(args), label)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", label, err)
	}
	return textResult(out), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(text)},
	}
}
