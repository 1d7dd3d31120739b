// Package tools declares the pcli2 tool catalog exposed over MCP and turns
// validated tool calls into pcli2 invocations.
package tools

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Kind is the argument type a Param accepts.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindNumber
	KindInteger
	// KindStringList accepts a string or an array of strings.
	KindStringList
)

type toolKind int

const (
	kindCommand toolKind = iota
	kindThumbnail
	kindCacheCleanup
)

// Range bounds a numeric argument, inclusive on both ends.
type Range struct {
	Min, Max float64
}

// Param describes one tool argument and how it maps onto pcli2 flags.
// Params are emitted in declaration order.
type Param struct {
	Name        string
	Kind        Kind
	Description string
	Enum        []string
	Default     string
	Range       *Range

	// Flag is the pcli2 flag; empty means the argument is not forwarded.
	Flag string
	// Alias names a second argument read when this one is absent.
	Alias string
	// Split breaks string values on commas, trimming and dropping empties.
	Split bool
}

// Tool is one entry of the catalog.
type Tool struct {
	Name        string
	Description string
	// Command is the pcli2 subcommand. An element of the form {arg} is
	// replaced by that argument's value (or its default).
	Command  []string
	Params   []Param
	Required []string
	// AnyOf lists argument groups where at least one member must be set.
	AnyOf [][]string

	kind toolKind
}

// MCPTool renders the tool for tools/list.
func (t *Tool) MCPTool() mcp.Tool {
	props := make(map[string]any, len(t.Params))
	for _, p := range t.Params {
		props[p.Name] = p.schema()
	}
	required := t.Required
	if required == nil {
		required = []string{}
	}
	return mcp.Tool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   required,
		},
	}
}

func (t *Tool) param(name string) (Param, bool) {
	for _, p := range t.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// command resolves placeholders against already-validated arguments.
func (t *Tool) command(args map[string]any) []string {
	out := make([]string, 0, len(t.Command))
	for _, c := range t.Command {
		if strings.HasPrefix(c, "{") && strings.HasSuffix(c, "}") {
			name := c[1 : len(c)-1]
			v, _ := args[name].(string)
			if v == "" {
				if p, ok := t.param(name); ok {
					v = p.Default
				}
			}
			out = append(out, v)
			continue
		}
		out = append(out, c)
	}
	return out
}

// label is the human-readable command used in logs and error messages.
func (t *Tool) label(args map[string]any) string {
	return "pcli2 " + strings.Join(t.command(args), " ")
}

func (p Param) schema() map[string]any {
	s := map[string]any{}
	switch p.Kind {
	case KindString:
		s["type"] = "string"
	case KindBool:
		s["type"] = "boolean"
	case KindNumber:
		s["type"] = "number"
	case KindInteger:
		s["type"] = "integer"
	case KindStringList:
		s["oneOf"] = []any{
			map[string]any{"type": "string"},
			map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		}
	}
	if len(p.Enum) > 0 {
		s["enum"] = p.Enum
	}
	if p.Default != "" {
		s["default"] = p.Default
	}
	if p.Description != "" {
		s["description"] = p.Description
	}
	return s
}
