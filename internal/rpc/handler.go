package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lydakis/pcli2-mcp/internal/logging"
)

// Dispatcher serves the tools/* methods.
type Dispatcher interface {
	Tools() []mcp.Tool
	Call(ctx context.Context, params map[string]any) (*mcp.CallToolResult, error)
}

// Handler answers one JSON-RPC request per call and keeps no session state.
type Handler struct {
	Name       string
	Version    string
	Dispatcher Dispatcher
}

type initializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	ServerInfo      mcp.Implementation `json:"serverInfo"`
	Capabilities    map[string]any     `json:"capabilities"`
}

type toolsListResult struct {
	Tools []mcp.Tool `json:"tools"`
}

// Handle processes body and returns the response to send, or nil for a
// notification.
func (h *Handler) Handle(ctx context.Context, body []byte) *Response {
	log := logging.Ctx(ctx)
	req, errResp := parseRequest(body)
	if errResp != nil {
		return errResp
	}

	if req.JSONRPC != nil && *req.JSONRPC != mcp.JSONRPC_VERSION {
		return failure(req.ID, CodeInvalidRequest, fmt.Sprintf("Invalid jsonrpc version '%s'", *req.JSONRPC))
	}
	if req.Method == nil {
		return failure(req.ID, CodeInvalidRequest, "Invalid Request: missing 'method'")
	}
	if req.Notification() {
		log.Debug().Str("method", *req.Method).Msg("notification ignored")
		return nil
	}

	method := *req.Method
	switch mcp.MCPMethod(method) {
	case mcp.MethodInitialize:
		log.Info().Msg("initialize")
		return success(req.ID, initializeResult{
			ProtocolVersion: ProtocolVersion,
			ServerInfo:      mcp.Implementation{Name: h.Name, Version: h.Version},
			Capabilities:    map[string]any{"tools": map[string]any{}},
		})
	case mcp.MethodPing:
		return success(req.ID, map[string]any{})
	case mcp.MethodToolsList:
		log.Info().Msg("tools/list")
		return success(req.ID, toolsListResult{Tools: h.Dispatcher.Tools()})
	case mcp.MethodToolsCall:
		return h.callTool(ctx, req)
	default:
		return failure(req.ID, CodeMethodNotFound, fmt.Sprintf("Method '%s' not found", method))
	}
}

func (h *Handler) callTool(ctx context.Context, req *Request) *Response {
	params := map[string]any{}
	if !isNull(req.Params) {
		var decoded any
		if err := json.Unmarshal(req.Params, &decoded); err != nil {
			return failure(req.ID, CodeInvalidParams, "Invalid params: "+err.Error())
		}
		// Non-object params surface as a missing tool name.
		params, _ = decoded.(map[string]any)
	}

	name, _ := params["name"].(string)
	if name == "" {
		name = "unknown"
	}
	log := logging.Ctx(ctx)
	log.Info().Str("tool", name).Msg("tools/call")

	result, err := h.Dispatcher.Call(ctx, params)
	if err != nil {
		log.Debug().
			Str("tool", name).
			Bool("invalid_params", errors.Is(err, mcp.ErrInvalidParams)).
			Err(err).
			Msg("tools/call failed")
		return failure(req.ID, CodeInvalidParams, err.Error())
	}
	return success(req.ID, result)
}

// parseRequest decodes body, returning an error response for anything that
// is not a well-formed request object.
func parseRequest(body []byte) (*Request, *Response) {
	var probe any
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, failure(nil, CodeParseError, "Parse error: invalid JSON")
	}
	if _, ok := probe.(map[string]any); !ok {
		return nil, failure(nil, CodeInvalidRequest, "Invalid Request: expected a JSON object")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, failure(nil, CodeParseError, "Parse error: invalid JSON")
	}

	req := &Request{ID: fields["id"], Params: fields["params"]}
	if raw, ok := fields["jsonrpc"]; ok {
		v, ok := rawString(raw)
		if !ok {
			return nil, failure(nil, CodeInvalidRequest, "Invalid Request: 'jsonrpc' must be a string")
		}
		req.JSONRPC = &v
	}
	if raw, ok := fields["method"]; ok {
		v, ok := rawString(raw)
		if !ok {
			return nil, failure(nil, CodeInvalidRequest, "Invalid Request: 'method' must be a string")
		}
		req.Method = &v
	}
	return req, nil
}
