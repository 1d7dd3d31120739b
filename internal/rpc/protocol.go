// Package rpc implements the JSON-RPC 2.0 envelope spoken on /mcp.
package rpc

import (
	"bytes"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// ProtocolVersion is the MCP revision reported by initialize.
const ProtocolVersion = "2025-03-26"

// Error codes.
const (
	CodeParseError     = mcp.PARSE_ERROR
	CodeInvalidRequest = mcp.INVALID_REQUEST
	CodeMethodNotFound = mcp.METHOD_NOT_FOUND
	CodeInvalidParams  = mcp.INVALID_PARAMS
)

// Request is a decoded JSON-RPC request. Fields absent from the wire stay nil.
type Request struct {
	JSONRPC *string
	ID      json.RawMessage
	Method  *string
	Params  json.RawMessage
}

// Notification reports whether no response may be sent for r.
func (r *Request) Notification() bool {
	return isNull(r.ID)
}

// Response carries exactly one of Result or Error.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is the JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func success(id json.RawMessage, result any) *Response {
	if result == nil {
		result = map[string]any{}
	}
	return &Response{JSONRPC: mcp.JSONRPC_VERSION, ID: normalizeID(id), Result: result}
}

func failure(id json.RawMessage, code int, message string) *Response {
	return &Response{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      normalizeID(id),
		Error:   &Error{Code: code, Message: message},
	}
}

func normalizeID(id json.RawMessage) json.RawMessage {
	if isNull(id) {
		return json.RawMessage("null")
	}
	return id
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// rawString decodes raw only when it is a JSON string.
func rawString(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", false
	}
	return s, true
}
