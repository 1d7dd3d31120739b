package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

type stubDispatcher struct {
	calls  []map[string]any
	result *mcp.CallToolResult
	err    error
}

func (s *stubDispatcher) Tools() []mcp.Tool {
	return []mcp.Tool{{
		Name:        "pcli2_version",
		Description: "Runs `pcli2 --version`.",
		InputSchema: mcp.ToolInputSchema{Type: "object", Properties: map[string]any{}},
	}}
}

func (s *stubDispatcher) Call(_ context.Context, params map[string]any) (*mcp.CallToolResult, error) {
	s.calls = append(s.calls, params)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newHandler(d *stubDispatcher) *Handler {
	return &Handler{Name: "pcli2-mcp", Version: "1.2.3", Dispatcher: d}
}

// decode round-trips a response through its wire form.
func decode(t *testing.T, resp *Response) map[string]any {
	t.Helper()
	if resp == nil {
		t.Fatal("response = nil, want a response")
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out["jsonrpc"] != "2.0" {
		t.Fatalf("jsonrpc = %v, want 2.0", out["jsonrpc"])
	}
	_, hasResult := out["result"]
	_, hasError := out["error"]
	if hasResult == hasError {
		t.Fatalf("response %s must carry exactly one of result/error", raw)
	}
	return out
}

func errorOf(t *testing.T, out map[string]any) (float64, string) {
	t.Helper()
	e, ok := out["error"].(map[string]any)
	if !ok {
		t.Fatalf("response %v has no error object", out)
	}
	return e["code"].(float64), e["message"].(string)
}

func TestHandleEnvelopeErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode float64
		wantMsg  string
		wantID   any
	}{
		{"invalid json", `{"jsonrpc":`, -32700, "Parse error: invalid JSON", nil},
		{"empty body", ``, -32700, "Parse error: invalid JSON", nil},
		{"not an object", `[1,2]`, -32600, "Invalid Request: expected a JSON object", nil},
		{"jsonrpc not a string", `{"jsonrpc":2,"id":1,"method":"ping"}`, -32600, "Invalid Request: 'jsonrpc' must be a string", nil},
		{"method not a string", `{"jsonrpc":"2.0","id":1,"method":7}`, -32600, "Invalid Request: 'method' must be a string", nil},
		{"wrong version", `{"jsonrpc":"1.0","id":7,"method":"ping"}`, -32600, "Invalid jsonrpc version '1.0'", float64(7)},
		{"wrong version without id", `{"jsonrpc":"1.0","method":"ping"}`, -32600, "Invalid jsonrpc version '1.0'", nil},
		{"missing method", `{"jsonrpc":"2.0","id":"abc"}`, -32600, "Invalid Request: missing 'method'", "abc"},
		{"unknown method", `{"jsonrpc":"2.0","id":3,"method":"resources/list"}`, -32601, "Method 'resources/list' not found", float64(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := decode(t, newHandler(&stubDispatcher{}).Handle(context.Background(), []byte(tt.body)))
			code, msg := errorOf(t, out)
			if code != tt.wantCode || msg != tt.wantMsg {
				t.Fatalf("error = (%v, %q), want (%v, %q)", code, msg, tt.wantCode, tt.wantMsg)
			}
			if out["id"] != tt.wantID {
				t.Fatalf("id = %#v, want %#v", out["id"], tt.wantID)
			}
		})
	}
}

func TestHandleNotificationsGetNoResponse(t *testing.T) {
	d := &stubDispatcher{}
	h := newHandler(d)

	for _, body := range []string{
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":null,"method":"tools/call","params":{"name":"pcli2_version"}}`,
		`{"method":"anything"}`,
	} {
		if resp := h.Handle(context.Background(), []byte(body)); resp != nil {
			t.Fatalf("Handle(%s) = %+v, want nil", body, resp)
		}
	}
	if len(d.calls) != 0 {
		t.Fatalf("dispatcher called %d times for notifications", len(d.calls))
	}
}

func TestHandleInitialize(t *testing.T) {
	out := decode(t, newHandler(&stubDispatcher{}).Handle(context.Background(),
		[]byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05"}}`)))

	result := out["result"].(map[string]any)
	if result["protocolVersion"] != ProtocolVersion {
		t.Fatalf("protocolVersion = %v", result["protocolVersion"])
	}
	info := result["serverInfo"].(map[string]any)
	if info["name"] != "pcli2-mcp" || info["version"] != "1.2.3" {
		t.Fatalf("serverInfo = %v", info)
	}
	caps := result["capabilities"].(map[string]any)
	if _, ok := caps["tools"].(map[string]any); !ok {
		t.Fatalf("capabilities = %v, want tools object", caps)
	}
	if out["id"] != float64(1) {
		t.Fatalf("id = %v", out["id"])
	}
}

func TestHandleVersionFieldIsOptional(t *testing.T) {
	out := decode(t, newHandler(&stubDispatcher{}).Handle(context.Background(), []byte(`{"id":9,"method":"ping"}`)))
	if _, ok := out["result"].(map[string]any); !ok {
		t.Fatalf("ping result = %v, want empty object", out["result"])
	}
}

func TestHandleToolsList(t *testing.T) {
	out := decode(t, newHandler(&stubDispatcher{}).Handle(context.Background(),
		[]byte(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)))

	tools := out["result"].(map[string]any)["tools"].([]any)
	if len(tools) != 1 || tools[0].(map[string]any)["name"] != "pcli2_version" {
		t.Fatalf("tools = %v", tools)
	}
}

func TestHandleToolsCall(t *testing.T) {
	d := &stubDispatcher{result: &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent("tenant list ok")}}}
	out := decode(t, newHandler(d).Handle(context.Background(),
		[]byte(`{"jsonrpc":"2.0","id":"req-1","method":"tools/call","params":{"name":"pcli2_tenant_list","arguments":{"format":"json"}}}`)))

	if out["id"] != "req-1" {
		t.Fatalf("id = %v", out["id"])
	}
	content := out["result"].(map[string]any)["content"].([]any)
	item := content[0].(map[string]any)
	if item["type"] != "text" || item["text"] != "tenant list ok" {
		t.Fatalf("content = %v", content)
	}
	if len(d.calls) != 1 || d.calls[0]["name"] != "pcli2_tenant_list" {
		t.Fatalf("dispatcher calls = %v", d.calls)
	}
	args := d.calls[0]["arguments"].(map[string]any)
	if args["format"] != "json" {
		t.Fatalf("arguments = %v", args)
	}
}

func TestHandleToolsCallDefaultsParams(t *testing.T) {
	d := &stubDispatcher{err: errors.New("Missing tool name")}
	out := decode(t, newHandler(d).Handle(context.Background(), []byte(`{"jsonrpc":"2.0","id":4,"method":"tools/call"}`)))

	code, msg := errorOf(t, out)
	if code != -32602 || msg != "Missing tool name" {
		t.Fatalf("error = (%v, %q)", code, msg)
	}
	if len(d.calls) != 1 || d.calls[0] == nil || len(d.calls[0]) != 0 {
		t.Fatalf("dispatcher params = %v, want empty object", d.calls)
	}
}

func TestHandleToolsCallErrorsAreInvalidParams(t *testing.T) {
	for _, err := range []error{
		errors.New("Invalid argument 'threshold': value 101 must be between 0 and 100"),
		errors.New("Unknown tool 'nope'"),
		errors.New("pcli2 asset get failed: pcli2 asset get failed (exit status 1):\n\nnot found"),
	} {
		out := decode(t, newHandler(&stubDispatcher{err: err}).Handle(context.Background(),
			[]byte(`{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"x"}}`)))
		code, msg := errorOf(t, out)
		if code != -32602 || msg != err.Error() {
			t.Fatalf("error = (%v, %q), want (-32602, %q)", code, msg, err.Error())
		}
	}
}
