package cli

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestBuildClientConfigSupportedClients(t *testing.T) {
	for _, client := range []string{clientClaude, clientQwenCode, clientQwenAgent} {
		t.Run(client, func(t *testing.T) {
			cfg, err := buildClientConfig(client, "localhost", 8080)
			if err != nil {
				t.Fatalf("buildClientConfig: %v", err)
			}
			entry := cfg["mcpServers"].(map[string]any)["pcli2"].(map[string]any)
			if entry["command"] != "npx" {
				t.Fatalf("command = %v, want npx", entry["command"])
			}
			want := []string{"-y", "mcp-remote", "http://localhost:8080/mcp"}
			if !reflect.DeepEqual(entry["args"], want) {
				t.Fatalf("args = %v, want %v", entry["args"], want)
			}
		})
	}
}

func TestBuildClientConfigRejectsUnknownClient(t *testing.T) {
	_, err := buildClientConfig("cursor", "localhost", 8080)
	if err == nil || err.Error() != "Unsupported client 'cursor'" {
		t.Fatalf("err = %v, want Unsupported client 'cursor'", err)
	}
}

func TestRunClientConfigPrintsJSON(t *testing.T) {
	out, _ := captureOutput(t)

	code := Run([]string{"config", "--client", "qwen-code", "--host", "10.0.0.5", "-p", "9090"})
	if code != ExitOK {
		t.Fatalf("code = %d, want 0", code)
	}

	var got map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	want := map[string]any{
		"mcpServers": map[string]any{
			"pcli2": map[string]any{
				"command": "npx",
				"args":    []any{"-y", "mcp-remote", "http://10.0.0.5:9090/mcp"},
			},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("config = %v, want %v", got, want)
	}
	if !strings.Contains(out.String(), "\n  \"mcpServers\"") {
		t.Fatalf("output is not indented:\n%s", out.String())
	}
}

func TestRunClientConfigDefaults(t *testing.T) {
	out, _ := captureOutput(t)

	if code := Run([]string{"config"}); code != ExitOK {
		t.Fatalf("code = %d, want 0", code)
	}
	if !strings.Contains(out.String(), "http://localhost:8080/mcp") {
		t.Fatalf("output = %s, want default URL", out.String())
	}
}

func TestRunClientConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "unsupported client", args: []string{"config", "--client", "cursor"}, want: "Unsupported client 'cursor'"},
		{name: "bad port", args: []string{"config", "--port", "70000"}, want: "invalid port 70000"},
		{name: "unknown flag", args: []string{"config", "--bogus"}, want: "flag provided but not defined"},
		{name: "positional", args: []string{"config", "extra"}, want: "unexpected arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut := captureOutput(t)
			if code := Run(tt.args); code != ExitUsage {
				t.Fatalf("code = %d, want %d", code, ExitUsage)
			}
			if out.Len() != 0 {
				t.Fatalf("stdout = %q, want empty", out.String())
			}
			if !strings.Contains(errOut.String(), tt.want) {
				t.Fatalf("stderr = %q, want substring %q", errOut.String(), tt.want)
			}
		})
	}
}
