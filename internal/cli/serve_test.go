package cli

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func isolateHome(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
}

func TestParseServeFlagsOnlyExplicitFlagsOverride(t *testing.T) {
	isolateHome(t)
	captureOutput(t)
	path := writeConfig(t, "[server]\nhost = \"0.0.0.0\"\nport = 9000\n\n[log]\nlevel = \"warn\"\n")

	cfg, flagLevel, code, ok := parseServeFlags([]string{"--config", path, "--host", "127.0.0.1"})
	if !ok {
		t.Fatalf("parseServeFlags failed with code %d", code)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Fatalf("host = %q, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Server.Port != 9000 {
		t.Fatalf("port = %d, want 9000 from the file", cfg.Server.Port)
	}
	if cfg.Log.Level != "warn" || flagLevel != "" {
		t.Fatalf("log level = %q (flag %q), want file value warn", cfg.Log.Level, flagLevel)
	}

	cfg, flagLevel, _, ok = parseServeFlags([]string{"--config", path, "-p", "1234", "--log-level", "debug"})
	if !ok {
		t.Fatal("parseServeFlags failed")
	}
	if cfg.Server.Port != 1234 {
		t.Fatalf("port = %d, want 1234", cfg.Server.Port)
	}
	if flagLevel != "debug" || cfg.Log.Level != "debug" {
		t.Fatalf("log level = %q (flag %q), want debug", cfg.Log.Level, flagLevel)
	}
}

func TestParseServeFlagsDefaultsWithoutConfigFile(t *testing.T) {
	isolateHome(t)
	captureOutput(t)

	cfg, _, _, ok := parseServeFlags(nil)
	if !ok {
		t.Fatal("parseServeFlags failed")
	}
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Fatalf("listen = %s:%d, want localhost:8080", cfg.Server.Host, cfg.Server.Port)
	}
}

func TestParseServeFlagsErrors(t *testing.T) {
	isolateHome(t)
	badTOML := writeConfig(t, "[server\n")

	tests := []struct {
		name string
		args []string
		code int
		want string
	}{
		{name: "unknown flag", args: []string{"--bogus"}, code: ExitUsage, want: "flag provided but not defined"},
		{name: "positional", args: []string{"now"}, code: ExitUsage, want: "unexpected arguments"},
		{name: "invalid port", args: []string{"--port", "0"}, code: ExitUsage, want: "server.port"},
		{name: "invalid level", args: []string{"--log-level", "loud"}, code: ExitUsage, want: "log.level"},
		{name: "malformed config", args: []string{"--config", badTOML}, code: ExitRuntime, want: "parsing config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut := captureOutput(t)
			_, _, code, ok := parseServeFlags(tt.args)
			if ok {
				t.Fatal("parseServeFlags succeeded, want failure")
			}
			if code != tt.code {
				t.Fatalf("code = %d, want %d", code, tt.code)
			}
			if !strings.Contains(errOut.String(), tt.want) {
				t.Fatalf("stderr = %q, want substring %q", errOut.String(), tt.want)
			}
		})
	}
}

func TestRunServeHelp(t *testing.T) {
	isolateHome(t)
	out, _ := captureOutput(t)

	if code := Run([]string{"serve", "--help"}); code != ExitOK {
		t.Fatalf("code = %d, want 0", code)
	}
	if !strings.Contains(out.String(), "Run the MCP server.") {
		t.Fatalf("stdout = %q", out.String())
	}
}

func TestRunServeStartsAndShutsDown(t *testing.T) {
	isolateHome(t)
	out, errOut := captureOutput(t)

	port := freePort(t)
	cacheDir := filepath.Join(t.TempDir(), "thumbs")
	path := writeConfig(t, fmt.Sprintf("[server]\nhost = \"127.0.0.1\"\nport = %d\n\n[thumbnails]\ndir = %q\n", port, cacheDir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	oldNotify := notifyContext
	defer func() { notifyContext = oldNotify }()
	notifyContext = func(context.Context) (context.Context, context.CancelFunc) {
		return ctx, cancel
	}

	done := make(chan int, 1)
	go func() { done <- Run([]string{"serve", "--config", path}) }()

	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", port)
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(healthURL)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("server never became healthy: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case code := <-done:
		if code != ExitOK {
			t.Fatalf("serve exit code = %d, want 0 (stderr %q)", code, errOut.String())
		}
	case <-time.After(15 * time.Second):
		t.Fatal("serve did not shut down")
	}

	if !strings.Contains(out.String(), "Model Context Protocol Server for PCLI2") {
		t.Fatalf("banner missing from stdout: %q", out.String())
	}
	if !strings.Contains(out.String(), "Version "+Version()) {
		t.Fatalf("banner missing version %q: %q", Version(), out.String())
	}
	if info, err := os.Stat(cacheDir); err != nil || !info.IsDir() {
		t.Fatalf("thumbnail cache dir not created: %v", err)
	}
}

func TestOpenThumbnailCacheDisabled(t *testing.T) {
	isolateHome(t)
	captureOutput(t)
	cfg, _, _, ok := parseServeFlags(nil)
	if !ok {
		t.Fatal("parseServeFlags failed")
	}
	cfg.Thumbnails.Disabled = true
	if cache := openThumbnailCache(cfg); cache != nil {
		t.Fatal("openThumbnailCache returned a cache while disabled")
	}
}

func TestOpenThumbnailCacheFailureIsNotFatal(t *testing.T) {
	isolateHome(t)
	captureOutput(t)
	cfg, _, _, ok := parseServeFlags(nil)
	if !ok {
		t.Fatal("parseServeFlags failed")
	}
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg.Thumbnails.Dir = filepath.Join(blocker, "thumbs")
	if cache := openThumbnailCache(cfg); cache != nil {
		t.Fatal("openThumbnailCache returned a cache for an unusable directory")
	}
}
