//go:build unix

package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lydakis/pcli2-mcp/internal/runner"
)

func TestTenantListAgainstStubExecutable(t *testing.T) {
	exe := filepath.Join(t.TempDir(), "pcli2")
	script := "#!/bin/sh\n[ \"$1 $2\" = \"tenant list\" ] || exit 9\necho 'tenant list ok'\n"
	if err := os.WriteFile(exe, []byte(script), 0o755); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv(runner.EnvBinary, exe)

	d := NewDispatcher(runner.New("", 10*time.Second, 0), nil)
	res, err := d.Call(context.Background(), call("pcli2_tenant_list", nil))
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if got := resultText(t, res); got != "tenant list ok" {
		t.Fatalf("result = %q, want %q", got, "tenant list ok")
	}
}
