package tools

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	responseModeURL     = "url"
	responseModeDataURL = "data_url"
)

var errInvalidPNG = errors.New("Thumbnail output was not a valid PNG file.")

var (
	pngMagic = []byte("\x89PNG\r\n\x1a\n")
	tempSeq  atomic.Uint64
)

const thumbnailHTML = `<!DOCTYPE html>
<html>
<head><title>Asset Thumbnail</title></head>
<body>
<img src="%s" alt="Asset Thumbnail" style="max-width: 100%%; height: auto;">
</body>
</html>`

func (d *Dispatcher) callThumbnail(ctx context.Context, tool *Tool, args map[string]any) (*mcp.CallToolResult, error) {
	tmp := tempThumbnailPath()
	defer os.Remove(tmp)

	label := tool.label(args)
	argv := append(tool.argv(args), "--file", tmp)
	if _, err := d.runner.Run(ctx, argv, label); err != nil {
		return nil, fmt.Errorf("%s failed: %w", label, err)
	}

	data, err := os.ReadFile(tmp)
	if err != nil {
		return nil, fmt.Errorf("failed to read thumbnail output: %w", err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		return nil, errInvalidPNG
	}

	src, err := d.thumbnailSource(args, data)
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf(thumbnailHTML, src)), nil
}

// thumbnailSource picks the <img src>: a cache URL unless data_url was asked
// for or no cache is configured.
func (d *Dispatcher) thumbnailSource(args map[string]any, data []byte) (string, error) {
	mode, _ := args["response_mode"].(string)
	if mode == responseModeDataURL || d.cache == nil {
		return dataURL(data), nil
	}

	source := "unknown"
	if v, ok := args["uuid"].(string); ok {
		source = v
	} else if v, ok := args["path"].(string); ok {
		source = v
	}
	_, url, err := d.cache.Save(source, data)
	if err != nil {
		return "", fmt.Errorf("failed to cache thumbnail: %w", err)
	}
	return url, nil
}

func (d *Dispatcher) callCacheCleanup() (*mcp.CallToolResult, error) {
	if d.cache == nil {
		return textResult("Thumbnail cache is not available"), nil
	}
	n, err := d.cache.CleanupExpired()
	if err != nil {
		return nil, fmt.Errorf("Thumbnail cache cleanup failed: %w", err)
	}
	return textResult(fmt.Sprintf("Cleaned up %d expired thumbnail(s)", n)), nil
}

func dataURL(data []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
}

func tempThumbnailPath() string {
	name := fmt.Sprintf("pcli2-thumbnail-%d-%d-%d.png", os.Getpid(), time.Now().UnixMilli(), tempSeq.Add(1))
	return filepath.Join(os.TempDir(), name)
}
