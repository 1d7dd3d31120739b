// Package thumbnail stores rendered asset thumbnails on disk and hands out
// URLs under which the HTTP server serves them back.
package thumbnail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gofrs/flock"

	"github.com/lydakis/pcli2-mcp/internal/logging"
	"github.com/lydakis/pcli2-mcp/internal/paths"
)

// DefaultTTL is how long a saved thumbnail stays loadable.
const DefaultTTL = 24 * time.Hour

const (
	payloadExt = ".png"
	sidecarExt = ".meta"
	lockName   = ".cleanup.lock"

	lockTimeout      = 10 * time.Second
	lockPollInterval = 50 * time.Millisecond
)

var (
	// ErrNotFound is returned for keys with no payload on disk.
	ErrNotFound = errors.New("not found")
	// ErrExpired is returned when an entry outlived its TTL; both files are gone afterwards.
	ErrExpired = errors.New("expired and removed")

	keyPattern = regexp.MustCompile(`^[0-9a-f]{16}$`)
	keySeq     atomic.Uint64
)

// Config describes where entries live and how their URLs are built.
type Config struct {
	Dir  string
	TTL  time.Duration
	Host string
	Port int
}

// Cache is safe for concurrent use; every entry owns its own pair of files.
type Cache struct {
	dir     string
	ttl     time.Duration
	baseURL string
	now     func() time.Time
}

type metadata struct {
	CachedAt    int64   `json:"cached_at"`
	Source      string  `json:"source"`
	ContentHash *string `json:"content_hash,omitempty"`
	Width       int     `json:"width,omitempty"`
	Height      int     `json:"height,omitempty"`
}

// Stats summarizes the entries currently on disk.
type Stats struct {
	Entries int
	Bytes   int64
}

// New creates the cache directory if needed.
func New(cfg Config) (*Cache, error) {
	if cfg.Dir == "" {
		return nil, errors.New("thumbnail cache directory is empty")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := paths.EnsureDir(cfg.Dir); err != nil {
		return nil, fmt.Errorf("failed to create thumbnail cache directory %s: %w", cfg.Dir, err)
	}
	logging.L().Debug().Str("dir", cfg.Dir).Msg("thumbnail cache directory ready")
	return &Cache{
		dir:     cfg.Dir,
		ttl:     ttl,
		baseURL: fmt.Sprintf("http://%s:%d/thumbnail", cfg.Host, cfg.Port),
		now:     time.Now,
	}, nil
}

// Dir returns the directory holding the entries.
func (c *Cache) Dir() string { return c.dir }

// URL returns the address under which key is served.
func (c *Cache) URL(key string) string { return c.baseURL + "/" + key }

// Save writes data under a fresh key and returns the key and its URL.
func (c *Cache) Save(source string, data []byte) (string, string, error) {
	key := c.newKey(source)

	meta := metadata{
		CachedAt: c.now().UnixMilli(),
		Source:   source,
	}
	if img, err := imaging.Decode(bytes.NewReader(data)); err == nil {
		b := img.Bounds()
		meta.Width, meta.Height = b.Dx(), b.Dy()
	} else {
		logging.L().Debug().Err(err).Str("key", key).Msg("thumbnail dimensions unavailable")
	}
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to encode thumbnail metadata: %w", err)
	}

	// The sidecar goes first: a sweep treats a payload without one as expired.
	sidecar := c.sidecarPath(key)
	if err := os.WriteFile(sidecar, raw, 0600); err != nil {
		return "", "", fmt.Errorf("failed to write thumbnail metadata %s: %w", sidecar, err)
	}
	payload := c.payloadPath(key)
	if err := os.WriteFile(payload, data, 0600); err != nil {
		_ = os.Remove(sidecar)
		return "", "", fmt.Errorf("failed to write thumbnail %s: %w", payload, err)
	}

	url := c.URL(key)
	logging.L().Info().Str("source", source).Str("url", url).Dur("ttl", c.ttl).Msg("cached thumbnail")
	return key, url, nil
}

// Load returns the payload for key. Expired entries are removed on the way out.
func (c *Cache) Load(key string) ([]byte, error) {
	if !ValidKey(key) {
		return nil, fmt.Errorf("thumbnail %q %w", key, ErrNotFound)
	}
	payload := c.payloadPath(key)
	if _, err := os.Stat(payload); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("thumbnail %s %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to stat thumbnail %s: %w", payload, err)
	}

	if c.expired(key) {
		if err := c.Remove(key); err != nil {
			logging.L().Warn().Err(err).Str("key", key).Msg("failed to remove expired thumbnail")
		}
		return nil, fmt.Errorf("thumbnail %s %w", key, ErrExpired)
	}

	data, err := os.ReadFile(payload)
	if err != nil {
		if os.IsNotExist(err) {
			// Swept between the stat and the read.
			return nil, fmt.Errorf("thumbnail %s %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read thumbnail %s: %w", payload, err)
	}
	logging.L().Debug().Str("key", key).Msg("loaded thumbnail from cache")
	return data, nil
}

// Remove deletes both files for key. Missing files are not an error.
func (c *Cache) Remove(key string) error {
	if !ValidKey(key) {
		return nil
	}
	for _, p := range []string{c.payloadPath(key), c.sidecarPath(key)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	logging.L().Debug().Str("key", key).Msg("removed thumbnail from cache")
	return nil
}

// CleanupExpired removes every expired entry and reports how many went away.
func (c *Cache) CleanupExpired() (int, error) {
	unlock, err := c.lock()
	if err != nil {
		return 0, err
	}
	defer unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read thumbnail cache directory %s: %w", c.dir, err)
	}

	removed := 0
	for _, e := range entries {
		key, ok := entryKey(e)
		if !ok || !c.expired(key) {
			continue
		}
		if err := c.Remove(key); err != nil {
			logging.L().Warn().Err(err).Str("key", key).Msg("failed to remove expired thumbnail")
			continue
		}
		removed++
	}
	if removed > 0 {
		logging.L().Info().Int("removed", removed).Msg("cleaned up expired thumbnails")
	}
	return removed, nil
}

// Stats counts payload files and their total size.
func (c *Cache) Stats() (Stats, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read thumbnail cache directory %s: %w", c.dir, err)
	}
	var st Stats
	for _, e := range entries {
		if _, ok := entryKey(e); !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		st.Entries++
		st.Bytes += info.Size()
	}
	return st, nil
}

// ValidKey reports whether key has the shape Save produces.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

func (c *Cache) expired(key string) bool {
	raw, err := os.ReadFile(c.sidecarPath(key))
	if err != nil {
		return true
	}
	var meta metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return true
	}
	age := c.now().UnixMilli() - meta.CachedAt
	return age > c.ttl.Milliseconds()
}

func (c *Cache) lock() (func(), error) {
	fl := flock.New(filepath.Join(c.dir, lockName))
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, lockPollInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to lock thumbnail cache: %w", err)
	}
	if !locked {
		return nil, errors.New("failed to lock thumbnail cache: lock busy")
	}
	return func() { _ = fl.Unlock() }, nil
}

func (c *Cache) newKey(source string) string {
	h := fnv.New64a()
	h.Write([]byte(source))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(c.now().UnixNano(), 10)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatUint(keySeq.Add(1), 10)))
	return fmt.Sprintf("%016x", h.Sum64())
}

func (c *Cache) payloadPath(key string) string {
	return filepath.Join(c.dir, key+payloadExt)
}

func (c *Cache) sidecarPath(key string) string {
	return filepath.Join(c.dir, key+sidecarExt)
}

func entryKey(e os.DirEntry) (string, bool) {
	if e.IsDir() {
		return "", false
	}
	name := e.Name()
	if !strings.HasSuffix(name, payloadExt) {
		return "", false
	}
	key := strings.TrimSuffix(name, payloadExt)
	return key, ValidKey(key)
}
