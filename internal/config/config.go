package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
	"github.com/lydakis/pcli2-mcp/internal/paths"
)

var envVarRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads the default config file. A missing file yields the defaults.
func Load() (*Config, error) {
	return LoadFrom(paths.ConfigFile())
}

// LoadFrom reads and parses a config file at the given path on top of the
// defaults. Keys absent from the file keep their default values.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	expandConfigEnvVars(cfg)
	return cfg, nil
}

// ThumbnailDir returns the effective cache directory.
func (c *Config) ThumbnailDir() string {
	if c.Thumbnails.Dir == "" {
		return paths.ThumbnailDir()
	}
	return paths.ExpandHome(c.Thumbnails.Dir)
}

func expandConfigEnvVars(cfg *Config) {
	cfg.Server.Host = expandEnvVars(cfg.Server.Host)
	cfg.PCLI2.Binary = expandEnvVars(cfg.PCLI2.Binary)
	cfg.Thumbnails.Dir = expandEnvVars(cfg.Thumbnails.Dir)
	cfg.Log.Level = expandEnvVars(cfg.Log.Level)
}

// expandEnvVars replaces ${VAR_NAME} with the value of the environment variable.
func expandEnvVars(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarRe.FindStringSubmatch(match)[1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match // leave unresolved vars as-is
	})
}
