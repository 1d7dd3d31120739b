package config

import "time"

// Config is the top-level pcli2-mcp configuration.
type Config struct {
	Server     ServerConfig    `toml:"server"`
	PCLI2      PCLI2Config     `toml:"pcli2"`
	Thumbnails ThumbnailConfig `toml:"thumbnails"`
	Log        LogConfig       `toml:"log"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	RequestTimeout  string `toml:"request_timeout"`
	MaxRequestBytes int64  `toml:"max_request_bytes"`
}

// PCLI2Config describes how the external pcli2 program is invoked.
type PCLI2Config struct {
	Binary         string `toml:"binary"`
	Timeout        string `toml:"timeout"`
	MaxOutputBytes int64  `toml:"max_output_bytes"`
}

// ThumbnailConfig describes the on-disk thumbnail cache.
type ThumbnailConfig struct {
	Dir      string `toml:"dir"`
	TTL      string `toml:"ttl"`
	Disabled bool   `toml:"disabled"`
}

// LogConfig holds logging options.
type LogConfig struct {
	Level string `toml:"level"`
}

// Defaults.
const (
	DefaultHost            = "localhost"
	DefaultPort            = 8080
	DefaultRequestTimeout  = 30 * time.Minute
	DefaultMaxRequestBytes = 1 << 20
	DefaultBinary          = "pcli2"
	DefaultPCLI2Timeout    = 30 * time.Minute
	DefaultMaxOutputBytes  = 200 * 1024 * 1024
	DefaultThumbnailTTL    = 24 * time.Hour
	DefaultLogLevel        = "info"
)

// Default returns a Config populated with built-in defaults.
// An empty thumbnail dir means paths.ThumbnailDir().
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			RequestTimeout:  DefaultRequestTimeout.String(),
			MaxRequestBytes: DefaultMaxRequestBytes,
		},
		PCLI2: PCLI2Config{
			Binary:         DefaultBinary,
			Timeout:        DefaultPCLI2Timeout.String(),
			MaxOutputBytes: DefaultMaxOutputBytes,
		},
		Thumbnails: ThumbnailConfig{
			TTL: DefaultThumbnailTTL.String(),
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

// RequestTimeoutDuration returns the parsed request timeout, or the default
// when unset or invalid.
func (s ServerConfig) RequestTimeoutDuration() time.Duration {
	return durationOr(s.RequestTimeout, DefaultRequestTimeout)
}

// TimeoutDuration returns the parsed subprocess timeout.
func (p PCLI2Config) TimeoutDuration() time.Duration {
	return durationOr(p.Timeout, DefaultPCLI2Timeout)
}

// TTLDuration returns the parsed thumbnail TTL.
func (t ThumbnailConfig) TTLDuration() time.Duration {
	return durationOr(t.TTL, DefaultThumbnailTTL)
}

func durationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
