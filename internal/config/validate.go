package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true, "disabled": true,
}

// Validate checks configuration invariants and returns actionable errors.
func Validate(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	var errs []error

	if strings.TrimSpace(cfg.Server.Host) == "" {
		errs = append(errs, errors.New("server.host: must not be empty"))
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: must be between 1 and 65535, got %d", cfg.Server.Port))
	}
	if err := validateDuration("server.request_timeout", cfg.Server.RequestTimeout); err != nil {
		errs = append(errs, err)
	}
	if cfg.Server.MaxRequestBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_request_bytes: must be > 0, got %d", cfg.Server.MaxRequestBytes))
	}

	if strings.TrimSpace(cfg.PCLI2.Binary) == "" {
		errs = append(errs, errors.New("pcli2.binary: must not be empty"))
	}
	if err := validateDuration("pcli2.timeout", cfg.PCLI2.Timeout); err != nil {
		errs = append(errs, err)
	}
	if cfg.PCLI2.MaxOutputBytes <= 0 {
		errs = append(errs, fmt.Errorf("pcli2.max_output_bytes: must be > 0, got %d", cfg.PCLI2.MaxOutputBytes))
	}

	if err := validateDuration("thumbnails.ttl", cfg.Thumbnails.TTL); err != nil {
		errs = append(errs, err)
	}

	if lvl := strings.ToLower(strings.TrimSpace(cfg.Log.Level)); lvl != "" && !validLogLevels[lvl] {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", cfg.Log.Level))
	}

	return errors.Join(errs...)
}

func validateDuration(field, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q: %w", field, raw, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s: must be > 0, got %q", field, raw)
	}
	return nil
}
