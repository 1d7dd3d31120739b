package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/lydakis/pcli2-mcp/internal/config"
	"github.com/lydakis/pcli2-mcp/internal/logging"
	"github.com/lydakis/pcli2-mcp/internal/rpc"
	"github.com/lydakis/pcli2-mcp/internal/runner"
	"github.com/lydakis/pcli2-mcp/internal/server"
	"github.com/lydakis/pcli2-mcp/internal/thumbnail"
	"github.com/lydakis/pcli2-mcp/internal/tools"
)

const shutdownTimeout = 10 * time.Second

var notifyContext = func(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runServe(args []string) int {
	cfg, flagLevel, code, ok := parseServeFlags(args)
	if !ok {
		return code
	}

	logging.Setup(logging.ResolveLevel(flagLevel, cfg.Log.Level), rootStderr)
	printBanner(rootStdout, Version())

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := serve(ctx, cfg); err != nil {
		fmt.Fprintf(rootStderr, "%s: %v\n", appName, err)
		return ExitRuntime
	}
	return ExitOK
}

// parseServeFlags loads the config file and applies flags on top. Only flags
// given explicitly override file values. The --log-level value is returned
// separately so it can outrank the environment.
func parseServeFlags(args []string) (*config.Config, string, int, bool) {
	fs := flag.NewFlagSet(cmdServe, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	host := fs.String("host", "", "")
	port := fs.Int("port", 0, "")
	fs.IntVar(port, "p", 0, "")
	logLevel := fs.String("log-level", "", "")
	configPath := fs.String("config", "", "")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printServeHelp(rootStdout)
			return nil, "", ExitOK, false
		}
		fmt.Fprintf(rootStderr, "%s serve: %v\n", appName, err)
		printServeHelp(rootStderr)
		return nil, "", ExitUsage, false
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(rootStderr, "%s serve: unexpected arguments: %v\n", appName, fs.Args())
		return nil, "", ExitUsage, false
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(rootStderr, "%s: %v\n", appName, err)
		return nil, "", ExitRuntime, false
	}

	var flagLevel string
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Server.Host = *host
		case "port", "p":
			cfg.Server.Port = *port
		case "log-level":
			cfg.Log.Level = *logLevel
			flagLevel = *logLevel
		}
	})

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(rootStderr, "%s: invalid configuration:\n%v\n", appName, err)
		return nil, "", ExitUsage, false
	}
	return cfg, flagLevel, ExitOK, true
}

// serve runs the HTTP server until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config) error {
	log := logging.L()

	cache := openThumbnailCache(cfg)
	run := runner.New(cfg.PCLI2.Binary, cfg.PCLI2.TimeoutDuration(), cfg.PCLI2.MaxOutputBytes)
	handler := &rpc.Handler{
		Name:       appName,
		Version:    Version(),
		Dispatcher: tools.NewDispatcher(run, cache),
	}

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	srv := server.New(server.Options{
		Addr:            addr,
		RequestTimeout:  cfg.Server.RequestTimeoutDuration(),
		MaxRequestBytes: cfg.Server.MaxRequestBytes,
	}, handler, cache)
	if err := srv.Start(); err != nil {
		return err
	}
	log.Info().Str("addr", srv.Addr()).Str("endpoint", "http://"+srv.Addr()+"/mcp").Msg("MCP server listening")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// openThumbnailCache returns nil when the cache is disabled or cannot be
// created; the server then serves thumbnails inline only.
func openThumbnailCache(cfg *config.Config) *thumbnail.Cache {
	log := logging.L()
	if cfg.Thumbnails.Disabled {
		log.Info().Msg("thumbnail cache disabled")
		return nil
	}

	cache, err := thumbnail.New(thumbnail.Config{
		Dir:  cfg.ThumbnailDir(),
		TTL:  cfg.Thumbnails.TTLDuration(),
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize thumbnail cache, continuing without it")
		return nil
	}

	if removed, err := cache.CleanupExpired(); err != nil {
		log.Warn().Err(err).Msg("thumbnail cache cleanup failed")
	} else if removed > 0 {
		log.Info().Int("removed", removed).Msg("removed expired thumbnails")
	}
	if stats, err := cache.Stats(); err == nil {
		log.Info().
			Str("dir", cache.Dir()).
			Int("entries", stats.Entries).
			Int64("bytes", stats.Bytes).
			Msg("thumbnail cache ready")
	}
	return cache
}

func printServeHelp(out io.Writer) {
	fmt.Fprintf(out, "Usage: %s serve [--host HOST] [--port PORT] [--log-level LEVEL] [--config FILE]\n", appName)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Run the MCP server.")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Flags:")
	fmt.Fprintf(out, "  --host HOST          Host to bind (default %s)\n", config.DefaultHost)
	fmt.Fprintf(out, "  --port, -p PORT      Port to listen on (default %d)\n", config.DefaultPort)
	fmt.Fprintf(out, "  --log-level LEVEL    Log level (default %s)\n", config.DefaultLogLevel)
	fmt.Fprintln(out, "  --config FILE        Config file path")
}
