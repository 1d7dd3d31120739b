package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/lydakis/pcli2-mcp/internal/config"
)

// Supported MCP clients for the config command.
const (
	clientClaude    = "claude"
	clientQwenCode  = "qwen-code"
	clientQwenAgent = "qwen-agent"
)

const (
	serverAlias   = "pcli2"
	remoteCommand = "npx"
	remotePackage = "mcp-remote"
)

func buildClientConfig(client, host string, port int) (map[string]any, error) {
	switch client {
	case clientClaude, clientQwenCode, clientQwenAgent:
	default:
		return nil, fmt.Errorf("Unsupported client '%s'", client)
	}

	return map[string]any{
		"mcpServers": map[string]any{
			serverAlias: map[string]any{
				"command": remoteCommand,
				"args":    []string{"-y", remotePackage, serverURL(host, port)},
			},
		},
	}, nil
}

func serverURL(host string, port int) string {
	return "http://" + host + ":" + strconv.Itoa(port) + "/mcp"
}

func runClientConfig(args []string) int {
	fs := flag.NewFlagSet(cmdConfig, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	client := fs.String("client", clientClaude, "")
	host := fs.String("host", config.DefaultHost, "")
	port := fs.Int("port", config.DefaultPort, "")
	fs.IntVar(port, "p", config.DefaultPort, "")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printConfigHelp(rootStdout)
			return ExitOK
		}
		fmt.Fprintf(rootStderr, "%s config: %v\n", appName, err)
		printConfigHelp(rootStderr)
		return ExitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(rootStderr, "%s config: unexpected arguments: %v\n", appName, fs.Args())
		return ExitUsage
	}
	if *port < 1 || *port > 65535 {
		fmt.Fprintf(rootStderr, "%s config: invalid port %d\n", appName, *port)
		return ExitUsage
	}

	cfg, err := buildClientConfig(*client, *host, *port)
	if err != nil {
		fmt.Fprintf(rootStderr, "%s config: %v\n", appName, err)
		return ExitUsage
	}
	if err := writeJSON(rootStdout, cfg); err != nil {
		fmt.Fprintf(rootStderr, "%s: %v\n", appName, err)
		return ExitRuntime
	}
	return ExitOK
}

func printConfigHelp(out io.Writer) {
	fmt.Fprintf(out, "Usage: %s config [--client CLIENT] [--host HOST] [--port PORT]\n", appName)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Print an MCP client configuration that points at this server.")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Flags:")
	fmt.Fprintln(out, "  --client CLIENT   claude, qwen-code or qwen-agent (default claude)")
	fmt.Fprintf(out, "  --host HOST       Host for the MCP server URL (default %s)\n", config.DefaultHost)
	fmt.Fprintf(out, "  --port, -p PORT   Port the server listens on (default %d)\n", config.DefaultPort)
}
