// Package cli implements the pcli2-mcp command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/lydakis/pcli2-mcp/internal/tools"
)

const appName = "pcli2-mcp"

// Exit codes.
const (
	ExitOK      = 0
	ExitRuntime = 1
	ExitUsage   = 2
)

const (
	cmdServe  = "serve"
	cmdConfig = "config"
	cmdTools  = "tools"
	cmdHelp   = "help"
)

// Run is the main CLI entry point. Returns an exit code.
func Run(args []string) int {
	if handled, code := handleRootFlags(args); handled {
		return code
	}
	if len(args) == 0 {
		printRootHelp(rootStderr)
		return ExitUsage
	}

	switch args[0] {
	case cmdServe:
		return runServe(args[1:])
	case cmdConfig:
		return runClientConfig(args[1:])
	case cmdTools:
		return runTools(args[1:])
	case cmdHelp:
		return runHelp(args[1:])
	default:
		fmt.Fprintf(rootStderr, "%s: unknown command: %s\n", appName, args[0])
		printRootHelp(rootStderr)
		return ExitUsage
	}
}

func runTools(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(rootStderr, "%s tools: unexpected arguments: %v\n", appName, args)
		return ExitUsage
	}
	d := tools.NewDispatcher(nil, nil)
	if err := writeJSON(rootStdout, map[string]any{"tools": d.Tools()}); err != nil {
		fmt.Fprintf(rootStderr, "%s: %v\n", appName, err)
		return ExitRuntime
	}
	return ExitOK
}

func runHelp(args []string) int {
	if len(args) == 0 {
		printRootHelp(rootStdout)
		return ExitOK
	}
	if len(args) > 1 {
		fmt.Fprintf(rootStderr, "%s help: expected at most one command\n", appName)
		return ExitUsage
	}
	switch args[0] {
	case cmdServe:
		printServeHelp(rootStdout)
	case cmdConfig:
		printConfigHelp(rootStdout)
	case cmdTools:
		fmt.Fprintf(rootStdout, "Usage: %s tools\n\nPrint the MCP tool catalog as JSON.\n", appName)
	case cmdHelp:
		fmt.Fprintf(rootStdout, "Usage: %s help [COMMAND]\n\nPrint help for a command.\n", appName)
	default:
		fmt.Fprintf(rootStderr, "%s help: unknown command: %s\n", appName, args[0])
		return ExitUsage
	}
	return ExitOK
}

func printRootHelp(out io.Writer) {
	fmt.Fprintln(out, "MCP server over HTTP for the Physna pcli2 command line.")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintf(out, "  %s serve [--host HOST] [--port PORT] [--log-level LEVEL] [--config FILE]\n", appName)
	fmt.Fprintf(out, "  %s config [--client claude|qwen-code|qwen-agent] [--host HOST] [--port PORT]\n", appName)
	fmt.Fprintf(out, "  %s tools\n", appName)
	fmt.Fprintf(out, "  %s help [COMMAND]\n", appName)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Global flags:")
	fmt.Fprintln(out, "  --help, -h       Show help")
	fmt.Fprintln(out, "  --version, -V    Show version")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
