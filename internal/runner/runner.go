// Package runner executes the external pcli2 program with bounded output
// capture and a wall-clock timeout.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/lydakis/pcli2-mcp/internal/logging"
)

// EnvBinary overrides the configured executable when set.
const EnvBinary = "PCLI2_BIN"

const (
	DefaultTimeout        = 30 * time.Minute
	DefaultMaxOutputBytes = 200 * 1024 * 1024

	readChunkSize = 32 * 1024
)

var (
	// ErrOutputLimit matches errors for a stream that exceeded MaxOutputBytes.
	ErrOutputLimit = errors.New("output limit exceeded")
	// ErrTimeout matches errors for a process that outlived Timeout.
	ErrTimeout = errors.New("timed out")
)

// LimitError reports which stream overflowed.
type LimitError struct {
	Stream string
	Limit  int64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("pcli2 %s exceeded maximum output size of %d bytes", e.Stream, e.Limit)
}

func (e *LimitError) Is(target error) bool { return target == ErrOutputLimit }

// TimeoutError reports a process killed after its deadline.
type TimeoutError struct {
	Label   string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s failed: timed out after %s", e.Label, e.Timeout)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// ExitError is returned when pcli2 exits unsuccessfully. Both captured
// streams are kept so callers see the tool's own diagnostics.
type ExitError struct {
	Label  string
	Status string
	Stdout string
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s failed (%s):\n%s\n%s", e.Label, e.Status, e.Stdout, e.Stderr)
}

// Runner spawns pcli2. The zero value uses the defaults.
type Runner struct {
	Executable     string
	Timeout        time.Duration
	MaxOutputBytes int64
}

// New returns a Runner with the given settings; zero values fall back to defaults.
func New(executable string, timeout time.Duration, maxOutputBytes int64) *Runner {
	return &Runner{
		Executable:     executable,
		Timeout:        timeout,
		MaxOutputBytes: maxOutputBytes,
	}
}

// ExecutablePath returns the program that will be spawned.
func (r *Runner) ExecutablePath() string {
	if v := os.Getenv(EnvBinary); v != "" {
		return v
	}
	if r != nil && r.Executable != "" {
		return r.Executable
	}
	return "pcli2"
}

func (r *Runner) timeout() time.Duration {
	if r == nil || r.Timeout <= 0 {
		return DefaultTimeout
	}
	return r.Timeout
}

func (r *Runner) limit() int64 {
	if r == nil || r.MaxOutputBytes <= 0 {
		return DefaultMaxOutputBytes
	}
	return r.MaxOutputBytes
}

type capture struct {
	data []byte
	err  error
}

// Run executes pcli2 with args and returns its trimmed stdout. The argv is
// passed to the OS directly; the shell-quoted form is only logged.
func (r *Runner) Run(ctx context.Context, args []string, label string) (string, error) {
	exe := r.ExecutablePath()
	log := logging.Ctx(ctx)
	log.Info().Str("label", label).Str("cmd", "pcli2 "+Render(args)).Msg("running pcli2")

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return "", fmt.Errorf("failed to capture pcli2 stdout: %w", err)
	}
	defer stdoutR.Close()
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdoutW.Close()
		return "", fmt.Errorf("failed to capture pcli2 stderr: %w", err)
	}
	defer stderrR.Close()

	cmd := exec.Command(exe, args...)
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW
	setProcessGroup(cmd)

	startErr := cmd.Start()
	// The child holds its own copies of the write ends.
	stdoutW.Close()
	stderrW.Close()
	if startErr != nil {
		return "", fmt.Errorf("failed to execute pcli2: %w", startErr)
	}

	limit := r.limit()
	outCh := make(chan capture, 1)
	errCh := make(chan capture, 1)
	waitCh := make(chan error, 1)
	go drain(stdoutR, limit, "stdout", outCh)
	go drain(stderrR, limit, "stderr", errCh)
	go func() { waitCh <- cmd.Wait() }()

	timeout := r.timeout()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var (
		stdout, stderr capture
		waitErr        error
		waited         bool
	)
	abort := func(err error) (string, error) {
		killProcessGroup(cmd)
		if !waited {
			<-waitCh
		}
		return "", err
	}

	for pending := 3; pending > 0; pending-- {
		select {
		case stdout = <-outCh:
			if stdout.err != nil {
				return abort(stdout.err)
			}
		case stderr = <-errCh:
			if stderr.err != nil {
				return abort(stderr.err)
			}
		case waitErr = <-waitCh:
			waited = true
		case <-timer.C:
			log.Warn().Str("label", label).Dur("timeout", timeout).Msg("pcli2 timed out, killing")
			return abort(&TimeoutError{Label: label, Timeout: timeout})
		case <-ctx.Done():
			return abort(fmt.Errorf("%s failed: %w", label, ctx.Err()))
		}
	}

	outText := strings.TrimRight(strings.ToValidUTF8(string(stdout.data), "�"), " \t\r\n")
	errText := strings.TrimRight(strings.ToValidUTF8(string(stderr.data), "�"), " \t\r\n")

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return "", fmt.Errorf("failed waiting for pcli2: %w", waitErr)
		}
		log.Debug().Str("label", label).Str("status", exitErr.ProcessState.String()).Msg("pcli2 exited with failure")
		return "", &ExitError{
			Label:  label,
			Status: exitErr.ProcessState.String(),
			Stdout: outText,
			Stderr: errText,
		}
	}
	return outText, nil
}

// drain reads src until EOF, failing once more than limit bytes arrive.
func drain(src io.Reader, limit int64, stream string, out chan<- capture) {
	data, err := readLimited(src, limit, stream)
	out <- capture{data: data, err: err}
}

func readLimited(src io.Reader, limit int64, stream string) ([]byte, error) {
	var buf []byte
	chunk := make([]byte, readChunkSize)
	for {
		n, err := src.Read(chunk)
		if n > 0 {
			if int64(len(buf))+int64(n) > limit {
				return nil, &LimitError{Stream: stream, Limit: limit}
			}
			buf = append(buf, chunk[:n]...)
		}
		if err == io.EOF {
			return buf, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read pcli2 %s: %w", stream, err)
		}
	}
}

// Render joins args into a POSIX-shell-quoted string for logging.
func Render(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = shellQuote(a)
	}
	return strings.Join(quoted, " ")
}

func shellQuote(arg string) string {
	if arg == "" {
		return "''"
	}
	safe := true
	for _, c := range arg {
		if !isShellSafe(c) {
			safe = false
			break
		}
	}
	if safe {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'"'"'`) + "'"
}

func isShellSafe(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.ContainsRune("_-./:=", c)
}
