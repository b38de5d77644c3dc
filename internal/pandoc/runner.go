// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pandoc runs the external document converter as a subprocess.
// The converter is opaque: it receives an argument list and either exits
// zero after writing its output, or exits non-zero with diagnostics on
// stderr.
package pandoc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNotInstalled is returned when the converter binary cannot be found.
var ErrNotInstalled = errors.New("converter not installed")

// ExitError reports a converter run that exited non-zero. Stderr holds the
// converter's diagnostic output.
type ExitError struct {
	Bin    string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s exited with code %d", e.Bin, e.Code)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Bin, e.Code, e.Stderr)
}

// Runner provides converter operations: probing the installed version and
// running conversions.
type Runner interface {
	// Name returns the converter binary name.
	Name() string

	// Version runs the converter with --version and returns the first line
	// of its output.
	Version(ctx context.Context) (string, error)

	// Run executes the converter with args and waits for it to exit.
	Run(ctx context.Context, args []string) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Output(ctx context.Context, name string, args ...string) (stdout, stderr []byte, exitCode int, err error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, []byte, int, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	return stdout.Bytes(), stderr.Bytes(), code, err
}

type runner struct {
	bin  string
	exec executor
}

// New returns a Runner for the converter binary bin (a name on PATH or a
// path to an executable).
func New(bin string) Runner {
	return newRunner(bin, defaultExec)
}

var defaultExec = &osExecutor{}

func newRunner(bin string, exec executor) *runner {
	return &runner{bin: bin, exec: exec}
}

func (r *runner) Name() string { return r.bin }

func (r *runner) Version(ctx context.Context) (string, error) {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return "", fmt.Errorf("%s: %w", r.bin, ErrNotInstalled)
	}
	out, _, _, err := r.exec.Output(ctx, r.bin, "--version")
	if err != nil {
		return "", fmt.Errorf("probing %s version: %w", r.bin, err)
	}
	first, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(first), nil
}

func (r *runner) Run(ctx context.Context, args []string) error {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return fmt.Errorf("%s: %w", r.bin, ErrNotInstalled)
	}
	_, stderr, code, err := r.exec.Output(ctx, r.bin, args...)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("running %s: %w", r.bin, ctxErr)
	}
	if code != 0 {
		return &ExitError{Bin: r.bin, Code: code, Stderr: strings.TrimSpace(string(stderr))}
	}
	return fmt.Errorf("running %s: %w", r.bin, err)
}

// InstallHint returns installation guidance for the given GOOS value.
func InstallHint(goos string) string {
	switch goos {
	case "darwin":
		return "brew install pandoc"
	case "windows":
		return "download the installer from https://pandoc.org/installing.html"
	default:
		return "sudo apt install pandoc (or see https://pandoc.org/installing.html)"
	}
}
