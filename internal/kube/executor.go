// Package kube provides kubectl operations for shopctl
package kube

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Result captures the outcome of one external command invocation
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Elapsed  time.Duration
}

// ExecError reports a non-zero exit from an external command
type ExecError struct {
	Cmd      string
	ExitCode int
	Stderr   string
}

func (e *ExecError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("%s exited with code %d", e.Cmd, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Cmd, e.ExitCode, stderr)
}

// Executor runs shell commands
type Executor interface {
	Run(ctx context.Context, cmd string, args []string) error
	RunWithOutput(ctx context.Context, cmd string, args []string) ([]byte, error)
	RunWithResult(ctx context.Context, cmd string, args []string) (Result, error)
	RunWithPipes(ctx context.Context, cmd string, args []string, stdout, stderr io.Writer) error
}

// DefaultExecutor implements Executor using os/exec
type DefaultExecutor struct {
	workDir string
	env     []string
	logger  *slog.Logger
	dryRun  bool
}

// NewExecutor creates a new command executor
func NewExecutor(workDir string, logger *slog.Logger, dryRun bool) *DefaultExecutor {
	return &DefaultExecutor{
		workDir: workDir,
		env:     os.Environ(),
		logger:  logger,
		dryRun:  dryRun,
	}
}

// Run executes a command and waits for completion
func (e *DefaultExecutor) Run(ctx context.Context, cmd string, args []string) error {
	e.logger.Debug("executing command",
		"cmd", cmd,
		"args", args,
		"workdir", e.workDir,
	)

	if e.dryRun {
		fmt.Printf("[dry-run] %s %s\n", cmd, strings.Join(args, " "))
		return nil
	}

	c := exec.CommandContext(ctx, cmd, args...)
	c.Dir = e.workDir
	c.Env = e.env
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Stdin = os.Stdin

	return c.Run()
}

// RunWithOutput executes a command and returns its stdout
func (e *DefaultExecutor) RunWithOutput(ctx context.Context, cmd string, args []string) ([]byte, error) {
	res, err := e.RunWithResult(ctx, cmd, args)
	if err != nil {
		return nil, err
	}
	return res.Stdout, nil
}

// RunWithResult executes a command and returns a structured result.
// A non-zero exit yields both the populated Result and an ExecError;
// caller cancellation surfaces as the context's error.
func (e *DefaultExecutor) RunWithResult(ctx context.Context, cmd string, args []string) (Result, error) {
	e.logger.Debug("executing command with result capture",
		"cmd", cmd,
		"args", args,
		"workdir", e.workDir,
	)

	if e.dryRun {
		fmt.Printf("[dry-run] %s %s\n", cmd, strings.Join(args, " "))
		return Result{}, nil
	}

	c := exec.CommandContext(ctx, cmd, args...)
	c.Dir = e.workDir
	c.Env = e.env

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	res := Result{
		Stdout:  stdout.Bytes(),
		Stderr:  stderr.Bytes(),
		Elapsed: time.Since(start),
	}

	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, &ExecError{Cmd: cmd, ExitCode: res.ExitCode, Stderr: stderr.String()}
		}
		// Command never started (not found, permission)
		res.ExitCode = -1
		return res, fmt.Errorf("running %s: %w", cmd, err)
	}

	return res, nil
}

// RunWithPipes executes a command with custom stdout/stderr writers
func (e *DefaultExecutor) RunWithPipes(ctx context.Context, cmd string, args []string, stdout, stderr io.Writer) error {
	e.logger.Debug("executing command with pipes",
		"cmd", cmd,
		"args", args,
		"workdir", e.workDir,
	)

	if e.dryRun {
		fmt.Fprintf(stdout, "[dry-run] %s %s\n", cmd, strings.Join(args, " "))
		return nil
	}

	c := exec.CommandContext(ctx, cmd, args...)
	c.Dir = e.workDir
	c.Env = e.env
	c.Stdout = stdout
	c.Stderr = stderr

	return c.Run()
}

// SetEnv adds or updates an environment variable
func (e *DefaultExecutor) SetEnv(key, value string) {
	// Remove existing key if present
	prefix := key + "="
	newEnv := make([]string, 0, len(e.env)+1)
	for _, env := range e.env {
		if !strings.HasPrefix(env, prefix) {
			newEnv = append(newEnv, env)
		}
	}
	newEnv = append(newEnv, prefix+value)
	e.env = newEnv
}
