// Package runner executes the external tools aqs depends on: the provenance
// exporter, Graphviz and git.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// stderrLimit caps how much stderr is kept for error messages
const stderrLimit = 10 * 1024

// Result is the captured output of one tool run
type Result struct {
	Stdout []byte
	Stderr string
}

// ExitError is a tool that started but exited non-zero
type ExitError struct {
	Bin      string
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s %s: exit status %d", e.Bin, strings.Join(e.Args, " "), e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Run executes bin in dir (the current directory when empty) and returns its
// stdout. A missing binary wraps exec.ErrNotFound; a non-zero exit is an
// *ExitError carrying the captured stderr.
func Run(ctx context.Context, dir, bin string, args ...string) (*Result, error) {
	return RunInput(ctx, dir, nil, bin, args...)
}

// RunInput is Run with stdin attached
func RunInput(ctx context.Context, dir string, stdin []byte, bin string, args ...string) (*Result, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	var stdout bytes.Buffer
	stderr := cappedBuffer{limit: stderrLimit}
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := &Result{Stdout: stdout.Bytes(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return res, &ExitError{Bin: bin, Args: args, ExitCode: exitErr.ExitCode(), Stderr: res.Stderr}
		}
		return res, fmt.Errorf("running %s: %w", bin, err)
	}
	return res, nil
}

// cappedBuffer is a bytes.Buffer that stops writing after a byte limit.
type cappedBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	remaining := c.limit - c.buf.Len()
	if remaining <= 0 {
		return len(p), nil // pretend we wrote it all
	}
	toWrite := p
	if len(toWrite) > remaining {
		toWrite = toWrite[:remaining]
	}
	_, err := c.buf.Write(toWrite)
	// cmd.Stderr expects all bytes accepted
	return len(p), err
}

func (c *cappedBuffer) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}
