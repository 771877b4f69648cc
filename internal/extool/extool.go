// Package extool runs external command-line tools and reports failures with
// their captured output attached.
package extool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrToolFailed matches every *ToolError.
var ErrToolFailed = errors.New("external tool failed")

// ToolError carries the captured output of a failed tool run.
type ToolError struct {
	Tool   string
	Args   []string
	Err    error
	Stdout string
	Stderr string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s failed (%s): %v; stdout=%s; stderr=%s",
		e.Tool, strings.Join(e.Args, " "), e.Err, e.Stdout, e.Stderr)
}

func (e *ToolError) Unwrap() error { return e.Err }

func (e *ToolError) Is(target error) bool { return target == ErrToolFailed }

const waitDelay = 2 * time.Second

// Result is the captured output of a finished run.
type Result struct {
	Stdout string
	Stderr string
}

// Run executes path with args in dir and waits for it to exit. A non-zero
// exit becomes a *ToolError named after tool.
func Run(ctx context.Context, tool, path, dir string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = dir
	// grandchildren may hold the output pipes open after a kill
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		return res, res.Fail(tool, args, err)
	}
	return res, nil
}

// Fail wraps err with the captured output of r.
func (r Result) Fail(tool string, args []string, err error) *ToolError {
	return &ToolError{Tool: tool, Args: args, Err: err, Stdout: r.Stdout, Stderr: r.Stderr}
}

// Resolve finds an executable by path or in $PATH and returns it as an
// absolute path, so it stays valid when run from another directory.
func Resolve(tool, path string) (string, error) {
	resolved, err := exec.LookPath(path)
	if err != nil {
		return "", fmt.Errorf("%s is not installed: %s: %w", tool, path, err)
	}
	return filepath.Abs(resolved)
}
