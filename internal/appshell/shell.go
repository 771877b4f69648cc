// Package appshell wires a RunContext-style entry point to the process:
// signals, arguments, standard streams and the exit status.
package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// RunFunc is the signature of app.RunContext.
type RunFunc func(ctx context.Context, argv []string, stdout, stderr io.Writer) int

// cancelledCode is the conventional status for a run stopped by SIGINT.
const cancelledCode = 130

// Main runs run with a context cancelled on SIGINT/SIGTERM and exits.
func Main(run RunFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := invoke(ctx, run, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// invoke runs run and normalizes the exit code of a cancelled context.
func invoke(ctx context.Context, run RunFunc, argv []string, stdout, stderr io.Writer) int {
	code := run(ctx, argv, stdout, stderr)
	if ctx.Err() != nil && code == 0 {
		code = cancelledCode
	}
	return code
}
