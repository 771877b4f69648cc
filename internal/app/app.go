// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"dotprep/internal/cli"
	"dotprep/internal/clibase"
	"dotprep/internal/metrics"
	"dotprep/internal/version"
	"dotprep/internal/writers"
)

// Process exit codes.
const (
	ExitOK        = 0
	ExitEmpty     = 1 // annotate --fail-empty wrote no records
	ExitUsage     = 2
	ExitRuntime   = 3
	ExitCancelled = 130
)

// RunContext dispatches argv to a subcommand and returns the exit code.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	if len(argv) == 0 {
		argv = []string{"-h"}
	}
	switch cmd, rest := argv[0], argv[1:]; cmd {
	case "-h", "--help", "help":
		printHelp(outw)
		return flush(outw, stderr, ExitOK)
	case "-v", "--version", "version":
		_, _ = fmt.Fprintf(outw, "dotprep version %s\n", version.Version)
		return flush(outw, stderr, ExitOK)
	case cli.CmdRun:
		return runCmd(ctx, rest, outw, stderr)
	case cli.CmdPrepare:
		return prepareCmd(ctx, rest, outw, stderr)
	case cli.CmdAnnotate:
		return annotateCmd(ctx, rest, outw, stderr)
	case cli.CmdSummary:
		return summaryCmd(rest, outw, stderr)
	default:
		_, _ = fmt.Fprintf(stderr, "error: unknown command %q\n", cmd)
		printHelp(outw)
		return flush(outw, stderr, ExitUsage)
	}
}

// Run is RunContext without cancellation.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func printHelp(out io.Writer) {
	clibase.PrintExamples(out, "dotprep", func(w io.Writer) {
		fmt.Fprintf(w, "Version: %s\n\n", version.Version)
		fmt.Fprintln(w, "Commands:")
		fmt.Fprintln(w, "  run       align, convert and annotate into an output directory")
		fmt.Fprintln(w, "  prepare   align and convert in a scratch directory; print coords and index")
		fmt.Fprintln(w, "  annotate  map a GenBank/GFF3 file onto the plot coordinates")
		fmt.Fprintln(w, "  summary   print alignment statistics for coords files")
		fmt.Fprintln(w, "\nExamples:")
		fmt.Fprintln(w, "  dotprep run out ref.fasta qry.fasta --ref-annotations ref.gbk --qry-annotations qry.gbk")
		fmt.Fprintln(w, "  dotprep prepare ref.fasta qry.fasta > plot.txt")
		fmt.Fprintln(w, "  dotprep annotate qry.gff3 --index out/out.coords.idx --fasta qry.fasta")
		fmt.Fprintln(w, "  dotprep summary out/out.coords")
	})
}

// flush writes buffered stdout; a closed pipe downstream is not an error.
func flush(outw *bufio.Writer, stderr io.Writer, code int) int {
	if err := outw.Flush(); writers.IsBrokenPipe(err) {
		return code
	} else if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return ExitRuntime
	}
	return code
}

// parseFailed reports a flag error (or prints help) and picks the exit code.
func parseFailed(fs *flag.FlagSet, err error, outw *bufio.Writer, stderr io.Writer) int {
	if errors.Is(err, flag.ErrHelp) {
		fs.SetOutput(outw)
		fs.Usage()
		return flush(outw, stderr, ExitOK)
	}
	_, _ = fmt.Fprintln(stderr, "error:", err)
	fs.SetOutput(outw)
	fs.Usage()
	return flush(outw, stderr, ExitUsage)
}

// failed reports a runtime error.
func failed(ctx context.Context, stderr io.Writer, err error) int {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		_, _ = fmt.Fprintln(stderr, "cancelled")
		return ExitCancelled
	}
	_, _ = fmt.Fprintln(stderr, "error:", err)
	return ExitRuntime
}

// writeMetrics dumps rec to path when requested.
func writeMetrics(rec *metrics.Recorder, path string, log logrus.FieldLogger) error {
	if path == "" {
		return nil
	}
	if err := rec.WriteTextfile(path); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	log.WithField("path", path).Debug("metrics written")
	return nil
}
