package app

import (
	"bufio"
	"context"
	"io"

	"dotprep/internal/cli"
	"dotprep/internal/cmdutil"
	"dotprep/internal/index"
	"dotprep/internal/metrics"
	"dotprep/internal/output"
	"dotprep/internal/pipeline"
	"dotprep/internal/writers"
)

func annotateCmd(ctx context.Context, argv []string, outw *bufio.Writer, stderr io.Writer) int {
	fs := cli.NewFlagSet(cli.CmdAnnotate)
	opt, err := cli.ParseAnnotate(fs, argv)
	if err != nil {
		return parseFailed(fs, err, outw, stderr)
	}
	log := cmdutil.NewLogger(stderr, opt.Quiet, opt.Verbose)
	rec := metrics.New()
	p := &pipeline.Pipeline{Log: log, Metrics: rec, Quiet: opt.Quiet}

	var orient index.Orientation
	if !opt.Ref {
		if orient, err = index.Load(opt.Index); err != nil {
			return failed(ctx, stderr, err)
		}
	}
	recs, annErr := p.Annotate(opt.Annotations, opt.Ref, orient, pipeline.AnnotateOptions{LabelKey: opt.LabelKey, Fasta: opt.Fasta})
	if err := writeMetrics(rec, opt.MetricsFile, log); err != nil && annErr == nil {
		annErr = err
	}
	if annErr != nil {
		return failed(ctx, stderr, annErr)
	}
	var werr error
	if opt.Output == cli.OutJSONL {
		werr = writers.WriteAnnotationsJSONL(outw, recs, opt.Ref)
	} else {
		werr = output.WriteAnnotations(outw, recs, opt.Ref)
	}
	if err := werr; err != nil {
		if writers.IsBrokenPipe(err) {
			return ExitOK
		}
		return failed(ctx, stderr, err)
	}
	code := ExitOK
	if len(recs) == 0 && opt.FailEmpty {
		code = ExitEmpty
	}
	return flush(outw, stderr, code)
}
