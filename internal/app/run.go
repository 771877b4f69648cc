package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"dotprep/internal/cli"
	"dotprep/internal/clibase"
	"dotprep/internal/cmdutil"
	"dotprep/internal/convert"
	"dotprep/internal/metrics"
	"dotprep/internal/nucmer"
	"dotprep/internal/pipeline"
	"dotprep/internal/writers"
	"dotprep/pkg/api"
)

// newPipeline resolves the external tools named by t.
func newPipeline(ctx context.Context, t clibase.Tools, log logrus.FieldLogger, rec *metrics.Recorder, quiet bool) (*pipeline.Pipeline, error) {
	al, err := nucmer.New(ctx, t.Nucmer)
	if err != nil {
		return nil, err
	}
	al.Clean = !t.NoClean
	conv, err := convert.NewCommand(t.Converter)
	if err != nil {
		return nil, err
	}
	conv.UniqueLength, conv.MaxOverview = t.UniqueLength, t.MaxOverview
	return &pipeline.Pipeline{Aligner: al, Converter: conv, Log: log, Metrics: rec, Quiet: quiet}, nil
}

func runCmd(ctx context.Context, argv []string, outw *bufio.Writer, stderr io.Writer) int {
	fs := cli.NewFlagSet(cli.CmdRun)
	opt, err := cli.ParseRun(fs, argv)
	if err != nil {
		return parseFailed(fs, err, outw, stderr)
	}
	log := cmdutil.NewLogger(stderr, opt.Quiet, opt.Verbose)
	rec := metrics.New()

	p, err := newPipeline(ctx, opt.Tools, log, rec, opt.Quiet)
	if err != nil {
		return failed(ctx, stderr, err)
	}
	res, runErr := p.Run(ctx, pipeline.Options{
		OutDir:         opt.OutDir,
		RefFasta:       opt.RefFasta,
		QryFasta:       opt.QryFasta,
		MinCluster:     opt.MinCluster,
		RefAnnotations: opt.RefAnnotations,
		QryAnnotations: opt.QryAnnotations,
		LabelKey:       opt.LabelKey,
		Publish:        opt.Publish,
	})
	if err := writeMetrics(rec, opt.MetricsFile, log); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return failed(ctx, stderr, runErr)
	}
	if opt.Output == cli.OutJSON {
		if err := writers.WriteJSON(outw, toAPIRun(res)); err != nil && !writers.IsBrokenPipe(err) {
			return failed(ctx, stderr, err)
		}
		return flush(outw, stderr, ExitOK)
	}
	for _, f := range res.Files {
		_, _ = fmt.Fprintln(outw, filepath.Join(res.OutDir, f))
	}
	return flush(outw, stderr, ExitOK)
}

func toAPIRun(res pipeline.Result) api.RunV1 {
	v := api.RunV1{RunID: res.RunID, OutDir: res.OutDir, Files: res.Files}
	for _, in := range res.Published {
		v.Published = append(v.Published, api.PublishedV1{Key: in.Key, Size: in.Size, ETag: in.ETag})
	}
	return v
}

func prepareCmd(ctx context.Context, argv []string, outw *bufio.Writer, stderr io.Writer) int {
	fs := cli.NewFlagSet(cli.CmdPrepare)
	opt, err := cli.ParsePrepare(fs, argv)
	if err != nil {
		return parseFailed(fs, err, outw, stderr)
	}
	log := cmdutil.NewLogger(stderr, opt.Quiet, opt.Verbose)
	rec := metrics.New()

	p, err := newPipeline(ctx, opt.Tools, log, rec, opt.Quiet)
	if err != nil {
		return failed(ctx, stderr, err)
	}
	coordsText, indexText, runErr := p.Prepare(ctx, opt.RefFasta, opt.QryFasta, opt.MinCluster)
	if err := writeMetrics(rec, opt.MetricsFile, log); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return failed(ctx, stderr, runErr)
	}
	_, _ = io.WriteString(outw, coordsText)
	_, _ = io.WriteString(outw, indexText)
	return flush(outw, stderr, ExitOK)
}
