package app

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"dotprep/internal/cli"
	"dotprep/internal/coords"
	"dotprep/internal/output"
	"dotprep/internal/writers"
	"dotprep/pkg/api"
)

func summaryCmd(argv []string, outw *bufio.Writer, stderr io.Writer) int {
	fs := cli.NewFlagSet(cli.CmdSummary)
	opt, err := cli.ParseSummary(fs, argv)
	if err != nil {
		return parseFailed(fs, err, outw, stderr)
	}
	var views []api.SummaryV1
	for _, path := range opt.CoordsFiles {
		s, err := summarizeFile(path)
		if err != nil {
			_, _ = fmt.Fprintln(stderr, "error:", err)
			return ExitRuntime
		}
		if opt.Output == cli.OutJSON {
			views = append(views, output.ToAPISummary(path, s))
			continue
		}
		if len(opt.CoordsFiles) > 1 {
			_, _ = fmt.Fprintf(outw, "file\t%s\n", path)
		}
		if err := coords.WriteSummary(outw, s); err != nil {
			if writers.IsBrokenPipe(err) {
				return ExitOK
			}
			_, _ = fmt.Fprintln(stderr, "error:", err)
			return ExitRuntime
		}
	}
	if opt.Output == cli.OutJSON {
		if err := writers.WriteJSON(outw, views); err != nil && !writers.IsBrokenPipe(err) {
			_, _ = fmt.Fprintln(stderr, "error:", err)
			return ExitRuntime
		}
	}
	return flush(outw, stderr, ExitOK)
}

func summarizeFile(path string) (coords.Summary, error) {
	fh, err := os.Open(path)
	if err != nil {
		return coords.Summary{}, err
	}
	defer fh.Close()
	segs, err := coords.Parse(fh)
	if err != nil {
		return coords.Summary{}, fmt.Errorf("%s: %w", path, err)
	}
	return coords.Summarize(segs), nil
}
