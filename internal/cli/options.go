// internal/cli/options.go
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"dotprep/internal/clibase"
	"dotprep/internal/cliutil"
	"dotprep/internal/genbank"
)

// Subcommands.
const (
	CmdRun      = "run"
	CmdPrepare  = "prepare"
	CmdAnnotate = "annotate"
	CmdSummary  = "summary"
)

// Output formats.
const (
	OutPaths = "paths"
	OutCSV   = "csv"
	OutText  = "text"
	OutJSON  = "json"
	OutJSONL = "jsonl"
)

// RunOptions configures `dotprep run`.
type RunOptions struct {
	clibase.Tools
	clibase.Common

	OutDir         string
	RefFasta       string
	QryFasta       string
	RefAnnotations string
	QryAnnotations string
	LabelKey       string
	Publish        string
	Output         string
}

// PrepareOptions configures `dotprep prepare`.
type PrepareOptions struct {
	clibase.Tools
	clibase.Common

	RefFasta string
	QryFasta string
}

// AnnotateOptions configures `dotprep annotate`.
type AnnotateOptions struct {
	clibase.Common

	Annotations string
	Ref         bool
	Index       string
	Fasta       string
	LabelKey    string
	FailEmpty   bool
	Output      string
}

// SummaryOptions configures `dotprep summary`.
type SummaryOptions struct {
	CoordsFiles []string
	Output      string
}

// parse splits interleaved flags from positionals and parses the flags.
func parse(fs *flag.FlagSet, argv []string) ([]string, error) {
	flagArgs, pos := cliutil.SplitFlagsAndPositionals(fs, argv)
	if err := fs.Parse(flagArgs); err != nil {
		return nil, err
	}
	return append(pos, fs.Args()...), nil
}

// checkOutput reports an error unless got is one of allowed.
func checkOutput(got string, allowed ...string) error {
	for _, a := range allowed {
		if got == a {
			return nil
		}
	}
	return fmt.Errorf("--output must be one of %v, got %q", allowed, got)
}

// ParseRun parses `dotprep run`. OUTDIR REF QRY may be given as positionals
// or flags; positionals fill the fields in that order.
func ParseRun(fs *flag.FlagSet, argv []string) (RunOptions, error) {
	var opt RunOptions
	clibase.RegisterTools(fs, &opt.Tools)
	clibase.RegisterCommon(fs, &opt.Common)
	fs.StringVar(&opt.OutDir, "outdir", "", "output directory (must not exist)")
	fs.StringVar(&opt.RefFasta, "ref-fasta", "", "reference assembly FASTA")
	fs.StringVar(&opt.QryFasta, "qry-fasta", "", "query assembly FASTA")
	fs.StringVar(&opt.RefAnnotations, "ref-annotations", "", "reference GenBank or GFF3 file")
	fs.StringVar(&opt.QryAnnotations, "qry-annotations", "", "query GenBank or GFF3 file")
	fs.StringVar(&opt.LabelKey, "label-key", genbank.DefaultLabelKey, "qualifier used as the feature name")
	fs.StringVar(&opt.Publish, "publish", "", "upload artifacts to s3://bucket/prefix, file:///dir or mem://prefix")
	fs.StringVar(&opt.Output, "output", OutPaths, "report format: paths | json")
	clibase.UsageCommon(fs, "dotprep run", "[OUTDIR REF_FASTA QRY_FASTA] [flags]", func(out io.Writer, def func(string) string) {
		fmt.Fprintln(out, "\nInput/Output:")
		fmt.Fprintln(out, "      --outdir dir            Output directory; must not exist yet")
		fmt.Fprintln(out, "      --ref-fasta file        Reference assembly FASTA")
		fmt.Fprintln(out, "      --qry-fasta file        Query assembly FASTA")
		fmt.Fprintln(out, "      --ref-annotations file  Reference annotations (GenBank or GFF3)")
		fmt.Fprintln(out, "      --qry-annotations file  Query annotations (GenBank or GFF3)")
		fmt.Fprintf(out, "      --label-key string      Qualifier used as the feature name [%s]\n", def("label-key"))
		fmt.Fprintln(out, "      --publish url           Upload artifacts after a successful run")
		fmt.Fprintf(out, "      --output string         Report format: paths | json [%s]\n", def("output"))
	})

	pos, err := parse(fs, argv)
	if err != nil {
		return opt, err
	}
	fields := []*string{&opt.OutDir, &opt.RefFasta, &opt.QryFasta}
	if len(pos) > len(fields) {
		return opt, fmt.Errorf("unexpected arguments: %v", pos[len(fields):])
	}
	for i, p := range pos {
		if *fields[i] != "" {
			return opt, fmt.Errorf("positional %q conflicts with flag value %q", p, *fields[i])
		}
		*fields[i] = p
	}
	switch {
	case opt.OutDir == "":
		return opt, errors.New("output directory is required")
	case opt.RefFasta == "" || opt.QryFasta == "":
		return opt, errors.New("reference and query FASTA files are required")
	case opt.LabelKey == "":
		return opt, errors.New("--label-key must not be empty")
	}
	if err := checkOutput(opt.Output, OutPaths, OutJSON); err != nil {
		return opt, err
	}
	return opt, opt.Tools.Validate()
}

// ParsePrepare parses `dotprep prepare REF QRY`.
func ParsePrepare(fs *flag.FlagSet, argv []string) (PrepareOptions, error) {
	var opt PrepareOptions
	clibase.RegisterTools(fs, &opt.Tools)
	clibase.RegisterCommon(fs, &opt.Common)
	clibase.UsageCommon(fs, "dotprep prepare", "REF_FASTA QRY_FASTA [flags]", func(out io.Writer, _ func(string) string) {
		fmt.Fprintln(out, "\nAligns in a scratch directory and prints the coords file followed by")
		fmt.Fprintln(out, "the index file on stdout. The scratch directory is removed afterwards.")
	})
	pos, err := parse(fs, argv)
	if err != nil {
		return opt, err
	}
	if len(pos) != 2 {
		return opt, fmt.Errorf("expected REF_FASTA and QRY_FASTA, got %d argument(s)", len(pos))
	}
	opt.RefFasta, opt.QryFasta = pos[0], pos[1]
	return opt, opt.Tools.Validate()
}

// ParseAnnotate parses `dotprep annotate ANNOTATIONS (--ref | --index INDEX)`.
func ParseAnnotate(fs *flag.FlagSet, argv []string) (AnnotateOptions, error) {
	var opt AnnotateOptions
	clibase.RegisterCommon(fs, &opt.Common)
	fs.BoolVar(&opt.Ref, "ref", false, "annotations belong to the reference")
	fs.StringVar(&opt.Index, "index", "", "index file of the run (query annotations)")
	fs.StringVar(&opt.Fasta, "fasta", "", "assembly FASTA supplying scaffold lengths for GFF3 input")
	fs.StringVar(&opt.LabelKey, "label-key", genbank.DefaultLabelKey, "qualifier used as the feature name")
	fs.BoolVar(&opt.FailEmpty, "fail-empty", false, "exit 1 when no annotation record is written")
	fs.StringVar(&opt.Output, "output", OutCSV, "record format: csv | jsonl")
	clibase.UsageCommon(fs, "dotprep annotate", "ANNOTATIONS (--ref | --index INDEX) [flags]", func(out io.Writer, def func(string) string) {
		fmt.Fprintln(out, "\nAnnotation:")
		fmt.Fprintln(out, "      --ref                   Write reference annotations")
		fmt.Fprintln(out, "      --index file            Index file (out.coords.idx); query annotations")
		fmt.Fprintln(out, "      --fasta file            Assembly FASTA with scaffold lengths (GFF3)")
		fmt.Fprintf(out, "      --label-key string      Qualifier used as the feature name [%s]\n", def("label-key"))
		fmt.Fprintf(out, "      --fail-empty            Exit 1 when nothing is written [%s]\n", def("fail-empty"))
		fmt.Fprintf(out, "      --output string         Record format: csv | jsonl [%s]\n", def("output"))
	})
	pos, err := parse(fs, argv)
	if err != nil {
		return opt, err
	}
	if len(pos) != 1 {
		return opt, fmt.Errorf("expected one annotation file, got %d argument(s)", len(pos))
	}
	opt.Annotations = pos[0]
	switch {
	case opt.Ref && opt.Index != "":
		return opt, errors.New("--ref conflicts with --index")
	case !opt.Ref && opt.Index == "":
		return opt, errors.New("provide --ref or --index")
	case opt.LabelKey == "":
		return opt, errors.New("--label-key must not be empty")
	}
	return opt, checkOutput(opt.Output, OutCSV, OutJSONL)
}

// ParseSummary parses `dotprep summary COORDS...`; globs are expanded.
func ParseSummary(fs *flag.FlagSet, argv []string) (SummaryOptions, error) {
	var opt SummaryOptions
	fs.StringVar(&opt.Output, "output", OutText, "report format: text | json")
	clibase.UsageCommon(fs, "dotprep summary", "COORDS... [flags]", func(out io.Writer, def func(string) string) {
		fmt.Fprintln(out, "\nPrints alignment statistics for each coords file (globs are expanded).")
		fmt.Fprintf(out, "      --output string         Report format: text | json [%s]\n", def("output"))
	})
	pos, err := parse(fs, argv)
	if err != nil {
		return opt, err
	}
	if len(pos) == 0 {
		return opt, errors.New("at least one coords file is required")
	}
	if err := checkOutput(opt.Output, OutText, OutJSON); err != nil {
		return opt, err
	}
	if opt.CoordsFiles, err = cliutil.ExpandPositionals(pos); err != nil {
		return opt, err
	}
	return opt, nil
}
