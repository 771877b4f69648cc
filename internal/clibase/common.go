// internal/clibase/common.go
package clibase

import (
	"errors"
	"flag"
	"os"

	"dotprep/internal/convert"
	"dotprep/internal/pipeline"
)

// Environment variables that override the default tool locations.
const (
	EnvNucmer    = "DOTPREP_NUCMER"
	EnvConverter = "DOTPREP_CONVERTER"
)

// Tools holds the flags that configure the external aligner and converter.
type Tools struct {
	Nucmer       string
	Converter    string
	MinCluster   int
	UniqueLength int
	MaxOverview  int
	NoClean      bool
}

// Common holds logging and metrics flags shared by every subcommand.
type Common struct {
	Quiet       bool
	Verbose     bool
	MetricsFile string
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// RegisterTools wires the tool flags onto fs.
func RegisterTools(fs *flag.FlagSet, t *Tools) {
	fs.StringVar(&t.Nucmer, "nucmer", envOr(EnvNucmer, "nucmer"), "aligner executable ($"+EnvNucmer+")")
	fs.StringVar(&t.Converter, "converter", envOr(EnvConverter, "DotPrep.py"), "delta converter executable ($"+EnvConverter+")")
	fs.IntVar(&t.MinCluster, "mincluster", pipeline.DefaultMinCluster, "minimum cluster length passed to the aligner")
	fs.IntVar(&t.UniqueLength, "unique-length", convert.DefaultUniqueLength, "minimum unique alignment length for the converter")
	fs.IntVar(&t.MaxOverview, "max-overview", convert.DefaultMaxOverview, "maximum alignments in the overview section")
	fs.BoolVar(&t.NoClean, "no-clean", false, "align the FASTA files as given, without sanitizing headers")
}

// Validate checks numeric ranges.
func (t Tools) Validate() error {
	switch {
	case t.MinCluster <= 0:
		return errors.New("--mincluster must be > 0")
	case t.UniqueLength <= 0:
		return errors.New("--unique-length must be > 0")
	case t.MaxOverview <= 0:
		return errors.New("--max-overview must be > 0")
	case t.Nucmer == "":
		return errors.New("--nucmer must not be empty")
	case t.Converter == "":
		return errors.New("--converter must not be empty")
	}
	return nil
}

// RegisterCommon wires the logging/metrics flags onto fs.
func RegisterCommon(fs *flag.FlagSet, c *Common) {
	fs.BoolVar(&c.Quiet, "quiet", false, "only log warnings and errors")
	fs.BoolVar(&c.Quiet, "q", false, "alias of --quiet")
	fs.BoolVar(&c.Verbose, "verbose", false, "log debug detail")
	fs.StringVar(&c.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")
}
