package cli

import (
	"flag"
	"io"
)

// NewFlagSet returns a clean FlagSet with ContinueOnError that writes
// nothing until the caller redirects its output.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	return fs
}
