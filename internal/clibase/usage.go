// internal/clibase/usage.go
package clibase

import (
	"flag"
	"fmt"
	"io"

	"dotprep/internal/version"
)

// UsageCommon installs a shared Usage() handler on fs. synopsis is the
// argument line after the command name; extra prints command-specific
// sections. Tool and misc blocks are printed only for flags fs defines.
func UsageCommon(fs *flag.FlagSet, name, synopsis string, extra func(out io.Writer, def func(string) string)) {
	fs.Usage = func() {
		out := fs.Output()
		def := func(flagName string) string {
			if f := fs.Lookup(flagName); f != nil {
				return f.DefValue
			}
			return ""
		}

		fmt.Fprintf(out, "%s – dot-plot alignment preparation\n\n", name)
		fmt.Fprintf(out, "Version: %s\n\n", version.Version)
		fmt.Fprintf(out, "Usage:\n  %s %s\n", name, synopsis)

		if extra != nil {
			extra(out, def)
		}

		if fs.Lookup("nucmer") != nil {
			fmt.Fprintln(out, "\nTools:")
			fmt.Fprintf(out, "      --nucmer path           Aligner executable [%s]\n", def("nucmer"))
			fmt.Fprintf(out, "      --converter path        Delta converter executable [%s]\n", def("converter"))
			fmt.Fprintf(out, "      --mincluster int        Minimum cluster length for the aligner [%s]\n", def("mincluster"))
			fmt.Fprintf(out, "      --unique-length int     Minimum unique alignment length [%s]\n", def("unique-length"))
			fmt.Fprintf(out, "      --max-overview int      Maximum alignments in the overview [%s]\n", def("max-overview"))
			fmt.Fprintf(out, "      --no-clean              Keep FASTA headers as given [%s]\n", def("no-clean"))
		}

		fmt.Fprintln(out, "\nMiscellaneous:")
		if fs.Lookup("quiet") != nil {
			fmt.Fprintf(out, "  -q, --quiet                 Only log warnings and errors [%s]\n", def("quiet"))
			fmt.Fprintf(out, "      --verbose               Log debug detail [%s]\n", def("verbose"))
			fmt.Fprintln(out, "      --metrics-file path     Write Prometheus metrics after the run")
		}
		fmt.Fprintln(out, "  -h, --help                  Show this help and exit")
	}
}
