// Package nucmer runs the external whole-genome aligner (MUMmer's nucmer).
package nucmer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dotprep/internal/extool"
	"dotprep/internal/fasta"
)

// ErrPrecondition matches a missing working directory or a delta file left
// by an earlier run.
var ErrPrecondition = errors.New("precondition failed")

// DeltaFile is the name the aligner writes into its working directory.
const DeltaFile = "out.delta"

// Arg is one "key value" pair placed before the FASTA paths.
type Arg struct {
	Key   string
	Value string
}

// Nucmer wraps an installed nucmer executable.
type Nucmer struct {
	Path string
	// Clean writes prefix-free copies of the inputs into the working
	// directory and aligns those instead.
	Clean bool
}

// New resolves path and checks that `path --version` succeeds.
func New(ctx context.Context, path string) (*Nucmer, error) {
	if path == "" {
		path = "nucmer"
	}
	resolved, err := extool.Resolve("nucmer", path)
	if err != nil {
		return nil, err
	}
	if _, err := extool.Run(ctx, "nucmer", resolved, "", "--version"); err != nil {
		return nil, fmt.Errorf("nucmer is not executable: %s: %w", resolved, err)
	}
	return &Nucmer{Path: resolved, Clean: true}, nil
}

// Align runs the aligner in workdir on the two FASTA files and returns the
// path of the delta file it produced.
func (n *Nucmer) Align(ctx context.Context, fastaRef, fastaQry, workdir string, args []Arg) (string, error) {
	if st, err := os.Stat(workdir); err != nil || !st.IsDir() {
		return "", fmt.Errorf("%w: work_dir does not exist: %s", ErrPrecondition, workdir)
	}
	resultPath := filepath.Join(workdir, DeltaFile)
	if _, err := os.Stat(resultPath); err == nil {
		return "", fmt.Errorf("%w: result_path already exists: %s", ErrPrecondition, resultPath)
	}

	if n.Clean {
		var err error
		if fastaRef, err = fasta.SanitizeFile(fastaRef, filepath.Join(workdir, "ref.fasta.cleaned")); err != nil {
			return "", err
		}
		if fastaQry, err = fasta.SanitizeFile(fastaQry, filepath.Join(workdir, "qry.fasta.cleaned")); err != nil {
			return "", err
		}
	}
	absRef, err := filepath.Abs(fastaRef)
	if err != nil {
		return "", err
	}
	absQry, err := filepath.Abs(fastaQry)
	if err != nil {
		return "", err
	}

	argv := make([]string, 0, 2*len(args)+2)
	for _, a := range args {
		argv = append(argv, a.Key, a.Value)
	}
	argv = append(argv, absRef, absQry)

	res, err := extool.Run(ctx, "nucmer", n.Path, workdir, argv...)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(resultPath); err != nil {
		return "", res.Fail("nucmer", argv, fmt.Errorf("no %s written to %s", DeltaFile, workdir))
	}
	return resultPath, nil
}
