package pipeline

import (
	"context"

	"dotprep/internal/nucmer"
)

// Aligner is the minimal capability the pipeline needs from the aligner.
type Aligner interface {
	Align(ctx context.Context, fastaRef, fastaQry, workdir string, args []nucmer.Arg) (string, error)
}

var _ Aligner = (*nucmer.Nucmer)(nil)
