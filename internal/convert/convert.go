// Package convert drives the external delta-to-coords/index converter
// (DotPrep.py from the Dot viewer).
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"dotprep/internal/extool"
)

// Output file suffixes appended to the prefix.
const (
	CoordsSuffix = ".coords"
	IndexSuffix  = ".coords.idx"
)

// Converter turns a delta file into <prefix>.coords and <prefix>.coords.idx.
type Converter interface {
	Convert(ctx context.Context, deltaPath, prefix string) (coordsPath, indexPath string, err error)
}

// Command runs the converter as a subprocess.
type Command struct {
	Path string
	// UniqueLength is the minimum unique alignment length for a query to be
	// placed by its unique matches.
	UniqueLength int
	// MaxOverview caps the number of alignments in the overview section.
	MaxOverview int
}

// Defaults used when fields are zero.
const (
	DefaultUniqueLength = 10000
	DefaultMaxOverview  = 1000
)

// NewCommand resolves the converter executable.
func NewCommand(path string) (*Command, error) {
	if path == "" {
		path = "DotPrep.py"
	}
	resolved, err := extool.Resolve("converter", path)
	if err != nil {
		return nil, err
	}
	return &Command{Path: resolved, UniqueLength: DefaultUniqueLength, MaxOverview: DefaultMaxOverview}, nil
}

// Args returns the converter command line for one invocation.
func (c *Command) Args(deltaPath, prefix string) []string {
	ul, ov := c.UniqueLength, c.MaxOverview
	if ul <= 0 {
		ul = DefaultUniqueLength
	}
	if ov <= 0 {
		ov = DefaultMaxOverview
	}
	return []string{
		"--delta", deltaPath,
		"--out", prefix,
		"--unique_length", strconv.Itoa(ul),
		"--overview", strconv.Itoa(ov),
	}
}

// Convert runs the converter next to the delta file. Both paths are made
// absolute first since the tool runs in another directory.
func (c *Command) Convert(ctx context.Context, deltaPath, prefix string) (string, string, error) {
	deltaPath, err := filepath.Abs(deltaPath)
	if err != nil {
		return "", "", err
	}
	if prefix, err = filepath.Abs(prefix); err != nil {
		return "", "", err
	}
	args := c.Args(deltaPath, prefix)
	res, err := extool.Run(ctx, "converter", c.Path, filepath.Dir(deltaPath), args...)
	if err != nil {
		return "", "", err
	}
	coordsPath, indexPath := prefix+CoordsSuffix, prefix+IndexSuffix
	var missing []error
	for _, p := range []string{coordsPath, indexPath} {
		if _, err := os.Stat(p); err != nil {
			missing = append(missing, fmt.Errorf("missing output %s", p))
		}
	}
	if len(missing) > 0 {
		return "", "", res.Fail("converter", args, errors.Join(missing...))
	}
	return coordsPath, indexPath, nil
}
