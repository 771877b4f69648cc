// Package coords validates and summarizes the plot-ready coordinate file
// (<prefix>.coords) produced by the delta converter.
package coords

import (
	"errors"
	"fmt"
	"strings"
)

// Header is the literal first line of a coords file.
const Header = "ref_start,ref_end,query_start,query_end,ref"

// ErrFormat matches every *FormatError.
var ErrFormat = errors.New("unexpected file format")

// FormatError reports a header mismatch in a converter output file.
type FormatError struct {
	File string // "coords" or "index"
	Want string
	Got  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("converter output %s is invalid: header %q, want %q", e.File, e.Got, e.Want)
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// FirstLine returns text up to (not including) the first newline.
func FirstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return line
}

// CheckHeader verifies that the first line of text is exactly want.
func CheckHeader(file, text, want string) error {
	if got := FirstLine(text); got != want {
		return &FormatError{File: file, Want: want, Got: got}
	}
	return nil
}

// Validate checks the coords header.
func Validate(text string) error { return CheckHeader("coords", text, Header) }
