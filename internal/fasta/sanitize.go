package fasta

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// SanitizeID strips the trailing comment and any pipe-delimited prefix from
// a header (without its leading '>'):
//
//	"ncbi|prefix|gene_0001 comment" → "gene_0001"
//	"gnl|Prokka|contig_7"          → "contig_7"
func SanitizeID(header string) string {
	id, _, _ := strings.Cut(header, " ")
	if i := strings.LastIndexByte(id, '|'); i >= 0 {
		id = id[i+1:]
	}
	return id
}

// SanitizeLine rewrites a header line; sequence lines pass through.
func SanitizeLine(line string) string {
	if !strings.HasPrefix(line, ">") {
		return line
	}
	return ">" + SanitizeID(strings.TrimRight(line[1:], "\r"))
}

// Sanitize copies a FASTA stream, rewriting every header with SanitizeLine.
// Sequence lines are copied byte for byte.
func Sanitize(w io.Writer, r io.Reader) error {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			if strings.HasPrefix(line, ">") {
				body, nl := strings.CutSuffix(line, "\n")
				line = SanitizeLine(body)
				if nl {
					line += "\n"
				}
			}
			if _, werr := bw.WriteString(line); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SanitizeFile writes a sanitized copy of in to out and returns out.
func SanitizeFile(in, out string) (string, error) {
	if st, err := os.Stat(in); err != nil || !st.Mode().IsRegular() {
		return "", fmt.Errorf("file does not exist: %s", in)
	}
	rc, err := openReader(in)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	fh, err := os.Create(out)
	if err != nil {
		return "", err
	}
	if err := Sanitize(fh, rc); err != nil {
		_ = fh.Close()
		return "", fmt.Errorf("sanitize %s: %w", in, err)
	}
	if err := fh.Close(); err != nil {
		return "", err
	}
	return out, nil
}
