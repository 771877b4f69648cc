package fasta

import (
	"fmt"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// Lengths returns the sequence length of every record in path, keyed by the
// sanitized record id, plus the ids in file order.
func Lengths(path string) (map[string]int, []string, error) {
	rc, err := openReader(path)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()

	lengths := make(map[string]int)
	var order []string
	sc := seqio.NewScanner(fasta.NewReader(rc, linear.NewSeq("", nil, alphabet.DNAredundant)))
	for sc.Next() {
		s := sc.Seq()
		id := SanitizeID(s.Name())
		if _, dup := lengths[id]; !dup {
			order = append(order, id)
		}
		lengths[id] = s.Len()
	}
	if err := sc.Error(); err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lengths, order, nil
}
