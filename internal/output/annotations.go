package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"dotprep/internal/annot"
)

// Fixed annotation headers consumed by the viewer.
const (
	RefAnnotationHeader = "ref,ref_start,ref_end,name,strand"
	QryAnnotationHeader = "query,query_start,query_end,name,strand"
)

// AnnotationHeader returns the header for the reference or query side.
func AnnotationHeader(isRef bool) string {
	if isRef {
		return RefAnnotationHeader
	}
	return QryAnnotationHeader
}

// WriteAnnotations writes the header and one comma-joined line per record.
// Names are written verbatim (no quoting).
func WriteAnnotations(w io.Writer, recs []annot.Record, isRef bool) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(AnnotationHeader(isRef) + "\n"); err != nil {
		return err
	}
	var line []byte
	for _, r := range recs {
		line = line[:0]
		line = append(line, r.Scaffold...)
		line = append(line, ',')
		line = strconv.AppendInt(line, int64(r.Start), 10)
		line = append(line, ',')
		line = strconv.AppendInt(line, int64(r.End), 10)
		line = append(line, ',')
		line = append(line, r.Name...)
		line = append(line, ',')
		line = append(line, r.Strand...)
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FormatAnnotations is WriteAnnotations into a string.
func FormatAnnotations(recs []annot.Record, isRef bool) string {
	var sb strings.Builder
	_ = WriteAnnotations(&sb, recs, isRef) // strings.Builder never fails
	return sb.String()
}
