package writers

import (
	"encoding/json"
	"io"

	"dotprep/internal/annot"
	"dotprep/internal/jsonlutil"
	"dotprep/internal/output"
)

// StartAnnotationJSONL streams records as api.AnnotationV1 lines.
func StartAnnotationJSONL(out io.Writer, bufSize int, isRef bool) (chan<- annot.Record, <-chan error) {
	return jsonlutil.Start[annot.Record](out, bufSize, func(enc *json.Encoder, r annot.Record) error {
		return enc.Encode(output.ToAPIAnnotation(r, isRef))
	}, IsBrokenPipe)
}

// WriteAnnotationsJSONL writes all records and waits for the encoder.
func WriteAnnotationsJSONL(out io.Writer, recs []annot.Record, isRef bool) error {
	in, done := StartAnnotationJSONL(out, len(recs), isRef)
	for _, r := range recs {
		in <- r
	}
	close(in)
	return <-done
}
