package output

import (
	"dotprep/internal/annot"
	"dotprep/internal/coords"
	"dotprep/pkg/api"
)

// Side returns the wire name of a genome side.
func Side(isRef bool) string {
	if isRef {
		return "ref"
	}
	return "qry"
}

// ToAPIAnnotation maps a record to the stable v1 schema.
func ToAPIAnnotation(r annot.Record, isRef bool) api.AnnotationV1 {
	return api.AnnotationV1{
		Side:     Side(isRef),
		Scaffold: r.Scaffold,
		Start:    r.Start,
		End:      r.End,
		Name:     r.Name,
		Strand:   r.Strand,
	}
}

// ToAPISummary maps a coords summary to the stable v1 schema.
func ToAPISummary(file string, s coords.Summary) api.SummaryV1 {
	return api.SummaryV1{
		File:          file,
		Segments:      s.Segments,
		Unique:        s.Unique,
		Repetitive:    s.Repetitive,
		Reversed:      s.Reversed,
		References:    s.References,
		Queries:       s.Queries,
		AlignedRefBp:  s.AlignedRef,
		MeanRefLen:    s.MeanRefLen,
		MedianRefLen:  s.MedianRefLen,
		LongestRefLen: s.LongestRefLen,
	}
}
