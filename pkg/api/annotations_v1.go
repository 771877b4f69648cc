// pkg/api/annotations_v1.go
package api

// AnnotationV1 is the stable JSON/JSONL schema for one annotation record.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type AnnotationV1 struct {
	Side     string `json:"side"` // "ref" | "qry"
	Scaffold string `json:"scaffold"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Name     string `json:"name"`
	Strand   string `json:"strand"` // "+" | "-"
}
