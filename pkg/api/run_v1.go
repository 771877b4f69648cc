// pkg/api/run_v1.go
package api

// SummaryV1 is the stable JSON schema for `dotprep summary --output json`.
type SummaryV1 struct {
	File          string  `json:"file"`
	Segments      int     `json:"segments"`
	Unique        int     `json:"unique"`
	Repetitive    int     `json:"repetitive"`
	Reversed      int     `json:"reversed"`
	References    int     `json:"references"`
	Queries       int     `json:"queries"`
	AlignedRefBp  int     `json:"aligned_ref_bp"`
	MeanRefLen    float64 `json:"mean_ref_len"`
	MedianRefLen  float64 `json:"median_ref_len"`
	LongestRefLen int     `json:"longest_ref_len"`
}

// PublishedV1 describes one uploaded artifact.
type PublishedV1 struct {
	Key  string `json:"key"`
	Size int64  `json:"size_bytes"`
	ETag string `json:"etag,omitempty"`
}

// RunV1 is the stable JSON schema for `dotprep run --output json`.
type RunV1 struct {
	RunID     string        `json:"run_id"`
	OutDir    string        `json:"outdir"`
	Files     []string      `json:"files"`
	Published []PublishedV1 `json:"published,omitempty"`
}
