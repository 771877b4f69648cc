// Package writers serializes annotation records, summaries and run results.
//
// JSON and JSONL go through pkg/api (v1) so the wire format stays stable
// while internal types evolve. CSV stays in internal/output.
package writers
