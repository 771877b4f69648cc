// Package pipeline prepares a dot plot: align two assemblies, convert the
// delta to coords and index files, then optionally map gene annotations
// onto the plot's coordinate system.
//
// The contracts to implement are Aligner and convert.Converter, which keeps
// the external tools swappable and testable.
package pipeline
