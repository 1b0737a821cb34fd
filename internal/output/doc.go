// Package output writes the artifacts of a run: the per-step CSV tables and
// the annotated and plain program listings.
package output
