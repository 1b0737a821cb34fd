// Package grid holds the attribute grid: a width by height rectangle of
// cells, each carrying the six attribute tokens that drive sequencing.
//
// Coordinates are 1-based, x grows to the right and y grows upwards from
// the bottom row. A grid is built once (usually by FromLayers), validated,
// and then only read.
package grid
