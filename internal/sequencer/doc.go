// Package sequencer walks an attribute grid in snake order and turns every
// cell visit into an instruction of resolved machine commands.
//
// Odd rows are visited right to left, even rows left to right. Three values
// are carried across the whole walk, never reset at row ends: the boundary
// class, frame and sign of the previously visited cell. A change of boundary
// class between consecutive visits inserts a boundary-switch instruction;
// the end of every row but the last inserts a line-switch instruction. Both
// may fire at the same row boundary.
package sequencer
