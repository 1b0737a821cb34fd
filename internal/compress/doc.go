// Package compress rewrites a flat sequence of program lines into a tree of
// literal and repeat nodes, and back.
//
// The encoder is greedy: at each position it picks the repetition period
// that saves the most lines, preferring the shortest period on a tie, then
// recurses into the repeated block so repeats can nest. Flatten is its exact
// inverse. A stream is rendered as text with `RS <count>` / `RE` markers
// around each repeated block, or as JSON.
package compress
