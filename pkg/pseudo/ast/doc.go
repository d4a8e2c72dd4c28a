// Package ast defines the control-flow tree produced by the pseudocode parser.
//
// A Tree is an ordered sequence of Nodes. A Node is one of:
//
//   - statement: a leaf action (the synthetic Start and End are statements)
//   - condition: an if with a Then sequence and an optional Else sequence
//   - loop: a while with a Body sequence
//
// Nodes carry no parent pointers; consumers that need to climb out of a
// block (the graph linearizer) keep their own traversal frames.
package ast
