// Package hierarchy renders indented outlines as tree diagrams.
//
// Unlike package pseudo it has no control-flow semantics: every line is a
// node and indentation alone decides the edges.
//
//	Animals
//	    Mammals
//	        Dog
//	    Birds
//
// renders as a graph with Animals at the root and Mammals and Birds as its
// children.
package hierarchy
