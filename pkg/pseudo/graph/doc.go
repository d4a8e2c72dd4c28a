// Package graph linearizes a control-flow tree into flowchart text.
//
// Statements become rectangle nodes (id["text"]) and conditions and loops
// become diamond nodes (id{"text"}). Branches are labelled "Yes" and "No";
// the last statement of a loop body links back to the loop. Edges into the
// End node are drawn with a longer arrow.
package graph
