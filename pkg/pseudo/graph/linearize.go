package graph

import (
	"fmt"
	"strings"

	"mercator-hq/flowmaker/pkg/pseudo/ast"
	pseudoErrors "mercator-hq/flowmaker/pkg/pseudo/errors"
)

// Header is the first line of every generated flowchart.
const Header = "flowchart TD"

const (
	arrow    = "-->"
	arrowEnd = "--->"
)

// Result is a linearized graph together with its size.
type Result struct {
	Text  string // Graph description, newline-terminated
	Nodes int    // Number of node declarations
	Edges int    // Number of edges
}

// link is one traversal frame: a position in a node sequence plus the frame
// of the sequence's owner. Frames hold the only parent links in the tree.
type link struct {
	seq    []*ast.Node
	index  int
	parent *link
}

// node returns the node at the frame position, or nil for an empty sequence.
func (l *link) node() *ast.Node {
	if l.index < len(l.seq) {
		return l.seq[l.index]
	}
	return nil
}

// Linearize renders the tree as flowchart text.
func Linearize(tree ast.Tree) (string, error) {
	res, err := LinearizeResult(tree)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// LinearizeResult renders the tree and reports node and edge counts.
//
// The tree is walked with an explicit stack of frames. For each frame the
// successor of its node is found by climbing the parent frames: the end of a
// loop body flows back to the loop, the end of any other block flows to the
// node after the block's owner.
func LinearizeResult(tree ast.Tree) (*Result, error) {
	w := &writer{}
	w.line(Header)

	stack := []*link{{seq: tree, index: 0}}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current.seq == nil {
			return nil, pseudoErrors.NewMalformedTraversal()
		}

		n := current.node()
		next := successor(current)

		ar := arrow
		if next != nil && next.IsEnd {
			ar = arrowEnd
		}

		if current.index < len(current.seq)-1 {
			stack = append(stack, &link{seq: current.seq, index: current.index + 1, parent: current.parent})
		}

		if n == nil {
			if next == nil {
				continue
			}
			owner := enclosingNode(current)
			if owner == nil {
				continue
			}
			if owner.IsLoop() {
				return nil, pseudoErrors.NewEmptyLoop(owner.Line)
			}
			w.edge("%s-- Yes %s%s", owner.ID, arrow, next.ID)
			continue
		}

		if n.IsStatement() {
			w.node("%s[\"%s\"]", n.ID, n.Text)
			if next != nil {
				w.edge("%s%s%s", n.ID, ar, next.ID)
			}
			continue
		}

		w.node("%s{\"%s\"}", n.ID, n.Text)

		if len(n.Else) > 0 {
			stack = append(stack, &link{seq: n.Else, index: 0, parent: current})
			w.edge("%s-- No %s%s", n.ID, arrow, n.Else[0].ID)
		} else if next != nil {
			w.edge("%s-- No %s%s", n.ID, ar, next.ID)
		}

		inner := n.Inner()
		stack = append(stack, &link{seq: inner, index: 0, parent: current})
		if len(inner) > 0 {
			w.edge("%s-- Yes %s%s", n.ID, arrow, inner[0].ID)
		}
	}

	return &Result{
		Text:  strings.Join(w.lines, "\n") + "\n",
		Nodes: w.nodes,
		Edges: w.edges,
	}, nil
}

// successor returns the node control flows to after the frame's node.
func successor(l *link) *ast.Node {
	if l.index+1 < len(l.seq) {
		return l.seq[l.index+1]
	}

	for p := l.parent; p != nil; p = p.parent {
		owner := p.node()
		if owner != nil && owner.IsLoop() {
			return owner
		}
		if p.index+1 < len(p.seq) {
			return p.seq[p.index+1]
		}
	}
	return nil
}

// enclosingNode returns the owner of the frame's sequence.
func enclosingNode(l *link) *ast.Node {
	for p := l.parent; p != nil; p = p.parent {
		if p.seq != nil {
			return p.node()
		}
	}
	return nil
}

type writer struct {
	lines []string
	nodes int
	edges int
}

func (w *writer) line(s string) {
	w.lines = append(w.lines, s)
}

func (w *writer) node(format string, args ...any) {
	w.line(fmt.Sprintf(format, args...))
	w.nodes++
}

func (w *writer) edge(format string, args ...any) {
	w.line(fmt.Sprintf(format, args...))
	w.edges++
}
