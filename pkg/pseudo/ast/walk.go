package ast

// WalkFunc is called for every node visited by Walk with the node's
// nesting depth (0 for top-level nodes). Returning an error stops the walk.
type WalkFunc func(node *Node, depth int) error

// Walk visits every node of the tree in source order: a node first, then
// its Then/Body children, then its Else children. It uses an explicit stack
// so deeply nested sources do not grow the goroutine stack.
func Walk(tree Tree, fn WalkFunc) error {
	type item struct {
		node  *Node
		depth int
	}

	stack := make([]item, 0, len(tree))
	push := func(nodes []*Node, depth int) {
		for i := len(nodes) - 1; i >= 0; i-- {
			stack = append(stack, item{node: nodes[i], depth: depth})
		}
	}
	push(tree, 0)

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := fn(it.node, it.depth); err != nil {
			return err
		}

		// Else is pushed first so Then/Body is visited first.
		push(it.node.Else, it.depth+1)
		push(it.node.Inner(), it.depth+1)
	}

	return nil
}

// Stats summarizes the shape of a tree.
type Stats struct {
	Nodes      int `json:"nodes"`
	Statements int `json:"statements"`
	Conditions int `json:"conditions"`
	Loops      int `json:"loops"`
	MaxDepth   int `json:"max_depth"`
}

// Summarize computes Stats for tree. The Start and End sentinels count as
// statements.
func Summarize(tree Tree) Stats {
	var s Stats
	_ = Walk(tree, func(node *Node, depth int) error {
		s.Nodes++
		switch node.Type {
		case NodeTypeStatement:
			s.Statements++
		case NodeTypeCondition:
			s.Conditions++
		case NodeTypeLoop:
			s.Loops++
		}
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		return nil
	})
	return s
}
