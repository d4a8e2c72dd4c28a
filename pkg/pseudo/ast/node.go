package ast

// NodeType is the kind of a control-flow node.
type NodeType string

const (
	NodeTypeStatement NodeType = "statement" // leaf action
	NodeTypeCondition NodeType = "condition" // if, optionally with else
	NodeTypeLoop      NodeType = "loop"      // while
)

// Node is a control-flow element of the parsed tree.
//
// Condition and loop nodes are appended to their sequence when the keyword
// is read and receive ID and Text once the header text is consumed, so ids
// follow token-consumption order.
type Node struct {
	Type  NodeType
	ID    string // "id0", "id1", ...; empty until the text is consumed
	Text  string
	Line  int  // Line of the token that supplied Text
	IsEnd bool // Synthetic End statement

	// Then holds the if branch of a condition.
	Then []*Node
	// Else holds the else branch of a condition; nil when the source had no else.
	Else []*Node
	// Body holds the body of a loop.
	Body []*Node
}

// Tree is the ordered sequence of top-level nodes.
type Tree []*Node

// NewStatement creates a statement node.
func NewStatement(id, text string, line int, isEnd bool) *Node {
	return &Node{
		Type:  NodeTypeStatement,
		ID:    id,
		Text:  text,
		Line:  line,
		IsEnd: isEnd,
	}
}

// NewCondition creates a condition node whose header is not yet known.
func NewCondition() *Node {
	return &Node{Type: NodeTypeCondition}
}

// NewLoop creates a loop node whose header is not yet known.
func NewLoop() *Node {
	return &Node{Type: NodeTypeLoop}
}

// IsStatement returns true if this is a statement node.
func (n *Node) IsStatement() bool {
	return n.Type == NodeTypeStatement
}

// IsCondition returns true if this is a condition node.
func (n *Node) IsCondition() bool {
	return n.Type == NodeTypeCondition
}

// IsLoop returns true if this is a loop node.
func (n *Node) IsLoop() bool {
	return n.Type == NodeTypeLoop
}

// IsBranching returns true for conditions and loops.
func (n *Node) IsBranching() bool {
	return n.IsCondition() || n.IsLoop()
}

// HasHeader returns true once a condition or loop has received its text.
func (n *Node) HasHeader() bool {
	return n.ID != ""
}

// HasElse returns true if the condition had an else block in the source.
func (n *Node) HasElse() bool {
	return n.Else != nil
}

// Inner returns the primary child sequence: Then for conditions, Body for
// loops, nil for statements.
func (n *Node) Inner() []*Node {
	switch n.Type {
	case NodeTypeCondition:
		return n.Then
	case NodeTypeLoop:
		return n.Body
	default:
		return nil
	}
}
