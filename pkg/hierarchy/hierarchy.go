package hierarchy

import (
	"fmt"
	"strings"
	"unicode"
)

// Header is the first line of every generated tree diagram.
const Header = "graph TD"

// IndentSize is the number of leading whitespace characters per level.
const IndentSize = 4

// Node is one non-empty line of a hierarchy source.
type Node struct {
	ID     int    // Index of the line that first introduced Text
	Text   string // Sanitized line text
	Level  int    // Indentation level
	Parent *Node  // nil for roots
}

// Parse builds the node list for an indentation hierarchy. Each non-empty
// line becomes a node. A line indented deeper than the previous one becomes
// a child of the previous node; a shallower line climbs one parent per level
// of outdent. Lines with identical text share the id of the first such line,
// so they render as one node with several incoming edges.
func Parse(source string) []*Node {
	var (
		nodes     []*Node
		parent    *Node
		lastLevel int
	)
	ids := make(map[string]int)

	for index, line := range strings.Split(source, "\n") {
		level := leadingSpace(line) / IndentSize
		text := sanitize(line)
		if text == "" {
			continue
		}

		switch {
		case level > lastLevel && len(nodes) > 0:
			parent = nodes[len(nodes)-1]
		case level < lastLevel:
			for outdent := lastLevel - level; outdent > 0 && parent != nil; outdent-- {
				parent = parent.Parent
			}
		}

		id, seen := ids[text]
		if !seen {
			id = index
			ids[text] = id
		}

		nodes = append(nodes, &Node{ID: id, Text: text, Level: level, Parent: parent})
		lastLevel = level
	}

	return nodes
}

// Render converts an indentation hierarchy into graph text.
func Render(source string) string {
	return Format(Parse(source))
}

// Format writes parsed nodes as graph text.
func Format(nodes []*Node) string {
	lines := []string{Header}
	for _, n := range nodes {
		lines = append(lines, fmt.Sprintf("%d[\"%s\"]", n.ID, n.Text))
		if n.Parent != nil {
			lines = append(lines, fmt.Sprintf("%d --> %d", n.Parent.ID, n.ID))
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func leadingSpace(line string) int {
	count := 0
	for _, r := range line {
		if !unicode.IsSpace(r) {
			break
		}
		count++
	}
	return count
}

// sanitize trims the line and keeps only ASCII letters, digits, spaces,
// hyphens and parentheses.
func sanitize(line string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '(', r == ')':
			return r
		}
		return -1
	}, strings.TrimSpace(line))
}
