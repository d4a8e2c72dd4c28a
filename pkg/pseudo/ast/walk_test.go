package ast

import (
	"errors"
	"testing"
)

func sampleTree() Tree {
	cond := NewCondition()
	cond.ID, cond.Text = "id1", "a"
	loop := NewLoop()
	loop.ID, loop.Text = "id2", "b"
	loop.Body = []*Node{NewStatement("id3", "c", 2, false)}
	cond.Then = []*Node{loop}
	cond.Else = []*Node{NewStatement("id4", "d", 4, false)}

	return Tree{
		NewStatement("id0", "Start", 0, false),
		cond,
		NewStatement("id5", "End", 4, true),
	}
}

func TestWalk_Order(t *testing.T) {
	var ids []string
	var depths []int
	err := Walk(sampleTree(), func(n *Node, depth int) error {
		ids = append(ids, n.ID)
		depths = append(depths, depth)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	wantIDs := []string{"id0", "id1", "id2", "id3", "id4", "id5"}
	wantDepths := []int{0, 0, 1, 2, 1, 0}
	for i := range wantIDs {
		if i >= len(ids) || ids[i] != wantIDs[i] || depths[i] != wantDepths[i] {
			t.Fatalf("Walk() visited %v at depths %v, want %v at %v", ids, depths, wantIDs, wantDepths)
		}
	}
}

func TestWalk_StopsOnError(t *testing.T) {
	stop := errors.New("stop")
	visited := 0
	err := Walk(sampleTree(), func(n *Node, depth int) error {
		visited++
		if n.IsLoop() {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Errorf("Walk() error = %v, want %v", err, stop)
	}
	if visited != 3 {
		t.Errorf("visited = %d, want 3", visited)
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize(sampleTree())
	want := Stats{Nodes: 6, Statements: 4, Conditions: 1, Loops: 1, MaxDepth: 2}
	if got != want {
		t.Errorf("Summarize() = %+v, want %+v", got, want)
	}
}

func TestNode_Predicates(t *testing.T) {
	cond := NewCondition()
	if cond.HasHeader() || cond.HasElse() || !cond.IsBranching() {
		t.Errorf("fresh condition predicates wrong: %+v", cond)
	}
	cond.Else = []*Node{}
	if !cond.HasElse() {
		t.Error("HasElse() = false for opened empty else")
	}
	if NewStatement("id0", "x", 0, false).Inner() != nil {
		t.Error("statement Inner() != nil")
	}
}
