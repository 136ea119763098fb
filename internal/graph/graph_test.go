package graph

import "testing"

func TestAssembleDropsDanglingEdges(t *testing.T) {
	nodes := map[int64]*Node{
		1: {X: 0, Y: 0},
		2: {X: 10, Y: 0},
	}
	edges := []Edge{
		{U: 1, V: 2, Length: 10},
		{U: 2, V: 3, Length: 5}, // node 3 does not exist
		{U: 4, V: 1, Length: 5}, // node 4 does not exist
	}

	doc, dropped := Assemble(nodes, edges)
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
	if len(doc.Edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(doc.Edges))
	}
	for _, e := range doc.Edges {
		if _, ok := doc.Nodes[e.U]; !ok {
			t.Errorf("edge references missing node %d", e.U)
		}
		if _, ok := doc.Nodes[e.V]; !ok {
			t.Errorf("edge references missing node %d", e.V)
		}
	}
}

func TestAssembleNilInput(t *testing.T) {
	doc, dropped := Assemble(nil, nil)
	if doc.Nodes == nil {
		t.Error("node map must be non-nil")
	}
	if len(doc.Edges) != 0 || dropped != 0 {
		t.Errorf("edges = %d, dropped = %d, want 0, 0", len(doc.Edges), dropped)
	}
}
