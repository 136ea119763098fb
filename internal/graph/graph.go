// Package graph defines the routing output document: the node map with
// aggregated demographics and the edge list with recentred geometry.
// Node identifiers are the source road graph's ids, int-typed end to
// end so a routing consumer can join the two collections cheaply.
package graph

// Document is the sole routing artifact of a run.
type Document struct {
	Nodes map[int64]*Node `json:"nodes"`
	Edges []Edge          `json:"edges"`
}

// Node is one routing-graph vertex with stats aggregated from buildings
// within the fixed join radius.
type Node struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Pop  int     `json:"pop,omitempty"`
	Jobs int     `json:"jobs,omitempty"`
}

// Edge references its endpoints by node id; it does not own them.
type Edge struct {
	U      int64        `json:"u"`
	V      int64        `json:"v"`
	Oneway bool         `json:"oneway"`
	Points [][2]float64 `json:"points"`
	Length float64      `json:"length"`
}

// Assemble groups nodes and edges into the output document, dropping any
// edge that references a node missing from the map so the round-trip
// invariant (every referenced id resolves) holds by construction.
func Assemble(nodes map[int64]*Node, edges []Edge) (*Document, int) {
	if nodes == nil {
		nodes = map[int64]*Node{}
	}
	kept := make([]Edge, 0, len(edges))
	dropped := 0
	for _, e := range edges {
		if _, ok := nodes[e.U]; !ok {
			dropped++
			continue
		}
		if _, ok := nodes[e.V]; !ok {
			dropped++
			continue
		}
		kept = append(kept, e)
	}
	return &Document{Nodes: nodes, Edges: kept}, dropped
}
