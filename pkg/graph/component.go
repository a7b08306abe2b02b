package graph

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// UnionFind is a disjoint-set forest over node indices, merged by size.
type UnionFind struct {
	parent []uint32
	size   []uint32
	sets   uint32
}

// NewUnionFind creates a UnionFind of n singleton sets.
func NewUnionFind(n uint32) *UnionFind {
	uf := &UnionFind{
		parent: make([]uint32, n),
		size:   make([]uint32, n),
		sets:   n,
	}
	for i := range n {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

// Find returns the representative of the set containing x, halving the
// path on the way up.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx, ry := uf.Find(x), uf.Find(y)
	if rx == ry {
		return false
	}
	if uf.size[rx] < uf.size[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	uf.sets--
	return true
}

// Size returns the number of elements in the set containing x.
func (uf *UnionFind) Size(x uint32) uint32 { return uf.size[uf.Find(x)] }

// Sets returns the number of disjoint sets.
func (uf *UnionFind) Sets() uint32 { return uf.sets }

// LargestComponent returns the node indices belonging to the largest
// weakly connected component (treating the directed graph as undirected).
func LargestComponent(g *Graph) []uint32 {
	if g.NumNodes == 0 {
		return nil
	}

	uf := NewUnionFind(g.NumNodes)

	// Union all edges (both directions treated as undirected).
	for u := uint32(0); u < g.NumNodes; u++ {
		for a := range g.Successors(u) {
			uf.Union(u, a.To)
		}
	}

	// Find the representative with the largest size.
	bestRoot := uint32(0)
	bestSize := uint32(0)
	for i := uint32(0); i < g.NumNodes; i++ {
		if size := uf.Size(i); size > bestSize {
			bestRoot = uf.Find(i)
			bestSize = size
		}
	}
	log.WithFields(logrus.Fields{
		"components": uf.Sets(),
		"largest":    bestSize,
	}).Debug("weak components")

	// Collect all nodes in the largest component.
	nodes := make([]uint32, 0, bestSize)
	for i := uint32(0); i < g.NumNodes; i++ {
		if uf.Find(i) == bestRoot {
			nodes = append(nodes, i)
		}
	}

	return nodes
}

// FilterToComponent creates a new graph containing only the specified nodes.
// Node i of the result is nodes[i] of g.
func FilterToComponent(g *Graph, nodes []uint32) *Graph {
	b := NewBuilder()
	if len(nodes) == 0 {
		out, _ := b.Build()
		return out
	}

	// Build old->new node index mapping.
	oldToNew := make(map[uint32]uint32, len(nodes))
	for _, oldIdx := range nodes {
		oldToNew[oldIdx] = b.AddNode(g.NodeLat[oldIdx], g.NodeLon[oldIdx])
	}

	// Keep edges that are fully within the component.
	for _, oldU := range nodes {
		for a := range g.Successors(oldU) {
			newV, ok := oldToNew[a.To]
			if !ok {
				continue
			}
			b.AddArc(oldToNew[oldU], newV, a.Length, RoadInfo{
				RoadType: a.RoadType,
				MaxSpeed: a.MaxSpeed,
				Access:   a.Access,
				Shape:    g.ArcGeometry(a.ID),
			})
		}
	}

	out, err := b.Build()
	if err != nil {
		// Arcs come from a valid graph, so only a corrupt input gets here.
		panic(fmt.Sprintf("graph: filter component: %v", err))
	}
	log.WithFields(logrus.Fields{
		"nodes":         out.NumNodes,
		"arcs":          out.NumEdges,
		"dropped_nodes": g.NumNodes - out.NumNodes,
	}).Info("filtered to component")
	return out
}
