package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/katalvlaran/lvlath/bfs"
	"github.com/katalvlaran/lvlath/core"
)

// ErrUnknownCourse is returned when a chain lookup names a course that is
// not in the catalog.
var ErrUnknownCourse = errors.New("unknown course code")

// PrereqGraph is the directed prerequisite graph over the whole catalog:
// an edge runs from a prerequisite to each course that lists it. Companion
// sections are excluded on both ends. Built once per catalog load and
// read-only afterwards.
type PrereqGraph struct {
	graph   *core.Graph
	courses map[string]Course
}

// BuildPrereqGraph indexes the catalog into a prerequisite graph.
func BuildPrereqGraph(catalog []Course) (*PrereqGraph, error) {
	g, err := core.NewGraph(core.WithDirected(true))
	if err != nil {
		return nil, fmt.Errorf("new graph: %w", err)
	}
	courses := make(map[string]Course, len(catalog))

	for _, c := range catalog {
		if c.IsCompanion() {
			continue
		}
		courses[c.Code] = c
		if err := g.AddVertex(c.Code); err != nil {
			return nil, fmt.Errorf("add vertex %s: %w", c.Code, err)
		}
	}

	for _, c := range catalog {
		if c.IsCompanion() {
			continue
		}
		expr := c.PrereqExpr()
		seen := make(map[string]bool)
		for _, block := range expr.Blocks {
			for _, opt := range block.Options {
				for _, code := range opt {
					if code == c.Code || seen[code] || courses[code].Code == "" {
						continue
					}
					seen[code] = true
					if _, err := g.AddEdge(code, c.Code, 0); err != nil {
						return nil, fmt.Errorf("add edge %s -> %s: %w", code, c.Code, err)
					}
				}
			}
		}
	}

	return &PrereqGraph{graph: g, courses: courses}, nil
}

// Unlocks returns how many catalog courses list the given course as a direct
// prerequisite.
func (pg *PrereqGraph) Unlocks(code string) int {
	ids, err := pg.graph.NeighborIDs(NormalizeCode(code))
	if err != nil {
		return 0
	}
	return len(ids)
}

// UnlockTree walks the dependents of a course to the given depth and returns
// the nodes and edges of the chain it starts. A companion root is folded
// back to its parent course.
func (pg *PrereqGraph) UnlockTree(code string, depth int) (*UnlockTree, error) {
	root := NormalizeCode(code)
	if companionRe.MatchString(root) {
		root = root[:len(root)-1]
	}
	if _, ok := pg.courses[root]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCourse, code)
	}

	result, err := bfs.BFS(pg.graph, root, bfs.WithMaxDepth(depth+1))
	if err != nil {
		return nil, fmt.Errorf("walk prerequisite chain of %s: %w", root, err)
	}

	tree := &UnlockTree{Root: root}
	for _, id := range result.Order {
		d := result.Depth[id]
		if d > depth {
			continue
		}
		tree.Nodes = append(tree.Nodes, UnlockNode{
			Code:  id,
			Name:  pg.courses[id].Name,
			Depth: d,
		})
		if parent := result.Parent[id]; parent != "" && d > 0 {
			tree.Edges = append(tree.Edges, UnlockEdge{From: parent, To: id})
		}
	}

	sort.Slice(tree.Nodes, func(i, j int) bool {
		if tree.Nodes[i].Depth != tree.Nodes[j].Depth {
			return tree.Nodes[i].Depth < tree.Nodes[j].Depth
		}
		return tree.Nodes[i].Code < tree.Nodes[j].Code
	})
	sort.Slice(tree.Edges, func(i, j int) bool {
		if tree.Edges[i].From != tree.Edges[j].From {
			return tree.Edges[i].From < tree.Edges[j].From
		}
		return tree.Edges[i].To < tree.Edges[j].To
	})
	return tree, nil
}
