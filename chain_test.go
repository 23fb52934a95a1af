package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainCatalog() []Course {
	return []Course{
		{Code: "CS 201", Name: "Data Structures"},
		{Code: "CS 201R", Name: "Data Structures Recitation"},
		{Code: "CS 301", Name: "Algorithms", Prerequisites: "CS 201"},
		{Code: "CS 303", Name: "Logic", Prerequisites: "CS 201"},
		{Code: "CS 412", Name: "Machine Learning", Prerequisites: "CS 301 and MATH 204"},
		{Code: "CS 449", Name: "Learning Theory", Prerequisites: "CS 412"},
		{Code: "MATH 204", Name: "Discrete Mathematics"},
	}
}

func TestBuildPrereqGraph(t *testing.T) {
	graph, err := BuildPrereqGraph(chainCatalog())
	require.NoError(t, err)

	assert.Equal(t, 2, graph.Unlocks("CS 201"))
	assert.Equal(t, 1, graph.Unlocks("CS 301"))
	assert.Equal(t, 1, graph.Unlocks("MATH 204"))
	assert.Equal(t, 0, graph.Unlocks("CS 449"))
	assert.Equal(t, 0, graph.Unlocks("PHIL 101"), "unknown course unlocks nothing")
}

func TestUnlockTree_DepthLimit(t *testing.T) {
	graph, err := BuildPrereqGraph(chainCatalog())
	require.NoError(t, err)

	tree, err := graph.UnlockTree("CS 201", 2)
	require.NoError(t, err)
	assert.Equal(t, "CS 201", tree.Root)

	depths := make(map[string]int, len(tree.Nodes))
	for _, n := range tree.Nodes {
		depths[n.Code] = n.Depth
	}
	assert.Equal(t, 0, depths["CS 201"])
	assert.Equal(t, 1, depths["CS 301"])
	assert.Equal(t, 1, depths["CS 303"])
	assert.Equal(t, 2, depths["CS 412"])
	assert.NotContains(t, depths, "CS 449", "depth 3 node excluded at depth 2")

	assert.Contains(t, tree.Edges, UnlockEdge{From: "CS 201", To: "CS 301"})
	assert.Contains(t, tree.Edges, UnlockEdge{From: "CS 301", To: "CS 412"})
}

func TestUnlockTree_NodesSorted(t *testing.T) {
	graph, err := BuildPrereqGraph(chainCatalog())
	require.NoError(t, err)

	tree, err := graph.UnlockTree("CS 201", 3)
	require.NoError(t, err)
	for i := 1; i < len(tree.Nodes); i++ {
		prev, cur := tree.Nodes[i-1], tree.Nodes[i]
		ordered := prev.Depth < cur.Depth ||
			(prev.Depth == cur.Depth && prev.Code < cur.Code)
		assert.True(t, ordered, "nodes %s and %s out of order", prev.Code, cur.Code)
	}
}

func TestUnlockTree_CompanionRootFolds(t *testing.T) {
	graph, err := BuildPrereqGraph(chainCatalog())
	require.NoError(t, err)

	tree, err := graph.UnlockTree("CS 201R", 1)
	require.NoError(t, err)
	assert.Equal(t, "CS 201", tree.Root)
}

func TestUnlockTree_UnknownCourse(t *testing.T) {
	graph, err := BuildPrereqGraph(chainCatalog())
	require.NoError(t, err)

	_, err = graph.UnlockTree("PHIL 101", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCourse)
}

func TestUnlockTree_LeafCourse(t *testing.T) {
	graph, err := BuildPrereqGraph(chainCatalog())
	require.NoError(t, err)

	tree, err := graph.UnlockTree("CS 449", 2)
	require.NoError(t, err)
	require.Len(t, tree.Nodes, 1)
	assert.Equal(t, "CS 449", tree.Nodes[0].Code)
	assert.Empty(t, tree.Edges)
}
