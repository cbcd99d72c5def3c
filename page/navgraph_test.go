package page

import (
	"context"
	"testing"

	"github.com/autowsgr/helmsman/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopAction(ctx context.Context, d device.Controller) error { return nil }

func TestFindPathSameNodeIsEmptyPath(t *testing.T) {
	g := NewGraph(nil)
	path, ok := g.FindPath(Main, Main)
	require.True(t, ok)
	assert.Empty(t, path)
}

func TestFindPathUnreachableTarget(t *testing.T) {
	g := NewGraph([]Edge{{Source: Main, Target: Map, Action: noopAction}})
	_, ok := g.FindPath(Main, Backyard)
	assert.False(t, ok)
}

func TestFindPathShortestRoute(t *testing.T) {
	edges := []Edge{
		{Source: Main, Target: Sidebar, Action: noopAction},
		{Source: Sidebar, Target: Build, Action: noopAction},
		{Source: Main, Target: Map, Action: noopAction},
		{Source: Map, Target: DecisiveBattle, Action: noopAction},
	}
	g := NewGraph(edges)

	path, ok := g.FindPath(Main, Build)
	require.True(t, ok)
	require.Len(t, path, 2)
	assert.Equal(t, Sidebar, path[0].Target)
	assert.Equal(t, Build, path[1].Target)

	path, ok = g.FindPath(Main, DecisiveBattle)
	require.True(t, ok)
	require.Len(t, path, 2)
	assert.Equal(t, Map, path[0].Target)
}

func TestEdgesReturnsRegistrationOrder(t *testing.T) {
	edges := []Edge{
		{Source: Main, Target: Map, Action: noopAction, Description: "first"},
		{Source: Main, Target: Mission, Action: noopAction, Description: "second"},
	}
	g := NewGraph(edges)
	out := g.Edges(Main)
	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Description)
	assert.Equal(t, "second", out[1].Description)
}
