package controllers

import (
	"context"
	"image"
	"testing"

	"github.com/autowsgr/helmsman/device"
	"github.com/autowsgr/helmsman/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alwaysTrue(image.Image) bool { return true }

func testCheckers() Checkers {
	return Checkers{
		Main:       alwaysTrue,
		Map:        alwaysTrue,
		Mission:    alwaysTrue,
		Backyard:   alwaysTrue,
		Sidebar:    alwaysTrue,
		Build:      alwaysTrue,
		Intensify:  alwaysTrue,
		Friend:     alwaysTrue,
		Bath:       alwaysTrue,
		Canteen:    alwaysTrue,
		BattlePrep: alwaysTrue,
	}
}

func TestBuildGraphWiresMainHub(t *testing.T) {
	fake := device.NewFake(100, 100, blankFrame())
	g := BuildGraph(fake, testCheckers(), page.WaitOptions{Timeout: 1e9, Interval: 1})

	for _, target := range []page.Name{page.Map, page.Mission, page.Backyard, page.Sidebar} {
		_, ok := g.FindPath(page.Main, target)
		assert.True(t, ok, "expected a path from main to %s", target)
	}
}

func TestBuildGraphOmitsDecisiveBattleWhenCheckerNil(t *testing.T) {
	g := BuildGraph(nil, testCheckers(), page.WaitOptions{})
	_, ok := g.FindPath(page.Map, page.DecisiveBattle)
	assert.False(t, ok)
}

func TestBuildGraphIncludesDecisiveBattleWhenCheckerSet(t *testing.T) {
	checkers := testCheckers()
	checkers.DecisiveBattle = alwaysTrue
	fake := device.NewFake(100, 100, blankFrame())
	g := BuildGraph(fake, checkers, page.WaitOptions{Timeout: 1e9, Interval: 1})

	path, ok := g.FindPath(page.Map, page.DecisiveBattle)
	require.True(t, ok)
	assert.Len(t, path, 1)
}

func TestBuildGraphSidebarReachesBuildAndIntensifyAndFriend(t *testing.T) {
	fake := device.NewFake(100, 100, blankFrame())
	g := BuildGraph(fake, testCheckers(), page.WaitOptions{Timeout: 1e9, Interval: 1})

	for _, target := range []page.Name{page.Build, page.Intensify, page.Friend} {
		_, ok := g.FindPath(page.Sidebar, target)
		assert.True(t, ok, "expected a path from sidebar to %s", target)
	}
}

func TestBuildGraphMultiHopPathFromMainToBath(t *testing.T) {
	fake := device.NewFake(100, 100, blankFrame())
	g := BuildGraph(fake, testCheckers(), page.WaitOptions{Timeout: 1e9, Interval: 1})

	path, ok := g.FindPath(page.Main, page.Bath)
	require.True(t, ok)
	require.Len(t, path, 2)
	assert.Equal(t, page.Backyard, path[0].Target)
	assert.Equal(t, page.Bath, path[1].Target)
}

func TestBuildGraphEdgeActionsExecuteAgainstDevice(t *testing.T) {
	fake := device.NewFake(100, 100, blankFrame(), blankFrame())
	g := BuildGraph(fake, testCheckers(), page.WaitOptions{Timeout: 1e9, Interval: 1})

	path, ok := g.FindPath(page.Main, page.Map)
	require.True(t, ok)
	require.Len(t, path, 1)

	err := path[0].Action(context.Background(), fake)
	require.NoError(t, err)
	assert.NotEmpty(t, fake.Clicks)
}
