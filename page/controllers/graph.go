package controllers

import (
	"context"

	"github.com/autowsgr/helmsman/device"
	"github.com/autowsgr/helmsman/page"
)

// Checkers bundles the page.Checker for every registered page name, so
// BuildGraph doesn't need a global registry lookup for each edge action.
type Checkers struct {
	Main           page.Checker
	Map            page.Checker
	Mission        page.Checker
	Backyard       page.Checker
	Sidebar        page.Checker
	Build          page.Checker
	Intensify      page.Checker
	Friend         page.Checker
	Bath           page.Checker
	Canteen        page.Checker
	BattlePrep     page.Checker
	DecisiveBattle page.Checker
}

// BuildGraph wires the concrete navigation topology, grounded on
// original_source's navigation.py NAV_GRAPH: main page at the hub, four
// one-level children (map, mission, backyard, sidebar), sidebar's three
// sub-pages (build, intensify, friend), backyard's two sub-pages (bath,
// canteen), battle-prep returning to map, and, only when
// c.DecisiveBattle is set, map's decisive-battle child.
func BuildGraph(d device.Controller, c Checkers, opts page.WaitOptions) *page.Graph {
	main := Main{Device: d}
	sidebar := Sidebar{Device: d}
	build := Build{Device: d}
	intensify := Intensify{Device: d}
	friend := Friend{Device: d}
	backyard := Backyard{Device: d}
	bath := Bath{Device: d}
	canteen := Canteen{Device: d}
	battlePrep := BattlePreparation{Device: d}

	edges := []page.Edge{
		{Source: page.Main, Target: page.Map, Description: "main -> map",
			Action: func(ctx context.Context, d device.Controller) error {
				_, err := main.NavigateToMap(ctx, c.Map, opts)
				return err
			}},
		{Source: page.Main, Target: page.Mission, Description: "main -> mission",
			Action: func(ctx context.Context, d device.Controller) error {
				_, err := main.NavigateToMission(ctx, c.Mission, opts)
				return err
			}},
		{Source: page.Main, Target: page.Backyard, Description: "main -> backyard",
			Action: func(ctx context.Context, d device.Controller) error {
				_, err := main.NavigateToBackyard(ctx, c.Backyard, opts)
				return err
			}},
		{Source: page.Main, Target: page.Sidebar, Description: "main -> sidebar",
			Action: func(ctx context.Context, d device.Controller) error {
				_, err := main.OpenSidebar(ctx, c.Sidebar, opts)
				return err
			}},
		{Source: page.Map, Target: page.Main, Description: "map -> main",
			Action: func(ctx context.Context, d device.Controller) error {
				_, err := Map{Device: d}.GoBack(ctx, c.Main, c.Map, opts)
				return err
			}},
		{Source: page.Mission, Target: page.Main, Description: "mission -> main",
			Action: func(ctx context.Context, d device.Controller) error {
				_, err := Mission{Device: d}.GoBack(ctx, c.Main, c.Mission, opts)
				return err
			}},
		{Source: page.Backyard, Target: page.Main, Description: "backyard -> main",
			Action: func(ctx context.Context, d device.Controller) error {
				_, err := backyard.GoBack(ctx, c.Main, c.Backyard, opts)
				return err
			}},
		{Source: page.Sidebar, Target: page.Main, Description: "sidebar -> main",
			Action: func(ctx context.Context, d device.Controller) error {
				_, err := sidebar.Close(ctx, c.Main, opts)
				return err
			}},
		{Source: page.BattlePrep, Target: page.Map, Description: "battle_prep -> map",
			Action: func(ctx context.Context, d device.Controller) error {
				_, err := battlePrep.GoBack(ctx, c.Map, nil, opts)
				return err
			}},
		{Source: page.Backyard, Target: page.Bath, Description: "backyard -> bath",
			Action: func(ctx context.Context, d device.Controller) error {
				_, err := backyard.NavigateToBath(ctx, c.Bath, opts)
				return err
			}},
		{Source: page.Backyard, Target: page.Canteen, Description: "backyard -> canteen",
			Action: func(ctx context.Context, d device.Controller) error {
				_, err := backyard.NavigateToCanteen(ctx, c.Canteen, opts)
				return err
			}},
		{Source: page.Bath, Target: page.Backyard, Description: "bath -> backyard",
			Action: func(ctx context.Context, d device.Controller) error {
				_, err := bath.GoBack(ctx, c.Backyard, c.Bath, opts)
				return err
			}},
		{Source: page.Canteen, Target: page.Backyard, Description: "canteen -> backyard",
			Action: func(ctx context.Context, d device.Controller) error {
				_, err := canteen.GoBack(ctx, c.Backyard, c.Canteen, opts)
				return err
			}},
		{Source: page.Sidebar, Target: page.Build, Description: "sidebar -> build",
			Action: func(ctx context.Context, d device.Controller) error {
				_, err := sidebar.NavigateToBuild(ctx, c.Build, opts)
				return err
			}},
		{Source: page.Sidebar, Target: page.Intensify, Description: "sidebar -> intensify",
			Action: func(ctx context.Context, d device.Controller) error {
				_, err := sidebar.NavigateToIntensify(ctx, c.Intensify, opts)
				return err
			}},
		{Source: page.Sidebar, Target: page.Friend, Description: "sidebar -> friend",
			Action: func(ctx context.Context, d device.Controller) error {
				_, err := sidebar.NavigateToFriend(ctx, c.Friend, opts)
				return err
			}},
		{Source: page.Build, Target: page.Sidebar, Description: "build -> sidebar",
			Action: func(ctx context.Context, d device.Controller) error {
				_, err := build.GoBack(ctx, c.Sidebar, nil, opts)
				return err
			}},
		{Source: page.Intensify, Target: page.Sidebar, Description: "intensify -> sidebar",
			Action: func(ctx context.Context, d device.Controller) error {
				_, err := intensify.GoBack(ctx, c.Sidebar, nil, opts)
				return err
			}},
		{Source: page.Friend, Target: page.Sidebar, Description: "friend -> sidebar",
			Action: func(ctx context.Context, d device.Controller) error {
				_, err := friend.GoBack(ctx, c.Sidebar, nil, opts)
				return err
			}},
	}

	if c.DecisiveBattle != nil {
		edges = append(edges,
			page.Edge{Source: page.Map, Target: page.DecisiveBattle, Description: "map -> decisive_battle",
				Action: func(ctx context.Context, d device.Controller) error {
					_, err := page.ClickAndWaitForPage(ctx, d, mapPanelClicks["decisive"].X, mapPanelClicks["decisive"].Y, c.DecisiveBattle, opts, 1)
					return err
				}},
			page.Edge{Source: page.DecisiveBattle, Target: page.Main, Description: "decisive_battle -> main",
				Action: func(ctx context.Context, d device.Controller) error {
					_, err := page.WaitLeavePage(ctx, d, c.DecisiveBattle, opts)
					return err
				}},
		)
	}

	return page.NewGraph(edges)
}
