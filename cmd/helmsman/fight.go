package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"

	"github.com/autowsgr/helmsman/combat"
	"github.com/autowsgr/helmsman/config"
	"github.com/autowsgr/helmsman/device"
	"github.com/autowsgr/helmsman/log"
)

type fightCommand struct {
	Serial   string `short:"s" long:"serial" description:"adb device serial" required:"true"`
	AdbBin   string `long:"adb-bin" description:"path to the adb binary (default: adb on $PATH)"`
	MapFile  string `short:"m" long:"map" description:"map node YAML file (optional, enables node tracking)"`
	Assets   string `short:"a" long:"assets" description:"directory of PNG template assets for image-dependent actions"`
	Verbose  bool   `short:"v" long:"verbose" description:"enable debug logging"`
	Args     struct {
		Plan string `positional-arg-name:"plan.yaml" description:"combat plan YAML file"`
	} `positional-args:"yes" required:"yes"`
}

func (c *fightCommand) Execute(args []string) error {
	level := zerolog.InfoLevel
	if c.Verbose {
		level = zerolog.DebugLevel
	}
	zlog := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	log.SetLogger(log.NewZerologAdapter(zlog))

	plan, err := config.LoadPlan(c.Args.Plan)
	if err != nil {
		return fmt.Errorf("helmsman: %w", err)
	}

	var mapData *combat.MapNodeData
	if c.MapFile != "" {
		data, ok, err := config.LoadMap(c.MapFile)
		if err != nil {
			return fmt.Errorf("helmsman: %w", err)
		}
		if ok {
			mapData = data
		}
	}

	controller := device.NewADBController(c.Serial, c.AdbBin)
	ctx := context.Background()
	if _, err := controller.Connect(ctx); err != nil {
		return fmt.Errorf("helmsman: connect %s: %w", c.Serial, err)
	}

	actions, err := newAssetActions(controller, c.Assets, nil)
	if err != nil {
		return fmt.Errorf("helmsman: %w", err)
	}

	for phase, populated := range combat.NewPhaseTable(actions.templates) {
		combat.PhaseSignatures[phase] = populated
	}

	engine := combat.NewEngine(controller, actions)
	result, err := engine.Fight(ctx, plan, mapData, nil)
	if err != nil {
		return fmt.Errorf("helmsman: fight: %w", err)
	}

	fmt.Printf("Result: %s\n", result.Flag)
	fmt.Printf("Nodes visited: %d\n", result.NodeCount)
	fmt.Printf("Events: %d\n", result.History.Len())
	return nil
}

func addFightCommand(parser *flags.Parser) {
	_, err := parser.AddCommand("fight",
		"Run a combat plan to completion on a connected device",
		"Loads a combat plan and optional map data, connects to the device over\n"+
			"adb, and drives combat.Engine.Fight from the first Proceed prompt to a\n"+
			"terminal outcome.",
		&fightCommand{})
	if err != nil {
		panic(err)
	}
}
