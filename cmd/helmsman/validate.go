package main

import (
	"fmt"

	"github.com/jessevdk/go-flags"

	"github.com/autowsgr/helmsman/config"
)

type validateCommand struct {
	Args struct {
		Plan string `positional-arg-name:"plan.yaml" description:"combat plan YAML file"`
	} `positional-args:"yes" required:"yes"`
}

func (c *validateCommand) Execute(args []string) error {
	plan, err := config.LoadPlan(c.Args.Plan)
	if err != nil {
		return fmt.Errorf("helmsman: %w", err)
	}

	fmt.Printf("Plan %q is valid.\n", plan.Name)
	fmt.Printf("  Mode: %s\n", plan.Mode)
	fmt.Printf("  Chapter/Map: %s/%s\n", plan.Chapter, plan.MapID)
	fmt.Printf("  Nodes configured: %d\n", len(plan.Nodes))
	if len(plan.SelectedNodes) > 0 {
		fmt.Printf("  Selected nodes: %v\n", plan.SelectedNodes)
	}
	return nil
}

func addValidateCommand(parser *flags.Parser) {
	_, err := parser.AddCommand("validate",
		"Parse a plan file and report errors without touching a device",
		"Parses a combat plan YAML file, including every node's enemy_rules and\n"+
			"enemy_formation_rules, and reports the first error encountered — a\n"+
			"bad operator, an unrecognized ship-type field, a malformed rule item —\n"+
			"without connecting to a device.",
		&validateCommand{})
	if err != nil {
		panic(err)
	}
}
