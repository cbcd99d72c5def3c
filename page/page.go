// Package page implements the UI page registry and navigation graph: page
// identification, BFS path-finding between pages, and the polling waiters
// that confirm a navigation action actually landed, including automatic
// dismissal of known overlays (sign-in reminders, news popups, network
// retry dialogs) encountered along the way.
package page

import (
	"image"
)

// Name identifies one of the game's navigable UI pages.
type Name string

const (
	Main           Name = "main"
	Map            Name = "map"
	BattlePrep     Name = "battle_prep"
	Sidebar        Name = "sidebar"
	Mission        Name = "mission"
	Backyard       Name = "backyard"
	Bath           Name = "bath"
	Canteen        Name = "canteen"
	ChooseRepair   Name = "choose_repair"
	Build          Name = "build"
	Intensify      Name = "intensify"
	Friend         Name = "friend"
	DecisiveBattle Name = "decisive_battle"
)

// Checker reports whether screen currently shows its page. Checkers must
// be pure functions of the screenshot: no device interaction, no mutable
// state beyond what's captured at registration time.
type Checker func(screen image.Image) bool
