package combat

import (
	"strconv"
	"strings"
)

// EventType identifies the kind of CombatEvent recorded.
type EventType int

const (
	EventFightCondition EventType = iota
	EventSpotEnemy
	EventDetour
	EventFormation
	EventEnterFight
	EventNightBattle
	EventResult
	EventGetShip
	EventProceed
	EventFlagshipDamage
	EventAutoReturn
	EventSL
)

// CombatEvent is one recorded step of a Fight's history.
type CombatEvent struct {
	Type      EventType
	Node      string
	Action    string
	Result    string
	Enemies   map[string]int
	ShipStats []ShipDamageState
	Extra     map[string]any
}

// gradeOrder ranks result grades from worst to best.
var gradeOrder = []string{"D", "C", "B", "A", "S", "SS"}

// FightResult is one node's battle outcome.
type FightResult struct {
	MVP       int
	Grade     string
	ShipStats []ShipDamageState
}

func (f FightResult) gradeIndex() int {
	for i, g := range gradeOrder {
		if g == f.Grade {
			return i
		}
	}
	return -1
}

// Less reports whether f's grade ranks below other's.
func (f FightResult) Less(other FightResult) bool {
	return f.gradeIndex() < other.gradeIndex()
}

// LessGrade reports whether f's grade ranks below the named grade.
func (f FightResult) LessGrade(grade string) bool {
	target := -1
	for i, g := range gradeOrder {
		if g == grade {
			target = i
		}
	}
	return f.gradeIndex() < target
}

func (f FightResult) String() string {
	return "MVP=" + strconv.Itoa(f.MVP) + " grade=" + f.Grade
}

// History records every event of one complete Fight call. It exists
// only for the duration of that call — nothing here is persisted.
type History struct {
	Events []CombatEvent
}

// Add appends an event.
func (h *History) Add(e CombatEvent) { h.Events = append(h.Events, e) }

// Reset clears the history for a new Fight.
func (h *History) Reset() { h.Events = nil }

// LastNode returns the node of the last recorded event, or "".
func (h *History) LastNode() string {
	if len(h.Events) == 0 {
		return ""
	}
	return h.Events[len(h.Events)-1].Node
}

// FightResults extracts every EventResult's grade, keyed by node when
// node names are alphabetic, else returned as an ordered slice.
func (h *History) FightResults() (byNode map[string]FightResult, ordered []FightResult) {
	byNode = map[string]FightResult{}
	for _, e := range h.Events {
		if e.Type != EventResult {
			continue
		}
		fr := FightResult{Grade: e.Result}
		if e.Node != "" && isAlpha(e.Node) {
			byNode[e.Node] = fr
		} else {
			ordered = append(ordered, fr)
		}
	}
	return byNode, ordered
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return s != ""
}

func (h *History) String() string {
	var b strings.Builder
	for i, e := range h.Events {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Node)
		b.WriteByte(' ')
		b.WriteString(e.Action)
	}
	return b.String()
}

// Len reports the number of recorded events.
func (h *History) Len() int { return len(h.Events) }
