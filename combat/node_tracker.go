package combat

import (
	"fmt"
	"image"
	"math"
	"os"

	"github.com/autowsgr/helmsman/log"
	"github.com/autowsgr/helmsman/vision"
	"gopkg.in/yaml.v3"
)

// sourceWidth/sourceHeight is the reference resolution map node YAML
// coordinates are authored against.
const (
	sourceWidth  = 960.0
	sourceHeight = 540.0
)

// NodePosition is one map node's relative position and, for the routed
// YAML format, its reachable successors.
type NodePosition struct {
	Name      string
	X, Y      float64
	NextNodes []string
}

// MapNodeData is one map's full set of node positions, loaded from YAML.
type MapNodeData struct {
	nodes map[string]NodePosition
}

// NodeNames returns every node name except the start marker "0".
func (m *MapNodeData) NodeNames() []string {
	names := make([]string, 0, len(m.nodes))
	for n := range m.nodes {
		if n != "0" {
			names = append(names, n)
		}
	}
	return names
}

// Get looks up a node by name.
func (m *MapNodeData) Get(name string) (NodePosition, bool) {
	n, ok := m.nodes[name]
	return n, ok
}

// Len reports the number of nodes loaded.
func (m *MapNodeData) Len() int { return len(m.nodes) }

// rawNodeYAML is the on-disk shape for one node entry, supporting both
// the routed format ({position, next}) and the legacy format ([x, y]).
type rawNodeYAML struct {
	Position []float64 `yaml:"position"`
	Next     []string  `yaml:"next"`
}

// LoadMapNodeData reads and parses a map node YAML file at path. A
// missing file is not an error here, mirroring original_source's
// `MapNodeData.load` returning None — callers check the bool.
func LoadMapNodeData(path string) (*MapNodeData, bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("combat: read map data %s: %w", path, err)
	}
	data, err := ParseMapNodeData(raw)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// ParseMapNodeData parses map node YAML bytes, accepting both the
// routed map format ({name: {position: [x,y], next: [...]}}) and the
// legacy format ({name: [x, y]}).
func ParseMapNodeData(raw []byte) (*MapNodeData, error) {
	var generic map[string]yaml.Node
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("combat: parse map data: %w", err)
	}

	nodes := map[string]NodePosition{}
	for name, node := range generic {
		switch node.Kind {
		case yaml.MappingNode:
			var r rawNodeYAML
			if err := node.Decode(&r); err != nil {
				log.Warn("combat: skipping unparsable map node", log.F("node", name))
				continue
			}
			if len(r.Position) < 2 {
				log.Warn("combat: skipping map node with bad position", log.F("node", name))
				continue
			}
			nodes[name] = NodePosition{
				Name:      name,
				X:         r.Position[0] / sourceWidth,
				Y:         r.Position[1] / sourceHeight,
				NextNodes: r.Next,
			}
		case yaml.SequenceNode:
			var xy []float64
			if err := node.Decode(&xy); err != nil || len(xy) < 2 {
				log.Warn("combat: skipping unparsable map node", log.F("node", name))
				continue
			}
			nodes[name] = NodePosition{Name: name, X: xy[0] / sourceWidth, Y: xy[1] / sourceHeight}
		default:
			log.Warn("combat: skipping unparsable map node", log.F("node", name))
		}
	}

	log.Debug("combat: loaded map nodes", log.F("count", len(nodes)))
	return &MapNodeData{nodes: nodes}, nil
}

func euclidean(x1, y1, x2, y2 float64) float64 {
	dx, dy := x1-x2, y1-y2
	return math.Sqrt(dx*dx + dy*dy)
}

// NodeTracker tracks the fleet icon's on-screen position and maps it to
// the nearest map node.
type NodeTracker struct {
	mapData           *MapNodeData
	shipPosition      *vision.RelCoord
	lastShipPosition  *vision.RelCoord
	currentNode       string
}

// NewNodeTracker constructs a tracker starting at the map's "0" node.
func NewNodeTracker(mapData *MapNodeData) *NodeTracker {
	return &NodeTracker{mapData: mapData, currentNode: "0"}
}

// CurrentNode returns the tracker's current node identifier.
func (t *NodeTracker) CurrentNode() string { return t.currentNode }

// ShipPosition returns the last detected fleet icon position, if any.
func (t *NodeTracker) ShipPosition() (vision.RelCoord, bool) {
	if t.shipPosition == nil {
		return vision.RelCoord{}, false
	}
	return *t.shipPosition, true
}

// Reset clears tracking state back to the "0" node.
func (t *NodeTracker) Reset() {
	t.shipPosition = nil
	t.lastShipPosition = nil
	t.currentNode = "0"
}

// UpdateShipPosition template-matches the fleet icon against the two
// known icon variants (confidence >= 0.7) and records its position.
func (t *NodeTracker) UpdateShipPosition(screen image.Image, shipIconTemplates []vision.Template) (vision.RelCoord, bool) {
	result, found := vision.FindAny(screen, shipIconTemplates, vision.FullScreen(), 0.7)
	if !found {
		return vision.RelCoord{}, false
	}
	pos := vision.RelCoord{X: result.CenterX, Y: result.CenterY}
	t.shipPosition = &pos
	log.Debug("combat: ship position", log.F("x", pos.X), log.F("y", pos.Y))
	return pos, true
}

// UpdateNode recomputes the current node from the last detected ship
// position. If the position hasn't changed since the previous call, the
// current node is returned unchanged without recomputation.
func (t *NodeTracker) UpdateNode() string {
	if t.shipPosition == nil {
		return t.currentNode
	}
	if t.lastShipPosition != nil && *t.lastShipPosition == *t.shipPosition {
		return t.currentNode
	}
	t.lastShipPosition = t.shipPosition
	sx, sy := t.shipPosition.X, t.shipPosition.Y

	var candidates []string
	if current, ok := t.mapData.Get(t.currentNode); ok && len(current.NextNodes) > 0 {
		candidates = current.NextNodes
	} else {
		candidates = t.mapData.NodeNames()
	}

	best := t.currentNode
	bestDist := math.Inf(1)
	for _, name := range candidates {
		node, ok := t.mapData.Get(name)
		if !ok {
			continue
		}
		d := euclidean(sx, sy, node.X, node.Y)
		if d < bestDist {
			bestDist = d
			best = name
		}
	}

	if best != t.currentNode {
		log.Info("combat: node updated", log.F("from", t.currentNode), log.F("to", best))
		t.currentNode = best
	}
	return t.currentNode
}

// Track updates the ship position then the node in one call, the
// convenience entry point used as the recognizer's poll action.
func (t *NodeTracker) Track(screen image.Image, shipIconTemplates []vision.Template) string {
	t.UpdateShipPosition(screen, shipIconTemplates)
	return t.UpdateNode()
}
