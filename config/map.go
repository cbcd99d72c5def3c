package config

import "github.com/autowsgr/helmsman/combat"

// LoadMap loads a map-node YAML file at path into a combat.MapNodeData,
// thin sugar over combat.LoadMapNodeData kept here so callers only import
// config for every YAML asset a plan needs.
func LoadMap(path string) (*combat.MapNodeData, bool, error) {
	return combat.LoadMapNodeData(path)
}
