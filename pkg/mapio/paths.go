package mapio

import "strings"

// ScenarioToMapPath derives a map file's path from a scenario file's path.
// Scenario files are conventionally named "<map path>.scen"; this strips
// that suffix. If scenarioPath does not end in ".scen" it is returned
// unchanged, since some scenario sets name the file after the map
// directly.
func ScenarioToMapPath(scenarioPath string) string {
	return strings.TrimSuffix(scenarioPath, ".scen")
}

// MapToFlatGraphPath returns the cache file path for a map's base-layer
// flat graph.
func MapToFlatGraphPath(mapPath string) string {
	return mapPath + ".flat_graph.nop"
}

// MapToHierarchicalGraphPath returns the cache file path for a map's
// hierarchical graph.
func MapToHierarchicalGraphPath(mapPath string) string {
	return mapPath + ".hierarchical_graph.nop"
}
