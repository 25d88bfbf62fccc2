// Package tags holds the fixed string keys shared across the component tree.
package tags

const (
	Root         = "root"
	Libraries    = "libraries"
	Tools        = "tools"
	Domain       = "domain"
	Mesh         = "mesh"
	Regions      = "regions"
	Geometry     = "geometry"
	Topology     = "topology"
	Coordinates  = "coordinates"
	Connectivity = "connectivity"
	Physics      = "physics"
	Solution     = "solution"
	Time         = "time"
)

var all = []string{
	Root, Libraries, Tools, Domain, Mesh, Regions, Geometry,
	Topology, Coordinates, Connectivity, Physics, Solution, Time,
}

// All returns every tag in declaration order.
func All() []string {
	out := make([]string, len(all))
	copy(out, all)
	return out
}

// Valid reports whether s is a known tag.
func Valid(s string) bool {
	for _, t := range all {
		if t == s {
			return true
		}
	}
	return false
}
