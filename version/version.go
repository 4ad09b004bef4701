// Package version holds build information.
package version

var (
	Version = "0.1.0"

	// git hash should be filled by:
	// 	go build -ldflags="-X github.com/cayleygraph/rdfstore/version.GitHash=xxxx"

	GitHash   = "dev snapshot"
	BuildDate string
)

// String returns a single line description of the build.
func String() string {
	s := Version + " (" + GitHash
	if BuildDate != "" {
		s += ", built " + BuildDate
	}
	return s + ")"
}
