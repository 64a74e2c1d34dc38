// Package version provides the build version of the tool.
package version

import "fmt"

// Build information, set at build time with -ldflags.
var (
	major = "0"
	minor = "1"
	build = "dev"
)

// Info describes the running build.
type Info struct {
	Major string
	Minor string
	Build string
}

// Current returns the build information.
func Current() Info {
	return Info{
		Major: major,
		Minor: minor,
		Build: build,
	}
}

func (v Info) String() string {
	return fmt.Sprintf("%s.%s-%s", v.Major, v.Minor, v.Build)
}
