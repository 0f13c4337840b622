package buildconf

import (
	"slices"
	"strings"

	"github.com/cruciblehq/cruxci/internal/fault"
)

// Build configuration passed to the generator as CMAKE_BUILD_TYPE.
type BuildType string

const (
	Debug          BuildType = "Debug"
	Release        BuildType = "Release"
	RelWithDebInfo BuildType = "RelWithDebInfo"
)

// Every build type, in presentation order.
var BuildTypes = []BuildType{Debug, Release, RelWithDebInfo}

// Parses a build type name. Matching is case-insensitive.
func ParseBuildType(s string) (BuildType, error) {
	for _, b := range BuildTypes {
		if strings.EqualFold(s, string(b)) {
			return b, nil
		}
	}
	return "", fault.Invalid("build type", "unknown build type %q, expected one of Debug, Release, RelWithDebInfo", s)
}

// Returns true if b is one of [BuildTypes].
func (b BuildType) Valid() bool {
	return slices.Contains(BuildTypes, b)
}

// Implements [encoding.TextUnmarshaler] through [ParseBuildType].
func (b *BuildType) UnmarshalText(text []byte) error {
	parsed, err := ParseBuildType(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
