package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is an optional startup override loaded from a ".heistrc.yaml" file
// in the working directory or the user's home directory. Core behavior is
// fully functional without one; the profile only tunes ambient knobs that
// the spec leaves implementation-defined (max recursion depth, which values
// seed the falsey set, whether the driver traces calls).
type Profile struct {
	MaxRecursionDepth int      `yaml:"max_recursion_depth"`
	Trace             bool     `yaml:"trace"`
	FalseySeed        []string `yaml:"falsey_seed"`
}

// DefaultProfile returns the profile used when no ".heistrc.yaml" is found.
func DefaultProfile() Profile {
	return Profile{
		MaxRecursionDepth: DefaultMaxRecursionDepth,
		Trace:             false,
		FalseySeed:        []string{"#f"},
	}
}

// LoadProfile reads a YAML profile from path, falling back to defaults for
// any field the file does not set. A missing file is not an error.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return profile, nil
		}
		return profile, err
	}
	if err := yaml.Unmarshal(content, &profile); err != nil {
		return profile, err
	}
	if profile.MaxRecursionDepth <= 0 {
		profile.MaxRecursionDepth = DefaultMaxRecursionDepth
	}
	return profile, nil
}
