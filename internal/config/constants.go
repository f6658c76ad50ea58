// Package config holds process-wide tunables for the core evaluator:
// reserved-symbol prefixes, default recursion limits, and source file
// conventions for the driver/CLI layer.
package config

// Version is the current core version.
var Version = "0.1.0"

const SourceFileExt = ".scm"

// SourceFileExtensions are the recognized source file extensions for the driver.
var SourceFileExtensions = []string{".scm", ".ss", ".heist"}

// TrimSourceExt removes any recognized source extension from a filename.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if path ends with any recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// ReservedPrefix marks every symbol the core itself introduces (gensyms,
// hygienic renames, CPS continuation parameters). User redefinition of a
// symbol starting with this prefix is undefined behavior (spec §4.1).
const ReservedPrefix = "heist:core:"

// ContinuationPrefix marks the synthetic continuation parameter a lambda
// gains inside a CPS block (spec §4.3, §6 Sentinels).
const ContinuationPrefix = ReservedPrefix + "cont:"

// MacroHygienePrefix marks a pattern identifier renamed for hygiene at
// syntax-rules analysis time (spec §4.2 point 2).
const MacroHygienePrefix = ReservedPrefix + "hyg:"

// DefaultMaxRecursionDepth bounds non-tail compound-procedure recursion
// (spec §4.4 point 3, §7 Recursion-depth-exceeded).
const DefaultMaxRecursionDepth = 1 << 20

// IsTestMode indicates the process is running under the test harness.
var IsTestMode = false
