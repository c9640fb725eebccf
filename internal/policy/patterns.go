package policy

import (
	"strings"

	"github.com/gobwas/glob"
)

// PatternSet matches a normalized path against a mixed list of plain
// substrings and glob patterns, used for the Mutation Engine's
// server-resync detection. Policy override keys do not go through it:
// per_path_overrides keys are matched as path prefixes and
// per_extension_overrides keys as exact extensions. A
// pattern containing any of `*?[]` is compiled with gobwas/glob;
// everything else is matched with a plain substring test, kept
// deliberately simple and exposed for tuning rather than hard-coded.
type PatternSet struct {
	substrings []string
	globs      []glob.Glob
}

// NewPatternSet compiles patterns into a PatternSet. A malformed glob
// pattern falls back to substring matching on its literal text rather
// than failing construction.
func NewPatternSet(patterns []string) PatternSet {
	var ps PatternSet
	for _, p := range patterns {
		if hasGlobMeta(p) {
			if g, err := glob.Compile(p); err == nil {
				ps.globs = append(ps.globs, g)
				continue
			}
		}
		ps.substrings = append(ps.substrings, p)
	}
	return ps
}

// Matches reports whether path matches any configured pattern.
func (ps PatternSet) Matches(path string) bool {
	for _, s := range ps.substrings {
		if s != "" && strings.Contains(path, s) {
			return true
		}
	}
	for _, g := range ps.globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

func hasGlobMeta(p string) bool {
	return strings.ContainsAny(p, "*?[]")
}
