// Package modver parses the loosely-formatted version numbers mod authors
// publish and compares them. Catalog version listings are ordered
// newest-first by contract; the comparison here is the safeguard that keeps
// a violated contract from silently regressing a mod to an older build.
package modver

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Mod version numbers rarely follow strict semver ("1.20.1-3.2.0", "v0.5.8",
// "fabric-2.5.16"). Parse pulls the last semver-looking token out instead of
// rejecting the whole string.
var versionToken = regexp.MustCompile(`v?\d+(\.\d+){1,3}([-+][0-9A-Za-z][0-9A-Za-z.+-]*)?`)

// Parse extracts a comparable version from a published version number.
// It returns nil when nothing version-like can be found.
func Parse(s string) *semver.Version {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if v, err := semver.NewVersion(strings.TrimPrefix(s, "v")); err == nil {
		return v
	}

	tokens := versionToken.FindAllString(s, -1)
	for i := len(tokens) - 1; i >= 0; i-- {
		if v, err := semver.NewVersion(strings.TrimPrefix(tokens[i], "v")); err == nil {
			return v
		}
	}
	return nil
}

// Regression reports whether moving from current to candidate would go
// backwards. It returns false when either side does not parse: with no
// comparable versions the caller falls back to trusting the catalog's
// ordering contract.
func Regression(current, candidate string) bool {
	cur := Parse(current)
	cand := Parse(candidate)
	if cur == nil || cand == nil {
		return false
	}
	return cand.LessThan(cur)
}
