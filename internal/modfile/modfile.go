// Package modfile understands mod archive naming conventions: the disabled
// suffix, archive extensions, and the heuristic chain that reduces a raw
// filename to a catalog-searchable slug.
package modfile

import (
	"regexp"
	"strings"
)

// DisabledSuffix marks a mod file as disabled on disk. The flag itself is
// stored in the instance manifest; the suffix exists only at the filesystem
// boundary.
const DisabledSuffix = ".disabled"

// archiveExts are the extensions recognized as mod archives.
var archiveExts = []string{".jar", ".litemod", ".zip"}

// separatorCutset holds the characters treated as token separators in
// filenames.
const separatorCutset = " \t._+-"

var (
	// A trailing semver-like token, optionally preceded by a separator and
	// optionally followed by a build qualifier ("-0.5.8+mc1.20.1").
	versionPattern = regexp.MustCompile(`(^|[\s._+-])v?\d+(\.\d+){1,3}([+-][0-9a-z][0-9a-z.+_-]*)?$`)
	// A trailing v-token without dots ("-v2").
	vTokenPattern = regexp.MustCompile(`(^|[\s._+-])v\d+(\.\d+)*$`)
	// A trailing embedded game-version token ("-mc1.20.1").
	mcTokenPattern = regexp.MustCompile(`(^|[\s._+-])mc[\s._-]?\d+(\.\d+)*$`)
	// A trailing loader name from the closed set.
	loaderPattern = regexp.MustCompile(`(^|[\s._+-])(forge|fabric|quilt|neoforge|liteloader|rift)$`)
	// A trailing bare numeral; a separator is required so names like
	// "tweaks2" survive intact.
	numeralPattern = regexp.MustCompile(`(^|[\s._+-])\d+$`)
)

// Rule is one pure transform in the normalization chain.
type Rule struct {
	Name  string
	Apply func(string) string
}

// chain is applied in order, repeatedly, until a full pass changes nothing.
// Later rules assume earlier ones ran: the strip patterns only match
// lowercase input.
var chain = []Rule{
	{Name: "strip-extension", Apply: stripExtension},
	{Name: "lowercase", Apply: strings.ToLower},
	{Name: "strip-version", Apply: stripTrailing(versionPattern)},
	{Name: "strip-vtoken", Apply: stripTrailing(vTokenPattern)},
	{Name: "strip-mctoken", Apply: stripTrailing(mcTokenPattern)},
	{Name: "strip-loader", Apply: stripTrailing(loaderPattern)},
	{Name: "strip-numeral", Apply: stripTrailing(numeralPattern)},
	{Name: "trim-separators", Apply: trimSeparators},
}

// Rules returns the normalization chain in application order.
func Rules() []Rule {
	out := make([]Rule, len(chain))
	copy(out, chain)
	return out
}

// Normalize reduces a filename to a catalog-searchable slug. It returns ""
// when nothing meaningful remains; callers must treat that as ambiguous and
// skip catalog lookups rather than query with an empty key. Normalize is
// idempotent: running it on its own output returns the same slug.
func Normalize(filename string) string {
	s, _ := SplitDisabled(filename)
	for {
		prev := s
		for _, r := range chain {
			s = r.Apply(s)
		}
		if s == prev {
			return s
		}
	}
}

// SplitDisabled separates the disabled suffix from a filename.
func SplitDisabled(name string) (base string, disabled bool) {
	if strings.HasSuffix(strings.ToLower(name), DisabledSuffix) {
		return name[:len(name)-len(DisabledSuffix)], true
	}
	return name, false
}

// IsDisabledName reports whether the filename carries the disabled suffix.
func IsDisabledName(name string) bool {
	_, disabled := SplitDisabled(name)
	return disabled
}

// EnabledName returns the filename without the disabled suffix.
func EnabledName(name string) string {
	base, _ := SplitDisabled(name)
	return base
}

// DisabledName returns the filename with the disabled suffix applied.
func DisabledName(name string) string {
	base, _ := SplitDisabled(name)
	return base + DisabledSuffix
}

// IsModArchive reports whether the filename, in enabled or disabled form,
// has a recognized mod archive extension.
func IsModArchive(name string) bool {
	base := strings.ToLower(EnabledName(name))
	for _, ext := range archiveExts {
		if strings.HasSuffix(base, ext) {
			return true
		}
	}
	return false
}

func stripExtension(s string) string {
	lower := strings.ToLower(s)
	for _, ext := range archiveExts {
		if strings.HasSuffix(lower, ext) {
			return s[:len(s)-len(ext)]
		}
	}
	return s
}

func stripTrailing(re *regexp.Regexp) func(string) string {
	return func(s string) string {
		return re.ReplaceAllString(s, "")
	}
}

func trimSeparators(s string) string {
	return strings.Trim(s, separatorCutset)
}
