// Package channel models release stability channels. A channel decides which
// catalog version types qualify for update detection: an instance on
// "release" never sees beta or alpha builds, "beta" sees release and beta,
// "alpha" sees everything.
package channel

import "fmt"

// Channel is a stability level matching the catalog's version types.
type Channel string

const (
	Release Channel = "release"
	Beta    Channel = "beta"
	Alpha   Channel = "alpha"
)

// rank orders channels from most to least stable. Lower is more stable.
var rank = map[Channel]int{
	Release: 0,
	Beta:    1,
	Alpha:   2,
}

// Parse validates a channel name.
func Parse(s string) (Channel, error) {
	c := Channel(s)
	if _, ok := rank[c]; !ok {
		return "", fmt.Errorf("unknown channel %q (valid: release, beta, alpha)", s)
	}
	return c, nil
}

// IsValid reports whether s names a known channel.
func IsValid(s string) bool {
	_, ok := rank[Channel(s)]
	return ok
}

// Allows reports whether a catalog version of the given type qualifies on
// this channel. Unknown version types are treated as least stable, so they
// only qualify on alpha.
func (c Channel) Allows(versionType string) bool {
	mine, ok := rank[c]
	if !ok {
		mine = rank[Release]
	}
	theirs, ok := rank[Channel(versionType)]
	if !ok {
		theirs = rank[Alpha]
	}
	return theirs <= mine
}

func (c Channel) String() string {
	return string(c)
}
