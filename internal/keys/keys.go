package keys

import "strings"

// MatchKey produces the canonical key for a pair of usernames. Behavior:
// trims both names, lower-cases them, orders the pair alphabetically and
// joins with a pipe. Both players of a battle map to the same key no matter
// which side asks.
func MatchKey(a, b string) string {
	x := strings.ToLower(strings.TrimSpace(a))
	y := strings.ToLower(strings.TrimSpace(b))
	if x > y {
		x, y = y, x
	}
	return x + "|" + y
}

// Normalize lower-cases and trims a username so lookups are
// case-insensitive everywhere.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
