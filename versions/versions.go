// Package versions orders project version strings the way the catalog
// expects them: forgiving parsing that never fails, and two deliberately
// different ranking rules (Compare vs. Latest).
package versions

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	semverPattern = regexp.MustCompile(`^(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:[-.]?(alpha|beta|rc|preview|dev|snapshot)(?:[-.]?(\d+))?)?$`)
	digitPattern  = regexp.MustCompile(`\d+`)

	// Precedence for recognized prerelease tags, lowest first.
	prereleaseOrder = []string{"dev", "snapshot", "alpha", "beta", "rc", "preview"}
)

// Key is the orderable form of a version string.
type Key struct {
	Major         int
	Minor         int
	Patch         int
	Prerelease    string
	PrereleaseNum int
}

// Parse turns a version string into a Key. It never fails: moving
// targets like "latest" map to a sentinel maximum, unrecognized shapes
// degrade to positional digit extraction tagged "unknown", and a string
// with no digits at all becomes the zero "unknown" key.
func Parse(version string) Key {
	if len(version) == 0 {
		return Key{}
	}
	clean := strings.ToLower(strings.TrimSpace(version))
	clean = strings.TrimPrefix(clean, "v")
	switch clean {
	case "latest", "main", "master", "head":
		return Key{Major: 999, Minor: 999, Patch: 999}
	}
	match := semverPattern.FindStringSubmatch(clean)
	if match == nil {
		key := Key{Prerelease: "unknown"}
		numbers := digitPattern.FindAllString(clean, 3)
		if len(numbers) > 0 {
			key.Major = atoi(numbers[0])
		}
		if len(numbers) > 1 {
			key.Minor = atoi(numbers[1])
		}
		if len(numbers) > 2 {
			key.Patch = atoi(numbers[2])
		}
		return key
	}
	return Key{
		Major:         atoi(match[1]),
		Minor:         atoi(match[2]),
		Patch:         atoi(match[3]),
		Prerelease:    match[4],
		PrereleaseNum: atoi(match[5]),
	}
}

func atoi(text string) int {
	value, err := strconv.Atoi(text)
	if err != nil {
		return 0
	}
	return value
}

func precedence(tag string) (int, bool) {
	for at, candidate := range prereleaseOrder {
		if tag == candidate {
			return at, true
		}
	}
	return 0, false
}

// Compare ranks two version strings: -1 when left is older, +1 when left
// is newer, 0 when they rank the same. With equal bases a release always
// outranks a prerelease, and recognized prerelease tags rank by fixed
// precedence before their numbers.
func Compare(left, right string) int {
	a, b := Parse(left), Parse(right)

	if delta := rank(a.Major, b.Major); delta != 0 {
		return delta
	}
	if delta := rank(a.Minor, b.Minor); delta != 0 {
		return delta
	}
	if delta := rank(a.Patch, b.Patch); delta != 0 {
		return delta
	}

	if len(a.Prerelease) == 0 && len(b.Prerelease) == 0 {
		return 0
	}
	if len(a.Prerelease) == 0 {
		return 1
	}
	if len(b.Prerelease) == 0 {
		return -1
	}

	first, knownFirst := precedence(a.Prerelease)
	second, knownSecond := precedence(b.Prerelease)
	if knownFirst && knownSecond {
		if delta := rank(first, second); delta != 0 {
			return delta
		}
		return rank(a.PrereleaseNum, b.PrereleaseNum)
	}

	// Unrecognized prerelease tags fall back to lexical comparison.
	if a.Prerelease < b.Prerelease {
		return -1
	}
	if a.Prerelease > b.Prerelease {
		return 1
	}
	return 0
}

func rank(left, right int) int {
	if left < right {
		return -1
	}
	if left > right {
		return 1
	}
	return 0
}

// IsLatest reports whether no member of the universe compares greater
// than the candidate. An empty universe means the candidate is latest.
func IsLatest(candidate string, universe []string) bool {
	for _, other := range universe {
		if Compare(other, candidate) > 0 {
			return false
		}
	}
	return true
}

// Latest selects the maximum of the universe by raw tuple ordering of
// parsed keys, not by Compare. The rules disagree on purpose: under raw
// ordering a higher base always wins, so "3.0.0-alpha" outranks "2.1.0"
// even though that entry carries a prerelease tag.
func Latest(universe []string) (string, bool) {
	if len(universe) == 0 {
		return "", false
	}
	best := universe[0]
	for _, candidate := range universe[1:] {
		if rawLess(Parse(best), Parse(candidate)) {
			best = candidate
		}
	}
	return best, true
}

func rawLess(a, b Key) bool {
	if a.Major != b.Major {
		return a.Major < b.Major
	}
	if a.Minor != b.Minor {
		return a.Minor < b.Minor
	}
	if a.Patch != b.Patch {
		return a.Patch < b.Patch
	}
	if a.Prerelease != b.Prerelease {
		return a.Prerelease < b.Prerelease
	}
	return a.PrereleaseNum < b.PrereleaseNum
}
