package pad

import (
	"path/filepath"
	"sort"

	opt "github.com/repeale/fp-go/option"
)

var DISCOVERY_PATTERNS = []string{
	"/dev/input/by-id/*-event-joystick",
	"/dev/input/by-path/*-event-joystick",
}

// Discover returns the first joystick event device udev knows about.
func Discover() opt.Option[string] {
	return discoverIn(DISCOVERY_PATTERNS)
}

func discoverIn(patterns []string) opt.Option[string] {
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil || len(matches) == 0 {
			continue
		}

		sort.Strings(matches)
		return opt.Some(matches[0])
	}

	return opt.None[string]()
}
