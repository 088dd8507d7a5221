package discovery

import (
	"slices"
	"strings"
	"sync"
)

// suffixOrder holds the fixed set of directory suffixes in two orders: the
// adaptive trial order used for lookups and the longest-first order used to
// strip suffixes from listed directory names.
type suffixOrder struct {
	mutex        sync.Mutex
	trial        []string
	longestFirst []string
}

func newSuffixOrder(configured []string) *suffixOrder {
	unique := make([]string, 0, len(configured))
	for _, suffix := range configured {
		if slices.Contains(unique, suffix) {
			continue
		}
		unique = append(unique, suffix)
	}

	longestFirst := slices.Clone(unique)
	slices.SortStableFunc(longestFirst, func(left string, right string) int {
		return len(right) - len(left)
	})

	return &suffixOrder{trial: unique, longestFirst: longestFirst}
}

// snapshot returns a copy of the current trial order.
func (order *suffixOrder) snapshot() []string {
	order.mutex.Lock()
	defer order.mutex.Unlock()
	return slices.Clone(order.trial)
}

// promote moves suffix to the front of the trial order. Unknown suffixes are ignored.
func (order *suffixOrder) promote(suffix string) {
	order.mutex.Lock()
	defer order.mutex.Unlock()

	position := slices.Index(order.trial, suffix)
	if position <= 0 {
		return
	}
	copy(order.trial[1:position+1], order.trial[:position])
	order.trial[0] = suffix
}

// strip removes the longest configured non-empty suffix present on directoryName.
func (order *suffixOrder) strip(directoryName string) string {
	for _, suffix := range order.longestFirst {
		if len(suffix) == 0 {
			continue
		}
		if trimmed, found := strings.CutSuffix(directoryName, suffix); found {
			return trimmed
		}
	}
	return directoryName
}
