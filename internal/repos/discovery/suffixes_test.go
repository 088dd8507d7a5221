package discovery

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuffixOrderDeduplicatesConfiguredSuffixes(testInstance *testing.T) {
	order := newSuffixOrder([]string{".git", "", ".git", ".repo.git"})
	require.Equal(testInstance, []string{".git", "", ".repo.git"}, order.snapshot())
	require.Equal(testInstance, []string{".repo.git", ".git", ""}, order.longestFirst)
}

func TestSuffixOrderPromote(testInstance *testing.T) {
	testCases := []struct {
		name          string
		configured    []string
		promoted      string
		expectedOrder []string
	}{
		{name: "last_to_front", configured: []string{"", ".git", ".bare"}, promoted: ".bare", expectedOrder: []string{".bare", "", ".git"}},
		{name: "middle_to_front", configured: []string{"", ".git", ".bare"}, promoted: ".git", expectedOrder: []string{".git", "", ".bare"}},
		{name: "already_front", configured: []string{"", ".git"}, promoted: "", expectedOrder: []string{"", ".git"}},
		{name: "unknown_ignored", configured: []string{"", ".git"}, promoted: ".hg", expectedOrder: []string{"", ".git"}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			order := newSuffixOrder(testCase.configured)
			order.promote(testCase.promoted)
			require.Equal(testInstance, testCase.expectedOrder, order.snapshot())
			require.ElementsMatch(testInstance, testCase.configured, order.snapshot())
		})
	}
}

func TestSuffixOrderStripUsesLongestSuffix(testInstance *testing.T) {
	testCases := []struct {
		name          string
		configured    []string
		directoryName string
		expected      string
	}{
		{name: "git_suffix", configured: []string{"", ".git"}, directoryName: "foo.git", expected: "foo"},
		{name: "no_suffix", configured: []string{"", ".git"}, directoryName: "foo", expected: "foo"},
		{name: "empty_only", configured: []string{""}, directoryName: "foo.git", expected: "foo.git"},
		{name: "longest_first", configured: []string{".git", ".repo.git"}, directoryName: "foo.repo.git", expected: "foo"},
		{name: "promotion_does_not_affect_stripping", configured: []string{"", ".git", ".repo.git"}, directoryName: "foo.repo.git", expected: "foo"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			order := newSuffixOrder(testCase.configured)
			order.promote(".git")
			require.Equal(testInstance, testCase.expected, order.strip(testCase.directoryName))
		})
	}
}
