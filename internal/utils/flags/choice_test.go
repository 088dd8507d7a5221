package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatChoiceUsage(testInstance *testing.T) {
	testCases := []struct {
		name           string
		defaultChoice  string
		choices        []string
		description    string
		expectedOutput string
	}{
		{
			name:           "DefaultFirstChoice",
			defaultChoice:  "structured",
			choices:        []string{"structured", "console"},
			description:    "Override the configured log format.",
			expectedOutput: "`<STRUCTURED|console>` Override the configured log format.",
		},
		{
			name:           "DefaultInTheMiddle",
			defaultChoice:  "info",
			choices:        []string{"debug", "info", "warn", "error"},
			description:    "Override the configured log level.",
			expectedOutput: "`<debug|INFO|warn|error>` Override the configured log level.",
		},
		{
			name:           "EmptyDescription",
			defaultChoice:  "console",
			choices:        []string{"structured", "console"},
			description:    "",
			expectedOutput: "`<structured|CONSOLE>`",
		},
		{
			name:           "DuplicateAndBlankChoicesIgnored",
			defaultChoice:  "warn",
			choices:        []string{"warn", "WARN", " ", "error"},
			description:    "Select a level.",
			expectedOutput: "`<WARN|error>` Select a level.",
		},
		{
			name:           "NoDefault",
			defaultChoice:  "",
			choices:        []string{" debug ", " info "},
			description:    "Pick a level.",
			expectedOutput: "`<debug|info>` Pick a level.",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedOutput, FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description))
		})
	}
}
