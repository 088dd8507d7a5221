package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant       = "~"
	forwardSlashSeparator     = "/"
	homeDirectoryPlaceholder  = "$HOME"
	placeholderSeparatorCount = 1
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander converts user home shortcuts to absolute paths.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewHomeExpander constructs a HomeExpander using the operating system lookup.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectoryProvider: provider}
}

// Expand resolves a leading "~" or "$HOME" component to the user's home directory.
// Paths such as "~other/x" are returned unchanged.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil {
		return candidatePath
	}

	remainder, hasHomePrefix := cutHomePrefix(candidatePath)
	if !hasHomePrefix {
		return candidatePath
	}

	resolvedHomeDirectory := expander.resolveHomeDirectory()
	if len(resolvedHomeDirectory) == 0 {
		return candidatePath
	}
	if len(remainder) == 0 {
		return resolvedHomeDirectory
	}
	return filepath.Join(resolvedHomeDirectory, remainder)
}

func cutHomePrefix(candidatePath string) (string, bool) {
	for _, prefix := range []string{tildeSymbolConstant, homeDirectoryPlaceholder} {
		remainder, found := strings.CutPrefix(candidatePath, prefix)
		if !found {
			continue
		}
		if len(remainder) == 0 {
			return "", true
		}
		if strings.HasPrefix(remainder, forwardSlashSeparator) || strings.HasPrefix(remainder, string(os.PathSeparator)) {
			return remainder[placeholderSeparatorCount:], true
		}
	}
	return "", false
}

func (expander *HomeExpander) resolveHomeDirectory() string {
	expander.initializationGuard.Do(func() {
		expander.homeDirectory, expander.homeDirectoryError = expander.homeDirectoryProvider()
	})
	if expander.homeDirectoryError != nil {
		return ""
	}
	return expander.homeDirectory
}
