package discovery

import (
	"os"
	"strings"
)

const (
	currentDirectoryNameConstant = "."
	parentDirectoryNameConstant  = ".."
	hiddenNamePrefixConstant     = "."
	nullCharacterConstant        = "\x00"
	forwardSlashConstant         = "/"
)

// IsValidName reports whether name may ever resolve to a repository. Empty
// names, dot names, hidden names and names carrying a null character or a
// path separator are rejected.
func IsValidName(name string) bool {
	if len(name) == 0 {
		return false
	}
	if name == currentDirectoryNameConstant || name == parentDirectoryNameConstant {
		return false
	}
	if strings.HasPrefix(name, hiddenNamePrefixConstant) {
		return false
	}
	if strings.Contains(name, nullCharacterConstant) || strings.Contains(name, forwardSlashConstant) {
		return false
	}
	return !strings.ContainsRune(name, os.PathSeparator)
}
