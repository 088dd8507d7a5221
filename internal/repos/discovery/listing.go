package discovery

import (
	"fmt"
	"iter"
)

const (
	rootListingErrorTemplateConstant = "unable to list repositories in %s: %w"
	rootDirectoryPathConstant        = ""
)

// Names yields the name of every repository currently present below the root,
// in filesystem order. Each call rescans the root. A directory whose name
// collides with an already yielded name after suffix stripping is skipped, as
// is any directory whose stripped name Lookup would reject. Iteration stops at
// the first filesystem error, which is yielded with an empty name.
func (directory *Directory[H]) Names() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		entries, listError := directory.fileSystem.ReadDir(rootDirectoryPathConstant)
		if listError != nil {
			yield("", fmt.Errorf(rootListingErrorTemplateConstant, directory.root, listError))
			return
		}

		yielded := make(map[string]struct{}, len(entries))
		for _, entry := range entries {
			if entry.Mode().IsRegular() {
				continue
			}

			directoryName := entry.Name()
			repositoryName := directory.suffixes.strip(directoryName)
			if !IsValidName(repositoryName) {
				continue
			}
			if _, alreadyYielded := yielded[repositoryName]; alreadyYielded {
				continue
			}

			listed, probeError := directory.isListed(directoryName)
			if probeError != nil {
				yield("", probeError)
				return
			}
			if !listed {
				continue
			}

			yielded[repositoryName] = struct{}{}
			if !yield(repositoryName, nil) {
				return
			}
		}
	}
}

// Len counts the repositories Names would yield.
func (directory *Directory[H]) Len() (int, error) {
	count := 0
	for _, iterationError := range directory.Names() {
		if iterationError != nil {
			return 0, iterationError
		}
		count++
	}
	return count, nil
}

func (directory *Directory[H]) isListed(directoryName string) (bool, error) {
	if !directory.removalPolicy.DetectsRemovals() && directory.isCached(directoryName) {
		return true, nil
	}
	return directory.isRepositoryDirectory(directoryName)
}
