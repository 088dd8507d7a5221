package repos

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	listUseConstant             = "list"
	listShortDescription        = "Print the name of every detected repository"
	listLongDescription         = "list enumerates the subdirectories of the repositories root that pass the marker check and prints one repository name per line."
	listOutputTemplateConstant  = "%s\n"
	countUseConstant            = "count"
	countShortDescription       = "Print the number of detected repositories"
	countLongDescription        = "count enumerates the repositories root and prints how many repositories would be served."
	countOutputTemplateConstant = "%d\n"
	enumerationErrorTemplate    = "unable to enumerate repositories under %s: %w"
)

func newListCommand(resolver *collectionResolver) *cobra.Command {
	return &cobra.Command{
		Use:   listUseConstant,
		Short: listShortDescription,
		Long:  listLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			collection, resolveError := resolver.resolve(command)
			if resolveError != nil {
				return resolveError
			}

			for name, enumerationError := range collection.Names() {
				if enumerationError != nil {
					return fmt.Errorf(enumerationErrorTemplate, collection.Root(), enumerationError)
				}
				if _, writeError := fmt.Fprintf(command.OutOrStdout(), listOutputTemplateConstant, name); writeError != nil {
					return writeError
				}
			}
			return nil
		},
	}
}

func newCountCommand(resolver *collectionResolver) *cobra.Command {
	return &cobra.Command{
		Use:   countUseConstant,
		Short: countShortDescription,
		Long:  countLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			collection, resolveError := resolver.resolve(command)
			if resolveError != nil {
				return resolveError
			}

			repositoryCount, countError := collection.Len()
			if countError != nil {
				return fmt.Errorf(enumerationErrorTemplate, collection.Root(), countError)
			}
			_, writeError := fmt.Fprintf(command.OutOrStdout(), countOutputTemplateConstant, repositoryCount)
			return writeError
		},
	}
}
