package repos

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitshelf/internal/gitrepo"
)

const (
	showUseConstant                    = "show NAME"
	showShortDescription               = "Describe one detected repository"
	showLongDescription                = "show resolves NAME against the repositories root and prints its location, HEAD, description and origin remote."
	repositoryNotFoundErrorTemplate    = "repository %q not found under %s"
	repositoryLookupErrorTemplate      = "unable to resolve repository %q: %w"
	repositoryInspectionErrorTemplate  = "unable to inspect repository %q: %w"
	showFieldTemplateConstant          = "%-12s%s\n"
	showNameLabelConstant              = "name:"
	showPathLabelConstant              = "path:"
	showNamespaceLabelConstant         = "namespace:"
	showBareLabelConstant              = "bare:"
	showHeadLabelConstant              = "head:"
	showDescriptionLabelConstant       = "description:"
	showOriginLabelConstant            = "origin:"
	showOriginWithSlugTemplateConstant = "%s (%s)"
	showUnbornHeadConstant             = "(unborn)"
	showNoneValueConstant              = "-"
	showBareTrueConstant               = "yes"
	showBareFalseConstant              = "no"
	showRemoteURLUnparsedMessage       = "origin remote url not recognized"
	logFieldRepositoryNameConstant     = "repository_name"
)

func newShowCommand(resolver *collectionResolver) *cobra.Command {
	return &cobra.Command{
		Use:   showUseConstant,
		Short: showShortDescription,
		Long:  showLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			collection, resolveError := resolver.resolve(command)
			if resolveError != nil {
				return resolveError
			}

			repositoryName := arguments[0]
			repository, found, lookupError := collection.Get(repositoryName)
			if lookupError != nil {
				return fmt.Errorf(repositoryLookupErrorTemplate, repositoryName, lookupError)
			}
			if !found {
				return fmt.Errorf(repositoryNotFoundErrorTemplate, repositoryName, collection.Root())
			}

			return writeRepositorySummary(command.OutOrStdout(), repositoryName, repository, resolveLogger(resolver.loggerProvider))
		},
	}
}

func writeRepositorySummary(output io.Writer, repositoryName string, repository *gitrepo.Repository, logger *zap.Logger) error {
	headTarget, headError := describeHead(repository)
	if headError != nil {
		return fmt.Errorf(repositoryInspectionErrorTemplate, repositoryName, headError)
	}

	description, descriptionError := repository.Description()
	if descriptionError != nil {
		return fmt.Errorf(repositoryInspectionErrorTemplate, repositoryName, descriptionError)
	}

	origin, originError := describeOrigin(repository, logger.With(zap.String(logFieldRepositoryNameConstant, repositoryName)))
	if originError != nil {
		return fmt.Errorf(repositoryInspectionErrorTemplate, repositoryName, originError)
	}

	bare := showBareFalseConstant
	if repository.IsBare() {
		bare = showBareTrueConstant
	}

	fields := [][2]string{
		{showNameLabelConstant, repositoryName},
		{showPathLabelConstant, repository.Path()},
		{showNamespaceLabelConstant, valueOrNone(repository.Namespace())},
		{showBareLabelConstant, bare},
		{showHeadLabelConstant, headTarget},
		{showDescriptionLabelConstant, valueOrNone(description)},
		{showOriginLabelConstant, valueOrNone(origin)},
	}
	for _, field := range fields {
		if _, writeError := fmt.Fprintf(output, showFieldTemplateConstant, field[0], field[1]); writeError != nil {
			return writeError
		}
	}
	return nil
}

func describeHead(repository *gitrepo.Repository) (string, error) {
	headReference, headError := repository.HeadReference()
	if errors.Is(headError, plumbing.ErrReferenceNotFound) {
		return showUnbornHeadConstant, nil
	}
	if headError != nil {
		return "", headError
	}
	if headReference.Type() == plumbing.SymbolicReference {
		return headReference.Target().String(), nil
	}
	return headReference.Hash().String(), nil
}

func describeOrigin(repository *gitrepo.Repository, logger *zap.Logger) (string, error) {
	originURL, hasOrigin, originError := repository.OriginURL()
	if originError != nil || !hasOrigin {
		return "", originError
	}

	remoteURL, parseError := gitrepo.ParseRemoteURL(originURL)
	if parseError != nil {
		logger.Debug(showRemoteURLUnparsedMessage, zap.Error(parseError))
		return originURL, nil
	}
	return fmt.Sprintf(showOriginWithSlugTemplateConstant, originURL, remoteURL.Slug()), nil
}

func valueOrNone(value string) string {
	if len(value) == 0 {
		return showNoneValueConstant
	}
	return value
}
