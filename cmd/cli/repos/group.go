package repos

import (
	"github.com/spf13/cobra"

	"github.com/temirov/gitshelf/internal/repos/container"
	flagutils "github.com/temirov/gitshelf/internal/utils/flags"
)

const (
	groupUseConstant                 = "repos"
	groupShortDescription            = "Inspect repositories detected under a root directory"
	groupLongDescription             = "repos groups subcommands that list and describe the repositories served from a root directory."
	rootFlagNameConstant             = "root"
	rootFlagUsageConstant            = "Directory whose subdirectories are detected as repositories."
	namespaceFlagNameConstant        = "namespace"
	namespaceFlagUsageConstant       = "Namespace attached to every repository handle."
	detectRemovalsFlagNameConstant   = "detect-removals"
	detectRemovalsFlagUsageConstant  = "Re-check cached repositories so removed ones disappear."
	exportOKPathFlagNameConstant     = "export-ok-path"
	exportOKPathFlagUsageConstant    = "Marker path, relative to a repository directory, required for it to be served; \".\" serves every directory."
	directorySuffixFlagNameConstant  = "directory-suffix"
	directorySuffixFlagUsageConstant = "Suffix tried when mapping a name to a directory; repeat for several, pass an empty value for the bare name."
)

// CommandGroupBuilder assembles the repos command group.
type CommandGroupBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() ToolsConfiguration
	FactoryBuilder        FactoryBuilder
}

type commandFlagValues struct {
	root              string
	namespace         string
	detectRemovals    bool
	exportOKPath      string
	directorySuffixes []string
}

// Build constructs the repos command hierarchy.
func (builder *CommandGroupBuilder) Build() *cobra.Command {
	command := &cobra.Command{
		Use:   groupUseConstant,
		Short: groupShortDescription,
		Long:  groupLongDescription,
	}

	defaults := DefaultToolsConfiguration()
	flagValues := &commandFlagValues{}
	persistentFlags := command.PersistentFlags()
	persistentFlags.StringVar(&flagValues.root, rootFlagNameConstant, "", rootFlagUsageConstant)
	persistentFlags.StringVar(&flagValues.namespace, namespaceFlagNameConstant, "", namespaceFlagUsageConstant)
	flagutils.AddToggleFlag(persistentFlags, &flagValues.detectRemovals, detectRemovalsFlagNameConstant, "", defaults.DetectRemovals, detectRemovalsFlagUsageConstant)
	persistentFlags.StringVar(&flagValues.exportOKPath, exportOKPathFlagNameConstant, "", exportOKPathFlagUsageConstant)
	persistentFlags.StringArrayVar(&flagValues.directorySuffixes, directorySuffixFlagNameConstant, nil, directorySuffixFlagUsageConstant)

	resolver := &collectionResolver{
		loggerProvider:        builder.LoggerProvider,
		configurationProvider: builder.ConfigurationProvider,
		factoryBuilder:        builder.FactoryBuilder,
		flagValues:            flagValues,
	}

	command.AddCommand(newListCommand(resolver), newCountCommand(resolver), newShowCommand(resolver))

	return command
}

type collectionResolver struct {
	loggerProvider        LoggerProvider
	configurationProvider func() ToolsConfiguration
	factoryBuilder        FactoryBuilder
	flagValues            *commandFlagValues
}

// resolve merges configuration and flags and builds the container for the resolved root.
func (resolver *collectionResolver) resolve(command *cobra.Command) (container.Collection, error) {
	configuration := DefaultToolsConfiguration()
	if resolver.configurationProvider != nil {
		configuration = resolver.configurationProvider()
	}
	configuration = resolver.applyFlags(command, configuration)

	logger := resolveLogger(resolver.loggerProvider)
	root, rootError := resolveRepositoriesRoot(configuration, logger)
	if rootError != nil {
		return nil, rootError
	}

	factoryBuilder := resolver.factoryBuilder
	if factoryBuilder == nil {
		factoryBuilder = container.NewFactory
	}
	return factoryBuilder(containerOptions(configuration, logger))(root), nil
}

func (resolver *collectionResolver) applyFlags(command *cobra.Command, configuration ToolsConfiguration) ToolsConfiguration {
	if command == nil || resolver.flagValues == nil {
		return configuration
	}
	flagSet := command.Flags()
	if flagSet.Changed(rootFlagNameConstant) {
		configuration.Root = resolver.flagValues.root
	}
	if flagSet.Changed(namespaceFlagNameConstant) {
		configuration.Namespace = resolver.flagValues.namespace
	}
	if flagSet.Changed(detectRemovalsFlagNameConstant) {
		configuration.DetectRemovals = resolver.flagValues.detectRemovals
	}
	if flagSet.Changed(exportOKPathFlagNameConstant) {
		configuration.ExportOKPath = resolver.flagValues.exportOKPath
	}
	if flagSet.Changed(directorySuffixFlagNameConstant) {
		configuration.DirectorySuffixes = append(DirectorySuffixList{}, resolver.flagValues.directorySuffixes...)
	}
	return configuration
}
