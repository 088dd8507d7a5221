package repos

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitshelf/internal/repos/container"
	pathutils "github.com/temirov/gitshelf/internal/utils/path"
)

const (
	missingRepositoryRootErrorMessageConstant = "no repositories root configured; specify --root or set " + RootEnvironmentVariable
	legacyRootDeprecationMessageConstant      = LegacyRootEnvironmentVariable + " is deprecated; use " + RootEnvironmentVariable + " instead"
	logFieldRepositoriesRootConstant          = "repositories_root"
)

var repositoryHomeDirectoryExpander = pathutils.NewHomeExpander()

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// FactoryBuilder creates a container factory bound to the resolved options.
type FactoryBuilder func(options container.Options) container.Factory

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// resolveRepositoriesRoot prefers the configured root and falls back to the deprecated variable.
func resolveRepositoriesRoot(configuration ToolsConfiguration, logger *zap.Logger) (string, error) {
	root := strings.TrimSpace(configuration.Root)
	if len(root) == 0 {
		root = strings.TrimSpace(configuration.LegacyRoot)
		if len(root) > 0 {
			logger.Warn(legacyRootDeprecationMessageConstant, zap.String(logFieldRepositoriesRootConstant, root))
		}
	}
	if len(root) == 0 {
		return "", errors.New(missingRepositoryRootErrorMessageConstant)
	}
	return repositoryHomeDirectoryExpander.Expand(root), nil
}

func containerOptions(configuration ToolsConfiguration, logger *zap.Logger) container.Options {
	var directorySuffixes []string
	if configuration.DirectorySuffixes != nil {
		directorySuffixes = append([]string{}, configuration.DirectorySuffixes...)
	}
	return container.Options{
		Namespace:         strings.TrimSpace(configuration.Namespace),
		DetectRemovals:    configuration.DetectRemovals,
		ExportOKPath:      strings.TrimSpace(configuration.ExportOKPath),
		DirectorySuffixes: directorySuffixes,
		Logger:            logger,
	}
}
