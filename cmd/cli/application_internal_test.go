package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"

	"github.com/temirov/gitshelf/cmd/cli/repos"
	"github.com/temirov/gitshelf/internal/utils"
)

const (
	testMarkerFileNameConstant  = "git-daemon-export-ok"
	testFilePermissionsConstant = 0o644
	testRootEnvironmentName     = repos.RootEnvironmentVariable
	testLegacyDeprecationText   = "GITSHELF_REPOS is deprecated"
)

var testManagedEnvironmentNames = []string{
	testRootEnvironmentName,
	repos.LegacyRootEnvironmentVariable,
	repos.NamespaceEnvironmentVariable,
	repos.DetectRemovalsEnvironmentVariable,
	repos.ExportOKPathEnvironmentVariable,
	repos.DirectorySuffixesEnvironmentVariable,
	"GITSHELF_COMMON_LOG_LEVEL",
	"GITSHELF_COMMON_LOG_FORMAT",
}

type applicationHarness struct {
	application  *Application
	outputBuffer *bytes.Buffer
	logBuffer    *bytes.Buffer
}

func newApplicationHarness(testInstance *testing.T, environment map[string]string) applicationHarness {
	testInstance.Helper()

	homeDirectory := testInstance.TempDir()
	testInstance.Setenv("HOME", homeDirectory)
	testInstance.Setenv("XDG_CONFIG_HOME", filepath.Join(homeDirectory, "config"))
	for _, environmentName := range testManagedEnvironmentNames {
		testInstance.Setenv(environmentName, "")
		require.NoError(testInstance, os.Unsetenv(environmentName))
	}
	for environmentName, environmentValue := range environment {
		testInstance.Setenv(environmentName, environmentValue)
	}

	harness := applicationHarness{
		application:  NewApplication(),
		outputBuffer: &bytes.Buffer{},
		logBuffer:    &bytes.Buffer{},
	}
	harness.application.loggerFactory = utils.NewLoggerFactoryWithWriter(harness.logBuffer)
	harness.application.rootCommand.SetOut(harness.outputBuffer)
	harness.application.rootCommand.SetErr(harness.outputBuffer)
	return harness
}

func createExportedRepositories(testInstance *testing.T, directoryNames ...string) string {
	testInstance.Helper()
	rootDirectory := testInstance.TempDir()
	for _, directoryName := range directoryNames {
		repositoryPath := filepath.Join(rootDirectory, directoryName)
		_, initError := git.PlainInit(repositoryPath, true)
		require.NoError(testInstance, initError)
		require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryPath, testMarkerFileNameConstant), nil, testFilePermissionsConstant))
	}
	return rootDirectory
}

func TestApplicationListsRepositoriesFromEnvironmentRoot(testInstance *testing.T) {
	rootDirectory := createExportedRepositories(testInstance, "alpha.git", "beta")
	harness := newApplicationHarness(testInstance, map[string]string{testRootEnvironmentName: rootDirectory})

	executionError := harness.application.execute([]string{"repos", "list"})
	require.NoError(testInstance, executionError)
	require.ElementsMatch(testInstance, []string{"alpha", "beta"}, strings.Fields(harness.outputBuffer.String()))
	require.NotContains(testInstance, harness.logBuffer.String(), testLegacyDeprecationText)
}

func TestApplicationWarnsAboutLegacyRoot(testInstance *testing.T) {
	rootDirectory := createExportedRepositories(testInstance, "alpha.git")
	harness := newApplicationHarness(testInstance, map[string]string{repos.LegacyRootEnvironmentVariable: rootDirectory})

	executionError := harness.application.execute([]string{"repos", "count"})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "1\n", harness.outputBuffer.String())

	var logEntry map[string]any
	firstLine, _, _ := strings.Cut(strings.TrimSpace(harness.logBuffer.String()), "\n")
	require.NoError(testInstance, json.Unmarshal([]byte(firstLine), &logEntry))
	require.Equal(testInstance, "warn", logEntry["level"])
	require.Contains(testInstance, logEntry["msg"], testLegacyDeprecationText)
	require.Equal(testInstance, rootDirectory, logEntry["repositories_root"])
}

func TestApplicationPrefersRootOverLegacyRootWithoutLosingDefaults(testInstance *testing.T) {
	rootDirectory := createExportedRepositories(testInstance, "alpha.git", "beta")
	harness := newApplicationHarness(testInstance, map[string]string{
		testRootEnvironmentName:             rootDirectory,
		repos.LegacyRootEnvironmentVariable: "/ignored",
	})

	executionError := harness.application.execute([]string{"repos", "count"})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "2\n", harness.outputBuffer.String())

	reposConfiguration := harness.application.configuration.Repos
	require.Equal(testInstance, rootDirectory, reposConfiguration.Root)
	require.Equal(testInstance, "/ignored", reposConfiguration.LegacyRoot)
	require.True(testInstance, reposConfiguration.DetectRemovals)
	require.Equal(testInstance, testMarkerFileNameConstant, reposConfiguration.ExportOKPath)
	require.Equal(testInstance, repos.DirectorySuffixList{"", ".git"}, reposConfiguration.DirectorySuffixes)
	require.NotContains(testInstance, harness.logBuffer.String(), testLegacyDeprecationText)
}

func TestApplicationDecodesEnvironmentOverrides(testInstance *testing.T) {
	rootDirectory := createExportedRepositories(testInstance, "alpha.git")
	harness := newApplicationHarness(testInstance, map[string]string{
		testRootEnvironmentName:                    rootDirectory,
		repos.NamespaceEnvironmentVariable:         "mirror",
		repos.DetectRemovalsEnvironmentVariable:    "no",
		repos.ExportOKPathEnvironmentVariable:      ".",
		repos.DirectorySuffixesEnvironmentVariable: ".git",
	})

	executionError := harness.application.execute([]string{"repos", "count"})
	require.NoError(testInstance, executionError)

	reposConfiguration := harness.application.configuration.Repos
	require.Equal(testInstance, rootDirectory, reposConfiguration.Root)
	require.Equal(testInstance, "mirror", reposConfiguration.Namespace)
	require.False(testInstance, reposConfiguration.DetectRemovals)
	require.Equal(testInstance, ".", reposConfiguration.ExportOKPath)
	require.Equal(testInstance, repos.DirectorySuffixList{".git"}, reposConfiguration.DirectorySuffixes)
}

func TestApplicationSplitsSuffixEnvironmentOnPathSeparator(testInstance *testing.T) {
	rootDirectory := createExportedRepositories(testInstance, "alpha.git")
	harness := newApplicationHarness(testInstance, map[string]string{
		testRootEnvironmentName:                    rootDirectory,
		repos.DirectorySuffixesEnvironmentVariable: string(os.PathSeparator) + ".git",
	})

	executionError := harness.application.execute([]string{"repos", "count"})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, repos.DirectorySuffixList{"", ".git"}, harness.application.configuration.Repos.DirectorySuffixes)
	require.True(testInstance, harness.application.configuration.Repos.DetectRemovals)
}

func TestApplicationTreatsEmptySuffixEnvironmentAsBareNamesOnly(testInstance *testing.T) {
	rootDirectory := createExportedRepositories(testInstance, "alpha.git")
	harness := newApplicationHarness(testInstance, map[string]string{
		testRootEnvironmentName:                    rootDirectory,
		repos.DirectorySuffixesEnvironmentVariable: "",
	})

	executionError := harness.application.execute([]string{"repos", "list"})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, repos.DirectorySuffixList{""}, harness.application.configuration.Repos.DirectorySuffixes)
	require.Equal(testInstance, "alpha.git\n", harness.outputBuffer.String())
}

func TestApplicationReadsConfigurationFile(testInstance *testing.T) {
	rootDirectory := createExportedRepositories(testInstance, "alpha.git", "beta.git")
	configurationPath := filepath.Join(testInstance.TempDir(), "config.yaml")
	configurationContent := "common:\n  log_level: debug\n  log_format: console\nrepositories:\n  root: " + rootDirectory + "\n  directory_suffixes:\n    - .git\n"
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(configurationContent), 0o600))

	harness := newApplicationHarness(testInstance, nil)

	executionError := harness.application.execute([]string{"--config", configurationPath, "repos", "show", "beta"})
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, harness.outputBuffer.String(), filepath.Join(rootDirectory, "beta.git"))
	require.Equal(testInstance, configurationPath, harness.application.configurationMetadata.ConfigFileUsed)
	require.Equal(testInstance, "debug", harness.application.configuration.Common.LogLevel)
	require.Contains(testInstance, harness.logBuffer.String(), configurationInitializedMessageConstant)
}

func TestApplicationFlagsOverrideEnvironment(testInstance *testing.T) {
	rootDirectory := createExportedRepositories(testInstance, "alpha.git")
	harness := newApplicationHarness(testInstance, map[string]string{testRootEnvironmentName: "/nonexistent"})

	executionError := harness.application.execute([]string{"--log-level", "error", "repos", "--root", rootDirectory, "--detect-removals", "off", "list"})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "alpha\n", harness.outputBuffer.String())
	require.Equal(testInstance, "error", harness.application.configuration.Common.LogLevel)
}

func TestApplicationRejectsUnsupportedLogLevel(testInstance *testing.T) {
	harness := newApplicationHarness(testInstance, map[string]string{"GITSHELF_COMMON_LOG_LEVEL": "verbose"})

	executionError := harness.application.execute([]string{"repos", "list"})
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "unsupported log level")
}

func TestApplicationWithoutArgumentsPrintsHelp(testInstance *testing.T) {
	harness := newApplicationHarness(testInstance, nil)

	executionError := harness.application.execute(nil)
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, harness.outputBuffer.String(), applicationNameConstant)
	require.Contains(testInstance, harness.outputBuffer.String(), "repos")
}

func TestNewApplicationRegistersReposCommand(testInstance *testing.T) {
	application := NewApplication()

	reposCommand, remainingArguments, findError := application.rootCommand.Find([]string{"repos", "list"})
	require.NoError(testInstance, findError)
	require.Empty(testInstance, remainingArguments)
	require.Equal(testInstance, "list", reposCommand.Name())
	require.Equal(testInstance, "repos", reposCommand.Parent().Name())
}
