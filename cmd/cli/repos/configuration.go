package repos

import (
	"os"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/temirov/gitshelf/internal/repos/container"
	flagutils "github.com/temirov/gitshelf/internal/utils/flags"
)

const (
	rootConfigurationKeyConstant              = "root"
	legacyRootConfigurationKeyConstant        = "legacy_root"
	namespaceConfigurationKeyConstant         = "namespace"
	detectRemovalsConfigurationKeyConstant    = "detect_removals"
	exportOKPathConfigurationKeyConstant      = "export_ok_path"
	directorySuffixesConfigurationKeyConstant = "directory_suffixes"
	configurationKeySeparatorConstant         = "."

	// LegacyRootEnvironmentVariable names the deprecated variable still honoured for the repositories root.
	LegacyRootEnvironmentVariable = "GITSHELF_REPOS"
	// RootEnvironmentVariable names the variable holding the repositories root.
	RootEnvironmentVariable = LegacyRootEnvironmentVariable + "_ROOT"
	// NamespaceEnvironmentVariable names the variable holding the repository namespace.
	NamespaceEnvironmentVariable = LegacyRootEnvironmentVariable + "_NAMESPACE"
	// DetectRemovalsEnvironmentVariable names the variable toggling removal detection.
	DetectRemovalsEnvironmentVariable = LegacyRootEnvironmentVariable + "_DETECT_REMOVALS"
	// ExportOKPathEnvironmentVariable names the variable holding the export marker path.
	ExportOKPathEnvironmentVariable = LegacyRootEnvironmentVariable + "_EXPORT_OK_PATH"
	// DirectorySuffixesEnvironmentVariable names the variable holding the path-separated suffix list.
	DirectorySuffixesEnvironmentVariable = LegacyRootEnvironmentVariable + "_DIRECTORY_SUFFIXES"
)

// DirectorySuffixList holds the suffixes tried when mapping a repository name to a directory.
// A single string value is split on the operating system path separator, so "/.git" means "" and ".git".
type DirectorySuffixList []string

// ToolsConfiguration captures the repos configuration section.
type ToolsConfiguration struct {
	Root              string              `mapstructure:"root"`
	LegacyRoot        string              `mapstructure:"legacy_root"`
	Namespace         string              `mapstructure:"namespace"`
	DetectRemovals    bool                `mapstructure:"detect_removals"`
	ExportOKPath      string              `mapstructure:"export_ok_path"`
	DirectorySuffixes DirectorySuffixList `mapstructure:"directory_suffixes"`
}

// DefaultToolsConfiguration returns baseline configuration values for repository commands.
func DefaultToolsConfiguration() ToolsConfiguration {
	defaults := container.DefaultOptions()
	return ToolsConfiguration{
		Namespace:         defaults.Namespace,
		DetectRemovals:    defaults.DetectRemovals,
		ExportOKPath:      defaults.ExportOKPath,
		DirectorySuffixes: DirectorySuffixList(defaults.DirectorySuffixes),
	}
}

// DefaultConfigurationValues produces Viper defaults for repository commands.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultToolsConfiguration()
	return map[string]any{
		configurationKey(rootKey, rootConfigurationKeyConstant):              defaults.Root,
		configurationKey(rootKey, legacyRootConfigurationKeyConstant):        defaults.LegacyRoot,
		configurationKey(rootKey, namespaceConfigurationKeyConstant):         defaults.Namespace,
		configurationKey(rootKey, detectRemovalsConfigurationKeyConstant):    defaults.DetectRemovals,
		configurationKey(rootKey, exportOKPathConfigurationKeyConstant):      defaults.ExportOKPath,
		configurationKey(rootKey, directorySuffixesConfigurationKeyConstant): []string(defaults.DirectorySuffixes),
	}
}

// EnvironmentBindings maps every repos key onto its GITSHELF_REPOS environment variable.
// The section key must not be "repos": automatic environment lookup would then read
// GITSHELF_REPOS as the whole section and shadow every key below it.
func EnvironmentBindings(rootKey string) map[string][]string {
	return map[string][]string{
		configurationKey(rootKey, rootConfigurationKeyConstant):              {RootEnvironmentVariable},
		configurationKey(rootKey, legacyRootConfigurationKeyConstant):        {LegacyRootEnvironmentVariable},
		configurationKey(rootKey, namespaceConfigurationKeyConstant):         {NamespaceEnvironmentVariable},
		configurationKey(rootKey, detectRemovalsConfigurationKeyConstant):    {DetectRemovalsEnvironmentVariable},
		configurationKey(rootKey, exportOKPathConfigurationKeyConstant):      {ExportOKPathEnvironmentVariable},
		configurationKey(rootKey, directorySuffixesConfigurationKeyConstant): {DirectorySuffixesEnvironmentVariable},
	}
}

// EmptyEnvironmentKeys lists keys whose environment variable is meaningful when set to an empty string.
// An empty suffix list variable means only the bare directory name is tried.
func EmptyEnvironmentKeys(rootKey string) []string {
	return []string{configurationKey(rootKey, directorySuffixesConfigurationKeyConstant)}
}

// DecodeHooks returns the conversions needed to decode environment strings into ToolsConfiguration.
func DecodeHooks() []mapstructure.DecodeHookFunc {
	return []mapstructure.DecodeHookFunc{
		DirectorySuffixesDecodeHook(),
		flagutils.ToggleDecodeHook(),
	}
}

// DirectorySuffixesDecodeHook splits a string on the path separator when decoding a DirectorySuffixList.
func DirectorySuffixesDecodeHook() mapstructure.DecodeHookFuncType {
	directorySuffixListType := reflect.TypeOf(DirectorySuffixList{})
	return func(sourceType reflect.Type, targetType reflect.Type, data any) (any, error) {
		if targetType != directorySuffixListType || sourceType.Kind() != reflect.String {
			return data, nil
		}
		return strings.Split(data.(string), string(os.PathSeparator)), nil
	}
}

func configurationKey(rootKey string, key string) string {
	if len(rootKey) == 0 {
		return key
	}
	return rootKey + configurationKeySeparatorConstant + key
}
