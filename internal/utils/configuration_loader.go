package utils

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorOldConstant              = "."
	environmentKeySeparatorNewConstant              = "_"
	configurationReadErrorTemplateConstant          = "failed to read configuration: %w"
	configurationUnmarshalErrorTemplateConstant     = "failed to parse configuration: %w"
	embeddedConfigurationMergeErrorTemplateConstant = "failed to merge embedded configuration: %w"
	environmentBindingErrorTemplateConstant         = "failed to bind environment variable %s: %w"
	sliceSeparatorConstant                          = ","
)

// ConfigurationLoader wraps Viper to load structured configuration files and environment overrides.
type ConfigurationLoader struct {
	configurationName         string
	configurationType         string
	environmentPrefix         string
	searchPaths               []string
	environmentKeyReplacer    *strings.Replacer
	embeddedConfiguration     []byte
	embeddedConfigurationType string
	environmentBindings       map[string][]string
	decodeHooks               []mapstructure.DecodeHookFunc
	emptyEnvironmentKeys      []string
}

// LoadedConfiguration surfaces metadata about the resolved configuration.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// NewConfigurationLoader creates a loader that searches known paths and respects an environment prefix.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	duplicatedSearchPaths := make([]string, len(searchPaths))
	copy(duplicatedSearchPaths, searchPaths)

	return &ConfigurationLoader{
		configurationName:      configurationName,
		configurationType:      configurationType,
		environmentPrefix:      environmentPrefix,
		searchPaths:            duplicatedSearchPaths,
		environmentKeyReplacer: strings.NewReplacer(environmentKeySeparatorOldConstant, environmentKeySeparatorNewConstant),
		environmentBindings:    map[string][]string{},
	}
}

// BindEnvironment maps configuration key onto explicit environment variable names.
// Earlier names take precedence over later ones.
func (loader *ConfigurationLoader) BindEnvironment(configurationKey string, environmentVariableNames ...string) {
	if loader == nil || len(environmentVariableNames) == 0 {
		return
	}
	if loader.environmentBindings == nil {
		loader.environmentBindings = map[string][]string{}
	}
	loader.environmentBindings[configurationKey] = append([]string{}, environmentVariableNames...)
}

// PreserveEmptyEnvironment makes an empty bound environment variable override the key instead of being ignored.
// Only the first bound variable that is present is consulted.
func (loader *ConfigurationLoader) PreserveEmptyEnvironment(configurationKeys ...string) {
	if loader == nil {
		return
	}
	loader.emptyEnvironmentKeys = append(loader.emptyEnvironmentKeys, configurationKeys...)
}

// SetDecodeHooks registers hooks applied ahead of the default string conversions during unmarshalling.
func (loader *ConfigurationLoader) SetDecodeHooks(decodeHooks ...mapstructure.DecodeHookFunc) {
	if loader == nil {
		return
	}
	loader.decodeHooks = append([]mapstructure.DecodeHookFunc{}, decodeHooks...)
}

// SetEmbeddedConfiguration stores embedded configuration data merged before user-provided configuration files.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationData []byte, configurationType string) {
	if loader == nil {
		return
	}

	loader.embeddedConfiguration = nil
	loader.embeddedConfigurationType = strings.TrimSpace(configurationType)

	if len(configurationData) == 0 {
		return
	}

	duplicatedData := make([]byte, len(configurationData))
	copy(duplicatedData, configurationData)
	loader.embeddedConfiguration = duplicatedData
}

// LoadConfiguration populates targetConfiguration using configuration files, defaults, and environment variables.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, targetConfiguration any) (LoadedConfiguration, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigName(loader.configurationName)
	viperInstance.SetConfigType(loader.configurationType)

	if len(loader.embeddedConfiguration) > 0 {
		configurationType := loader.configurationType
		if len(loader.embeddedConfigurationType) > 0 {
			configurationType = loader.embeddedConfigurationType
		}

		viperInstance.SetConfigType(configurationType)
		mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedConfiguration))
		if mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationMergeErrorTemplateConstant, mergeError)
		}

		viperInstance.SetConfigType(loader.configurationType)
	}

	for _, searchPath := range loader.searchPaths {
		viperInstance.AddConfigPath(searchPath)
	}

	viperInstance.SetEnvPrefix(loader.environmentPrefix)
	if loader.environmentKeyReplacer != nil {
		viperInstance.SetEnvKeyReplacer(loader.environmentKeyReplacer)
	}
	viperInstance.AutomaticEnv()

	for configurationKey, environmentVariableNames := range loader.environmentBindings {
		bindArguments := append([]string{configurationKey}, environmentVariableNames...)
		if bindError := viperInstance.BindEnv(bindArguments...); bindError != nil {
			return LoadedConfiguration{}, fmt.Errorf(environmentBindingErrorTemplateConstant, configurationKey, bindError)
		}
	}

	for _, configurationKey := range loader.emptyEnvironmentKeys {
		if loader.boundEnvironmentIsEmpty(configurationKey) {
			viperInstance.Set(configurationKey, "")
		}
	}

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if len(configurationFilePath) > 0 {
		viperInstance.SetConfigFile(configurationFilePath)
	}

	readError := viperInstance.MergeInConfig()
	if readError != nil {
		if _, isNotFound := readError.(viper.ConfigFileNotFoundError); !isNotFound {
			return LoadedConfiguration{}, fmt.Errorf(configurationReadErrorTemplateConstant, readError)
		}
	}

	unmarshalError := viperInstance.Unmarshal(targetConfiguration, viper.DecodeHook(loader.composedDecodeHook()))
	if unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}

	loadedConfiguration := LoadedConfiguration{
		ConfigFileUsed: viperInstance.ConfigFileUsed(),
	}

	return loadedConfiguration, nil
}

func (loader *ConfigurationLoader) boundEnvironmentIsEmpty(configurationKey string) bool {
	for _, environmentVariableName := range loader.environmentBindings[configurationKey] {
		environmentValue, present := os.LookupEnv(environmentVariableName)
		if present {
			return len(environmentValue) == 0
		}
	}
	return false
}

func (loader *ConfigurationLoader) composedDecodeHook() mapstructure.DecodeHookFunc {
	decodeHooks := append([]mapstructure.DecodeHookFunc{}, loader.decodeHooks...)
	decodeHooks = append(decodeHooks,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(sliceSeparatorConstant),
	)
	return mapstructure.ComposeDecodeHookFunc(decodeHooks...)
}
