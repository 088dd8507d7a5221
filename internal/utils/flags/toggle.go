package flags

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValue               = "true"
	toggleFalseCanonicalValue              = "false"
	toggleParseErrorTemplate               = "invalid toggle value %q"
	toggleArgumentTruePlaceholderConstant  = "<YES|no>"
	toggleArgumentFalsePlaceholderConstant = "<yes|NO>"
	toggleUsageEmptyTemplate               = "`%s`"
	toggleUsageFullTemplate                = "`%s` %s"
	toggleValueTypeConstant                = "bool"
	longFlagPrefixConstant                 = "--"
	shortFlagPrefixConstant                = "-"
	flagValueSeparatorConstant             = "="
	argumentTerminatorConstant             = "--"
)

var (
	toggleLiteralValues = map[string]bool{
		toggleTrueCanonicalValue:  true,
		"yes":                     true,
		"y":                       true,
		"t":                       true,
		"on":                      true,
		"1":                       true,
		toggleFalseCanonicalValue: false,
		"no":                      false,
		"n":                       false,
		"f":                       false,
		"off":                     false,
		"0":                       false,
	}

	toggleRegistryMutex   sync.RWMutex
	registeredToggleLong  = map[string]struct{}{}
	registeredToggleShort = map[string]struct{}{}
)

// ParseToggle interprets yes/no style literals such as "y", "off" or "1".
func ParseToggle(rawValue string) (bool, error) {
	parsedValue, known := toggleLiteralValues[strings.ToLower(strings.TrimSpace(rawValue))]
	if !known {
		return false, fmt.Errorf(toggleParseErrorTemplate, rawValue)
	}
	return parsedValue, nil
}

// ToggleDecodeHook converts yes/no style strings into booleans while configuration is decoded.
// Empty strings are left to the remaining hooks.
func ToggleDecodeHook() mapstructure.DecodeHookFuncType {
	return func(sourceType reflect.Type, targetType reflect.Type, data any) (any, error) {
		if sourceType.Kind() != reflect.String || targetType.Kind() != reflect.Bool {
			return data, nil
		}
		rawValue, isString := data.(string)
		if !isString || len(strings.TrimSpace(rawValue)) == 0 {
			return data, nil
		}
		return ParseToggle(rawValue)
	}
}

// AddToggleFlag registers a boolean flag that accepts yes/no style values.
// A bare flag means true.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	flagSet.VarP(newToggleFlagValue(defaultValue, target), name, shorthand, usage)

	flag := flagSet.Lookup(name)
	if flag == nil {
		return
	}
	flag.NoOptDefVal = toggleTrueCanonicalValue
	flag.Usage = formatToggleUsage(usage, defaultValue)

	toggleRegistryMutex.Lock()
	defer toggleRegistryMutex.Unlock()
	registeredToggleLong[name] = struct{}{}
	if len(shorthand) > 0 {
		registeredToggleShort[shorthand] = struct{}{}
	}
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleArgumentFalsePlaceholderConstant
	if defaultValue {
		placeholder = toggleArgumentTruePlaceholderConstant
	}
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(toggleUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(toggleUsageFullTemplate, placeholder, trimmedDescription)
}

// NormalizeToggleArguments rewrites "--flag value" into "--flag=value" for registered toggle flags
// so that pflag does not treat the value as a positional argument.
func NormalizeToggleArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalizedArguments := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		currentArgument := arguments[index]
		if currentArgument == argumentTerminatorConstant {
			return append(normalizedArguments, arguments[index:]...)
		}

		if awaitsToggleValue(currentArgument) && index+1 < len(arguments) && !strings.HasPrefix(arguments[index+1], shortFlagPrefixConstant) {
			normalizedArguments = append(normalizedArguments, currentArgument+flagValueSeparatorConstant+arguments[index+1])
			index++
			continue
		}

		normalizedArguments = append(normalizedArguments, currentArgument)
	}

	return normalizedArguments
}

func awaitsToggleValue(argument string) bool {
	if strings.Contains(argument, flagValueSeparatorConstant) {
		return false
	}

	toggleRegistryMutex.RLock()
	defer toggleRegistryMutex.RUnlock()

	if longName, isLong := strings.CutPrefix(argument, longFlagPrefixConstant); isLong {
		_, registered := registeredToggleLong[longName]
		return len(longName) > 0 && registered
	}
	if shortName, isShort := strings.CutPrefix(argument, shortFlagPrefixConstant); isShort && len(shortName) == 1 {
		_, registered := registeredToggleShort[shortName]
		return registered
	}
	return false
}

type toggleFlagValue struct {
	currentValue bool
	target       *bool
}

func newToggleFlagValue(defaultValue bool, target *bool) *toggleFlagValue {
	if target != nil {
		*target = defaultValue
	}
	return &toggleFlagValue{currentValue: defaultValue, target: target}
}

func (value *toggleFlagValue) Set(rawValue string) error {
	if len(strings.TrimSpace(rawValue)) == 0 {
		rawValue = toggleTrueCanonicalValue
	}
	parsedValue, parseError := ParseToggle(rawValue)
	if parseError != nil {
		return parseError
	}

	value.currentValue = parsedValue
	if value.target != nil {
		*value.target = parsedValue
	}
	return nil
}

func (value *toggleFlagValue) String() string {
	if value == nil || !value.currentValue {
		return toggleFalseCanonicalValue
	}
	return toggleTrueCanonicalValue
}

func (value *toggleFlagValue) Type() string {
	return toggleValueTypeConstant
}
