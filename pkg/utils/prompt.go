package utils

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/picogrid/drone-search-sim/pkg/logger"
	"github.com/picogrid/drone-search-sim/pkg/simulation"
	"github.com/spf13/cast"
)

// EnvPrefix prefixes the environment variables that pre-fill parameters
const EnvPrefix = "DRONE_SEARCH_"

// SkipPromptsEnv disables interactive prompts when set to true
const SkipPromptsEnv = "DRONE_SEARCH_SKIP_PROMPTS"

// Interactive reports whether prompts can be shown
func Interactive() bool {
	if cast.ToBool(os.Getenv(SkipPromptsEnv)) {
		return false
	}
	return logger.IsTerminal(os.Stdin) && logger.IsTerminal(os.Stdout)
}

// PromptForParameters collects a value for every parameter. Environment variables
// (DRONE_SEARCH_<NAME>) replace defaults; without a terminal no prompt is shown.
func PromptForParameters(params []simulation.Parameter) (map[string]interface{}, error) {
	return ResolveParameters(params, Interactive())
}

// ResolveParameters is PromptForParameters with explicit control over prompting
func ResolveParameters(params []simulation.Parameter, interactive bool) (map[string]interface{}, error) {
	result := make(map[string]interface{}, len(params))

	for _, param := range params {
		if env := os.Getenv(EnvPrefix + strings.ToUpper(param.Name)); env != "" {
			value, err := CoerceParameter(param, env)
			if err != nil {
				return nil, fmt.Errorf("invalid %s%s: %w", EnvPrefix, strings.ToUpper(param.Name), err)
			}
			param.Default = value
		}

		if !interactive {
			if param.Default == nil {
				if param.Required {
					return nil, fmt.Errorf("required parameter %s not provided and no default available", param.Name)
				}
				continue
			}
			value, err := CoerceParameter(param, param.Default)
			if err != nil {
				return nil, fmt.Errorf("invalid default for %s: %w", param.Name, err)
			}
			result[param.Name] = value
			continue
		}

		value, err := promptForParameter(param)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", param.Name, err)
		}
		if value != nil {
			result[param.Name] = value
		}
	}

	return result, nil
}

// CoerceParameter converts raw to the parameter's declared type and checks its bounds and options
func CoerceParameter(param simulation.Parameter, raw interface{}) (interface{}, error) {
	switch param.Type {
	case "integer":
		v, err := cast.ToIntE(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid integer: %w", err)
		}
		if param.Min != nil && v < cast.ToInt(param.Min) {
			return nil, fmt.Errorf("value must be at least %d", cast.ToInt(param.Min))
		}
		if param.Max != nil && v > cast.ToInt(param.Max) {
			return nil, fmt.Errorf("value must be at most %d", cast.ToInt(param.Max))
		}
		return v, nil

	case "float":
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid number: %w", err)
		}
		if param.Min != nil && v < cast.ToFloat64(param.Min) {
			return nil, fmt.Errorf("value must be at least %g", cast.ToFloat64(param.Min))
		}
		if param.Max != nil && v > cast.ToFloat64(param.Max) {
			return nil, fmt.Errorf("value must be at most %g", cast.ToFloat64(param.Max))
		}
		return v, nil

	case "string":
		v, err := cast.ToStringE(raw)
		if err != nil {
			return nil, err
		}
		if len(param.Options) > 0 && !contains(param.Options, v) {
			return nil, fmt.Errorf("%q is not one of %s", v, strings.Join(param.Options, ", "))
		}
		return v, nil

	case "boolean":
		v, err := cast.ToBoolE(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean: %w", err)
		}
		return v, nil

	case "duration":
		v, err := cast.ToDurationE(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid duration (use formats like 5m, 1h30m, 30s): %w", err)
		}
		return v, nil

	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", param.Type)
	}
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

func defaultString(param simulation.Parameter) string {
	if param.Default == nil {
		return ""
	}
	if d, ok := param.Default.(time.Duration); ok {
		return d.String()
	}
	return cast.ToString(param.Default)
}

func promptForParameter(param simulation.Parameter) (interface{}, error) {
	switch param.Type {
	case "boolean":
		prompt := &survey.Confirm{
			Message: param.Description,
			Default: cast.ToBool(param.Default),
		}
		var result bool
		if err := survey.AskOne(prompt, &result); err != nil {
			return nil, err
		}
		return result, nil

	case "string":
		if len(param.Options) > 0 {
			return SelectOne(param.Description, param.Options, defaultString(param))
		}
	}

	message := param.Description
	if param.Type == "duration" {
		message += " (e.g., 5m, 1h30m, 30s)"
	}
	prompt := &survey.Input{
		Message: message,
		Default: defaultString(param),
	}

	validators := []survey.Validator{func(val interface{}) error {
		s, _ := val.(string)
		if s == "" && !param.Required {
			return nil
		}
		_, err := CoerceParameter(param, s)
		return err
	}}
	if param.Required {
		validators = append([]survey.Validator{survey.Required}, validators...)
	}

	var answer string
	if err := survey.AskOne(prompt, &answer, survey.WithValidator(survey.ComposeValidators(validators...))); err != nil {
		return nil, err
	}
	if answer == "" && !param.Required {
		return nil, nil
	}
	return CoerceParameter(param, answer)
}

// SelectOne asks the user to pick one option
func SelectOne(message string, options []string, def string) (string, error) {
	prompt := &survey.Select{
		Message: message,
		Options: options,
	}
	if contains(options, def) {
		prompt.Default = def
	}

	var result string
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

// Confirm asks a yes/no question
func Confirm(message string, def bool) (bool, error) {
	var result bool
	err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &result)
	return result, err
}
