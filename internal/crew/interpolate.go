package crew

import (
	"fmt"
	"regexp"
	"strings"
)

// Inputs are the kickoff parameters substituted into agent and task templates.
type Inputs map[string]string

var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_\-]*)\}`)

// Interpolate replaces {key} placeholders with values from inputs.
// Braces that do not enclose an identifier, such as JSON examples, are kept.
// A placeholder without a matching input is an error naming the key.
func Interpolate(template string, inputs Inputs) (string, error) {
	var missing []string
	out := placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		value, ok := inputs[key]
		if !ok {
			missing = append(missing, key)
			return match
		}
		return value
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("template variable %q not found in inputs", missing[0])
	}
	return out, nil
}

// interpolateField interpolates and trims a YAML folded-scalar template.
func interpolateField(field, template string, inputs Inputs) (string, error) {
	out, err := Interpolate(template, inputs)
	if err != nil {
		return "", fmt.Errorf("%s: %w", field, err)
	}
	return strings.TrimSpace(out), nil
}
