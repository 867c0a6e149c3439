package chain

import (
	"fmt"
	"regexp"
)

// placeholderPattern matches {{name}} placeholders. Deliberately not
// text/template: spec §9 calls for named placeholders only, no
// expressions, so that every step's input surface stays auditable.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)

// TemplateError is fatal and not retried (spec §4.10).
type TemplateError struct {
	Step        string
	Placeholder string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("chain: step %q references undefined placeholder %q", e.Step, e.Placeholder)
}

// render substitutes every {{name}} in tmpl with context[name]. Any
// placeholder missing from context is a hard TemplateError.
func render(stepName, tmpl string, context map[string]string) (string, error) {
	var missing string
	result := placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		val, ok := context[name]
		if !ok {
			missing = name
			return match
		}
		return val
	})
	if missing != "" {
		return "", &TemplateError{Step: stepName, Placeholder: missing}
	}
	return result, nil
}

// referencedPlaceholders returns every distinct {{name}} referenced by tmpl.
func referencedPlaceholders(tmpl string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(tmpl, -1)
	seen := make(map[string]bool)
	var out []string
	for _, m := range matches {
		name := m[1]
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
