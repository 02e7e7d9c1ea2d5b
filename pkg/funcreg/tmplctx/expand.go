package tmplctx

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/randalmurphal/funcreg/pkg/funcreg/config"
)

// varPattern matches ${dotted.name} (group 1) or $name (group 2).
// $name stops at the first non-word character, so $port does not match
// inside $portNumber.
var varPattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_.]*)\}|\$([a-zA-Z_][a-zA-Z0-9_]*)`)

// Expander substitutes context values into strings.
//
// Brace placeholders may use dotted paths that walk nested maps, so
// "${request.path}" reads ctx["request"]["path"].
// Expander is safe for concurrent use after construction.
type Expander struct {
	missingAction MissingAction
	braceStyle    bool
	dollarStyle   bool
}

// NewExpander creates an Expander. By default both placeholder styles
// are enabled and missing variables are kept as-is.
func NewExpander(opts ...Option) *Expander {
	e := &Expander{
		missingAction: MissingKeep,
		braceStyle:    true,
		dollarStyle:   true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand replaces placeholders in s with values from vars.
// An error is returned only with MissingError.
func (e *Expander) Expand(s string, vars Context) (string, error) {
	if s == "" {
		return "", nil
	}

	lookup := config.New(vars)
	var missing []string

	result := varPattern.ReplaceAllStringFunc(s, func(match string) string {
		var name string
		if strings.HasPrefix(match, "${") {
			if !e.braceStyle {
				return match
			}
			name = match[2 : len(match)-1]
		} else {
			if !e.dollarStyle {
				return match
			}
			name = match[1:]
		}

		if val, ok := lookupVar(lookup, name); ok {
			return fmt.Sprint(val)
		}

		switch e.missingAction {
		case MissingEmpty:
			return ""
		case MissingError:
			missing = append(missing, name)
		}
		return match
	})

	if len(missing) > 0 {
		return result, &UndefinedVariableError{Names: missing}
	}
	return result, nil
}

func lookupVar(c config.Config, name string) (any, bool) {
	if !c.Has(name) {
		return nil, false
	}
	return c.Any(name, nil), true
}

// ExpandMap expands every string value of m, descending into nested maps.
// Other values are copied as-is.
func (e *Expander) ExpandMap(m map[string]any, vars Context) (map[string]any, error) {
	if m == nil {
		return nil, nil
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case string:
			s, err := e.Expand(val, vars)
			if err != nil {
				return nil, err
			}
			out[k] = s
		case map[string]any:
			nested, err := e.ExpandMap(val, vars)
			if err != nil {
				return nil, err
			}
			out[k] = nested
		default:
			out[k] = v
		}
	}
	return out, nil
}

// UndefinedVariableError is returned when MissingError is set and
// one or more variables are not found.
type UndefinedVariableError struct {
	Names []string
}

// Error implements the error interface.
func (e *UndefinedVariableError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("undefined variable: %s", e.Names[0])
	}
	return fmt.Sprintf("undefined variables: %s", strings.Join(e.Names, ", "))
}

var defaultExpander = NewExpander()

// Expand expands placeholders in s from c, keeping missing ones.
func (c Context) Expand(s string) string {
	out, _ := defaultExpander.Expand(s, c)
	return out
}
