package tmplctx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExpand tests placeholder substitution with the default expander.
func TestExpand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		vars     Context
		expected string
	}{
		{
			name:     "brace variable",
			input:    "Hello ${name}",
			vars:     Context{"name": "World"},
			expected: "Hello World",
		},
		{
			name:     "dollar variable",
			input:    "Hello $name!",
			vars:     Context{"name": "World"},
			expected: "Hello World!",
		},
		{
			name:     "adjacent variables",
			input:    "${a}${b}${c}",
			vars:     Context{"a": "1", "b": "2", "c": "3"},
			expected: "123",
		},
		{
			name:     "non-string values",
			input:    "port ${port} enabled $enabled",
			vars:     Context{"port": 8080, "enabled": true},
			expected: "port 8080 enabled true",
		},
		{
			name:     "word boundary",
			input:    "$port is different from $portNumber",
			vars:     Context{"port": "8080", "portNumber": "9090"},
			expected: "8080 is different from 9090",
		},
		{
			name:     "dotted path",
			input:    "${request.path}",
			vars:     Context{"request": map[string]any{"path": "/blog/"}},
			expected: "/blog/",
		},
		{
			name:     "dollar style stops at dot",
			input:    "$request.path",
			vars:     Context{"request": "r"},
			expected: "r.path",
		},
		{
			name:     "missing kept",
			input:    "Hello ${missing} $gone",
			vars:     nil,
			expected: "Hello ${missing} $gone",
		},
		{
			name:     "lone dollar",
			input:    "costs $5",
			vars:     Context{},
			expected: "costs $5",
		},
		{
			name:     "empty input",
			input:    "",
			vars:     Context{"a": 1},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.vars.Expand(tt.input))
		})
	}
}

// TestExpand_MissingActions tests each MissingAction.
func TestExpand_MissingActions(t *testing.T) {
	vars := Context{"name": "World"}

	result, err := NewExpander(WithMissingAction(MissingEmpty)).Expand("${name}: ${missing}$gone", vars)
	require.NoError(t, err)
	assert.Equal(t, "World: ", result)

	result, err = NewExpander(WithMissingAction(MissingError)).Expand("${name}: ${missing} $gone", vars)
	assert.Equal(t, "World: ${missing} $gone", result)

	var undefined *UndefinedVariableError
	require.ErrorAs(t, err, &undefined)
	assert.Equal(t, []string{"missing", "gone"}, undefined.Names)
	assert.Equal(t, "undefined variables: missing, gone", err.Error())

	_, err = NewExpander(WithMissingAction(MissingError)).Expand("${user.name}", nil)
	assert.EqualError(t, err, "undefined variable: user.name")
}

// TestExpand_DisabledStyles tests turning placeholder styles off.
func TestExpand_DisabledStyles(t *testing.T) {
	vars := Context{"name": "World"}

	result, err := NewExpander(WithBraceStyle(false)).Expand("${name} $name", vars)
	require.NoError(t, err)
	assert.Equal(t, "${name} World", result)

	result, err = NewExpander(WithDollarStyle(false)).Expand("${name} $name", vars)
	require.NoError(t, err)
	assert.Equal(t, "World $name", result)
}

// TestExpandMap tests recursive map expansion.
func TestExpandMap(t *testing.T) {
	exp := NewExpander()
	vars := Context{"env": "prod", "host": "example.com"}

	result, err := exp.ExpandMap(map[string]any{
		"url":  "https://${host}/api",
		"port": 8080,
		"nested": map[string]any{
			"endpoint": "/api/$env/v1",
		},
	}, vars)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"url":  "https://example.com/api",
		"port": 8080,
		"nested": map[string]any{
			"endpoint": "/api/prod/v1",
		},
	}, result)

	result, err = exp.ExpandMap(nil, vars)
	require.NoError(t, err)
	assert.Nil(t, result)

	_, err = NewExpander(WithMissingAction(MissingError)).ExpandMap(map[string]any{
		"nested": map[string]any{"x": "${missing}"},
	}, vars)
	assert.Error(t, err)
}
