package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckSyntax(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{"comparison", "value > 10", false},
		{"string predicate", `status == "active" && len(tags) > 0`, false},
		{"undefined variables allowed", "some.nested.thing != nil", false},
		{"dangling operator", "value >", true},
		{"unbalanced parens", "(a && b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.CheckSyntax(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Evaluate("price * quantity", map[string]interface{}{
		"price":    2.5,
		"quantity": 4,
	})
	assert.NoError(t, err)
	assert.Equal(t, 10.0, result)
}

func TestEvaluateBool(t *testing.T) {
	engine := NewEngine()

	ok, err := engine.EvaluateBool(`status == "active"`, map[string]interface{}{"status": "active"})
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = engine.EvaluateBool(`status == "active"`, map[string]interface{}{"status": "closed"})
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = engine.EvaluateBool("1 + 1", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expected bool")
}

func TestProgramCacheReuse(t *testing.T) {
	engine := NewEngine()

	assert.NoError(t, engine.CheckSyntax("value > 10"))
	assert.Len(t, engine.programCache, 1)

	// Re-checking and evaluating the same expression reuses the program
	assert.NoError(t, engine.CheckSyntax("value > 10"))
	_, err := engine.Evaluate("value > 10", map[string]interface{}{"value": 11})
	assert.NoError(t, err)
	assert.Len(t, engine.programCache, 1)
}
