package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schemabase/backend/internal/domain/definition"
	"github.com/schemabase/backend/internal/domain/metaschema"
	"github.com/schemabase/backend/pkg/constants"
	"github.com/schemabase/backend/pkg/validator"
)

func mustValue(t *testing.T, payload string) map[string]interface{} {
	t.Helper()
	var value map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &value); err != nil {
		t.Fatalf("test payload does not parse: %v", err)
	}
	return value
}

func newStructural(t *testing.T) *StructuralValidator {
	t.Helper()
	reg, err := metaschema.CompileBuiltin()
	assert.NoError(t, err)
	return NewStructuralValidator(reg, validator.GetRegistry())
}

func hasCode(errs []definition.ValidationError, code string) bool {
	for _, e := range errs {
		if e.Code == code {
			return true
		}
	}
	return false
}

func findByCode(errs []definition.ValidationError, code string) *definition.ValidationError {
	for i := range errs {
		if errs[i].Code == code {
			return &errs[i]
		}
	}
	return nil
}

func TestStructuralValidCollection(t *testing.T) {
	sv := newStructural(t)

	result := sv.ValidateDefinition(mustValue(t, `{
		"name": "customers",
		"fields": {
			"email": {"type": "string", "required": true, "format": "email"},
			"age": {"type": "integer", "min": 0}
		},
		"timestamps": true
	}`), metaschema.SchemaCollection)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestStructuralCollectionNamePattern(t *testing.T) {
	sv := newStructural(t)

	result := sv.ValidateDefinition(mustValue(t, `{
		"name": "123bad",
		"fields": {"a": {"type": "string"}}
	}`), metaschema.SchemaCollection)

	assert.False(t, result.Valid)
	err := findByCode(result.Errors, constants.CodePatternMismatch)
	if assert.NotNil(t, err) {
		assert.Equal(t, "name", err.Field)
	}
}

func TestStructuralMissingRequiredProperty(t *testing.T) {
	sv := newStructural(t)

	result := sv.ValidateDefinition(mustValue(t, `{"name": "customers"}`), metaschema.SchemaCollection)

	assert.False(t, result.Valid)
	err := findByCode(result.Errors, constants.CodeMissingProperty)
	if assert.NotNil(t, err) {
		assert.Equal(t, "fields", err.Field)
	}
}

func TestStructuralEmptyFieldsObject(t *testing.T) {
	sv := newStructural(t)

	result := sv.ValidateDefinition(mustValue(t, `{"name": "customers", "fields": {}}`), metaschema.SchemaCollection)

	assert.False(t, result.Valid)
	assert.True(t, hasCode(result.Errors, constants.CodeMinProperties))
}

func TestStructuralUnknownProperty(t *testing.T) {
	sv := newStructural(t)

	result := sv.ValidateDefinition(mustValue(t, `{
		"name": "customers",
		"fields": {"a": {"type": "string"}},
		"sharding": "hash"
	}`), metaschema.SchemaCollection)

	assert.False(t, result.Valid)
	err := findByCode(result.Errors, constants.CodeUnknownProperty)
	if assert.NotNil(t, err) {
		assert.Equal(t, "sharding", err.Field)
	}
}

func TestStructuralFieldTypeEnum(t *testing.T) {
	sv := newStructural(t)

	result := sv.ValidateDefinition(mustValue(t, `{
		"name": "customers",
		"fields": {"a": {"type": "varchar"}}
	}`), metaschema.SchemaCollection)

	assert.False(t, result.Valid)
	err := findByCode(result.Errors, constants.CodeEnumViolation)
	if assert.NotNil(t, err) {
		assert.Equal(t, "fields.a.type", err.Field)
	}
}

func TestStructuralFieldNamePattern(t *testing.T) {
	sv := newStructural(t)

	result := sv.ValidateDefinition(mustValue(t, `{
		"name": "customers",
		"fields": {"bad name": {"type": "string"}}
	}`), metaschema.SchemaCollection)

	assert.False(t, result.Valid)
	err := findByCode(result.Errors, constants.CodePatternMismatch)
	if assert.NotNil(t, err) {
		assert.Equal(t, "fields.bad name", err.Field)
	}
}

func TestStructuralNestedFieldRecursion(t *testing.T) {
	sv := newStructural(t)

	// items of an array field is itself a field definition
	result := sv.ValidateDefinition(mustValue(t, `{
		"name": "orders",
		"fields": {
			"lines": {"type": "array", "items": {"type": "nonsense"}}
		}
	}`), metaschema.SchemaCollection)

	assert.False(t, result.Valid)
	err := findByCode(result.Errors, constants.CodeEnumViolation)
	if assert.NotNil(t, err) {
		assert.Equal(t, "fields.lines.items.type", err.Field)
	}
}

func TestStructuralTypeMismatches(t *testing.T) {
	sv := newStructural(t)

	tests := []struct {
		name    string
		payload string
		field   string
	}{
		{"fields as array", `{"name": "c", "fields": ["a"]}`, "fields"},
		{"name as number", `{"name": 42, "fields": {"a": {"type": "string"}}}`, "name"},
		{"timestamps as string", `{"name": "c", "fields": {"a": {"type": "string"}}, "timestamps": "yes"}`, "timestamps"},
		{"minLength as float", `{"name": "c", "fields": {"a": {"type": "string", "minLength": 1.5}}}`, "fields.a.minLength"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sv.ValidateDefinition(mustValue(t, tt.payload), metaschema.SchemaCollection)
			assert.False(t, result.Valid)
			err := findByCode(result.Errors, constants.CodeInvalidType)
			if assert.NotNil(t, err) {
				assert.Equal(t, tt.field, err.Field)
			}
		})
	}
}

func TestStructuralFormatValidation(t *testing.T) {
	sv := newStructural(t)

	node := &metaschema.Node{Type: metaschema.TypeString, Format: "email"}
	assert.NoError(t, node.Finalize())

	assert.Empty(t, sv.ValidateNode("ops@example.com", node, "contact"))

	errs := sv.ValidateNode("not-an-email", node, "contact")
	err := findByCode(errs, constants.CodeInvalidFormat)
	if assert.NotNil(t, err) {
		assert.Equal(t, definition.KindFormat, err.Kind)
		assert.Equal(t, "contact", err.Field)
	}
}

func TestStructuralUnknownFormatPasses(t *testing.T) {
	sv := newStructural(t)

	node := &metaschema.Node{Type: metaschema.TypeString, Format: "isbn"}
	assert.NoError(t, node.Finalize())
	assert.Empty(t, sv.ValidateNode("anything", node, "book"))
}

func TestStructuralDepthLimit(t *testing.T) {
	sv := newStructural(t)

	// Build a field nested beyond the recursion cap via items chaining
	inner := map[string]interface{}{"type": "string"}
	for i := 0; i < constants.MaxSchemaDepth+4; i++ {
		inner = map[string]interface{}{"type": "array", "items": inner}
	}
	value := map[string]interface{}{
		"name":   "deep",
		"fields": map[string]interface{}{"f": inner},
	}

	result := sv.ValidateDefinition(value, metaschema.SchemaCollection)
	assert.False(t, result.Valid)
	assert.True(t, hasCode(result.Errors, constants.CodeDepthExceeded))
}
