package services

import (
	"fmt"
	"math"
	"reflect"

	"github.com/schemabase/backend/internal/domain/definition"
	"github.com/schemabase/backend/internal/domain/metaschema"
	"github.com/schemabase/backend/pkg/constants"
	"github.com/schemabase/backend/pkg/validator"
)

// StructuralValidator checks an arbitrary decoded JSON value against a
// compiled meta-schema node. It knows nothing about domain rules; it only
// enforces shape, types, enumerations, patterns and bounds.
type StructuralValidator struct {
	registry *metaschema.Registry
	formats  *validator.Registry
}

// NewStructuralValidator creates a new StructuralValidator
func NewStructuralValidator(registry *metaschema.Registry, formats *validator.Registry) *StructuralValidator {
	return &StructuralValidator{registry: registry, formats: formats}
}

// ValidateDefinition validates value against the named built-in meta-schema
func (sv *StructuralValidator) ValidateDefinition(value interface{}, schemaName string) *definition.ValidationResult {
	node, ok := sv.registry.Resolve(schemaName)
	if !ok {
		return definition.NewValidationResult([]definition.ValidationError{{
			Kind:     definition.KindStructural,
			Field:    schemaName,
			Code:     constants.CodeUnresolvedSchema,
			Message:  fmt.Sprintf("no meta-schema registered under %q", schemaName),
			Severity: constants.SeverityError,
		}})
	}
	return definition.NewValidationResult(sv.ValidateNode(value, node, ""))
}

// ValidateNode validates value against an arbitrary compiled node. The data
// path uses this with projected field and document schemas.
func (sv *StructuralValidator) ValidateNode(value interface{}, node *metaschema.Node, path string) []definition.ValidationError {
	var errs []definition.ValidationError
	sv.walk(value, node, path, 0, &errs)
	return errs
}

func (sv *StructuralValidator) walk(value interface{}, node *metaschema.Node, path string, depth int, errs *[]definition.ValidationError) {
	if node == nil {
		return
	}

	// Recursive schemas are expressed as named references; resolve before
	// inspecting the node itself.
	for node.Ref != "" {
		resolved, ok := sv.registry.Resolve(node.Ref)
		if !ok {
			*errs = append(*errs, structuralError(path, constants.CodeUnresolvedSchema,
				fmt.Sprintf("unresolved schema reference %q", node.Ref)))
			return
		}
		node = resolved
	}

	if depth > constants.MaxSchemaDepth {
		*errs = append(*errs, structuralError(path, constants.CodeDepthExceeded,
			fmt.Sprintf("definition exceeds maximum nesting depth of %d", constants.MaxSchemaDepth)))
		return
	}

	switch node.Type {
	case metaschema.TypeAny, "":
		return
	case metaschema.TypeString:
		sv.walkString(value, node, path, errs)
	case metaschema.TypeNumber:
		sv.walkNumber(value, node, path, false, errs)
	case metaschema.TypeInteger:
		sv.walkNumber(value, node, path, true, errs)
	case metaschema.TypeBoolean:
		if _, ok := value.(bool); !ok {
			*errs = append(*errs, typeError(path, "boolean", value))
		}
	case metaschema.TypeArray:
		sv.walkArray(value, node, path, depth, errs)
	case metaschema.TypeObject:
		sv.walkObject(value, node, path, depth, errs)
	default:
		*errs = append(*errs, structuralError(path, constants.CodeUnresolvedSchema,
			fmt.Sprintf("meta-schema declares unknown type %q", node.Type)))
	}
}

func (sv *StructuralValidator) walkString(value interface{}, node *metaschema.Node, path string, errs *[]definition.ValidationError) {
	str, ok := value.(string)
	if !ok {
		*errs = append(*errs, typeError(path, "string", value))
		return
	}
	if len(node.Enum) > 0 && !enumContains(node.Enum, str) {
		*errs = append(*errs, structuralError(path, constants.CodeEnumViolation,
			fmt.Sprintf("value %q is not one of the allowed values", str)))
	}
	if node.Pattern != "" && !node.MatchPattern(str) {
		*errs = append(*errs, structuralError(path, constants.CodePatternMismatch,
			fmt.Sprintf("value %q does not match pattern %s", str, node.Pattern)))
	}
	if node.MinLength != nil && len(str) < *node.MinLength {
		*errs = append(*errs, structuralError(path, constants.CodeMinLength,
			fmt.Sprintf("length %d is below the minimum of %d", len(str), *node.MinLength)))
	}
	if node.MaxLength != nil && len(str) > *node.MaxLength {
		*errs = append(*errs, structuralError(path, constants.CodeMaxLength,
			fmt.Sprintf("length %d exceeds the maximum of %d", len(str), *node.MaxLength)))
	}
	if node.Format != "" {
		if err := sv.formats.Validate(node.Format, str, nil); err != nil {
			*errs = append(*errs, definition.ValidationError{
				Kind:     definition.KindFormat,
				Field:    path,
				Code:     constants.CodeInvalidFormat,
				Message:  err.Error(),
				Severity: constants.SeverityError,
			})
		}
	}
}

func (sv *StructuralValidator) walkNumber(value interface{}, node *metaschema.Node, path string, integral bool, errs *[]definition.ValidationError) {
	num, ok := toFloat(value)
	if !ok {
		expected := "number"
		if integral {
			expected = "integer"
		}
		*errs = append(*errs, typeError(path, expected, value))
		return
	}
	if integral && num != math.Trunc(num) {
		*errs = append(*errs, typeError(path, "integer", value))
		return
	}
	if len(node.Enum) > 0 && !enumContains(node.Enum, num) {
		*errs = append(*errs, structuralError(path, constants.CodeEnumViolation,
			fmt.Sprintf("value %v is not one of the allowed values", num)))
	}
	if node.Minimum != nil && num < *node.Minimum {
		*errs = append(*errs, structuralError(path, constants.CodeMinimum,
			fmt.Sprintf("value %v is below the minimum of %v", num, *node.Minimum)))
	}
	if node.Maximum != nil && num > *node.Maximum {
		*errs = append(*errs, structuralError(path, constants.CodeMaximum,
			fmt.Sprintf("value %v exceeds the maximum of %v", num, *node.Maximum)))
	}
}

func (sv *StructuralValidator) walkArray(value interface{}, node *metaschema.Node, path string, depth int, errs *[]definition.ValidationError) {
	items, ok := value.([]interface{})
	if !ok {
		*errs = append(*errs, typeError(path, "array", value))
		return
	}
	if node.MinItems != nil && len(items) < *node.MinItems {
		*errs = append(*errs, structuralError(path, constants.CodeMinItems,
			fmt.Sprintf("array has %d items, below the minimum of %d", len(items), *node.MinItems)))
	}
	if node.MaxItems != nil && len(items) > *node.MaxItems {
		*errs = append(*errs, structuralError(path, constants.CodeMaxItems,
			fmt.Sprintf("array has %d items, exceeding the maximum of %d", len(items), *node.MaxItems)))
	}
	if node.Items != nil {
		for i, item := range items {
			sv.walk(item, node.Items, fmt.Sprintf("%s[%d]", path, i), depth+1, errs)
		}
	}
}

func (sv *StructuralValidator) walkObject(value interface{}, node *metaschema.Node, path string, depth int, errs *[]definition.ValidationError) {
	obj, ok := value.(map[string]interface{})
	if !ok {
		*errs = append(*errs, typeError(path, "object", value))
		return
	}

	for _, required := range node.Required {
		if _, present := obj[required]; !present {
			*errs = append(*errs, structuralError(joinPath(path, required), constants.CodeMissingProperty,
				fmt.Sprintf("required property %q is missing", required)))
		}
	}

	if node.MinProperties != nil && len(obj) < *node.MinProperties {
		*errs = append(*errs, structuralError(path, constants.CodeMinProperties,
			fmt.Sprintf("object has %d properties, below the minimum of %d", len(obj), *node.MinProperties)))
	}

	for key, child := range obj {
		childPath := joinPath(path, key)
		if propSchema, declared := node.Properties[key]; declared {
			sv.walk(child, propSchema, childPath, depth+1, errs)
			continue
		}
		if node.PropertyNamePattern != "" && !node.MatchPropertyName(key) {
			*errs = append(*errs, structuralError(childPath, constants.CodePatternMismatch,
				fmt.Sprintf("name %q does not match pattern %s", key, node.PropertyNamePattern)))
		}
		if node.AdditionalProperties != nil {
			sv.walk(child, node.AdditionalProperties, childPath, depth+1, errs)
			continue
		}
		if !node.AllowAdditional {
			*errs = append(*errs, structuralError(childPath, constants.CodeUnknownProperty,
				fmt.Sprintf("property %q is not allowed here", key)))
		}
	}
}

func structuralError(path, code, message string) definition.ValidationError {
	return definition.ValidationError{
		Kind:     definition.KindStructural,
		Field:    path,
		Code:     code,
		Message:  message,
		Severity: constants.SeverityError,
	}
}

func typeError(path, expected string, value interface{}) definition.ValidationError {
	return structuralError(path, constants.CodeInvalidType,
		fmt.Sprintf("expected %s, got %s", expected, typeName(value)))
}

func typeName(value interface{}) string {
	if value == nil {
		return "null"
	}
	switch value.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32:
		return "number"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return reflect.TypeOf(value).String()
	}
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	default:
		return 0, false
	}
}

func enumContains(enum []interface{}, value interface{}) bool {
	for _, allowed := range enum {
		if num, ok := toFloat(value); ok {
			if allowedNum, ok := toFloat(allowed); ok && num == allowedNum {
				return true
			}
			continue
		}
		if reflect.DeepEqual(allowed, value) {
			return true
		}
	}
	return false
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
