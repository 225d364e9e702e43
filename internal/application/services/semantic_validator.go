package services

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/schemabase/backend/internal/domain/definition"
	"github.com/schemabase/backend/pkg/constants"
	"github.com/schemabase/backend/pkg/expression"
)

var identifierOrNone = regexp.MustCompile(constants.IdentifierPattern)

// SemanticValidator applies the domain rules a shape check cannot express:
// range consistency, array item requirements, relationship completeness,
// rule expression compilability. It runs only on definitions that already
// passed structural validation.
type SemanticValidator struct {
	expressions *expression.Engine
}

// NewSemanticValidator creates a new SemanticValidator
func NewSemanticValidator(expressions *expression.Engine) *SemanticValidator {
	return &SemanticValidator{expressions: expressions}
}

// ValidateCollection applies all per-collection semantic rules
func (v *SemanticValidator) ValidateCollection(def *definition.CollectionDefinition) []definition.ValidationError {
	var errs []definition.ValidationError

	for _, name := range sortedFieldKeys(def.Fields) {
		v.validateField(joinPath("fields", name), def.Fields[name], 0, &errs)
	}
	for _, name := range sortedRelationshipKeys(def.Relationships) {
		v.validateRelationship(joinPath("relationships", name), def.Relationships[name], &errs)
	}
	for i, rule := range def.Rules {
		if err := v.expressions.CheckSyntax(rule.Condition); err != nil {
			errs = append(errs, definition.ValidationError{
				Kind:     definition.KindFormat,
				Field:    fmt.Sprintf("rules[%d].condition", i),
				Code:     constants.CodeInvalidRuleExpr,
				Message:  fmt.Sprintf("rule %q has an uncompilable condition: %v", rule.Name, err),
				Severity: constants.SeverityError,
			})
		}
	}

	return errs
}

// ValidateField applies the semantic field rules to a single field
// definition, recursing through array items and object properties
func (v *SemanticValidator) ValidateField(path string, field *definition.FieldDefinition) []definition.ValidationError {
	var errs []definition.ValidationError
	v.validateField(path, field, 0, &errs)
	return errs
}

func (v *SemanticValidator) validateField(path string, field *definition.FieldDefinition, depth int, errs *[]definition.ValidationError) {
	if field == nil || depth > constants.MaxSchemaDepth {
		return
	}

	switch {
	case field.Type == constants.FieldTypeString:
		if field.MinLength != nil && field.MaxLength != nil && *field.MinLength > *field.MaxLength {
			*errs = append(*errs, semanticError(path, constants.CodeInvalidLengthRange,
				fmt.Sprintf("minLength %d exceeds maxLength %d", *field.MinLength, *field.MaxLength)))
		}
	case constants.IsNumericFieldType(field.Type):
		if field.Min != nil && field.Max != nil && *field.Min > *field.Max {
			*errs = append(*errs, semanticError(path, constants.CodeInvalidRange,
				fmt.Sprintf("min %v exceeds max %v", *field.Min, *field.Max)))
		}
	case field.Type == constants.FieldTypeArray:
		if field.MinItems != nil && field.MaxItems != nil && *field.MinItems > *field.MaxItems {
			*errs = append(*errs, semanticError(path, constants.CodeInvalidItemsRange,
				fmt.Sprintf("minItems %d exceeds maxItems %d", *field.MinItems, *field.MaxItems)))
		}
		if field.Items == nil {
			*errs = append(*errs, semanticError(path, constants.CodeMissingArrayItems,
				"array fields must declare the shape of their items"))
		} else {
			v.validateField(path+".items", field.Items, depth+1, errs)
		}
	case field.Type == constants.FieldTypeObject:
		for _, name := range sortedFieldKeys(field.Properties) {
			v.validateField(path+".properties."+name, field.Properties[name], depth+1, errs)
		}
	}

	if field.Pattern != nil {
		if _, err := regexp.Compile(*field.Pattern); err != nil {
			*errs = append(*errs, definition.ValidationError{
				Kind:     definition.KindFormat,
				Field:    path + ".pattern",
				Code:     constants.CodeInvalidPattern,
				Message:  fmt.Sprintf("pattern does not compile: %v", err),
				Severity: constants.SeverityError,
			})
		}
	}
}

func (v *SemanticValidator) validateRelationship(path string, rel *definition.RelationshipDefinition, errs *[]definition.ValidationError) {
	if rel == nil {
		return
	}

	// belongsTo without foreignField is only a warning: the data path
	// derives the default key <collection>Id. manyToMany has no such
	// default, so a missing junction collection is an error.
	if rel.Type == constants.RelationshipBelongsTo && rel.ForeignField == nil {
		*errs = append(*errs, definition.ValidationError{
			Kind:     definition.KindSemantic,
			Field:    path,
			Code:     constants.CodeMissingForeignKey,
			Message:  fmt.Sprintf("belongsTo relationship has no foreignField; defaulting to %sId", rel.Collection),
			Severity: constants.SeverityWarning,
		})
	}
	if rel.Type == constants.RelationshipManyToMany && rel.Through == nil {
		*errs = append(*errs, semanticError(path, constants.CodeMissingJunctionTable,
			"manyToMany relationships must declare a junction collection via through"))
	}
}

// ValidateCollectionReferences checks every relationship target against the
// full set of known collections. Only meaningful when the caller can supply
// that set atomically; per-definition validation never calls this.
func (v *SemanticValidator) ValidateCollectionReferences(def *definition.CollectionDefinition, known map[string]bool) []definition.ValidationError {
	var errs []definition.ValidationError
	for _, name := range sortedRelationshipKeys(def.Relationships) {
		rel := def.Relationships[name]
		if !known[rel.Collection] {
			errs = append(errs, definition.ValidationError{
				Kind:     definition.KindReference,
				Field:    joinPath("relationships", name),
				Code:     constants.CodeInvalidCollectionRef,
				Message:  fmt.Sprintf("relationship targets unknown collection %q", rel.Collection),
				Severity: constants.SeverityError,
			})
		}
	}
	return errs
}

// ValidateRBAC checks rule set completeness and role/attribute naming
func (v *SemanticValidator) ValidateRBAC(def *definition.RBACDefinition) []definition.ValidationError {
	var errs []definition.ValidationError

	collections := make([]string, 0, len(def.Collections))
	for name := range def.Collections {
		collections = append(collections, name)
	}
	sort.Strings(collections)

	for _, colName := range collections {
		ruleSet := def.Collections[colName]
		if ruleSet == nil {
			ruleSet = &definition.RBACRuleSet{}
		}
		base := joinPath("collections", colName)
		v.validateRuleAction(base+".read", ruleSet.Read, &errs)
		v.validateRuleAction(base+".write", ruleSet.Write, &errs)
		v.validateRuleAction(base+".delete", ruleSet.Delete, &errs)
	}

	return errs
}

func (v *SemanticValidator) validateRuleAction(path string, rules []definition.RBACRule, errs *[]definition.ValidationError) {
	if len(rules) == 0 {
		*errs = append(*errs, semanticError(path, constants.CodeMissingRBACRule,
			"every action requires at least one rule"))
		return
	}
	for i, rule := range rules {
		rulePath := fmt.Sprintf("%s[%d]", path, i)
		if !isPolicyName(rule.Role) {
			*errs = append(*errs, semanticError(rulePath+".role", constants.CodeInvalidRoleName,
				fmt.Sprintf("role %q must be an identifier or the literal %q", rule.Role, constants.RBACNoneLiteral)))
		}
		for j, attr := range rule.Attributes {
			if !isPolicyName(attr) {
				*errs = append(*errs, semanticError(fmt.Sprintf("%s.attributes[%d]", rulePath, j), constants.CodeInvalidAttributeName,
					fmt.Sprintf("attribute %q must be an identifier or the literal %q", attr, constants.RBACNoneLiteral)))
			}
		}
	}
}

func isPolicyName(name string) bool {
	return name == constants.RBACNoneLiteral || identifierOrNone.MatchString(name)
}

func semanticError(path, code, message string) definition.ValidationError {
	return definition.ValidationError{
		Kind:     definition.KindSemantic,
		Field:    path,
		Code:     code,
		Message:  message,
		Severity: constants.SeverityError,
	}
}

func sortedFieldKeys(fields map[string]*definition.FieldDefinition) []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedRelationshipKeys(rels map[string]*definition.RelationshipDefinition) []string {
	keys := make([]string, 0, len(rels))
	for key := range rels {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
