package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schemabase/backend/internal/domain/definition"
	"github.com/schemabase/backend/pkg/constants"
	"github.com/schemabase/backend/pkg/expression"
)

func newSemantic() *SemanticValidator {
	return NewSemanticValidator(expression.NewEngine())
}

func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

func TestSemanticLengthRange(t *testing.T) {
	v := newSemantic()

	def := &definition.CollectionDefinition{
		Name: "customers",
		Fields: map[string]*definition.FieldDefinition{
			"code": {Type: constants.FieldTypeString, MinLength: intPtr(10), MaxLength: intPtr(2)},
		},
	}

	errs := v.ValidateCollection(def)
	err := findByCode(errs, constants.CodeInvalidLengthRange)
	if assert.NotNil(t, err) {
		assert.Equal(t, "fields.code", err.Field)
		assert.Equal(t, constants.SeverityError, err.Severity)
	}

	// The correct ordering produces no finding
	def.Fields["code"].MinLength = intPtr(2)
	def.Fields["code"].MaxLength = intPtr(10)
	assert.Empty(t, v.ValidateCollection(def))
}

func TestSemanticNumericRange(t *testing.T) {
	v := newSemantic()

	for _, fieldType := range []constants.SchemaFieldType{
		constants.FieldTypeNumber, constants.FieldTypeDecimal, constants.FieldTypeInteger,
	} {
		def := &definition.CollectionDefinition{
			Name: "metrics",
			Fields: map[string]*definition.FieldDefinition{
				"v": {Type: fieldType, Min: floatPtr(100), Max: floatPtr(1)},
			},
		}
		errs := v.ValidateCollection(def)
		assert.True(t, hasCode(errs, constants.CodeInvalidRange), "type %s", fieldType)
	}
}

func TestSemanticArrayRules(t *testing.T) {
	v := newSemantic()

	def := &definition.CollectionDefinition{
		Name: "orders",
		Fields: map[string]*definition.FieldDefinition{
			"tags": {Type: constants.FieldTypeArray, MinItems: intPtr(5), MaxItems: intPtr(1)},
		},
	}

	errs := v.ValidateCollection(def)
	assert.True(t, hasCode(errs, constants.CodeInvalidItemsRange))
	err := findByCode(errs, constants.CodeMissingArrayItems)
	if assert.NotNil(t, err) {
		assert.Equal(t, "fields.tags", err.Field)
	}
}

func TestSemanticNestedItemsRecursion(t *testing.T) {
	v := newSemantic()

	def := &definition.CollectionDefinition{
		Name: "orders",
		Fields: map[string]*definition.FieldDefinition{
			"lines": {
				Type: constants.FieldTypeArray,
				Items: &definition.FieldDefinition{
					Type:      constants.FieldTypeString,
					MinLength: intPtr(9),
					MaxLength: intPtr(3),
				},
			},
		},
	}

	errs := v.ValidateCollection(def)
	err := findByCode(errs, constants.CodeInvalidLengthRange)
	if assert.NotNil(t, err) {
		assert.Equal(t, "fields.lines.items", err.Field)
	}
}

func TestSemanticObjectPropertiesRecursion(t *testing.T) {
	v := newSemantic()

	def := &definition.CollectionDefinition{
		Name: "customers",
		Fields: map[string]*definition.FieldDefinition{
			"address": {
				Type: constants.FieldTypeObject,
				Properties: map[string]*definition.FieldDefinition{
					"zip": {Type: constants.FieldTypeString, Pattern: strPtr("[")},
				},
			},
		},
	}

	errs := v.ValidateCollection(def)
	err := findByCode(errs, constants.CodeInvalidPattern)
	if assert.NotNil(t, err) {
		assert.Equal(t, "fields.address.properties.zip.pattern", err.Field)
		assert.Equal(t, definition.KindFormat, err.Kind)
	}
}

func TestSemanticRuleExpression(t *testing.T) {
	v := newSemantic()

	def := &definition.CollectionDefinition{
		Name:   "customers",
		Fields: map[string]*definition.FieldDefinition{"age": {Type: constants.FieldTypeInteger}},
		Rules: []definition.ValidationRule{
			{Name: "adult", Condition: "age >= 18", ErrorMessage: "must be adult"},
			{Name: "broken", Condition: "age >=", ErrorMessage: "never"},
		},
	}

	errs := v.ValidateCollection(def)
	err := findByCode(errs, constants.CodeInvalidRuleExpr)
	if assert.NotNil(t, err) {
		assert.Equal(t, "rules[1].condition", err.Field)
	}
	assert.Len(t, errs, 1)
}

func TestSemanticRelationships(t *testing.T) {
	v := newSemantic()

	def := &definition.CollectionDefinition{
		Name:   "orders",
		Fields: map[string]*definition.FieldDefinition{"total": {Type: constants.FieldTypeNumber}},
		Relationships: map[string]*definition.RelationshipDefinition{
			"customer": {Type: constants.RelationshipBelongsTo, Collection: "customers"},
			"products": {Type: constants.RelationshipManyToMany, Collection: "products"},
		},
	}

	errs := v.ValidateCollection(def)

	foreignKey := findByCode(errs, constants.CodeMissingForeignKey)
	if assert.NotNil(t, foreignKey) {
		assert.Equal(t, constants.SeverityWarning, foreignKey.Severity)
		assert.Contains(t, foreignKey.Message, "customersId")
	}

	junction := findByCode(errs, constants.CodeMissingJunctionTable)
	if assert.NotNil(t, junction) {
		assert.Equal(t, constants.SeverityError, junction.Severity)
	}

	// Explicit foreignField and through clear both findings
	def.Relationships["customer"].ForeignField = strPtr("customerId")
	def.Relationships["products"].Through = strPtr("order_products")
	assert.Empty(t, v.ValidateCollection(def))
}

func TestSemanticCollectionReferences(t *testing.T) {
	v := newSemantic()

	def := &definition.CollectionDefinition{
		Name: "orders",
		Relationships: map[string]*definition.RelationshipDefinition{
			"customer": {Type: constants.RelationshipBelongsTo, Collection: "customers"},
			"ghost":    {Type: constants.RelationshipHasOne, Collection: "phantoms"},
		},
	}

	known := map[string]bool{"orders": true, "customers": true}
	errs := v.ValidateCollectionReferences(def, known)

	assert.Len(t, errs, 1)
	assert.Equal(t, constants.CodeInvalidCollectionRef, errs[0].Code)
	assert.Equal(t, "relationships.ghost", errs[0].Field)
	assert.Equal(t, definition.KindReference, errs[0].Kind)
}

func TestSemanticRBAC(t *testing.T) {
	v := newSemantic()

	def := &definition.RBACDefinition{
		Name: "main",
		Collections: map[string]*definition.RBACRuleSet{
			"customers": {
				Read:  []definition.RBACRule{{Role: "admin", Attributes: []string{"email", "none"}}},
				Write: []definition.RBACRule{{Role: "role with space"}},
				// delete has no rules
			},
		},
	}

	errs := v.ValidateRBAC(def)

	missing := findByCode(errs, constants.CodeMissingRBACRule)
	if assert.NotNil(t, missing) {
		assert.Equal(t, "collections.customers.delete", missing.Field)
	}

	badRole := findByCode(errs, constants.CodeInvalidRoleName)
	if assert.NotNil(t, badRole) {
		assert.Equal(t, "collections.customers.write[0].role", badRole.Field)
	}

	// "none" is a valid attribute literal, identifiers are valid roles
	assert.Nil(t, findByCode(errs, constants.CodeInvalidAttributeName))
}
