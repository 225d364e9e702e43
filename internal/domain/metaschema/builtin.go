package metaschema

import (
	"github.com/schemabase/backend/pkg/constants"
)

// Registered names of the built-in meta-schemas
const (
	SchemaCollection     = "collection"
	SchemaField          = "field"
	SchemaRelationship   = "relationship"
	SchemaIndex          = "index"
	SchemaValidationRule = "validationRule"
	SchemaRBAC           = "rbac"
	SchemaRBACRuleSet    = "rbacRuleSet"
	SchemaRBACRule       = "rbacRule"
	SchemaFunction       = "function"
	SchemaStep           = "step"
)

// BuiltinNodes declares the meta-schemas for every definition kind the
// engine validates. Called once per engine construction; the result is
// compiled into an immutable Registry.
func BuiltinNodes() map[string]*Node {
	return map[string]*Node{
		SchemaCollection:     collectionSchema(),
		SchemaField:          fieldSchema(),
		SchemaRelationship:   relationshipSchema(),
		SchemaIndex:          indexSchema(),
		SchemaValidationRule: validationRuleSchema(),
		SchemaRBAC:           rbacSchema(),
		SchemaRBACRuleSet:    rbacRuleSetSchema(),
		SchemaRBACRule:       rbacRuleSchema(),
		SchemaFunction:       functionSchema(),
		SchemaStep:           stepSchema(),
	}
}

// CompileBuiltin compiles the built-in meta-schemas. An error here is a
// defect in the engine itself and must abort startup.
func CompileBuiltin() (*Registry, error) {
	return Compile(BuiltinNodes())
}

func collectionSchema() *Node {
	return &Node{
		Type:     TypeObject,
		Required: []string{"name", "fields"},
		Properties: map[string]*Node{
			"name": {Type: TypeString, Pattern: constants.IdentifierPattern},
			"fields": {
				Type:                 TypeObject,
				MinProperties:        IntPtr(1),
				PropertyNamePattern:  constants.IdentifierPattern,
				AdditionalProperties: &Node{Ref: SchemaField},
			},
			"relationships": {
				Type:                 TypeObject,
				PropertyNamePattern:  constants.IdentifierPattern,
				AdditionalProperties: &Node{Ref: SchemaRelationship},
			},
			"indexes": {Type: TypeArray, Items: &Node{Ref: SchemaIndex}},
			"rules":   {Type: TypeArray, Items: &Node{Ref: SchemaValidationRule}},
			"timestamps": {Type: TypeBoolean},
			"softDelete": {Type: TypeBoolean},
		},
	}
}

// fieldSchema is recursive: items and properties refer back to the field
// schema by name, never by pointer.
func fieldSchema() *Node {
	return &Node{
		Type:     TypeObject,
		Required: []string{"type"},
		Properties: map[string]*Node{
			"type":      {Type: TypeString, Enum: StringEnum(constants.GetAllFieldTypes())},
			"required":  {Type: TypeBoolean},
			"unique":    {Type: TypeBoolean},
			"default":   {Type: TypeAny},
			"minLength": {Type: TypeInteger, Minimum: FloatPtr(0)},
			"maxLength": {Type: TypeInteger, Minimum: FloatPtr(0)},
			"min":       {Type: TypeNumber},
			"max":       {Type: TypeNumber},
			"minItems":  {Type: TypeInteger, Minimum: FloatPtr(0)},
			"maxItems":  {Type: TypeInteger, Minimum: FloatPtr(0)},
			"pattern":   {Type: TypeString},
			"enum":      {Type: TypeArray, Items: &Node{Type: TypeAny}},
			"format":    {Type: TypeString},
			"items":     {Ref: SchemaField},
			"properties": {
				Type:                 TypeObject,
				PropertyNamePattern:  constants.IdentifierPattern,
				AdditionalProperties: &Node{Ref: SchemaField},
			},
		},
	}
}

func relationshipSchema() *Node {
	return &Node{
		Type:     TypeObject,
		Required: []string{"type", "collection"},
		Properties: map[string]*Node{
			"type":         {Type: TypeString, Enum: StringEnum(constants.GetAllRelationshipTypes())},
			"collection":   {Type: TypeString, Pattern: constants.IdentifierPattern},
			"foreignField": {Type: TypeString, Pattern: constants.IdentifierPattern},
			"localField":   {Type: TypeString, Pattern: constants.IdentifierPattern},
			"through":      {Type: TypeString, Pattern: constants.IdentifierPattern},
		},
	}
}

func indexSchema() *Node {
	return &Node{
		Type:     TypeObject,
		Required: []string{"fields"},
		Properties: map[string]*Node{
			"fields": {
				Type:                 TypeObject,
				MinProperties:        IntPtr(1),
				AdditionalProperties: &Node{Type: TypeAny},
			},
			"unique":             {Type: TypeBoolean},
			"sparse":             {Type: TypeBoolean},
			"background":         {Type: TypeBoolean},
			"expireAfterSeconds": {Type: TypeInteger, Minimum: FloatPtr(0)},
		},
	}
}

func validationRuleSchema() *Node {
	return &Node{
		Type:     TypeObject,
		Required: []string{"name", "condition", "errorMessage"},
		Properties: map[string]*Node{
			"name":         {Type: TypeString, Pattern: constants.IdentifierPattern},
			"condition":    {Type: TypeString},
			"errorMessage": {Type: TypeString},
			"active":       {Type: TypeBoolean},
		},
	}
}

func rbacSchema() *Node {
	return &Node{
		Type:     TypeObject,
		Required: []string{"name", "collections"},
		Properties: map[string]*Node{
			"name": {Type: TypeString, Pattern: constants.IdentifierPattern},
			"collections": {
				Type:                 TypeObject,
				PropertyNamePattern:  constants.IdentifierPattern,
				AdditionalProperties: &Node{Ref: SchemaRBACRuleSet},
			},
		},
	}
}

func rbacRuleSetSchema() *Node {
	return &Node{
		Type: TypeObject,
		Properties: map[string]*Node{
			"read":   {Type: TypeArray, Items: &Node{Ref: SchemaRBACRule}},
			"write":  {Type: TypeArray, Items: &Node{Ref: SchemaRBACRule}},
			"delete": {Type: TypeArray, Items: &Node{Ref: SchemaRBACRule}},
		},
	}
}

func rbacRuleSchema() *Node {
	return &Node{
		Type:     TypeObject,
		Required: []string{"role"},
		Properties: map[string]*Node{
			"role":       {Type: TypeString},
			"attributes": {Type: TypeArray, Items: &Node{Type: TypeString}},
		},
	}
}

func functionSchema() *Node {
	return &Node{
		Type:     TypeObject,
		Required: []string{"name", "steps"},
		Properties: map[string]*Node{
			"name":     {Type: TypeString, Pattern: constants.IdentifierPattern},
			"version":  {Type: TypeString},
			"endpoint": {Type: TypeString},
			"steps":    {Type: TypeArray, MinItems: IntPtr(1), Items: &Node{Ref: SchemaStep}},
			"hooks": {
				Type: TypeObject,
				Properties: map[string]*Node{
					"before": {Type: TypeArray, Items: &Node{Type: TypeString}},
					"after":  {Type: TypeArray, Items: &Node{Type: TypeString}},
				},
			},
			"cache": {
				Type: TypeObject,
				Properties: map[string]*Node{
					"enabled": {Type: TypeBoolean},
					"ttl":     {Type: TypeNumber, Minimum: FloatPtr(0)},
				},
			},
			"timeout": {Type: TypeInteger, Minimum: FloatPtr(0)},
		},
	}
}

// stepSchema is recursive through then/else and deliberately tolerant of
// extra payload keys: each step type carries its own loosely shaped body.
func stepSchema() *Node {
	return &Node{
		Type:            TypeObject,
		Required:        []string{"id", "type"},
		AllowAdditional: true,
		Properties: map[string]*Node{
			"id":         {Type: TypeString, Pattern: constants.IdentifierPattern},
			"type":       {Type: TypeString, Enum: StringEnum(constants.GetAllStepTypes())},
			"collection": {Type: TypeString},
			"script":     {Type: TypeString},
			"condition":  {Type: TypeString},
			"pipeline":   {Type: TypeAny},
			"query":      {Type: TypeAny},
			"document":   {Type: TypeAny},
			"documents":  {Type: TypeAny},
			"update":     {Type: TypeAny},
			"url":        {Type: TypeString},
			"method":     {Type: TypeString},
			"then":       {Ref: SchemaStep},
			"else":       {Type: TypeArray, Items: &Node{Ref: SchemaStep}},
		},
	}
}
