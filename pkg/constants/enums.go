package constants

// SchemaFieldType represents the declared type of a collection field
type SchemaFieldType string

const (
	FieldTypeString   SchemaFieldType = "string"
	FieldTypeNumber   SchemaFieldType = "number"
	FieldTypeBoolean  SchemaFieldType = "boolean"
	FieldTypeDate     SchemaFieldType = "date"
	FieldTypeObjectID SchemaFieldType = "objectId"
	FieldTypeArray    SchemaFieldType = "array"
	FieldTypeObject   SchemaFieldType = "object"
	FieldTypeMixed    SchemaFieldType = "mixed"
	FieldTypeBuffer   SchemaFieldType = "buffer"
	FieldTypeDecimal  SchemaFieldType = "decimal"
	FieldTypeInteger  SchemaFieldType = "integer"
)

// GetAllFieldTypes returns all valid field types as a slice of strings
func GetAllFieldTypes() []string {
	return []string{
		string(FieldTypeString),
		string(FieldTypeNumber),
		string(FieldTypeBoolean),
		string(FieldTypeDate),
		string(FieldTypeObjectID),
		string(FieldTypeArray),
		string(FieldTypeObject),
		string(FieldTypeMixed),
		string(FieldTypeBuffer),
		string(FieldTypeDecimal),
		string(FieldTypeInteger),
	}
}

// IsNumericFieldType reports whether min/max range constraints apply
func IsNumericFieldType(t SchemaFieldType) bool {
	switch t {
	case FieldTypeNumber, FieldTypeDecimal, FieldTypeInteger:
		return true
	}
	return false
}

// RelationshipType represents the kind of edge between two collections
type RelationshipType string

const (
	RelationshipHasOne     RelationshipType = "hasOne"
	RelationshipHasMany    RelationshipType = "hasMany"
	RelationshipBelongsTo  RelationshipType = "belongsTo"
	RelationshipManyToMany RelationshipType = "manyToMany"
)

// GetAllRelationshipTypes returns all valid relationship types
func GetAllRelationshipTypes() []string {
	return []string{
		string(RelationshipHasOne),
		string(RelationshipHasMany),
		string(RelationshipBelongsTo),
		string(RelationshipManyToMany),
	}
}

// StepType represents the operation a workflow step performs
type StepType string

const (
	StepTypeFind        StepType = "find"
	StepTypeFindOne     StepType = "findOne"
	StepTypeInsertOne   StepType = "insertOne"
	StepTypeInsertMany  StepType = "insertMany"
	StepTypeUpdateOne   StepType = "updateOne"
	StepTypeUpdateMany  StepType = "updateMany"
	StepTypeDeleteOne   StepType = "deleteOne"
	StepTypeDeleteMany  StepType = "deleteMany"
	StepTypeAggregate   StepType = "aggregate"
	StepTypeTransform   StepType = "transform"
	StepTypeConditional StepType = "conditional"
	StepTypeHTTP        StepType = "http"
	StepTypeDelay       StepType = "delay"
)

// GetAllStepTypes returns all valid workflow step types
func GetAllStepTypes() []string {
	return []string{
		string(StepTypeFind),
		string(StepTypeFindOne),
		string(StepTypeInsertOne),
		string(StepTypeInsertMany),
		string(StepTypeUpdateOne),
		string(StepTypeUpdateMany),
		string(StepTypeDeleteOne),
		string(StepTypeDeleteMany),
		string(StepTypeAggregate),
		string(StepTypeTransform),
		string(StepTypeConditional),
		string(StepTypeHTTP),
		string(StepTypeDelay),
	}
}

// RBACAction represents one of the guarded actions in a policy rule set
type RBACAction string

const (
	RBACActionRead   RBACAction = "read"
	RBACActionWrite  RBACAction = "write"
	RBACActionDelete RBACAction = "delete"
)

// GetAllRBACActions returns the guarded actions every rule set must cover
func GetAllRBACActions() []RBACAction {
	return []RBACAction{RBACActionRead, RBACActionWrite, RBACActionDelete}
}

// Severity classifies a validation finding
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)
