package constants

// Structural error codes, derived from the violated constraint kind
const (
	CodeInvalidType       = "INVALID_TYPE"
	CodeMissingProperty   = "MISSING_REQUIRED_PROPERTY"
	CodeEnumViolation     = "ENUM_VIOLATION"
	CodePatternMismatch   = "PATTERN_MISMATCH"
	CodeMinLength         = "MIN_LENGTH_VIOLATION"
	CodeMaxLength         = "MAX_LENGTH_VIOLATION"
	CodeMinimum           = "MINIMUM_VIOLATION"
	CodeMaximum           = "MAXIMUM_VIOLATION"
	CodeMinItems          = "MIN_ITEMS_VIOLATION"
	CodeMaxItems          = "MAX_ITEMS_VIOLATION"
	CodeMinProperties     = "MIN_PROPERTIES_VIOLATION"
	CodeUnknownProperty   = "UNKNOWN_PROPERTY"
	CodeInvalidFormat     = "INVALID_FORMAT"
	CodeDepthExceeded     = "MAX_DEPTH_EXCEEDED"
	CodeUnresolvedSchema  = "UNRESOLVED_SCHEMA_REFERENCE"
	CodeInvalidDefinition = "INVALID_DEFINITION"
)

// Semantic error codes for collection definitions
const (
	CodeInvalidLengthRange = "INVALID_LENGTH_RANGE"
	CodeInvalidRange       = "INVALID_RANGE"
	CodeInvalidItemsRange  = "INVALID_ITEMS_RANGE"
	CodeMissingArrayItems  = "MISSING_ARRAY_ITEMS"
	CodeInvalidPattern     = "INVALID_PATTERN"
	CodeInvalidRuleExpr    = "INVALID_RULE_EXPRESSION"
)

// Semantic error codes for relationship definitions
const (
	CodeMissingForeignKey     = "MISSING_FOREIGN_KEY"
	CodeMissingJunctionTable  = "MISSING_JUNCTION_TABLE"
	CodeInvalidCollectionRef  = "INVALID_COLLECTION_REFERENCE"
	CodeCircularDependency    = "CIRCULAR_DEPENDENCY"
	CodeMissingRBACRule       = "MISSING_RBAC_RULE"
	CodeInvalidRoleName       = "INVALID_ROLE_NAME"
	CodeInvalidAttributeName  = "INVALID_ATTRIBUTE_NAME"
)

// Workflow step validation codes
const (
	CodeDuplicateStepID          = "DUPLICATE_STEP_ID"
	CodeInvalidStepReference     = "INVALID_STEP_REFERENCE"
	CodeMissingTransformScript   = "MISSING_TRANSFORM_SCRIPT"
	CodeMissingAggregatePipeline = "MISSING_AGGREGATE_PIPELINE"
	CodeInvalidVersionFormat     = "INVALID_VERSION_FORMAT"
	CodeInvalidEndpointFormat    = "INVALID_ENDPOINT_FORMAT"
	CodeInvalidStepCondition     = "INVALID_STEP_CONDITION"
)
