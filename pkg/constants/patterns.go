package constants

// Naming and format patterns shared by the meta-schemas and validators
const (
	// IdentifierPattern constrains collection, field, relationship, step,
	// role and attribute names
	IdentifierPattern = `^[a-zA-Z_][a-zA-Z0-9_]*$`

	// SemverPattern constrains function definition versions
	SemverPattern = `^\d+\.\d+\.\d+$`

	// ObjectIDPattern matches a 24-character hex object id
	ObjectIDPattern = `^[a-fA-F0-9]{24}$`

	// StepReferencePattern matches {{steps.<id>....}} template references
	// inside serialized step payloads
	StepReferencePattern = `\{\{steps\.([a-zA-Z_][a-zA-Z0-9_]*)\.`

	// FunctionsEndpointPrefix is the conventional namespace for function
	// endpoints; non-conforming endpoints are flagged as warnings
	FunctionsEndpointPrefix = "/api/functions/"

	// RBACNoneLiteral is the role/attribute literal that grants nothing
	RBACNoneLiteral = "none"
)

// MaxSchemaDepth bounds recursive walks over field and step definitions.
// Recursive meta-schemas are resolved by name, so a hostile payload can
// nest arbitrarily deep; the walk stops here instead of blowing the stack.
const MaxSchemaDepth = 32
