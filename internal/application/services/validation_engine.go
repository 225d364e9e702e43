package services

import (
	"fmt"

	"github.com/schemabase/backend/internal/domain/definition"
	"github.com/schemabase/backend/internal/domain/metaschema"
	"github.com/schemabase/backend/pkg/constants"
	"github.com/schemabase/backend/pkg/expression"
	"github.com/schemabase/backend/pkg/fieldtypes"
	"github.com/schemabase/backend/pkg/validator"
)

// ValidationEngine is the facade over the whole validation pipeline:
// structural checks against the compiled meta-schemas, semantic checks on
// the decoded definitions, cross-definition reference and cycle analysis,
// and schema projection for the data path. The engine is stateless apart
// from its immutable compiled schemas and safe for concurrent use.
type ValidationEngine struct {
	schemas    *metaschema.Registry
	structural *StructuralValidator
	semantic   *SemanticValidator
	graph      *DependencyGraphAnalyzer
	workflow   *WorkflowValidator
	projector  *SchemaProjector
	reports    *ReportBuilder
}

// NewValidationEngine compiles the built-in meta-schemas and wires the
// pipeline. A compile error is a defect in the engine, not user input.
func NewValidationEngine() (*ValidationEngine, error) {
	schemas, err := metaschema.CompileBuiltin()
	if err != nil {
		return nil, fmt.Errorf("failed to compile meta-schemas: %w", err)
	}
	expressions := expression.NewEngine()
	return &ValidationEngine{
		schemas:    schemas,
		structural: NewStructuralValidator(schemas, validator.GetRegistry()),
		semantic:   NewSemanticValidator(expressions),
		graph:      NewDependencyGraphAnalyzer(),
		workflow:   NewWorkflowValidator(expressions),
		projector:  NewSchemaProjector(fieldtypes.GetRegistry()),
		reports:    NewReportBuilder(),
	}, nil
}

// MustNewValidationEngine is NewValidationEngine for the startup path
func MustNewValidationEngine() *ValidationEngine {
	engine, err := NewValidationEngine()
	if err != nil {
		panic(err)
	}
	return engine
}

// ValidateCollectionDefinition runs the structural pass, and on success
// decodes the value and runs the semantic pass. Structural failures stop
// the pipeline: semantic rules assume a well-shaped definition.
func (e *ValidationEngine) ValidateCollectionDefinition(value map[string]interface{}) *definition.ValidationResult {
	result := e.structural.ValidateDefinition(value, metaschema.SchemaCollection)
	if !result.Valid {
		return result
	}

	def, err := definition.CollectionFromValue(value)
	if err != nil {
		result.Merge([]definition.ValidationError{decodeError(err)})
		return result
	}

	result.Merge(e.semantic.ValidateCollection(def))
	return result
}

// ValidateFunctionDefinition runs the structural pass and then the
// workflow step analysis
func (e *ValidationEngine) ValidateFunctionDefinition(value map[string]interface{}) *definition.ValidationResult {
	result := e.structural.ValidateDefinition(value, metaschema.SchemaFunction)
	if !result.Valid {
		return result
	}

	def, err := definition.FunctionFromValue(value)
	if err != nil {
		result.Merge([]definition.ValidationError{decodeError(err)})
		return result
	}

	result.Merge(e.workflow.ValidateFunction(def))
	return result
}

// ValidateRBACDefinition runs the structural pass and then the RBAC
// completeness and naming checks
func (e *ValidationEngine) ValidateRBACDefinition(value map[string]interface{}) *definition.ValidationResult {
	result := e.structural.ValidateDefinition(value, metaschema.SchemaRBAC)
	if !result.Valid {
		return result
	}

	def, err := definition.RBACFromValue(value)
	if err != nil {
		result.Merge([]definition.ValidationError{decodeError(err)})
		return result
	}

	result.Merge(e.semantic.ValidateRBAC(def))
	return result
}

// ValidateFieldDefinition validates one raw field definition outside the
// context of a whole collection, reporting at the path fields.<name>
func (e *ValidationEngine) ValidateFieldDefinition(name string, value map[string]interface{}) []definition.ValidationError {
	node, _ := e.schemas.Resolve(metaschema.SchemaField)
	path := joinPath("fields", name)

	errs := e.structural.ValidateNode(value, node, path)
	if len(errs) > 0 {
		return errs
	}

	field, err := definition.FieldFromValue(value)
	if err != nil {
		return []definition.ValidationError{decodeError(err)}
	}
	return e.semantic.ValidateField(path, field)
}

// ProjectFieldSchema derives the structural schema for one field
func (e *ValidationEngine) ProjectFieldSchema(field *definition.FieldDefinition) *metaschema.Node {
	return e.projector.ProjectFieldSchema(field)
}

// ValidateDataAgainstField validates one data value against a field's
// projected schema. A nil value on a required field is a missing property;
// a nil value on an optional field passes without projection.
func (e *ValidationEngine) ValidateDataAgainstField(data interface{}, field *definition.FieldDefinition, fieldName string) []definition.ValidationError {
	if data == nil {
		if field != nil && field.Required {
			return []definition.ValidationError{{
				Kind:     definition.KindStructural,
				Field:    fieldName,
				Code:     constants.CodeMissingProperty,
				Message:  fmt.Sprintf("required field %q is missing", fieldName),
				Severity: constants.SeverityError,
			}}
		}
		return nil
	}
	return e.structural.ValidateNode(data, e.projector.ProjectFieldSchema(field), fieldName)
}

// GenerateDocumentSchema projects a collection into its whole-document
// schema
func (e *ValidationEngine) GenerateDocumentSchema(col *definition.CollectionDefinition) *metaschema.Node {
	return e.projector.GenerateDocumentSchema(col)
}

// ValidateDocument validates an instance document against a collection's
// projected document schema
func (e *ValidationEngine) ValidateDocument(col *definition.CollectionDefinition, data map[string]interface{}) *definition.ValidationResult {
	schema := e.projector.GenerateDocumentSchema(col)
	return definition.NewValidationResult(e.structural.ValidateNode(data, schema, ""))
}

// ValidateCollectionReferences checks relationship targets against the
// full known collection set
func (e *ValidationEngine) ValidateCollectionReferences(def *definition.CollectionDefinition, known map[string]bool) []definition.ValidationError {
	return e.semantic.ValidateCollectionReferences(def, known)
}

// DetectCircularDependencies analyzes the relationship graph of the full
// collection set
func (e *ValidationEngine) DetectCircularDependencies(collections map[string]*definition.CollectionDefinition) []definition.ValidationError {
	return e.graph.DetectCircularDependencies(collections)
}

// BuildReport assembles the severity-split report for a finding list
func (e *ValidationEngine) BuildReport(def *definition.CollectionDefinition, errs []definition.ValidationError) *definition.ValidationReport {
	return e.reports.BuildReport(def, errs)
}

func decodeError(err error) definition.ValidationError {
	return definition.ValidationError{
		Kind:     definition.KindStructural,
		Field:    "",
		Code:     constants.CodeInvalidDefinition,
		Message:  err.Error(),
		Severity: constants.SeverityError,
	}
}
