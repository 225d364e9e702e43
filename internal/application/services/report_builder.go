package services

import (
	"github.com/schemabase/backend/internal/domain/definition"
	"github.com/schemabase/backend/pkg/constants"
)

// suggestionByCode maps finding codes to one-line remediation hints.
// Suggestions are deduplicated per code, so a definition with forty
// pattern problems still gets the hint once.
var suggestionByCode = map[string]string{
	constants.CodeMissingArrayItems:     "array fields must specify the type of their items",
	constants.CodeInvalidLengthRange:    "ensure minLength does not exceed maxLength",
	constants.CodeInvalidRange:          "ensure min does not exceed max",
	constants.CodeInvalidItemsRange:     "ensure minItems does not exceed maxItems",
	constants.CodeInvalidPattern:        "field patterns must be valid regular expressions",
	constants.CodeInvalidRuleExpr:       "validation rule conditions must be valid expressions",
	constants.CodeMissingForeignKey:     "declare foreignField explicitly on belongsTo relationships",
	constants.CodeMissingJunctionTable:  "manyToMany relationships require a through collection",
	constants.CodeInvalidCollectionRef:  "relationships may only target registered collections",
	constants.CodeCircularDependency:    "review relationship definitions to eliminate circular dependencies",
	constants.CodeMissingRBACRule:       "define at least one rule per RBAC action",
	constants.CodeDuplicateStepID:       "every workflow step needs a unique id",
	constants.CodeInvalidStepReference:  "template references may only name declared steps",
	constants.CodeInvalidVersionFormat:  "use semantic versioning, for example 1.0.0",
	constants.CodeInvalidEndpointFormat: "custom endpoints belong under " + constants.FunctionsEndpointPrefix,
}

// ReportBuilder turns a flat finding list into the report shape the API
// returns: findings split by severity plus deduplicated suggestions.
type ReportBuilder struct{}

// NewReportBuilder creates a new ReportBuilder
func NewReportBuilder() *ReportBuilder {
	return &ReportBuilder{}
}

// BuildReport assembles the final validation report. Valid is true iff no
// error-severity finding exists; warnings alone never fail a definition.
// def may be nil when the definition did not decode.
func (rb *ReportBuilder) BuildReport(def *definition.CollectionDefinition, errs []definition.ValidationError) *definition.ValidationReport {
	report := &definition.ValidationReport{
		Valid:       true,
		Errors:      []definition.ValidationError{},
		Warnings:    []definition.ValidationError{},
		Suggestions: []string{},
	}

	suggested := make(map[string]bool)
	for _, e := range errs {
		if e.IsError() {
			report.Valid = false
			report.Errors = append(report.Errors, e)
		} else {
			report.Warnings = append(report.Warnings, e)
		}
		if hint, ok := suggestionByCode[e.Code]; ok && !suggested[e.Code] {
			suggested[e.Code] = true
			report.Suggestions = append(report.Suggestions, hint)
		}
	}

	if def != nil && len(def.Fields) == 0 {
		report.Suggestions = append(report.Suggestions, "define at least one field for this collection")
	}

	return report
}
