package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/schemabase/backend/internal/domain/definition"
	"github.com/schemabase/backend/pkg/constants"
	"github.com/schemabase/backend/pkg/expression"
)

// WorkflowValidator validates the step graph of a structurally valid
// function definition: id uniqueness across top level and nested branches,
// per-type payload requirements, and resolution of template references.
type WorkflowValidator struct {
	expressions   *expression.Engine
	refPattern    *regexp.Regexp
	semverPattern *regexp.Regexp
}

// NewWorkflowValidator creates a new WorkflowValidator
func NewWorkflowValidator(expressions *expression.Engine) *WorkflowValidator {
	return &WorkflowValidator{
		expressions:   expressions,
		refPattern:    regexp.MustCompile(constants.StepReferencePattern),
		semverPattern: regexp.MustCompile(constants.SemverPattern),
	}
}

// ValidateFunction runs every workflow-level check on def
func (wv *WorkflowValidator) ValidateFunction(def *definition.FunctionDefinition) []definition.ValidationError {
	var errs []definition.ValidationError

	if !wv.semverPattern.MatchString(def.Version) {
		errs = append(errs, definition.ValidationError{
			Kind:     definition.KindFormat,
			Field:    "version",
			Code:     constants.CodeInvalidVersionFormat,
			Message:  fmt.Sprintf("version %q must match <major>.<minor>.<patch>", def.Version),
			Severity: constants.SeverityError,
		})
	}

	if def.Endpoint != "" && !strings.HasPrefix(def.Endpoint, constants.FunctionsEndpointPrefix) {
		errs = append(errs, definition.ValidationError{
			Kind:     definition.KindSemantic,
			Field:    "endpoint",
			Code:     constants.CodeInvalidEndpointFormat,
			Message:  fmt.Sprintf("endpoint %q is outside the %s namespace", def.Endpoint, constants.FunctionsEndpointPrefix),
			Severity: constants.SeverityWarning,
		})
	}

	// Nested branch ids fold into the same flat id-space as top-level
	// ids: a reference to a nested id from anywhere is valid.
	declared := make(map[string]bool)
	for _, step := range def.Steps {
		wv.collectStepIDs(step, declared, &errs)
	}

	for _, step := range def.Steps {
		wv.checkStepPayload(step, &errs)
		wv.checkTemplateReferences(step, declared, &errs)
	}

	return errs
}

func (wv *WorkflowValidator) collectStepIDs(step *definition.StepDefinition, declared map[string]bool, errs *[]definition.ValidationError) {
	if step == nil {
		return
	}
	if declared[step.ID] {
		*errs = append(*errs, definition.ValidationError{
			Kind:     definition.KindSemantic,
			Field:    "steps." + step.ID,
			Code:     constants.CodeDuplicateStepID,
			Message:  fmt.Sprintf("step id %q is declared more than once", step.ID),
			Severity: constants.SeverityError,
		})
	}
	declared[step.ID] = true

	if step.Type == constants.StepTypeConditional {
		wv.collectStepIDs(step.Then, declared, errs)
		for _, elseStep := range step.Else {
			wv.collectStepIDs(elseStep, declared, errs)
		}
	}
}

func (wv *WorkflowValidator) checkStepPayload(step *definition.StepDefinition, errs *[]definition.ValidationError) {
	if step == nil {
		return
	}
	path := "steps." + step.ID

	switch step.Type {
	case constants.StepTypeTransform:
		if step.Script == "" {
			*errs = append(*errs, definition.ValidationError{
				Kind:     definition.KindSemantic,
				Field:    path,
				Code:     constants.CodeMissingTransformScript,
				Message:  "transform steps require a non-empty script",
				Severity: constants.SeverityError,
			})
		}
	case constants.StepTypeAggregate:
		if _, ok := step.Pipeline.([]interface{}); !ok {
			*errs = append(*errs, definition.ValidationError{
				Kind:     definition.KindSemantic,
				Field:    path,
				Code:     constants.CodeMissingAggregatePipeline,
				Message:  "aggregate steps require pipeline to be an array",
				Severity: constants.SeverityError,
			})
		}
	case constants.StepTypeConditional:
		if step.Condition != "" {
			if err := wv.expressions.CheckSyntax(step.Condition); err != nil {
				*errs = append(*errs, definition.ValidationError{
					Kind:     definition.KindFormat,
					Field:    path + ".condition",
					Code:     constants.CodeInvalidStepCondition,
					Message:  fmt.Sprintf("condition does not compile: %v", err),
					Severity: constants.SeverityError,
				})
			}
		}
		wv.checkStepPayload(step.Then, errs)
		for _, elseStep := range step.Else {
			wv.checkStepPayload(elseStep, errs)
		}
	}
}

// checkTemplateReferences serializes the whole step and regex-scans for
// {{steps.<id>....}} placeholders. Scanning the serialized form can match
// placeholder-shaped text inside unrelated string fields; that imprecision
// is a known limitation of the scheme and is kept as-is.
func (wv *WorkflowValidator) checkTemplateReferences(step *definition.StepDefinition, declared map[string]bool, errs *[]definition.ValidationError) {
	payload, err := json.Marshal(step)
	if err != nil {
		return
	}

	seen := make(map[string]bool)
	for _, match := range wv.refPattern.FindAllStringSubmatch(string(payload), -1) {
		ref := match[1]
		if declared[ref] || seen[ref] {
			continue
		}
		seen[ref] = true
		*errs = append(*errs, definition.ValidationError{
			Kind:     definition.KindReference,
			Field:    "steps." + step.ID,
			Code:     constants.CodeInvalidStepReference,
			Message:  fmt.Sprintf("step references undeclared step %q", ref),
			Severity: constants.SeverityError,
		})
	}
}
