package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schemabase/backend/internal/domain/definition"
	"github.com/schemabase/backend/pkg/constants"
	"github.com/schemabase/backend/pkg/expression"
)

func newWorkflow() *WorkflowValidator {
	return NewWorkflowValidator(expression.NewEngine())
}

func mustFunction(t *testing.T, payload string) *definition.FunctionDefinition {
	t.Helper()
	def, err := definition.FunctionFromValue(mustValue(t, payload))
	if err != nil {
		t.Fatalf("test function does not decode: %v", err)
	}
	return def
}

func TestWorkflowValidFunction(t *testing.T) {
	wv := newWorkflow()

	def := mustFunction(t, `{
		"name": "enrichCustomer",
		"version": "1.0.0",
		"endpoint": "/api/functions/enrich-customer",
		"steps": [
			{"id": "load", "type": "findOne", "collection": "customers", "query": {"id": "{{input.id}}"}},
			{"id": "save", "type": "updateOne", "collection": "customers", "update": "{{steps.load.result}}"}
		]
	}`)

	assert.Empty(t, wv.ValidateFunction(def))
}

func TestWorkflowVersionFormat(t *testing.T) {
	wv := newWorkflow()

	tests := []struct {
		version string
		bad     bool
	}{
		{"1.0.0", false},
		{"12.34.56", false},
		{"1.0", true},
		{"v1.0.0", true},
		{"1.0.0-beta", true},
		{"", true},
	}

	for _, tt := range tests {
		def := &definition.FunctionDefinition{
			Name:    "f",
			Version: tt.version,
			Steps:   []*definition.StepDefinition{{ID: "s1", Type: constants.StepTypeFind}},
		}
		errs := wv.ValidateFunction(def)
		if tt.bad {
			err := findByCode(errs, constants.CodeInvalidVersionFormat)
			if assert.NotNil(t, err, "version %q", tt.version) {
				assert.Equal(t, constants.SeverityError, err.Severity)
				assert.Equal(t, "version", err.Field)
			}
		} else {
			assert.Nil(t, findByCode(errs, constants.CodeInvalidVersionFormat), "version %q", tt.version)
		}
	}
}

func TestWorkflowEndpointNamespace(t *testing.T) {
	wv := newWorkflow()

	def := &definition.FunctionDefinition{
		Name:     "f",
		Version:  "1.0.0",
		Endpoint: "/api/custom/route",
		Steps:    []*definition.StepDefinition{{ID: "s1", Type: constants.StepTypeFind}},
	}

	errs := wv.ValidateFunction(def)
	err := findByCode(errs, constants.CodeInvalidEndpointFormat)
	if assert.NotNil(t, err) {
		// Off-namespace endpoints still work, so this stays advisory
		assert.Equal(t, constants.SeverityWarning, err.Severity)
	}

	// An empty endpoint means the default route and is fine
	def.Endpoint = ""
	assert.Nil(t, findByCode(wv.ValidateFunction(def), constants.CodeInvalidEndpointFormat))
}

func TestWorkflowDuplicateStepIDs(t *testing.T) {
	wv := newWorkflow()

	def := mustFunction(t, `{
		"name": "f",
		"version": "1.0.0",
		"steps": [
			{"id": "load", "type": "find", "collection": "a"},
			{"id": "load", "type": "find", "collection": "b"}
		]
	}`)

	errs := wv.ValidateFunction(def)
	err := findByCode(errs, constants.CodeDuplicateStepID)
	if assert.NotNil(t, err) {
		assert.Equal(t, "steps.load", err.Field)
	}
}

func TestWorkflowNestedDuplicateStepID(t *testing.T) {
	wv := newWorkflow()

	// A nested branch id colliding with a top-level id is still a duplicate
	def := mustFunction(t, `{
		"name": "f",
		"version": "1.0.0",
		"steps": [
			{"id": "load", "type": "find", "collection": "a"},
			{"id": "branch", "type": "conditional", "condition": "true",
				"then": {"id": "load", "type": "find", "collection": "b"}}
		]
	}`)

	assert.True(t, hasCode(wv.ValidateFunction(def), constants.CodeDuplicateStepID))
}

func TestWorkflowTransformRequiresScript(t *testing.T) {
	wv := newWorkflow()

	def := mustFunction(t, `{
		"name": "f",
		"version": "1.0.0",
		"steps": [
			{"id": "s1", "type": "find", "collection": "a"},
			{"id": "s2", "type": "transform"}
		]
	}`)

	errs := wv.ValidateFunction(def)
	err := findByCode(errs, constants.CodeMissingTransformScript)
	if assert.NotNil(t, err) {
		assert.Equal(t, "steps.s2", err.Field)
	}
}

func TestWorkflowAggregateRequiresPipeline(t *testing.T) {
	wv := newWorkflow()

	tests := []struct {
		name    string
		payload string
		bad     bool
	}{
		{"array pipeline", `{"id": "s1", "type": "aggregate", "pipeline": [{"$match": {}}]}`, false},
		{"missing pipeline", `{"id": "s1", "type": "aggregate"}`, true},
		{"object pipeline", `{"id": "s1", "type": "aggregate", "pipeline": {"$match": {}}}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := mustFunction(t, `{"name": "f", "version": "1.0.0", "steps": [`+tt.payload+`]}`)
			errs := wv.ValidateFunction(def)
			assert.Equal(t, tt.bad, hasCode(errs, constants.CodeMissingAggregatePipeline))
		})
	}
}

func TestWorkflowConditionalCondition(t *testing.T) {
	wv := newWorkflow()

	def := mustFunction(t, `{
		"name": "f",
		"version": "1.0.0",
		"steps": [
			{"id": "branch", "type": "conditional", "condition": "total > ",
				"then": {"id": "flag", "type": "updateOne", "collection": "orders"}}
		]
	}`)

	errs := wv.ValidateFunction(def)
	err := findByCode(errs, constants.CodeInvalidStepCondition)
	if assert.NotNil(t, err) {
		assert.Equal(t, "steps.branch.condition", err.Field)
		assert.Equal(t, definition.KindFormat, err.Kind)
	}
}

func TestWorkflowUndeclaredStepReference(t *testing.T) {
	wv := newWorkflow()

	def := mustFunction(t, `{
		"name": "f",
		"version": "1.0.0",
		"steps": [
			{"id": "s1", "type": "find", "collection": "a"},
			{"id": "s2", "type": "transform", "script": "return {{steps.s9.result}}"}
		]
	}`)

	errs := wv.ValidateFunction(def)
	err := findByCode(errs, constants.CodeInvalidStepReference)
	if assert.NotNil(t, err) {
		assert.Equal(t, "steps.s2", err.Field)
		assert.Contains(t, err.Message, `"s9"`)
		assert.Equal(t, definition.KindReference, err.Kind)
	}
}

func TestWorkflowReferenceToNestedStepResolves(t *testing.T) {
	wv := newWorkflow()

	// s9 is declared inside an else branch; the flat id-space makes the
	// reference from s2 valid
	def := mustFunction(t, `{
		"name": "f",
		"version": "1.0.0",
		"steps": [
			{"id": "branch", "type": "conditional", "condition": "true",
				"then": {"id": "t1", "type": "find", "collection": "a"},
				"else": [{"id": "s9", "type": "findOne", "collection": "b"}]},
			{"id": "s2", "type": "transform", "script": "return {{steps.s9.result}}"}
		]
	}`)

	assert.Nil(t, findByCode(wv.ValidateFunction(def), constants.CodeInvalidStepReference))
}

func TestWorkflowReferenceDedupedPerStep(t *testing.T) {
	wv := newWorkflow()

	def := mustFunction(t, `{
		"name": "f",
		"version": "1.0.0",
		"steps": [
			{"id": "s1", "type": "transform",
				"script": "{{steps.gone.a}} + {{steps.gone.b}}"}
		]
	}`)

	errs := wv.ValidateFunction(def)
	count := 0
	for _, e := range errs {
		if e.Code == constants.CodeInvalidStepReference {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
