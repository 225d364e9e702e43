package definition

import (
	"encoding/json"
	"fmt"

	"github.com/schemabase/backend/pkg/constants"
)

// ErrorKind groups validation findings by the class of rule they violate
type ErrorKind string

const (
	KindStructural ErrorKind = "structural"
	KindSemantic   ErrorKind = "semantic"
	KindReference  ErrorKind = "reference"
	KindCycle      ErrorKind = "cycle"
	KindFormat     ErrorKind = "format"
)

// ValidationError is one validation finding
type ValidationError struct {
	Kind     ErrorKind          `json:"kind"`
	Field    string             `json:"field"`
	Code     string             `json:"code"`
	Message  string             `json:"message"`
	Severity constants.Severity `json:"severity"`
}

// Error implements the error interface
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// IsError reports whether the finding blocks registration
func (e ValidationError) IsError() bool {
	return e.Severity == constants.SeverityError
}

// ValidationResult is the aggregate outcome of one validation call.
// Valid is true iff no error-severity findings exist; warnings never
// flip it.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors"`
}

// NewValidationResult builds a result from a flat finding list
func NewValidationResult(errs []ValidationError) *ValidationResult {
	valid := true
	for _, e := range errs {
		if e.IsError() {
			valid = false
			break
		}
	}
	if errs == nil {
		errs = []ValidationError{}
	}
	return &ValidationResult{Valid: valid, Errors: errs}
}

// Merge folds another finding list into the result
func (r *ValidationResult) Merge(errs []ValidationError) {
	for _, e := range errs {
		r.Errors = append(r.Errors, e)
		if e.IsError() {
			r.Valid = false
		}
	}
}

// ValidationReport splits findings by severity and adds remediation
// suggestions
type ValidationReport struct {
	Valid       bool              `json:"valid"`
	Errors      []ValidationError `json:"errors"`
	Warnings    []ValidationError `json:"warnings"`
	Suggestions []string          `json:"suggestions"`
}

// CollectionFromValue decodes a raw definition value into a typed
// CollectionDefinition. Only called after structural validation passed,
// so a decode failure indicates a programming error in the meta-schemas.
func CollectionFromValue(value map[string]interface{}) (*CollectionDefinition, error) {
	var def CollectionDefinition
	if err := decode(value, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

// FunctionFromValue decodes a raw definition value into a typed
// FunctionDefinition
func FunctionFromValue(value map[string]interface{}) (*FunctionDefinition, error) {
	var def FunctionDefinition
	if err := decode(value, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

// RBACFromValue decodes a raw definition value into a typed RBACDefinition
func RBACFromValue(value map[string]interface{}) (*RBACDefinition, error) {
	var def RBACDefinition
	if err := decode(value, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

// FieldFromValue decodes a raw field definition value
func FieldFromValue(value map[string]interface{}) (*FieldDefinition, error) {
	var def FieldDefinition
	if err := decode(value, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

func decode(value map[string]interface{}, out interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize definition: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode definition: %w", err)
	}
	return nil
}
