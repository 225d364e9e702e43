package definition

import (
	"encoding/json"

	"github.com/schemabase/backend/pkg/constants"
)

// FieldDefinition describes the type and constraints of one collection field.
// Array fields nest another FieldDefinition under Items; object fields nest
// a map of FieldDefinitions under Properties.
type FieldDefinition struct {
	Type       constants.SchemaFieldType   `json:"type"`
	Required   bool                        `json:"required,omitempty"`
	Unique     bool                        `json:"unique,omitempty"`
	Default    interface{}                 `json:"default,omitempty"`
	MinLength  *int                        `json:"minLength,omitempty"`
	MaxLength  *int                        `json:"maxLength,omitempty"`
	Min        *float64                    `json:"min,omitempty"`
	Max        *float64                    `json:"max,omitempty"`
	MinItems   *int                        `json:"minItems,omitempty"`
	MaxItems   *int                        `json:"maxItems,omitempty"`
	Pattern    *string                     `json:"pattern,omitempty"`
	Enum       []interface{}               `json:"enum,omitempty"`
	Format     *string                     `json:"format,omitempty"`
	Items      *FieldDefinition            `json:"items,omitempty"`
	Properties map[string]*FieldDefinition `json:"properties,omitempty"`
}

// RelationshipDefinition describes an edge from the owning collection to
// another collection
type RelationshipDefinition struct {
	Type         constants.RelationshipType `json:"type"`
	Collection   string                     `json:"collection"`
	ForeignField *string                    `json:"foreignField,omitempty"`
	LocalField   *string                    `json:"localField,omitempty"`
	Through      *string                    `json:"through,omitempty"`
}

// IndexDefinition is a storage index hint
type IndexDefinition struct {
	Fields             map[string]interface{} `json:"fields"`
	Unique             bool                   `json:"unique,omitempty"`
	Sparse             bool                   `json:"sparse,omitempty"`
	Background         bool                   `json:"background,omitempty"`
	ExpireAfterSeconds *int                   `json:"expireAfterSeconds,omitempty"`
}

// ValidationRule is a declarative record-level rule. The condition is an
// expression compiled at definition time; rules whose condition evaluates
// true at runtime reject the record with ErrorMessage.
type ValidationRule struct {
	Name         string `json:"name"`
	Condition    string `json:"condition"`
	ErrorMessage string `json:"errorMessage"`
	Active       bool   `json:"active,omitempty"`
}

// CollectionDefinition declares one storable collection
type CollectionDefinition struct {
	Name          string                             `json:"name"`
	Fields        map[string]*FieldDefinition        `json:"fields"`
	Relationships map[string]*RelationshipDefinition `json:"relationships,omitempty"`
	Indexes       []IndexDefinition                  `json:"indexes,omitempty"`
	Rules         []ValidationRule                   `json:"rules,omitempty"`
	Timestamps    bool                               `json:"timestamps,omitempty"`
	SoftDelete    bool                               `json:"softDelete,omitempty"`
}

// StepDefinition is one step of a function workflow. Typed accessors cover
// the fields the validators inspect; Raw retains the full decoded payload so
// template references buried anywhere in it can still be scanned.
type StepDefinition struct {
	ID         string             `json:"id"`
	Type       constants.StepType `json:"type"`
	Collection string             `json:"collection,omitempty"`
	Script     string             `json:"script,omitempty"`
	Condition  string             `json:"condition,omitempty"`
	Pipeline   interface{}        `json:"pipeline,omitempty"`
	Then       *StepDefinition    `json:"then,omitempty"`
	Else       []*StepDefinition  `json:"else,omitempty"`

	Raw map[string]interface{} `json:"-"`
}

// UnmarshalJSON decodes the typed step fields and keeps the raw payload
func (s *StepDefinition) UnmarshalJSON(data []byte) error {
	type alias StepDefinition
	var typed alias
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = StepDefinition(typed)
	s.Raw = raw
	return nil
}

// MarshalJSON writes the raw payload back out unchanged when present
func (s *StepDefinition) MarshalJSON() ([]byte, error) {
	if s.Raw != nil {
		return json.Marshal(s.Raw)
	}
	type alias StepDefinition
	return json.Marshal((*alias)(s))
}

// HookDefinition lists step ids to run around the main step list
type HookDefinition struct {
	Before []string `json:"before,omitempty"`
	After  []string `json:"after,omitempty"`
}

// CachePolicy controls result caching for a function
type CachePolicy struct {
	Enabled bool    `json:"enabled,omitempty"`
	TTL     float64 `json:"ttl,omitempty"`
}

// FunctionDefinition declares a multi-step serverless function workflow
type FunctionDefinition struct {
	Name     string            `json:"name"`
	Version  string            `json:"version,omitempty"`
	Endpoint string            `json:"endpoint,omitempty"`
	Steps    []*StepDefinition `json:"steps"`
	Hooks    *HookDefinition   `json:"hooks,omitempty"`
	Cache    *CachePolicy      `json:"cache,omitempty"`
	Timeout  *int              `json:"timeout,omitempty"`
}

// RBACRule grants a role access with an attribute projection. Role and
// attribute entries are identifiers or the literal "none".
type RBACRule struct {
	Role       string   `json:"role"`
	Attributes []string `json:"attributes,omitempty"`
}

// RBACRuleSet holds the per-action rules for one collection
type RBACRuleSet struct {
	Read   []RBACRule `json:"read,omitempty"`
	Write  []RBACRule `json:"write,omitempty"`
	Delete []RBACRule `json:"delete,omitempty"`
}

// RBACDefinition is an access policy bundle keyed by collection name
type RBACDefinition struct {
	Name        string                  `json:"name"`
	Collections map[string]*RBACRuleSet `json:"collections"`
}
