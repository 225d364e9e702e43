package metaschema

import (
	"encoding/json"
)

// MarshalJSON renders a node in JSON Schema vocabulary so projected
// document schemas can travel over the API and be consumed by external
// tooling
func (n *Node) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{})

	if n.Ref != "" {
		out["$ref"] = n.Ref
		return json.Marshal(out)
	}

	switch n.Type {
	case TypeAny, "":
		// unconstrained: emit an empty schema
	default:
		out["type"] = n.Type
	}

	if len(n.Enum) > 0 {
		out["enum"] = n.Enum
	}
	if n.Pattern != "" {
		out["pattern"] = n.Pattern
	}
	if n.Format != "" {
		out["format"] = n.Format
	}
	if n.MinLength != nil {
		out["minLength"] = *n.MinLength
	}
	if n.MaxLength != nil {
		out["maxLength"] = *n.MaxLength
	}
	if n.Minimum != nil {
		out["minimum"] = *n.Minimum
	}
	if n.Maximum != nil {
		out["maximum"] = *n.Maximum
	}
	if n.Items != nil {
		out["items"] = n.Items
	}
	if n.MinItems != nil {
		out["minItems"] = *n.MinItems
	}
	if n.MaxItems != nil {
		out["maxItems"] = *n.MaxItems
	}
	if len(n.Properties) > 0 {
		out["properties"] = n.Properties
	}
	if len(n.Required) > 0 {
		out["required"] = n.Required
	}
	if n.MinProperties != nil {
		out["minProperties"] = *n.MinProperties
	}
	if n.Type == TypeObject && !n.AllowAdditional && n.AdditionalProperties == nil {
		out["additionalProperties"] = false
	}

	return json.Marshal(out)
}
