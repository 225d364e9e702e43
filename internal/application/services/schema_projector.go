package services

import (
	"log"
	"sort"

	"github.com/schemabase/backend/internal/domain/definition"
	"github.com/schemabase/backend/internal/domain/metaschema"
	"github.com/schemabase/backend/pkg/constants"
	"github.com/schemabase/backend/pkg/fieldtypes"
)

// SchemaProjector derives structural schemas from field definitions. The
// same projection validates both declarations at design time and instance
// data on the runtime path.
type SchemaProjector struct {
	fieldTypes *fieldtypes.Registry
}

// NewSchemaProjector creates a new SchemaProjector
func NewSchemaProjector(fieldTypes *fieldtypes.Registry) *SchemaProjector {
	return &SchemaProjector{fieldTypes: fieldTypes}
}

// ProjectFieldSchema derives the structural schema for one field definition
func (p *SchemaProjector) ProjectFieldSchema(field *definition.FieldDefinition) *metaschema.Node {
	node := p.project(field, 0)
	if err := node.Finalize(); err != nil {
		// An uncompilable user pattern is reported by semantic validation;
		// the projection drops it rather than enforce garbage.
		node.Pattern = ""
		if err := node.Finalize(); err != nil {
			log.Printf("schema projection failed to finalize: %v", err)
		}
	}
	return node
}

// GenerateDocumentSchema projects every field of a collection into a
// whole-document schema. Unknown properties are disallowed and required
// is populated from fields marked required; this is the contract the
// runtime data path validates insert/update payloads against.
func (p *SchemaProjector) GenerateDocumentSchema(col *definition.CollectionDefinition) *metaschema.Node {
	node := &metaschema.Node{
		Type:       metaschema.TypeObject,
		Properties: make(map[string]*metaschema.Node, len(col.Fields)),
	}

	names := make([]string, 0, len(col.Fields))
	for name := range col.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field := col.Fields[name]
		node.Properties[name] = p.project(field, 0)
		if field != nil && field.Required {
			node.Required = append(node.Required, name)
		}
	}

	if err := node.Finalize(); err != nil {
		log.Printf("document schema for %q failed to finalize: %v", col.Name, err)
	}
	return node
}

func (p *SchemaProjector) project(field *definition.FieldDefinition, depth int) *metaschema.Node {
	if field == nil || depth > constants.MaxSchemaDepth {
		return &metaschema.Node{Type: metaschema.TypeString}
	}

	switch field.Type {
	case constants.FieldTypeString:
		node := &metaschema.Node{
			Type:      metaschema.TypeString,
			MinLength: field.MinLength,
			MaxLength: field.MaxLength,
			Enum:      field.Enum,
		}
		if field.Pattern != nil {
			node.Pattern = *field.Pattern
		}
		if field.Format != nil {
			node.Format = *field.Format
		}
		return node

	case constants.FieldTypeNumber, constants.FieldTypeDecimal:
		return &metaschema.Node{
			Type:    metaschema.TypeNumber,
			Minimum: field.Min,
			Maximum: field.Max,
		}

	case constants.FieldTypeInteger:
		return &metaschema.Node{
			Type:    metaschema.TypeInteger,
			Minimum: field.Min,
			Maximum: field.Max,
		}

	case constants.FieldTypeBoolean:
		return &metaschema.Node{Type: metaschema.TypeBoolean}

	case constants.FieldTypeDate:
		return &metaschema.Node{
			Type:   metaschema.TypeString,
			Format: p.fieldTypes.GetFormat(string(constants.FieldTypeDate)),
		}

	case constants.FieldTypeObjectID:
		return &metaschema.Node{
			Type:    metaschema.TypeString,
			Pattern: p.fieldTypes.GetValidationPattern(string(constants.FieldTypeObjectID)),
		}

	case constants.FieldTypeArray:
		node := &metaschema.Node{
			Type:     metaschema.TypeArray,
			MinItems: field.MinItems,
			MaxItems: field.MaxItems,
		}
		if field.Items != nil {
			node.Items = p.project(field.Items, depth+1)
		} else {
			node.Items = &metaschema.Node{Type: metaschema.TypeAny}
		}
		return node

	case constants.FieldTypeObject:
		node := &metaschema.Node{
			Type:            metaschema.TypeObject,
			AllowAdditional: true,
			Properties:      make(map[string]*metaschema.Node, len(field.Properties)),
		}
		names := make([]string, 0, len(field.Properties))
		for name := range field.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sub := field.Properties[name]
			node.Properties[name] = p.project(sub, depth+1)
			if sub != nil && sub.Required {
				node.Required = append(node.Required, name)
			}
		}
		return node

	default:
		// mixed, buffer and anything unrecognized degrade to an
		// unconstrained string schema instead of silently passing.
		return &metaschema.Node{Type: metaschema.TypeString}
	}
}
