// Package fieldtypes provides the capability registry for declared field
// types: what base structural type each projects to, which wire format or
// pattern applies, and which filter operators the query layer may offer.
package fieldtypes

import (
	"embed"
	"encoding/json"
	"sync"
)

//go:embed fieldTypes.json
var fieldTypesFS embed.FS

// FieldTypeDefinition represents a field type configuration
type FieldTypeDefinition struct {
	Label             string   `json:"label"`
	Description       string   `json:"description"`
	SchemaType        string   `json:"schemaType"`
	Format            *string  `json:"format,omitempty"`
	ValidationPattern *string  `json:"validationPattern,omitempty"`
	Operators         []string `json:"operators"`
}

// Registry holds field type definitions
type Registry struct {
	types map[string]FieldTypeDefinition
	mu    sync.RWMutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// GetRegistry returns the singleton field types registry
func GetRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = &Registry{
			types: make(map[string]FieldTypeDefinition),
		}
		defaultRegistry.loadFromEmbedded()
	})
	return defaultRegistry
}

// loadFromEmbedded loads field types from the embedded JSON file
func (r *Registry) loadFromEmbedded() error {
	data, err := fieldTypesFS.ReadFile("fieldTypes.json")
	if err != nil {
		return err
	}

	var types map[string]FieldTypeDefinition
	if err := json.Unmarshal(data, &types); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = types
	return nil
}

// Register adds or overrides a field type definition. Custom types project
// through the unconstrained-string fallback unless SchemaType says otherwise.
func (r *Registry) Register(name string, def FieldTypeDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[name] = def
}

// Get returns a field type definition by name
func (r *Registry) Get(typeName string) (FieldTypeDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.types[typeName]
	return def, ok
}

// GetFormat returns the wire format for a field type, if any
func (r *Registry) GetFormat(typeName string) string {
	def, ok := r.Get(typeName)
	if !ok || def.Format == nil {
		return ""
	}
	return *def.Format
}

// GetValidationPattern returns the value pattern for a field type, if any
func (r *Registry) GetValidationPattern(typeName string) string {
	def, ok := r.Get(typeName)
	if !ok || def.ValidationPattern == nil {
		return ""
	}
	return *def.ValidationPattern
}

// All returns a copy of every registered field type definition
func (r *Registry) All() map[string]FieldTypeDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]FieldTypeDefinition, len(r.types))
	for name, def := range r.types {
		out[name] = def
	}
	return out
}
