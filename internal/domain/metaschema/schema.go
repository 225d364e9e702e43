// Package metaschema holds the compiled structural schemas that describe
// valid collection, field, relationship, index, RBAC and function
// definitions. Recursive schemas (a field's items/properties, a conditional
// step's then/else) are expressed as named references resolved against a
// fixed registry at compile time, so the compiled form is immutable and
// safe to share across concurrent validation calls.
package metaschema

import (
	"fmt"
	"regexp"
)

// Node types understood by the structural validator
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeAny     = "any"
)

// Node is one structural schema node. A node either carries a Ref naming
// another node in the registry, or describes a shape directly.
type Node struct {
	Type string
	Ref  string

	// string constraints
	Enum      []interface{}
	Pattern   string
	Format    string
	MinLength *int
	MaxLength *int

	// numeric constraints
	Minimum *float64
	Maximum *float64

	// array constraints
	Items    *Node
	MinItems *int
	MaxItems *int

	// object constraints
	Required             []string
	Properties           map[string]*Node
	MinProperties        *int
	PropertyNamePattern  string
	AdditionalProperties *Node
	AllowAdditional      bool

	compiledPattern     *regexp.Regexp
	compiledNamePattern *regexp.Regexp
}

// MatchPattern reports whether s matches the node's compiled pattern.
// Nodes without a pattern match everything.
func (n *Node) MatchPattern(s string) bool {
	if n.compiledPattern == nil {
		return true
	}
	return n.compiledPattern.MatchString(s)
}

// MatchPropertyName reports whether a property key is acceptable for an
// object node carrying a property-name pattern
func (n *Node) MatchPropertyName(s string) bool {
	if n.compiledNamePattern == nil {
		return true
	}
	return n.compiledNamePattern.MatchString(s)
}

// Registry is the immutable arena of compiled schema nodes keyed by name
type Registry struct {
	nodes map[string]*Node
}

// Resolve returns the named node
func (r *Registry) Resolve(name string) (*Node, bool) {
	n, ok := r.nodes[name]
	return n, ok
}

// Names returns the registered schema names
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.nodes))
	for name := range r.nodes {
		names = append(names, name)
	}
	return names
}

// Compile validates and freezes a set of named schema nodes: every Ref must
// resolve within the set and every declared regex must compile. A failure
// here is a defect in the built-in meta-schemas, not a user error.
func Compile(nodes map[string]*Node) (*Registry, error) {
	reg := &Registry{nodes: nodes}
	for name, node := range nodes {
		if err := compileNode(node, reg, name); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// MustCompile is Compile for the process-fatal path
func MustCompile(nodes map[string]*Node) *Registry {
	reg, err := Compile(nodes)
	if err != nil {
		panic(fmt.Sprintf("metaschema: built-in schema is malformed: %v", err))
	}
	return reg
}

func compileNode(node *Node, reg *Registry, path string) error {
	if node == nil {
		return nil
	}
	if node.Ref != "" {
		if _, ok := reg.nodes[node.Ref]; !ok {
			return fmt.Errorf("%s: unresolved schema reference %q", path, node.Ref)
		}
		return nil
	}
	if node.Pattern != "" {
		re, err := regexp.Compile(node.Pattern)
		if err != nil {
			return fmt.Errorf("%s: invalid pattern %q: %v", path, node.Pattern, err)
		}
		node.compiledPattern = re
	}
	if node.PropertyNamePattern != "" {
		re, err := regexp.Compile(node.PropertyNamePattern)
		if err != nil {
			return fmt.Errorf("%s: invalid property name pattern %q: %v", path, node.PropertyNamePattern, err)
		}
		node.compiledNamePattern = re
	}
	for key, child := range node.Properties {
		if err := compileNode(child, reg, path+"."+key); err != nil {
			return err
		}
	}
	if err := compileNode(node.Items, reg, path+".items"); err != nil {
		return err
	}
	if err := compileNode(node.AdditionalProperties, reg, path+".additionalProperties"); err != nil {
		return err
	}
	return nil
}

var emptyRegistry = &Registry{nodes: map[string]*Node{}}

// Finalize compiles the patterns of a standalone node tree, such as one
// produced by the schema projector. Projected nodes carry no references,
// so no registry is involved.
func (n *Node) Finalize() error {
	return compileNode(n, emptyRegistry, "projected")
}

// Helper constructors keep the built-in schema declarations readable

// IntPtr returns a pointer to i
func IntPtr(i int) *int { return &i }

// FloatPtr returns a pointer to f
func FloatPtr(f float64) *float64 { return &f }

// StringEnum converts a string slice into an enum value list
func StringEnum(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
