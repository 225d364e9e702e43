// Package validator provides a pluggable registry of named format
// validators applied to instance data when a projected schema carries a
// format constraint
package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ValidatorFunc is the signature for format validator functions.
// Takes a value and optional configuration, returns an error if validation fails.
type ValidatorFunc func(value interface{}, config map[string]interface{}) error

// Registry holds registered validators
type Registry struct {
	validators map[string]ValidatorFunc
	mu         sync.RWMutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

var objectIDPattern = regexp.MustCompile(`^[a-fA-F0-9]{24}$`)

// GetRegistry returns the singleton validator registry
func GetRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = &Registry{
			validators: make(map[string]ValidatorFunc),
		}
		defaultRegistry.registerBuiltins()
	})
	return defaultRegistry
}

// Register adds a validator to the registry
func (r *Registry) Register(name string, fn ValidatorFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators[name] = fn
}

// Get returns a validator by name
func (r *Registry) Get(name string) (ValidatorFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.validators[name]
	return fn, ok
}

// Validate runs a named validator. Unknown names pass: a format the
// registry does not know about constrains nothing.
func (r *Registry) Validate(name string, value interface{}, config map[string]interface{}) error {
	fn, ok := r.Get(name)
	if !ok {
		return nil
	}
	return fn(value, config)
}

// List returns all registered validator names
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.validators))
	for name := range r.validators {
		names = append(names, name)
	}
	return names
}

// registerBuiltins registers the formats the schema projector emits plus
// the common extras operators declare on string fields
func (r *Registry) registerBuiltins() {
	// date fields project to string with format date-time
	r.Register("date-time", func(value interface{}, config map[string]interface{}) error {
		str, ok := value.(string)
		if !ok || str == "" {
			return nil
		}
		if _, err := time.Parse(time.RFC3339, str); err != nil {
			return fmt.Errorf("invalid date-time, expected RFC 3339")
		}
		return nil
	})

	// objectId fields project to a 24-character hex string
	r.Register("objectid", func(value interface{}, config map[string]interface{}) error {
		str, ok := value.(string)
		if !ok || str == "" {
			return nil
		}
		if !objectIDPattern.MatchString(str) {
			return fmt.Errorf("invalid object id format")
		}
		return nil
	})

	r.Register("email", func(value interface{}, config map[string]interface{}) error {
		str, ok := value.(string)
		if !ok || str == "" {
			return nil
		}
		if _, err := mail.ParseAddress(str); err != nil {
			return fmt.Errorf("invalid email format")
		}
		return nil
	})

	r.Register("url", func(value interface{}, config map[string]interface{}) error {
		str, ok := value.(string)
		if !ok || str == "" {
			return nil
		}
		if !strings.HasPrefix(str, "http://") && !strings.HasPrefix(str, "https://") {
			return fmt.Errorf("URL must start with http:// or https://")
		}
		return nil
	})

	r.Register("uuid", func(value interface{}, config map[string]interface{}) error {
		str, ok := value.(string)
		if !ok || str == "" {
			return nil
		}
		if _, err := uuid.Parse(str); err != nil {
			return fmt.Errorf("invalid UUID format")
		}
		return nil
	})
}

// Package-level convenience functions

// Register adds a validator to the default registry
func Register(name string, fn ValidatorFunc) {
	GetRegistry().Register(name, fn)
}

// Validate runs a named validator using the default registry
func Validate(name string, value interface{}, config map[string]interface{}) error {
	return GetRegistry().Validate(name, value, config)
}
