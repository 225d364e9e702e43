// Package ports declares the persistence interfaces the application layer
// depends on. Implementations live under internal/infrastructure.
package ports

import (
	"context"
	"time"
)

// DefinitionRecord is one stored definition of any kind. Payload holds the
// raw JSON exactly as it was validated; the registry re-decodes it on load.
type DefinitionRecord struct {
	ID               string
	Name             string
	Kind             string
	Payload          []byte
	CreatedDate      time.Time
	LastModifiedDate time.Time
}

// DefinitionRepository stores validated definitions keyed by kind and name.
// FindByName returns (nil, nil) when no record exists.
type DefinitionRepository interface {
	Save(ctx context.Context, record *DefinitionRecord) error
	Update(ctx context.Context, record *DefinitionRecord) error
	FindByName(ctx context.Context, kind, name string) (*DefinitionRecord, error)
	FindAll(ctx context.Context, kind string) ([]*DefinitionRecord, error)
	Delete(ctx context.Context, kind, name string) error
}
