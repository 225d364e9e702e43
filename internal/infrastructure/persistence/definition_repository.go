package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/schemabase/backend/internal/domain/ports"
	"github.com/schemabase/backend/pkg/constants"
)

// DefinitionRepository persists definitions as raw JSON payloads, one
// table per kind. The payload column stores exactly the bytes the engine
// validated, so reload-and-revalidate is lossless.
type DefinitionRepository struct {
	db *sql.DB
}

// NewDefinitionRepository creates a new DefinitionRepository
func NewDefinitionRepository(db *sql.DB) *DefinitionRepository {
	return &DefinitionRepository{db: db}
}

func tableForKind(kind string) (string, error) {
	switch kind {
	case constants.KindCollection:
		return constants.TableCollections, nil
	case constants.KindFunction:
		return constants.TableFunctions, nil
	case constants.KindRBAC:
		return constants.TableRBACBundles, nil
	default:
		return "", fmt.Errorf("unknown definition kind %q", kind)
	}
}

// Save inserts a new definition record
func (r *DefinitionRepository) Save(ctx context.Context, record *ports.DefinitionRecord) error {
	table, err := tableForKind(record.Kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, payload, created_date, last_modified_date)
		VALUES (?, ?, ?, ?, ?)
	`, table)

	_, err = r.db.ExecContext(ctx, query,
		record.ID, record.Name, record.Payload, record.CreatedDate, record.LastModifiedDate)
	if err != nil {
		return fmt.Errorf("failed to save %s definition %q: %w", record.Kind, record.Name, err)
	}
	return nil
}

// Update replaces the payload of an existing definition record
func (r *DefinitionRepository) Update(ctx context.Context, record *ports.DefinitionRecord) error {
	table, err := tableForKind(record.Kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s SET payload = ?, last_modified_date = ? WHERE name = ?
	`, table)

	result, err := r.db.ExecContext(ctx, query, record.Payload, record.LastModifiedDate, record.Name)
	if err != nil {
		return fmt.Errorf("failed to update %s definition %q: %w", record.Kind, record.Name, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s definition %q does not exist", record.Kind, record.Name)
	}
	return nil
}

// FindByName loads one definition record, or (nil, nil) when absent
func (r *DefinitionRepository) FindByName(ctx context.Context, kind, name string) (*ports.DefinitionRecord, error) {
	table, err := tableForKind(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, name, payload, created_date, last_modified_date FROM %s WHERE name = ?
	`, table)

	record := &ports.DefinitionRecord{Kind: kind}
	err = r.db.QueryRowContext(ctx, query, name).Scan(
		&record.ID, &record.Name, &record.Payload, &record.CreatedDate, &record.LastModifiedDate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s definition %q: %w", kind, name, err)
	}
	return record, nil
}

// FindAll loads every definition record of one kind
func (r *DefinitionRepository) FindAll(ctx context.Context, kind string) ([]*ports.DefinitionRecord, error) {
	table, err := tableForKind(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, name, payload, created_date, last_modified_date FROM %s ORDER BY name
	`, table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s definitions: %w", kind, err)
	}
	defer rows.Close()

	var records []*ports.DefinitionRecord
	for rows.Next() {
		record := &ports.DefinitionRecord{Kind: kind}
		if err := rows.Scan(&record.ID, &record.Name, &record.Payload,
			&record.CreatedDate, &record.LastModifiedDate); err != nil {
			return nil, fmt.Errorf("failed to scan %s definition: %w", kind, err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Delete removes a definition record by name
func (r *DefinitionRepository) Delete(ctx context.Context, kind, name string) error {
	table, err := tableForKind(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE name = ?`, table)
	result, err := r.db.ExecContext(ctx, query, name)
	if err != nil {
		return fmt.Errorf("failed to delete %s definition %q: %w", kind, name, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s definition %q does not exist", kind, name)
	}
	return nil
}
