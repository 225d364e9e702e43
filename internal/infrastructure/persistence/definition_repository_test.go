package persistence

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/schemabase/backend/internal/domain/ports"
	"github.com/schemabase/backend/pkg/constants"
)

func newRecord(kind, name string) *ports.DefinitionRecord {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return &ports.DefinitionRecord{
		ID:               "11111111-2222-3333-4444-555555555555",
		Name:             name,
		Kind:             kind,
		Payload:          []byte(`{"name":"` + name + `"}`),
		CreatedDate:      now,
		LastModifiedDate: now,
	}
}

func TestDefinitionRepositorySave(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDefinitionRepository(db)
	record := newRecord(constants.KindCollection, "customers")

	mock.ExpectExec(regexp.QuoteMeta(fmt.Sprintf(
		"INSERT INTO %s (id, name, payload, created_date, last_modified_date)", constants.TableCollections))).
		WithArgs(record.ID, record.Name, record.Payload, record.CreatedDate, record.LastModifiedDate).
		WillReturnResult(sqlmock.NewResult(1, 1))

	assert.NoError(t, repo.Save(context.Background(), record))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDefinitionRepositoryUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDefinitionRepository(db)
	record := newRecord(constants.KindFunction, "sync")

	mock.ExpectExec(regexp.QuoteMeta(fmt.Sprintf(
		"UPDATE %s SET payload = ?, last_modified_date = ? WHERE name = ?", constants.TableFunctions))).
		WithArgs(record.Payload, record.LastModifiedDate, record.Name).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Update(context.Background(), record))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDefinitionRepositoryUpdateMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDefinitionRepository(db)
	record := newRecord(constants.KindFunction, "ghost")

	mock.ExpectExec("UPDATE").
		WithArgs(record.Payload, record.LastModifiedDate, record.Name).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Update(context.Background(), record)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestDefinitionRepositoryFindByName(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDefinitionRepository(db)
	record := newRecord(constants.KindRBAC, "main")

	rows := sqlmock.NewRows([]string{"id", "name", "payload", "created_date", "last_modified_date"}).
		AddRow(record.ID, record.Name, record.Payload, record.CreatedDate, record.LastModifiedDate)

	mock.ExpectQuery(regexp.QuoteMeta(fmt.Sprintf(
		"SELECT id, name, payload, created_date, last_modified_date FROM %s WHERE name = ?", constants.TableRBACBundles))).
		WithArgs("main").
		WillReturnRows(rows)

	found, err := repo.FindByName(context.Background(), constants.KindRBAC, "main")
	assert.NoError(t, err)
	if assert.NotNil(t, found) {
		assert.Equal(t, "main", found.Name)
		assert.Equal(t, constants.KindRBAC, found.Kind)
		assert.JSONEq(t, `{"name":"main"}`, string(found.Payload))
	}
}

func TestDefinitionRepositoryFindByNameAbsent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDefinitionRepository(db)

	mock.ExpectQuery("SELECT").WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "payload", "created_date", "last_modified_date"}))

	found, err := repo.FindByName(context.Background(), constants.KindCollection, "ghost")
	assert.NoError(t, err)
	assert.Nil(t, found)
}

func TestDefinitionRepositoryFindAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDefinitionRepository(db)
	first := newRecord(constants.KindCollection, "customers")
	second := newRecord(constants.KindCollection, "orders")

	rows := sqlmock.NewRows([]string{"id", "name", "payload", "created_date", "last_modified_date"}).
		AddRow(first.ID, first.Name, first.Payload, first.CreatedDate, first.LastModifiedDate).
		AddRow(second.ID, second.Name, second.Payload, second.CreatedDate, second.LastModifiedDate)

	mock.ExpectQuery(regexp.QuoteMeta(fmt.Sprintf("FROM %s ORDER BY name", constants.TableCollections))).
		WillReturnRows(rows)

	records, err := repo.FindAll(context.Background(), constants.KindCollection)
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "customers", records[0].Name)
}

func TestDefinitionRepositoryDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDefinitionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(fmt.Sprintf(
		"DELETE FROM %s WHERE name = ?", constants.TableCollections))).
		WithArgs("customers").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(context.Background(), constants.KindCollection, "customers"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDefinitionRepositoryUnknownKind(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDefinitionRepository(db)
	_, err = repo.FindAll(context.Background(), "widget")
	assert.Error(t, err)
}
