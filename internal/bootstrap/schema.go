// Package bootstrap creates the registry tables on startup. The DDL is
// idempotent: every statement is CREATE TABLE IF NOT EXISTS, so restarts
// against an initialized database are no-ops.
package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/schemabase/backend/internal/infrastructure/database"
	"github.com/schemabase/backend/pkg/constants"
)

const definitionTableDDL = `
CREATE TABLE IF NOT EXISTS %s (
	id                 VARCHAR(36)  NOT NULL,
	name               VARCHAR(255) NOT NULL,
	payload            JSON         NOT NULL,
	created_date       DATETIME     NOT NULL,
	last_modified_date DATETIME     NOT NULL,
	PRIMARY KEY (id),
	UNIQUE KEY uk_name (name)
)`

// InitializeSchema creates the definition registry tables
func InitializeSchema(conn *database.Connection) error {
	log.Println("🔧 Initializing registry schema...")

	tables := []string{
		constants.TableCollections,
		constants.TableFunctions,
		constants.TableRBACBundles,
	}

	for _, table := range tables {
		ddl := fmt.Sprintf(definitionTableDDL, table)
		if _, err := conn.ExecContext(context.Background(), ddl); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
		log.Printf("🧱 Table ready: %s", table)
	}

	log.Println("✅ Registry schema initialized")
	return nil
}
