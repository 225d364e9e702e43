package database

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Connection wraps the registry database handle.
// Note: sql.DB is already thread-safe and manages its own connection pool,
// so no additional locking is layered on top.
type Connection struct {
	db *sql.DB
}

var (
	instance *Connection
	once     sync.Once
	initErr  error
	tlsOnce  sync.Once // Ensure TLS config is registered only once
)

// GetInstance returns the singleton database connection
func GetInstance() (*Connection, error) {
	once.Do(func() {
		instance, initErr = newConnection()
	})
	return instance, initErr
}

func newConnection() (*Connection, error) {
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	database := os.Getenv("DB_NAME")

	if port == "" {
		port = "3306"
	}
	if database == "" {
		database = "schemabase"
	}

	// Remote hosts get TLS; localhost connects plain
	tlsParam := ""
	if host != "" && host != "127.0.0.1" && host != "localhost" {
		tlsOnce.Do(func() {
			if err := mysql.RegisterTLSConfig("schemabase", &tls.Config{
				MinVersion: tls.VersionTLS12,
				ServerName: host,
			}); err != nil {
				log.Printf("Failed to register TLS config: %v\n", err)
			}
		})
		tlsParam = "&tls=schemabase"
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local%s",
		user, password, host, port, database, tlsParam)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// MaxIdleConns matches MaxOpenConns so connections stay alive instead
	// of churning through ephemeral ports under load.
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(50)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(3 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Connection{db: db}, nil
}

// QueryContext executes a SELECT query with context
func (c *Connection) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, query, args...)
}

// QueryRowContext executes a SELECT query with context that returns at most one row
func (c *Connection) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return c.db.QueryRowContext(ctx, query, args...)
}

// ExecContext executes an INSERT, UPDATE, or DELETE query with context
func (c *Connection) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return c.db.ExecContext(ctx, query, args...)
}

// DB returns the underlying *sql.DB connection
func (c *Connection) DB() *sql.DB {
	return c.db
}

// Close closes the database connection
func (c *Connection) Close() error {
	return c.db.Close()
}
