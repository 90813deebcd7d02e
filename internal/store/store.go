// Package store persists aggregated color results to a relational
// database through sqlx. SQLite is the default backing store; Postgres
// works with the same queries via driver-agnostic named parameters.
package store

import (
	"context"
	"fmt"

	"github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/internal/colors"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Repository writes result records to the colors_results table.
type Repository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

// Open connects to the database named by driver and dsn.
func Open(driver, dsn string, log *logrus.Logger) (*Repository, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s database: %w", driver, err)
	}
	return &Repository{db: db, log: log}, nil
}

// NewRepository wraps an existing connection.
func NewRepository(db *sqlx.DB, log *logrus.Logger) *Repository {
	return &Repository{db: db, log: log}
}

// Close releases the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// EnsureSchema creates the colors_results table if it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, queryCreateResultsTable); err != nil {
		r.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("Failed to create colors_results table")
		return fmt.Errorf("create colors_results table: %w", err)
	}
	return nil
}

// SaveResults inserts one row per record inside a single transaction,
// so a failed run never leaves partial results behind. An empty record
// list commits an empty transaction and persists zero rows.
func (r *Repository) SaveResults(ctx context.Context, records []colors.Record) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	for _, rec := range records {
		argsKV := map[string]interface{}{
			"class_name": rec.ClassName,
			"quantity":   rec.Quantity,
			"color":      rec.Color.String(),
		}

		query, args, err := sqlx.Named(queryInsertResult, argsKV)
		if err != nil {
			_ = tx.Rollback()
			r.log.WithFields(logrus.Fields{
				"class_name": rec.ClassName,
				"error":      err.Error(),
			}).Error("Failed to build insert query for result record")
			return fmt.Errorf("build insert query: %w", err)
		}
		query = tx.Rebind(query)

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			_ = tx.Rollback()
			r.log.WithFields(logrus.Fields{
				"class_name": rec.ClassName,
				"error":      err.Error(),
			}).Error("Database error when inserting result record")
			return fmt.Errorf("insert result record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit results: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"rows": len(records),
	}).Info("Persisted color results")
	return nil
}
