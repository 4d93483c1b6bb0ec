package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mcbagz/edSIS/internal/config"

	_ "github.com/go-sql-driver/mysql"
)

func NewConnection(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DatabaseDSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.Database.ConnectionLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS sync_runs (
		run_id             VARCHAR(36)  NOT NULL PRIMARY KEY,
		source             VARCHAR(16)  NOT NULL,
		state              VARCHAR(32)  NOT NULL,
		schools_attempted  INT          NOT NULL DEFAULT 0,
		schools_succeeded  INT          NOT NULL DEFAULT 0,
		schools_failed     INT          NOT NULL DEFAULT 0,
		students_attempted INT          NOT NULL DEFAULT 0,
		students_succeeded INT          NOT NULL DEFAULT 0,
		students_failed    INT          NOT NULL DEFAULT 0,
		error_message      TEXT         NULL,
		started_at         DATETIME(3)  NULL,
		finished_at        DATETIME(3)  NULL,
		created_at         DATETIME(3)  NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		updated_at         DATETIME(3)  NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3)
	)`,
	`CREATE TABLE IF NOT EXISTS sync_records (
		id            BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
		run_id        VARCHAR(36)  NOT NULL,
		entity        VARCHAR(16)  NOT NULL,
		natural_key   VARCHAR(64)  NOT NULL,
		status        VARCHAR(16)  NOT NULL,
		status_code   INT          NOT NULL DEFAULT 0,
		error_message TEXT         NULL,
		created_at    DATETIME(3)  NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		INDEX idx_sync_records_run (run_id, entity, status)
	)`,
}

// Migrate creates the run ledger tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate ledger: %w", err)
		}
	}
	return nil
}
