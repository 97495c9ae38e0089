package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the three tables.  uq_adoptions_space makes the store the
// final judge of "first adoption wins": a second adoption for the same
// space fails at commit with a duplicate key error.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS spaces (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name        VARCHAR(255)    NOT NULL,
		description TEXT            NOT NULL,
		cost        INT UNSIGNED    NOT NULL,
		adopted     TINYINT(1)      NOT NULL DEFAULT 0,
		adopted_by  VARCHAR(255)    NULL,
		image_url   VARCHAR(512)    NULL,
		created_at  DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		CONSTRAINT chk_spaces_cost CHECK (cost > 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS adoptions (
		id                BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		space_id          BIGINT UNSIGNED NOT NULL,
		sponsor_name      VARCHAR(255)    NOT NULL,
		sponsor_email     VARCHAR(255)    NULL,
		sponsor_phone     VARCHAR(64)     NULL,
		wants_to_help     TINYINT(1)      NOT NULL DEFAULT 0,
		payment_proof_url VARCHAR(512)    NULL,
		status            VARCHAR(16)     NOT NULL DEFAULT 'pending',
		notes             TEXT            NULL,
		created_at        DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at        DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_adoptions_space (space_id),
		KEY idx_adoptions_created (created_at),
		CONSTRAINT fk_adoptions_space FOREIGN KEY (space_id) REFERENCES spaces (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS media (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		type        VARCHAR(16)     NOT NULL,
		filename    VARCHAR(255)    NOT NULL,
		url         VARCHAR(512)    NOT NULL,
		caption     VARCHAR(255)    NULL,
		description TEXT            NULL,
		position    INT             NOT NULL DEFAULT 0,
		active      TINYINT(1)      NOT NULL DEFAULT 1,
		created_at  DATETIME(3)     NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		updated_at  DATETIME(3)     NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		PRIMARY KEY (id),
		KEY idx_media_type_active (type, active, position, created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing table.  It is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i+1, err)
		}
	}
	return nil
}
