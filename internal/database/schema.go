package database

import (
	"database/sql"
	"fmt"
)

// EnsureSchema creates all tables the registry needs.  Safe to call on
// every boot: each statement uses IF NOT EXISTS.  Statements run one at
// a time because the driver does not enable multi-statement execution.
func EnsureSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS gifts (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		title TEXT NOT NULL,
		note TEXT NULL,
		url TEXT NULL,
		image_url TEXT NULL,
		image_focal_x DOUBLE NULL,
		image_focal_y DOUBLE NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS toggles (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		gift_id BIGINT UNSIGNED NOT NULL,
		visitor_id CHAR(36) NOT NULL,
		bought TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_gift_visitor (gift_id, visitor_id),
		KEY idx_toggles_gift (gift_id),
		CONSTRAINT fk_toggles_gift FOREIGN KEY (gift_id)
			REFERENCES gifts (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS visitor_logs (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		visitor_id CHAR(36) NOT NULL,
		ip VARCHAR(45) NOT NULL DEFAULT '',
		visit_date DATE NOT NULL,
		interaction_count INT UNSIGNED NOT NULL DEFAULT 1,
		PRIMARY KEY (id),
		UNIQUE KEY uq_visitor_day (visitor_id, visit_date),
		KEY idx_visitor_logs_date (visit_date)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS otp_tokens (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		email VARCHAR(255) NOT NULL,
		token CHAR(36) NOT NULL,
		expires_at DATETIME NOT NULL,
		used TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_otp_token (token)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	// key is reserved in MySQL, so this one cannot be a raw literal.
	"CREATE TABLE IF NOT EXISTS settings (" +
		" id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT," +
		" `key` VARCHAR(191) NOT NULL," +
		" value TEXT NOT NULL," +
		" updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP," +
		" PRIMARY KEY (id)," +
		" UNIQUE KEY uq_settings_key (`key`)" +
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
}
