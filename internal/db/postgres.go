package db

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

var DB *sql.DB // Global database connection

// Schema is executed on every startup; all statements are idempotent.
// Active and closed trades live in separate tables because closing a trade
// moves the record, it does not patch it. trade_report is a singleton row.
const Schema = `
CREATE TABLE IF NOT EXISTS active_trades (
    id UUID PRIMARY KEY,
    stock TEXT NOT NULL,
    entry_date DATE NOT NULL,
    entry_price NUMERIC(14,2) NOT NULL,
    investment NUMERIC(14,2) NOT NULL,
    quantity BIGINT NOT NULL CHECK (quantity >= 0),
    close_price NUMERIC(14,2) NOT NULL,
    profit_loss_rupees NUMERIC(14,2) NOT NULL DEFAULT 0,
    profit_loss_percentage NUMERIC(14,2) NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'HELD',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS closed_trades (
    id UUID PRIMARY KEY,
    stock TEXT NOT NULL,
    entry_date DATE NOT NULL,
    entry_price NUMERIC(14,2) NOT NULL,
    investment NUMERIC(14,2) NOT NULL,
    quantity BIGINT NOT NULL CHECK (quantity >= 0),
    exit_price NUMERIC(14,2) NOT NULL,
    exit_date DATE NOT NULL,
    profit_loss_rupees NUMERIC(14,2) NOT NULL DEFAULT 0,
    profit_loss_percentage NUMERIC(14,2) NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'CLOSED',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS trade_report (
    id SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
    nifty_from NUMERIC(14,2),
    nifty_close NUMERIC(14,2),
    nifty_return NUMERIC(14,2),
    stop_loss NUMERIC(14,2),
    investment NUMERIC(14,2),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

INSERT INTO trade_report (id) VALUES (1) ON CONFLICT (id) DO NOTHING;
`

// InitDB initializes the database connection and bootstraps the schema
func InitDB() error {
	// Connection string
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "growgreen"),
		getEnv("DB_PASSWORD", "growgreen"),
		getEnv("DB_NAME", "growgreen_db"),
	)

	// Open connection
	var err error
	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	// Test connection
	if err = DB.Ping(); err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	if _, err = DB.Exec(Schema); err != nil {
		return fmt.Errorf("error bootstrapping schema: %w", err)
	}

	// Set connection pool settings
	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(5)
	DB.SetConnMaxLifetime(5 * time.Minute)

	log.Info().Str("host", getEnv("DB_HOST", "localhost")).Msg("database connected")
	return nil
}

// Helper function to get environment variable with default
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// CloseDB closes database connection
func CloseDB() {
	if DB != nil {
		DB.Close()
		log.Info().Msg("database connection closed")
	}
}
