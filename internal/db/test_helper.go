package db

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

// SetupTestDB creates a test database connection. Tests that need a live
// database are skipped when none is reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("TEST_DB_HOST", "localhost"),
		getEnv("TEST_DB_PORT", "5432"),
		getEnv("TEST_DB_USER", "growgreen"),
		getEnv("TEST_DB_PASSWORD", "growgreen"),
		getEnv("TEST_DB_NAME", "growgreen_test"),
	)

	database, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err = database.Ping(); err != nil {
		t.Skipf("test database not reachable, skipping: %v", err)
	}

	if _, err = database.Exec(Schema); err != nil {
		t.Fatalf("Failed to bootstrap test schema: %v", err)
	}

	// Set global DB for handlers
	DB = database

	return database
}

// CleanupTestDB cleans up test data
func CleanupTestDB(t *testing.T, database *sql.DB) {
	t.Helper()

	for _, table := range []string{"active_trades", "closed_trades"} {
		if _, err := database.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("Warning: Failed to cleanup table %s: %v", table, err)
		}
	}
	if _, err := database.Exec(`UPDATE trade_report SET nifty_from = NULL, nifty_close = NULL, nifty_return = NULL, stop_loss = NULL, investment = NULL WHERE id = 1`); err != nil {
		t.Logf("Warning: Failed to reset trade_report: %v", err)
	}
}

// SeedActiveTrade inserts a HELD trade entered on 2024-01-10 and returns
// its id
func SeedActiveTrade(t *testing.T, database *sql.DB, stock string, entryPrice float64, quantity int64, closePrice float64) string {
	t.Helper()

	id := uuid.NewString()
	_, err := database.Exec(`
        INSERT INTO active_trades
        (id, stock, entry_date, entry_price, investment, quantity, close_price, profit_loss_rupees, profit_loss_percentage, status)
        VALUES ($1, $2, '2024-01-10', $3, $4, $5, $6, $7, $8, 'HELD')
    `, id, stock, entryPrice, entryPrice*float64(quantity), quantity, closePrice,
		(closePrice-entryPrice)*float64(quantity), (closePrice-entryPrice)/entryPrice*100)

	if err != nil {
		t.Fatalf("Failed to seed active trade: %v", err)
	}

	return id
}
