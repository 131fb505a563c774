package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Ru28/growgreen-backend/internal/db"
	"github.com/Ru28/growgreen-backend/internal/engine"
	"github.com/Ru28/growgreen-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func heldRecord(t *testing.T, id string) models.Trade {
	t.Helper()

	closePrice := decimal.RequireFromString("120.00")
	return models.Trade{
		ID:         id,
		Stock:      "INFY",
		EntryDate:  time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		EntryPrice: decimal.RequireFromString("100.00"),
		Investment: decimal.RequireFromString("1000.00"),
		Quantity:   10,
		ClosePrice: &closePrice,
		Status:     models.StatusHeld,
	}
}

func TestCloseTrade_MovesRecord(t *testing.T) {
	// Setup
	database := db.SetupTestDB(t)
	defer database.Close()
	defer db.CleanupTestDB(t, database)

	id := db.SeedActiveTrade(t, database, "INFY", 100.0, 10, 120.0)

	cp := NewCloseProcessor(1)
	cp.Start()
	defer cp.Stop()

	closed, err := engine.Close(heldRecord(t, id), "150.00", "2024-02-01")
	if err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	result := cp.SubmitClose(id, closed)
	if !result.Success {
		t.Fatalf("Expected close to succeed, got error: %s", result.Error)
	}

	// Verify the record left the active store
	var activeCount int
	err = database.QueryRow("SELECT COUNT(*) FROM active_trades WHERE id = $1", id).Scan(&activeCount)
	if err != nil {
		t.Fatalf("Failed to query active trades: %v", err)
	}
	if activeCount != 0 {
		t.Errorf("Expected 0 active rows, got %d", activeCount)
	}

	// Verify the closed record
	var status, exitPrice, plRupees string
	err = database.QueryRow(`
        SELECT status, exit_price::text, profit_loss_rupees::text
        FROM closed_trades WHERE id = $1
    `, id).Scan(&status, &exitPrice, &plRupees)
	if err != nil {
		t.Fatalf("Failed to query closed trade: %v", err)
	}
	if status != "CLOSED" {
		t.Errorf("Expected status CLOSED, got %s", status)
	}
	if exitPrice != "150.00" {
		t.Errorf("Expected exit price 150.00, got %s", exitPrice)
	}
	if plRupees != "500.00" {
		t.Errorf("Expected P&L 500.00, got %s", plRupees)
	}
}

func TestCloseTrade_NotFound(t *testing.T) {
	database := db.SetupTestDB(t)
	defer database.Close()
	defer db.CleanupTestDB(t, database)

	cp := NewCloseProcessor(1)
	cp.Start()
	defer cp.Stop()

	id := uuid.NewString() // Doesn't exist
	closed, err := engine.Close(heldRecord(t, id), "150.00", "2024-02-01")
	if err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	result := cp.SubmitClose(id, closed)
	if result.Success {
		t.Error("Expected close to fail for unknown trade")
	}
	if !result.NotFound {
		t.Errorf("Expected NotFound, got error: %s", result.Error)
	}
}

func TestConcurrentClose_SameTrade(t *testing.T) {
	database := db.SetupTestDB(t)
	defer database.Close()
	defer db.CleanupTestDB(t, database)

	id := db.SeedActiveTrade(t, database, "TCS", 100.0, 5, 110.0)

	cp := NewCloseProcessor(5) // 5 workers
	cp.Start()
	defer cp.Stop()

	closed, err := engine.Close(heldRecord(t, id), "130.00", "2024-03-01")
	if err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Fire concurrent closes of the same trade; exactly one may win
	numCloses := 5
	results := make(chan CloseResult, numCloses)
	for i := 0; i < numCloses; i++ {
		go func() {
			results <- cp.SubmitClose(id, closed)
		}()
	}

	successCount := 0
	for i := 0; i < numCloses; i++ {
		if r := <-results; r.Success {
			successCount++
		}
	}

	if successCount != 1 {
		t.Errorf("Race condition detected! Expected exactly 1 successful close, got %d", successCount)
	}

	var closedCount int
	database.QueryRow("SELECT COUNT(*) FROM closed_trades WHERE id = $1", id).Scan(&closedCount)
	if closedCount != 1 {
		t.Errorf("Expected 1 closed row, got %d", closedCount)
	}
}

func newTestRouter(cp *CloseProcessor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/trades", GetAllTradeData)
	router.POST("/api/trades/active", CreateActiveTrade)
	router.PUT("/api/trades/active/:id", UpdateActiveTrade)
	if cp != nil {
		router.POST("/api/trades/active/:id/close", cp.CloseTrade)
	}
	return router
}

func TestCreateActiveTrade_Persists(t *testing.T) {
	database := db.SetupTestDB(t)
	defer database.Close()
	defer db.CleanupTestDB(t, database)

	router := newTestRouter(nil)

	body := `{
        "stock": "INFY",
        "entryDate": "2024-01-10",
        "entryPrice": "100.00",
        "investment": "1000.00",
        "closePrice": "120.00",
        "quantity": 10,
        "status": "HELD"
    }`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/trades/active", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var count int
	var investment string
	err := database.QueryRow(`SELECT COUNT(*), MIN(investment::text) FROM active_trades WHERE stock = 'INFY'`).Scan(&count, &investment)
	if err != nil {
		t.Fatalf("Failed to query active trades: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 active row, got %d", count)
	}
	if investment != "1000.00" {
		t.Errorf("Expected investment stored as 1000.00, got %s", investment)
	}
}

func TestCreateActiveTrade_MissingQuantityWritesNothing(t *testing.T) {
	database := db.SetupTestDB(t)
	defer database.Close()
	defer db.CleanupTestDB(t, database)

	router := newTestRouter(nil)

	body := `{
        "stock": "INFY",
        "entryDate": "2024-01-10",
        "entryPrice": "100.00",
        "investment": "1000.00",
        "closePrice": "120.00"
    }`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/trades/active", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
	if want := "quantity is required"; w.Body.String() == "" || !bytes.Contains(w.Body.Bytes(), []byte(want)) {
		t.Errorf("Expected error naming quantity, got %s", w.Body.String())
	}

	var count int
	database.QueryRow("SELECT COUNT(*) FROM active_trades").Scan(&count)
	if count != 0 {
		t.Errorf("Expected no rows written on validation failure, got %d", count)
	}
}

func TestUpdateActiveTrade_RejectsClosedStatus(t *testing.T) {
	database := db.SetupTestDB(t)
	defer database.Close()
	defer db.CleanupTestDB(t, database)

	id := db.SeedActiveTrade(t, database, "INFY", 100.0, 10, 120.0)

	router := newTestRouter(nil)

	// Selecting CLOSED on a save is only a request for exit details; the
	// close endpoint is the one that performs the transition.
	body := `{
        "stock": "INFY",
        "entryDate": "2024-01-10",
        "entryPrice": "100.00",
        "investment": "1000.00",
        "closePrice": "120.00",
        "quantity": 10,
        "status": "CLOSED"
    }`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/trades/active/"+id, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}

	// The trade is still HELD and untouched
	var status string
	database.QueryRow("SELECT status FROM active_trades WHERE id = $1", id).Scan(&status)
	if status != "HELD" {
		t.Errorf("Expected status HELD, got %s", status)
	}
}

func TestCloseTradeEndpoint_FullFlow(t *testing.T) {
	database := db.SetupTestDB(t)
	defer database.Close()
	defer db.CleanupTestDB(t, database)

	id := db.SeedActiveTrade(t, database, "INFY", 100.0, 10, 120.0)

	cp := NewCloseProcessor(2)
	cp.Start()
	defer cp.Stop()

	router := newTestRouter(cp)

	body := `{
        "stock": "INFY",
        "entryDate": "2024-01-10",
        "entryPrice": "100.00",
        "investment": "1000.00",
        "closePrice": "120.00",
        "quantity": 10,
        "exitPrice": "150.00",
        "exitDate": "2024-02-01",
        "status": "CLOSED"
    }`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/trades/active/"+id+"/close", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var activeCount, closedCount int
	database.QueryRow("SELECT COUNT(*) FROM active_trades WHERE id = $1", id).Scan(&activeCount)
	database.QueryRow("SELECT COUNT(*) FROM closed_trades WHERE id = $1", id).Scan(&closedCount)
	if activeCount != 0 || closedCount != 1 {
		t.Errorf("Expected record moved, got active=%d closed=%d", activeCount, closedCount)
	}
}

func TestCloseTradeEndpoint_SameDayRejected(t *testing.T) {
	database := db.SetupTestDB(t)
	defer database.Close()
	defer db.CleanupTestDB(t, database)

	id := db.SeedActiveTrade(t, database, "INFY", 100.0, 10, 120.0)

	cp := NewCloseProcessor(1)
	cp.Start()
	defer cp.Stop()

	router := newTestRouter(cp)

	body := `{
        "stock": "INFY",
        "entryDate": "2024-01-10",
        "entryPrice": "100.00",
        "investment": "1000.00",
        "closePrice": "120.00",
        "quantity": 10,
        "exitPrice": "150.00",
        "exitDate": "2024-01-10",
        "status": "CLOSED"
    }`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/trades/active/"+id+"/close", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for same-day close, got %d", w.Code)
	}

	// Nothing moved
	var activeCount int
	database.QueryRow("SELECT COUNT(*) FROM active_trades WHERE id = $1", id).Scan(&activeCount)
	if activeCount != 1 {
		t.Errorf("Expected record still active, got %d rows", activeCount)
	}
}
