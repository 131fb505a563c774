package handlers

import (
	"database/sql"
	"net/http"
	"sync"

	"github.com/Ru28/growgreen-backend/internal/db"
	"github.com/Ru28/growgreen-backend/internal/engine"
	"github.com/Ru28/growgreen-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// CloseResult represents the outcome of a close operation
type CloseResult struct {
	Trade    models.Trade
	Success  bool
	NotFound bool
	Error    string
}

// closeJob is a close waiting to be processed
type closeJob struct {
	tradeID  string
	trade    models.Trade // fully validated CLOSED record from the engine
	resultCh chan CloseResult
}

// CloseProcessor moves trades from the active to the closed store through a
// worker pool. The move is transactional: the record either leaves the
// active set and appears in the closed set, or nothing changes.
type CloseProcessor struct {
	workers  int
	queue    chan closeJob
	stopCh   chan struct{}
	wg       sync.WaitGroup
	locker   *models.TradeLocker
}

// NewCloseProcessor creates a close processor with a worker pool
func NewCloseProcessor(workers int) *CloseProcessor {
	return &CloseProcessor{
		workers: workers,
		queue:   make(chan closeJob, 100),
		stopCh:  make(chan struct{}),
		locker:  models.NewTradeLocker(),
	}
}

// Start starts the worker pool
func (cp *CloseProcessor) Start() {
	for i := 0; i < cp.workers; i++ {
		cp.wg.Add(1)
		go cp.worker(i)
	}
	log.Info().Int("workers", cp.workers).Msg("close processor started")
}

// Stop gracefully stops all workers
func (cp *CloseProcessor) Stop() {
	close(cp.stopCh)
	cp.wg.Wait()
	log.Info().Msg("close processor stopped")
}

func (cp *CloseProcessor) worker(id int) {
	defer cp.wg.Done()

	for {
		select {
		case <-cp.stopCh:
			return

		case job := <-cp.queue:
			log.Debug().Int("worker", id).Str("trade", job.tradeID).Msg("processing close")
			job.resultCh <- cp.processClose(job.tradeID, job.trade)
		}
	}
}

// processClose executes a single move with per-trade locking
func (cp *CloseProcessor) processClose(tradeID string, trade models.Trade) CloseResult {
	// Lock THIS trade only; closes of other trades proceed in parallel.
	cp.locker.Lock(tradeID)
	defer cp.locker.Unlock(tradeID)

	tx, err := db.DB.Begin()
	if err != nil {
		return CloseResult{Success: false, Error: "Transaction failed"}
	}
	defer tx.Rollback() // Rollback if we don't commit

	// 1. The trade must still be in the active store
	var existing string
	err = tx.QueryRow(
		"SELECT id FROM active_trades WHERE id = $1 FOR UPDATE",
		tradeID,
	).Scan(&existing)

	if err == sql.ErrNoRows {
		return CloseResult{Success: false, NotFound: true, Error: "Trade not found"}
	}
	if err != nil {
		return CloseResult{Success: false, Error: "Database error"}
	}

	// 2. Remove it from the active store
	if _, err = tx.Exec("DELETE FROM active_trades WHERE id = $1", tradeID); err != nil {
		return CloseResult{Success: false, Error: "Failed to remove active trade"}
	}

	// 3. Insert the closed record
	_, err = tx.Exec(`
        INSERT INTO closed_trades
        (id, stock, entry_date, entry_price, investment, quantity, exit_price, exit_date, profit_loss_rupees, profit_loss_percentage, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, trade.ID, trade.Stock, trade.EntryDate, trade.EntryPrice, trade.Investment,
		trade.Quantity, trade.ExitPrice, trade.ExitDate, trade.ProfitLossRupees,
		trade.ProfitLossPercentage, trade.Status)

	if err != nil {
		return CloseResult{Success: false, Error: "Failed to record closed trade"}
	}

	// Commit transaction (all or nothing!)
	if err = tx.Commit(); err != nil {
		return CloseResult{Success: false, Error: "Transaction commit failed"}
	}

	log.Info().Str("trade", tradeID).Str("stock", trade.Stock).Msg("trade closed")

	return CloseResult{Trade: trade, Success: true}
}

// SubmitClose submits a close to the processing queue and waits for the
// result
func (cp *CloseProcessor) SubmitClose(tradeID string, trade models.Trade) CloseResult {
	resultCh := make(chan CloseResult)

	cp.queue <- closeJob{
		tradeID:  tradeID,
		trade:    trade,
		resultCh: resultCh,
	}

	return <-resultCh
}

// CloseTrade handles POST /api/trades/active/:id/close
//
// The body carries the edited HELD record plus the exit details gathered by
// the close dialog. Validation failures abort before anything is written.
func (cp *CloseProcessor) CloseTrade(c *gin.Context) {
	id := c.Param("id")

	var req models.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	held, err := engine.ValidateForSave(toInput(req, id), engine.ClosePriceField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	held.Status = models.StatusHeld

	closed, err := engine.Close(held, req.ExitPrice.String(), req.ExitDate.String())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := cp.SubmitClose(id, closed)
	if !result.Success {
		if result.NotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": result.Error})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error})
		return
	}

	c.JSON(http.StatusOK, result.Trade)
}
