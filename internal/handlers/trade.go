package handlers

import (
	"database/sql"
	"net/http"

	"github.com/Ru28/growgreen-backend/internal/db"
	"github.com/Ru28/growgreen-backend/internal/engine"
	"github.com/Ru28/growgreen-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// toInput copies a request body into an engine edit buffer. All parsing
// happens in the engine; the handler never coerces values inline.
func toInput(req models.TradeRequest, id string) engine.TradeInput {
	return engine.TradeInput{
		ID:         id,
		Stock:      req.Stock,
		EntryDate:  req.EntryDate.String(),
		EntryPrice: req.EntryPrice.String(),
		Investment: req.Investment.String(),
		ClosePrice: req.ClosePrice.String(),
		ExitPrice:  req.ExitPrice.String(),
		ExitDate:   req.ExitDate.String(),
		Quantity:   req.Quantity.String(),
		Status:     req.Status,
	}
}

const activeColumns = `id, stock, entry_date, entry_price, investment, quantity, close_price, profit_loss_rupees, profit_loss_percentage, status`

const closedColumns = `id, stock, entry_date, entry_price, investment, quantity, exit_price, exit_date, profit_loss_rupees, profit_loss_percentage, status`

func scanActiveTrade(rows *sql.Rows) (models.Trade, error) {
	var t models.Trade
	var closePrice decimal.Decimal
	err := rows.Scan(&t.ID, &t.Stock, &t.EntryDate, &t.EntryPrice, &t.Investment,
		&t.Quantity, &closePrice, &t.ProfitLossRupees, &t.ProfitLossPercentage, &t.Status)
	if err != nil {
		return t, err
	}
	t.ClosePrice = &closePrice
	return t, nil
}

func scanClosedTrade(rows *sql.Rows) (models.Trade, error) {
	var t models.Trade
	var exitPrice decimal.Decimal
	var exitDate sql.NullTime
	err := rows.Scan(&t.ID, &t.Stock, &t.EntryDate, &t.EntryPrice, &t.Investment,
		&t.Quantity, &exitPrice, &exitDate, &t.ProfitLossRupees, &t.ProfitLossPercentage, &t.Status)
	if err != nil {
		return t, err
	}
	t.ExitPrice = &exitPrice
	if exitDate.Valid {
		d := exitDate.Time
		t.ExitDate = &d
	}
	return t, nil
}

func loadActiveTrades() ([]models.Trade, error) {
	rows, err := db.DB.Query(`SELECT ` + activeColumns + ` FROM active_trades ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trades := make([]models.Trade, 0)
	for rows.Next() {
		t, err := scanActiveTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func loadClosedTrades() ([]models.Trade, error) {
	rows, err := db.DB.Query(`SELECT ` + closedColumns + ` FROM closed_trades ORDER BY exit_date DESC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trades := make([]models.Trade, 0)
	for rows.Next() {
		t, err := scanClosedTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// currentValue marks the active book at the reference close prices.
func currentValue(active []models.Trade) decimal.Decimal {
	total := decimal.Zero
	for _, t := range active {
		if t.ClosePrice == nil {
			continue
		}
		total = total.Add(t.ClosePrice.Mul(decimal.NewFromInt(t.Quantity)))
	}
	return total.Round(2)
}

func loadReport(active []models.Trade) (models.TradeReport, error) {
	var rep models.TradeReport
	var niftyFrom, niftyClose, niftyReturn, stopLoss, investment decimal.NullDecimal

	err := db.DB.QueryRow(`
        SELECT nifty_from, nifty_close, nifty_return, stop_loss, investment
        FROM trade_report WHERE id = 1
    `).Scan(&niftyFrom, &niftyClose, &niftyReturn, &stopLoss, &investment)
	if err != nil {
		return rep, err
	}

	if niftyFrom.Valid {
		rep.NiftyFrom = &niftyFrom.Decimal
	}
	if niftyClose.Valid {
		rep.NiftyClose = &niftyClose.Decimal
	}
	if niftyReturn.Valid {
		rep.NiftyReturn = &niftyReturn.Decimal
	}
	if stopLoss.Valid {
		rep.StopLoss = &stopLoss.Decimal
	}
	if investment.Valid {
		rep.Investment = &investment.Decimal
	}
	rep.CurrentValue = currentValue(active)
	return rep, nil
}

// GetAllTradeData handles GET /api/trades
//
// The response is the authoritative portfolio snapshot; clients re-fetch it
// after every mutation instead of trusting mutation response bodies.
func GetAllTradeData(c *gin.Context) {
	active, err := loadActiveTrades()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch active trades"})
		return
	}

	closed, err := loadClosedTrades()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch closed trades"})
		return
	}

	report, err := loadReport(active)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch report"})
		return
	}

	c.JSON(http.StatusOK, models.TradeListResponse{
		ActiveTrades: active,
		ClosedTrades: closed,
		Report:       report,
	})
}

// CreateActiveTrade handles POST /api/trades/active
func CreateActiveTrade(c *gin.Context) {
	var req models.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trade, err := engine.ValidateForSave(toInput(req, ""), engine.ClosePriceField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Trades are always created HELD; closing goes through the close
	// endpoint.
	trade.Status = models.StatusHeld
	trade.ID = uuid.NewString()

	_, err = db.DB.Exec(`
        INSERT INTO active_trades
        (id, stock, entry_date, entry_price, investment, quantity, close_price, profit_loss_rupees, profit_loss_percentage, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, trade.ID, trade.Stock, trade.EntryDate, trade.EntryPrice, trade.Investment,
		trade.Quantity, trade.ClosePrice, trade.ProfitLossRupees, trade.ProfitLossPercentage, trade.Status)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create trade"})
		return
	}

	c.JSON(http.StatusCreated, trade)
}

// UpdateActiveTrade handles PUT /api/trades/active/:id
func UpdateActiveTrade(c *gin.Context) {
	id := c.Param("id")

	var req models.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Selecting CLOSED during an edit is only a request for exit details;
	// it never closes the trade by itself.
	if outcome, _ := engine.ChangeStatus(models.Trade{Status: models.StatusHeld}, req.Status); outcome == engine.NeedsExitDetails {
		c.JSON(http.StatusBadRequest, gin.H{"error": "closing a trade requires exit details; use the close endpoint"})
		return
	}

	trade, err := engine.ValidateForSave(toInput(req, id), engine.ClosePriceField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := db.DB.Exec(`
        UPDATE active_trades
        SET stock = $2, entry_date = $3, entry_price = $4, investment = $5, quantity = $6,
            close_price = $7, profit_loss_rupees = $8, profit_loss_percentage = $9, updated_at = NOW()
        WHERE id = $1
    `, id, trade.Stock, trade.EntryDate, trade.EntryPrice, trade.Investment,
		trade.Quantity, trade.ClosePrice, trade.ProfitLossRupees, trade.ProfitLossPercentage)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update trade"})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trade not found"})
		return
	}

	c.JSON(http.StatusOK, trade)
}

// DeleteActiveTrade handles DELETE /api/trades/active/:id
func DeleteActiveTrade(c *gin.Context) {
	id := c.Param("id")

	res, err := db.DB.Exec(`DELETE FROM active_trades WHERE id = $1`, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete trade"})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trade not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Trade deleted"})
}

// UpdateClosedTrade handles PUT /api/trades/closed/:id
//
// Exit price and exit date may be corrected directly without re-running the
// close validation; entry price or quantity edits re-derive investment and
// P&L the same as on an active trade. The status is terminal.
func UpdateClosedTrade(c *gin.Context) {
	id := c.Param("id")

	var req models.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := engine.ChangeStatus(models.Trade{Status: models.StatusClosed}, req.Status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trade, err := engine.ValidateForSave(toInput(req, id), engine.ExitPriceField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := db.DB.Exec(`
        UPDATE closed_trades
        SET stock = $2, entry_date = $3, entry_price = $4, investment = $5, quantity = $6,
            exit_price = $7, exit_date = $8, profit_loss_rupees = $9, profit_loss_percentage = $10, updated_at = NOW()
        WHERE id = $1
    `, id, trade.Stock, trade.EntryDate, trade.EntryPrice, trade.Investment,
		trade.Quantity, trade.ExitPrice, trade.ExitDate, trade.ProfitLossRupees, trade.ProfitLossPercentage)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update trade"})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trade not found"})
		return
	}

	c.JSON(http.StatusOK, trade)
}

// DeleteClosedTrade handles DELETE /api/trades/closed/:id
func DeleteClosedTrade(c *gin.Context) {
	id := c.Param("id")

	res, err := db.DB.Exec(`DELETE FROM closed_trades WHERE id = $1`, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete trade"})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trade not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Trade deleted"})
}
