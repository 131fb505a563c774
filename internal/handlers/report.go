package handlers

import (
	"net/http"
	"strings"

	"github.com/Ru28/growgreen-backend/internal/db"
	"github.com/Ru28/growgreen-backend/internal/engine"
	"github.com/Ru28/growgreen-backend/internal/models"
	"github.com/Ru28/growgreen-backend/internal/report"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// optionalMoney parses an optional report field: empty clears the column,
// anything else must be a valid number.
func optionalMoney(field, raw string) (decimal.NullDecimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := engine.RoundMoney(raw)
	if err != nil {
		return decimal.NullDecimal{}, &engine.ValidationError{Kind: engine.KindInvalidNumber, Field: field}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

// UpdateReport handles PUT /api/report
//
// niftyReturn is derived server-side from the submitted index levels and
// currentValue is never client-writable; both are ignored if posted.
func UpdateReport(c *gin.Context) {
	var req models.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	niftyFrom, err := optionalMoney("niftyFrom", req.NiftyFrom.String())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	niftyClose, err := optionalMoney("niftyClose", req.NiftyClose.String())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stopLoss, err := optionalMoney("stopLoss", req.StopLoss.String())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	investment, err := optionalMoney("investment", req.Investment.String())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var niftyReturn decimal.NullDecimal
	if ret, ok := engine.NiftyReturn(req.NiftyFrom.String(), req.NiftyClose.String()); ok {
		niftyReturn = decimal.NullDecimal{Decimal: ret, Valid: true}
	}

	_, err = db.DB.Exec(`
        UPDATE trade_report
        SET nifty_from = $1, nifty_close = $2, nifty_return = $3, stop_loss = $4, investment = $5, updated_at = NOW()
        WHERE id = 1
    `, niftyFrom, niftyClose, niftyReturn, stopLoss, investment)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update report"})
		return
	}

	active, err := loadActiveTrades()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch active trades"})
		return
	}
	rep, err := loadReport(active)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch report"})
		return
	}

	c.JSON(http.StatusOK, rep)
}

// DownloadReport handles GET /api/report/download
//
// The PDF is built from the persisted report and closed trades on demand;
// it does not depend on any client-held state.
func DownloadReport(c *gin.Context) {
	active, err := loadActiveTrades()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch active trades"})
		return
	}
	rep, err := loadReport(active)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch report"})
		return
	}
	closed, err := loadClosedTrades()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch closed trades"})
		return
	}

	pdf, err := report.Build(rep, closed)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="trade-report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
