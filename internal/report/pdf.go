// Package report renders the portfolio report as a PDF document.
package report

import (
	"bytes"
	"strconv"
	"time"

	"github.com/Ru28/growgreen-backend/internal/models"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

func fmtMoney(d *decimal.Decimal) string {
	if d == nil {
		return "Not set"
	}
	return d.StringFixed(2)
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02 Jan 2006")
}

// Build renders the report metrics and the closed-trade history. The core
// fonts have no rupee glyph, so amounts are labelled "Rs.".
func Build(rep models.TradeReport, closed []models.Trade) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("GrowGreen Trade Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "GrowGreen Trade Report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Generated "+time.Now().Format("02 Jan 2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Portfolio Metrics", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)

	metric := func(label, value string) {
		pdf.CellFormat(60, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
	}
	metric("Nifty From", fmtMoney(rep.NiftyFrom))
	metric("Nifty Close", fmtMoney(rep.NiftyClose))
	niftyReturn := "Not set"
	if rep.NiftyReturn != nil {
		niftyReturn = rep.NiftyReturn.StringFixed(2) + " %"
	}
	metric("Nifty Return", niftyReturn)
	stopLoss := "N/A"
	if rep.StopLoss != nil {
		stopLoss = rep.StopLoss.StringFixed(2) + " %"
	}
	metric("Stop Loss", stopLoss)
	metric("Total Investment (Rs.)", fmtMoney(rep.Investment))
	metric("Current Value (Rs.)", rep.CurrentValue.StringFixed(2))
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Closed Trades", "", 1, "L", false, 0, "")

	headers := []struct {
		label string
		width float64
	}{
		{"Stock", 26},
		{"Entry Date", 24},
		{"Entry", 20},
		{"Qty", 14},
		{"Exit", 20},
		{"Exit Date", 24},
		{"P&L (Rs.)", 26},
		{"P&L (%)", 22},
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, h := range headers {
		pdf.CellFormat(h.width, 7, h.label, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	if len(closed) == 0 {
		pdf.CellFormat(176, 7, "No closed trades", "1", 1, "C", false, 0, "")
	}
	for _, t := range closed {
		exitPrice := ""
		if t.ExitPrice != nil {
			exitPrice = t.ExitPrice.StringFixed(2)
		}
		cells := []string{
			t.Stock,
			t.EntryDate.Format("02 Jan 2006"),
			t.EntryPrice.StringFixed(2),
			strconv.FormatInt(t.Quantity, 10),
			exitPrice,
			fmtDate(t.ExitDate),
			t.ProfitLossRupees.StringFixed(2),
			t.ProfitLossPercentage.StringFixed(2),
		}
		for i, cell := range cells {
			align := "R"
			if i == 0 || i == 1 || i == 5 {
				align = "L"
			}
			pdf.CellFormat(headers[i].width, 7, cell, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
