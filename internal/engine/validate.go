package engine

import (
	"strings"
	"time"

	"github.com/Ru28/growgreen-backend/internal/models"
	"github.com/shopspring/decimal"
)

// PriceContext names the close-reference price field for the table being
// edited: the active table validates closePrice, the closed table exitPrice.
type PriceContext string

const (
	ClosePriceField PriceContext = "closePrice"
	ExitPriceField  PriceContext = "exitPrice"
)

// TradeInput is a caller-owned edit buffer: raw form text gathered by the
// trade form or a table row, not yet parsed or validated.
type TradeInput struct {
	ID         string
	Stock      string
	EntryDate  string
	EntryPrice string
	Investment string
	ClosePrice string
	ExitPrice  string
	ExitDate   string
	Quantity   string
	Status     models.TradeStatus
}

const dateLayout = "2006-01-02"

// parseDate accepts a plain calendar date or an RFC3339 timestamp (the web
// client serializes Date objects) and normalizes to midnight UTC, so dates
// at rest are date-only.
func parseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, err
		}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func parseRequiredDate(field, raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, missingField(field)
	}
	d, err := parseDate(raw)
	if err != nil {
		return time.Time{}, invalidNumber(field)
	}
	return d, nil
}

// requirePositive gates a monetary field that the edit path collapses to
// zero when cleared, so zero reads as missing, not as a price of 0.
func requirePositive(field, raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Decimal{}, missingField(field)
	}
	d, err := RoundMoney(raw)
	if err != nil {
		return decimal.Decimal{}, invalidNumber(field)
	}
	if d.IsZero() {
		return decimal.Decimal{}, missingField(field)
	}
	return d, nil
}

// parseQuantity validates the raw quantity before any flooring: fractional
// input is rejected, not silently rounded. The floor after the integer
// check is last-resort normalization only.
func parseQuantity(raw string) (int64, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, missingField("quantity")
	}
	q, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, invalidNumber("quantity")
	}
	if q.IsZero() {
		return 0, missingField("quantity")
	}
	if q.IsNegative() {
		return 0, invalidNumber("quantity")
	}
	if !q.IsInteger() {
		return 0, &ValidationError{Kind: KindNonIntegerQuantity, Field: "quantity"}
	}
	return q.Floor().IntPart(), nil
}

// ValidateForSave gates a create or in-place save. Required fields are
// checked in a fixed order - stock, entryPrice, investment, the
// close-reference price, quantity - and the first missing one wins.
// entryPrice is an explicit presence check: "0" is a valid-but-present
// value, unlike the other monetary fields. On success the returned Trade is
// fully normalized: money at two decimal places, quantity floored, derived
// P&L recomputed from the reference price.
func ValidateForSave(in TradeInput, ref PriceContext) (models.Trade, error) {
	if strings.TrimSpace(in.Stock) == "" {
		return models.Trade{}, missingField("stock")
	}

	if strings.TrimSpace(in.EntryPrice) == "" {
		return models.Trade{}, missingField("entryPrice")
	}
	entryPrice, err := RoundMoney(in.EntryPrice)
	if err != nil {
		return models.Trade{}, invalidNumber("entryPrice")
	}

	investment, err := requirePositive("investment", in.Investment)
	if err != nil {
		return models.Trade{}, err
	}

	refRaw := in.ClosePrice
	if ref == ExitPriceField {
		refRaw = in.ExitPrice
	}
	refPrice, err := requirePositive(string(ref), refRaw)
	if err != nil {
		return models.Trade{}, err
	}

	quantity, err := parseQuantity(in.Quantity)
	if err != nil {
		return models.Trade{}, err
	}

	entryDate, err := parseRequiredDate("entryDate", in.EntryDate)
	if err != nil {
		return models.Trade{}, err
	}

	t := models.Trade{
		ID:         in.ID,
		Stock:      strings.TrimSpace(in.Stock),
		EntryDate:  entryDate,
		EntryPrice: entryPrice,
		Investment: investment,
		Quantity:   quantity,
		Status:     in.Status,
	}
	if t.Status == "" {
		t.Status = models.StatusHeld
	}

	if ref == ExitPriceField {
		exitDate, err := parseRequiredDate("exitDate", in.ExitDate)
		if err != nil {
			return models.Trade{}, err
		}
		t.ExitPrice = &refPrice
		t.ExitDate = &exitDate
		t.Status = models.StatusClosed
	} else {
		t.ClosePrice = &refPrice
	}

	t.ProfitLossRupees = ProfitLossAmount(entryPrice, refPrice, quantity)
	t.ProfitLossPercentage = ProfitLossPercent(entryPrice, refPrice)

	return t, nil
}

// ValidateClose gates the HELD -> CLOSED transition. Same-day closes are
// rejected: the exit date must be strictly after the entry date.
func ValidateClose(t models.Trade, exitPrice, exitDate string) error {
	if strings.TrimSpace(exitPrice) == "" {
		return missingField("exitPrice")
	}
	if strings.TrimSpace(exitDate) == "" {
		return missingField("exitDate")
	}

	p, err := decimal.NewFromString(strings.TrimSpace(exitPrice))
	if err != nil || !p.IsPositive() {
		return &ValidationError{Kind: KindInvalidExitPrice, Field: "exitPrice"}
	}

	d, err := parseDate(exitDate)
	if err != nil {
		return invalidNumber("exitDate")
	}
	if !d.After(t.EntryDate) {
		return &ValidationError{Kind: KindExitBeforeEntry, Field: "exitDate"}
	}
	return nil
}
