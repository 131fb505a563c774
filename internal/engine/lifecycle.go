package engine

import (
	"errors"

	"github.com/Ru28/growgreen-backend/internal/models"
)

// StatusOutcome is the engine's answer to a status selection made while a
// row is being edited.
type StatusOutcome int

const (
	// StatusUnchanged: nothing to do, the record keeps its current state.
	StatusUnchanged StatusOutcome = iota
	// NeedsExitDetails: the caller must collect an exit price and date and
	// then call Close. Selecting CLOSED does not itself close the trade;
	// cancelling leaves the record HELD and unmodified.
	NeedsExitDetails
)

// ErrReopenClosed is returned when a caller tries to move a CLOSED trade
// back to HELD. The transition is terminal.
var ErrReopenClosed = errors.New("a closed trade cannot be reopened")

// ChangeStatus decides what a status edit on a trade means.
func ChangeStatus(t models.Trade, next models.TradeStatus) (StatusOutcome, error) {
	if t.Status == models.StatusClosed && next == models.StatusHeld {
		return StatusUnchanged, ErrReopenClosed
	}
	if t.Status == models.StatusHeld && next == models.StatusClosed {
		return NeedsExitDetails, nil
	}
	return StatusUnchanged, nil
}

// Close performs the HELD -> CLOSED transition. On success the returned
// record has the exit fields fixed, the reference close price cleared and
// P&L recomputed from the realized exit price. The record must then be
// moved out of the active store and inserted into the closed store; it is
// not a field patch. On failure the input trade is untouched.
func Close(t models.Trade, exitPrice, exitDate string) (models.Trade, error) {
	if err := ValidateClose(t, exitPrice, exitDate); err != nil {
		return models.Trade{}, err
	}

	price, err := RoundMoney(exitPrice)
	if err != nil {
		return models.Trade{}, err
	}
	date, err := parseDate(exitDate)
	if err != nil {
		return models.Trade{}, invalidNumber("exitDate")
	}

	closed := t
	closed.Status = models.StatusClosed
	closed.ExitPrice = &price
	closed.ExitDate = &date
	closed.ClosePrice = nil
	closed.ProfitLossRupees = ProfitLossAmount(closed.EntryPrice, price, closed.Quantity)
	closed.ProfitLossPercentage = ProfitLossPercent(closed.EntryPrice, price)
	return closed, nil
}

// ApplyEdit records a single field change on an edit buffer. Editing the
// entry price or quantity re-derives the investment live; anything that
// keeps InvestmentFromEntry from reporting ok (a field mid-edit, a zero)
// leaves the previous investment value in place. ApplyEdit never fails:
// hard validation is deferred to the explicit save or close action.
func ApplyEdit(buf TradeInput, field, value string) TradeInput {
	switch field {
	case "stock":
		buf.Stock = value
	case "entryDate":
		buf.EntryDate = value
	case "entryPrice":
		buf.EntryPrice = value
	case "investment":
		buf.Investment = value
	case "closePrice":
		buf.ClosePrice = value
	case "exitPrice":
		buf.ExitPrice = value
	case "exitDate":
		buf.ExitDate = value
	case "quantity":
		buf.Quantity = value
	}

	if field == "entryPrice" || field == "quantity" {
		if inv, ok := InvestmentFromEntry(buf.EntryPrice, buf.Quantity); ok {
			buf.Investment = inv.StringFixed(2)
		}
	}
	return buf
}
