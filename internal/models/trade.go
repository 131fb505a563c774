package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// TradeStatus is the lifecycle state of a trade.
type TradeStatus string

const (
	StatusHeld   TradeStatus = "HELD"
	StatusClosed TradeStatus = "CLOSED"
)

// Trade represents a single position.
//
// Monetary fields are stored with exactly two fractional digits and marshal
// as quoted decimal strings, matching what the web client sends. While a
// trade is HELD, ClosePrice carries the reference exit price and the exit
// fields are absent; once CLOSED the exit fields are fixed and ClosePrice
// is cleared.
type Trade struct {
	ID                   string           `json:"id,omitempty"`
	Stock                string           `json:"stock"`
	EntryDate            time.Time        `json:"entryDate"`
	EntryPrice           decimal.Decimal  `json:"entryPrice"`
	Investment           decimal.Decimal  `json:"investment"`
	Quantity             int64            `json:"quantity"`
	ClosePrice           *decimal.Decimal `json:"closePrice,omitempty"`
	ExitPrice            *decimal.Decimal `json:"exitPrice,omitempty"`
	ExitDate             *time.Time       `json:"exitDate,omitempty"`
	ProfitLossRupees     decimal.Decimal  `json:"profitLossRupees"`
	ProfitLossPercentage decimal.Decimal  `json:"profitLossPercentage"`
	Status               TradeStatus      `json:"status"`
}

// TradeReport holds the portfolio-level metrics, one logical record.
// NiftyReturn is derived from NiftyFrom/NiftyClose and CurrentValue is
// computed from the active trades on read; neither is accepted from clients.
type TradeReport struct {
	NiftyFrom    *decimal.Decimal `json:"niftyFrom,omitempty"`
	NiftyClose   *decimal.Decimal `json:"niftyClose,omitempty"`
	NiftyReturn  *decimal.Decimal `json:"niftyReturn,omitempty"`
	StopLoss     *decimal.Decimal `json:"stopLoss,omitempty"`
	Investment   *decimal.Decimal `json:"investment,omitempty"`
	CurrentValue decimal.Decimal  `json:"currentValue"`
}

// FormValue is a raw form field as received from the client. The web client
// posts prices as strings ("150.00") but quantities as numbers, so both
// JSON shapes decode to their literal text; null decodes to "".
type FormValue string

func (v *FormValue) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*v = FormValue(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*v = FormValue(s)
	return nil
}

func (v FormValue) String() string { return string(v) }

// TradeRequest - what the client sends to create, edit or close a trade.
// Everything arrives as raw form text; parsing and validation happen in the
// engine, never at the call site.
type TradeRequest struct {
	Stock      string      `json:"stock"`
	EntryDate  FormValue   `json:"entryDate"`
	EntryPrice FormValue   `json:"entryPrice"`
	Investment FormValue   `json:"investment"`
	ClosePrice FormValue   `json:"closePrice"`
	ExitPrice  FormValue   `json:"exitPrice"`
	ExitDate   FormValue   `json:"exitDate"`
	Quantity   FormValue   `json:"quantity"`
	Status     TradeStatus `json:"status"`
}

// ReportRequest - what the client sends to update the portfolio metrics.
// currentValue is deliberately absent: it is never client-writable.
type ReportRequest struct {
	NiftyFrom  FormValue `json:"niftyFrom"`
	NiftyClose FormValue `json:"niftyClose"`
	StopLoss   FormValue `json:"stopLoss"`
	Investment FormValue `json:"investment"`
}

// TradeListResponse - the full portfolio snapshot returned by the list
// endpoint. Clients re-fetch this after every mutation rather than trusting
// mutation response bodies.
type TradeListResponse struct {
	ActiveTrades []Trade     `json:"activeTrades"`
	ClosedTrades []Trade     `json:"closedTrades"`
	Report       TradeReport `json:"report"`
}
