package handlers

import (
	"net/http"
	"time"

	"github.com/Ru28/growgreen-backend/internal/engine"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TradeValuation is the P&L of one active trade at its reference close
// price, recomputed by the engine for every snapshot.
type TradeValuation struct {
	ID                   string          `json:"id"`
	Stock                string          `json:"stock"`
	ProfitLossRupees     decimal.Decimal `json:"profitLossRupees"`
	ProfitLossPercentage decimal.Decimal `json:"profitLossPercentage"`
}

// ValuationSnapshot is pushed periodically to connected clients.
type ValuationSnapshot struct {
	CurrentValue decimal.Decimal  `json:"currentValue"`
	TotalPL      decimal.Decimal  `json:"totalProfitLoss"`
	Trades       []TradeValuation `json:"trades"`
	Timestamp    time.Time        `json:"timestamp"`
}

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins (for development and demo)
	},
}

func buildSnapshot() (ValuationSnapshot, error) {
	active, err := loadActiveTrades()
	if err != nil {
		return ValuationSnapshot{}, err
	}

	snap := ValuationSnapshot{
		CurrentValue: currentValue(active),
		TotalPL:      decimal.Zero,
		Trades:       make([]TradeValuation, 0, len(active)),
		Timestamp:    time.Now(),
	}

	for _, t := range active {
		if t.ClosePrice == nil {
			continue
		}
		pl := engine.ProfitLossAmount(t.EntryPrice, *t.ClosePrice, t.Quantity)
		snap.TotalPL = snap.TotalPL.Add(pl)
		snap.Trades = append(snap.Trades, TradeValuation{
			ID:                   t.ID,
			Stock:                t.Stock,
			ProfitLossRupees:     pl,
			ProfitLossPercentage: engine.ProfitLossPercent(t.EntryPrice, *t.ClosePrice),
		})
	}
	snap.TotalPL = snap.TotalPL.Round(2)
	return snap, nil
}

// HandleValuationSocket handles WebSocket connections for portfolio
// valuation snapshots
func HandleValuationSocket(c *gin.Context) {
	// Upgrade HTTP connection to WebSocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade error")
		return
	}
	defer conn.Close()

	log.Info().Str("remote", conn.RemoteAddr().String()).Msg("valuation client connected")

	// Push a snapshot every few seconds
	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		snap, err := buildSnapshot()
		if err != nil {
			log.Error().Err(err).Msg("valuation snapshot failed")
			continue
		}

		if err := conn.WriteJSON(snap); err != nil {
			log.Info().Str("remote", conn.RemoteAddr().String()).Msg("valuation client disconnected")
			return
		}
	}
}
