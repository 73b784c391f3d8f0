// Package rewards is the single place green score points are granted.
// Every state transition that earns points calls Award exactly once,
// inside the same transaction that performs the transition.
package rewards

import (
	"math"

	"github.com/Vihanga-02/EcoLife/internal/models"
	"gorm.io/gorm"
)

type Event string

const (
	WasteLogged       Event = "waste_logged"
	TradeSellerPayout Event = "trade_seller_payout"
	TradeBuyerPayout  Event = "trade_buyer_payout"
	RecyclingApproved Event = "recycling_approved"
)

// Points returns the score granted for an event. The magnitude is only
// meaningful for recycling approvals, where it is the estimated weight in kg.
func Points(e Event, magnitude float64) int {
	switch e {
	case WasteLogged:
		return 2
	case TradeSellerPayout:
		return 10
	case TradeBuyerPayout:
		return 5
	case RecyclingApproved:
		return int(math.Round(magnitude * 3))
	}
	return 0
}

// Award increments the user's green score for the event. The increment is
// applied in SQL so concurrent awards never lose an update.
func Award(tx *gorm.DB, userID uint, e Event, magnitude float64) error {
	pts := Points(e, magnitude)
	if pts == 0 {
		return nil
	}
	return tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("green_score", gorm.Expr("green_score + ?", pts)).Error
}
