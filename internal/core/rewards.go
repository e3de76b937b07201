package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type RewardTier string

const (
	TierBronze   RewardTier = "bronze"
	TierSilver   RewardTier = "silver"
	TierGold     RewardTier = "gold"
	TierPlatinum RewardTier = "platinum"
	TierDiamond  RewardTier = "diamond"
)

// TierInfo describes one tier band. MaxPoints is -1 for the open-ended
// top band.
type TierInfo struct {
	Tier       RewardTier `json:"tier"`
	MinPoints  int        `json:"min_points"`
	MaxPoints  int        `json:"max_points"`
	Multiplier float64    `json:"multiplier"`
	Benefits   []string   `json:"benefits"`
	Color      string     `json:"color"`
}

// tiers is ordered ascending; TierFor walks it top-down so the bands
// stay non-overlapping by construction.
var tiers = []TierInfo{
	{TierBronze, 0, 499, 1.0, []string{"Basic tracking", "Email support"}, "#cd7f32"},
	{TierSilver, 500, 1999, 1.1, []string{"Priority support", "Advanced analytics", "Custom categories"}, "#c0c0c0"},
	{TierGold, 2000, 4999, 1.25, []string{"All Silver benefits", "Early access to features"}, "#ffd700"},
	{TierPlatinum, 5000, 9999, 1.5, []string{"All Gold benefits", "Custom integrations", "API access"}, "#e5e4e2"},
	{TierDiamond, 10000, -1, 2.0, []string{"All Platinum benefits", "24/7 phone support"}, "#b9f2ff"},
}

// Tiers returns the tier table, lowest band first.
func Tiers() []TierInfo {
	out := make([]TierInfo, len(tiers))
	copy(out, tiers)
	return out
}

// TierFor maps a points total to its tier, checking the highest band
// first: 1999 is silver, 2000 is gold, 10000 and up diamond.
func TierFor(points int) RewardTier {
	for i := len(tiers) - 1; i >= 0; i-- {
		if points >= tiers[i].MinPoints {
			return tiers[i].Tier
		}
	}
	return TierBronze
}

// AddPoints applies a delta to a running total. Deltas may be negative
// (redemptions); the total never drops below zero. Returns the new
// total and its tier.
func AddPoints(total, delta int) (int, RewardTier) {
	total += delta
	if total < 0 {
		total = 0
	}
	return total, TierFor(total)
}

// NextTier returns the band above the current total, or "" from the top
// band.
func NextTier(points int) RewardTier {
	current := TierFor(points)
	for i, t := range tiers {
		if t.Tier == current && i+1 < len(tiers) {
			return tiers[i+1].Tier
		}
	}
	return ""
}

// PointsToNextTier returns how many points are missing to the next
// band, or 0 from the top band.
func PointsToNextTier(points int) int {
	next := NextTier(points)
	if next == "" {
		return 0
	}
	for _, t := range tiers {
		if t.Tier == next {
			if gap := t.MinPoints - points; gap > 0 {
				return gap
			}
			return 0
		}
	}
	return 0
}

// TierProgress returns how far through the current band the total sits,
// as a percentage in [0,100]. The top band always reports 100.
func TierProgress(points int) float64 {
	current := TierFor(points)
	for _, t := range tiers {
		if t.Tier != current {
			continue
		}
		if t.MaxPoints < 0 {
			return 100
		}
		span := t.MaxPoints - t.MinPoints
		if span <= 0 {
			return 100
		}
		p := float64(points-t.MinPoints) / float64(span) * 100
		if p > 100 {
			p = 100
		}
		return p
	}
	return 0
}

// categoryMultipliers weight payment points by bill category.
var categoryMultipliers = map[string]decimal.Decimal{
	"utilities":    decimal.NewFromFloat(1.0),
	"rent":         decimal.NewFromFloat(1.2),
	"mortgage":     decimal.NewFromFloat(1.2),
	"credit_card":  decimal.NewFromFloat(1.5),
	"loan":         decimal.NewFromFloat(1.3),
	"insurance":    decimal.NewFromFloat(1.1),
	"subscription": decimal.NewFromFloat(0.8),
	"education":    decimal.NewFromFloat(1.4),
}

// streakBonuses reward consecutive on-time payments, longest streak
// checked first.
var streakBonuses = []struct {
	Days       int
	Multiplier decimal.Decimal
}{
	{30, decimal.NewFromFloat(1.5)},
	{15, decimal.NewFromFloat(1.3)},
	{7, decimal.NewFromFloat(1.2)},
	{3, decimal.NewFromFloat(1.1)},
}

const basePointsPerDollar = 10

var onTimeMultiplier = decimal.NewFromFloat(1.5)

// PointsForPayment computes the points a bill payment earns: ten points
// per USD, weighted by category, with a 1.5x on-time bonus and a streak
// bonus on top. Never less than one point.
func PointsForPayment(amountUSD decimal.Decimal, onTime bool, category string, streakDays int) int {
	points := amountUSD.Mul(decimal.NewFromInt(basePointsPerDollar))
	if m, ok := categoryMultipliers[strings.ToLower(category)]; ok {
		points = points.Mul(m)
	}
	if onTime {
		points = points.Mul(onTimeMultiplier)
	}
	for _, s := range streakBonuses {
		if streakDays >= s.Days {
			points = points.Mul(s.Multiplier)
			break
		}
	}
	n := int(points.Round(0).IntPart())
	if n < 1 {
		n = 1
	}
	return n
}

// RewardEntry is one earned (or deducted) batch of points.
type RewardEntry struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"-"`
	BillID     int64           `json:"bill_id,omitempty"`
	Points     int             `json:"points"`
	BillAmount decimal.Decimal `json:"bill_amount"`
	Category   string          `json:"category"`
	OnTime     bool            `json:"on_time_payment"`
	EarnedAt   time.Time       `json:"earned_at"`
}

// RewardOverview is the rewards panel payload.
type RewardOverview struct {
	TotalPoints  int           `json:"total_points"`
	CurrentTier  RewardTier    `json:"current_tier"`
	NextTier     RewardTier    `json:"next_tier,omitempty"`
	PointsToNext int           `json:"points_to_next_tier"`
	Progress     float64       `json:"progress_percentage"`
	Multiplier   float64       `json:"multiplier"`
	Recent       []RewardEntry `json:"recent_rewards"`
}
