package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"conti/internal/core"
	"conti/internal/ledger"
)

// recentRewardsLimit caps the history shown in the rewards panel.
const recentRewardsLimit = 10

// streakScanLimit bounds how far back the streak counter reads. A
// streak longer than this is reported as this.
const streakScanLimit = 90

// RewardService reads the rewards ledger and grants payment points.
type RewardService struct {
	users   ledger.UserStore
	rewards ledger.RewardStore
}

func NewRewardService(users ledger.UserStore, rewards ledger.RewardStore) *RewardService {
	return &RewardService{
		users:   users,
		rewards: rewards,
	}
}

// Overview assembles the rewards panel for a user: running total, tier
// position, and the most recent grants.
func (s *RewardService) Overview(ctx context.Context, userID int64) (core.RewardOverview, error) {
	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return core.RewardOverview{}, fmt.Errorf("load user: %w", err)
	}
	recent, err := s.rewards.RewardsByUser(ctx, userID, recentRewardsLimit)
	if err != nil {
		return core.RewardOverview{}, fmt.Errorf("load recent rewards: %w", err)
	}

	tier := core.TierFor(user.Points)
	multiplier := 1.0
	for _, t := range core.Tiers() {
		if t.Tier == tier {
			multiplier = t.Multiplier
			break
		}
	}

	return core.RewardOverview{
		TotalPoints:  user.Points,
		CurrentTier:  tier,
		NextTier:     core.NextTier(user.Points),
		PointsToNext: core.PointsToNextTier(user.Points),
		Progress:     core.TierProgress(user.Points),
		Multiplier:   multiplier,
		Recent:       recent,
	}, nil
}

// Entries returns reward history, newest first. A non-positive limit
// returns everything.
func (s *RewardService) Entries(ctx context.Context, userID int64, limit int) ([]core.RewardEntry, error) {
	entries, err := s.rewards.RewardsByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	return entries, nil
}

// StreakDays counts consecutive calendar days with at least one grant,
// walking back from today. The streak is alive only while its newest
// day is today or yesterday; any gap breaks it.
func (s *RewardService) StreakDays(ctx context.Context, userID int64, today core.Date) (int, error) {
	entries, err := s.rewards.RewardsByUser(ctx, userID, streakScanLimit)
	if err != nil {
		return 0, fmt.Errorf("load rewards for streak: %w", err)
	}

	// Entries arrive newest first; collapse to distinct days.
	var days []core.Date
	for _, e := range entries {
		d := core.DateOf(e.EarnedAt)
		if len(days) == 0 || !days[len(days)-1].Equal(d.Time) {
			days = append(days, d)
		}
	}

	streak := 0
	var prev core.Date
	for i, d := range days {
		if i == 0 {
			if !d.Equal(today.Time) && !d.Equal(today.AddDays(-1).Time) {
				break
			}
			streak = 1
			prev = d
			continue
		}
		if !d.Equal(prev.AddDays(-1).Time) {
			break
		}
		streak++
		prev = d
	}
	return streak, nil
}

// AwardForPayment grants points for a paid bill and moves the user's
// running total. The grant is idempotent within a day: when the bill
// already earned points today the existing entry comes back untouched,
// so a retried payment can never award twice.
func (s *RewardService) AwardForPayment(ctx context.Context, user core.User, bill core.Bill, onTime bool, now time.Time) (core.RewardEntry, error) {
	today := core.DateOf(now)

	existing, err := s.rewards.RewardForBill(ctx, user.ID, bill.ID)
	switch {
	case err == nil && core.DateOf(existing.EarnedAt).Equal(today.Time):
		return existing, nil
	case err != nil && !errors.Is(err, core.ErrNotFound):
		return core.RewardEntry{}, fmt.Errorf("check existing reward: %w", err)
	}

	streak, err := s.StreakDays(ctx, user.ID, today)
	if err != nil {
		slog.WarnContext(ctx, "Failed to compute reward streak",
			"user_id", user.ID, "error", err)
		streak = 0
	}

	points := core.PointsForPayment(bill.AmountUSD, onTime, bill.Category, streak)
	entry := core.RewardEntry{
		UserID:     user.ID,
		BillID:     bill.ID,
		Points:     points,
		BillAmount: bill.AmountUSD,
		Category:   bill.Category,
		OnTime:     onTime,
		EarnedAt:   now,
	}
	created, err := s.rewards.CreateReward(ctx, entry)
	if err != nil {
		return core.RewardEntry{}, fmt.Errorf("create reward: %w", err)
	}

	total, tier := core.AddPoints(user.Points, points)
	if err := s.users.SetUserPoints(ctx, user.ID, total); err != nil {
		return created, fmt.Errorf("update points total: %w", err)
	}

	slog.InfoContext(ctx, "Awarded payment points",
		"user_id", user.ID,
		"bill_id", bill.ID,
		"points", points,
		"on_time", onTime,
		"streak_days", streak,
		"total_points", total,
		"tier", tier)

	return created, nil
}
