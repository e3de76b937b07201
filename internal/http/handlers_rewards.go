package http

import (
	"net/http"
	"time"

	"conti/internal/core"
)

func (s *Server) handleListRewards(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)
	entries, err := s.deps.Rewards.Entries(r.Context(), s.session(r).UserID, limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Reward listing failed", "error", err)
		WriteError(w, err)
		return
	}
	if entries == nil {
		entries = []core.RewardEntry{}
	}
	NewJSONResponse().Body(map[string]any{"rewards": entries}).Write(w)
}

func (s *Server) handleRewardSummary(w http.ResponseWriter, r *http.Request) {
	session := s.session(r)
	overview, err := s.deps.Rewards.Overview(r.Context(), session.UserID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Reward overview failed", "error", err)
		WriteError(w, err)
		return
	}

	streak, err := s.deps.Rewards.StreakDays(r.Context(), session.UserID, core.DateOf(time.Now()))
	if err != nil {
		s.logger.WarnContext(r.Context(), "Reward streak unavailable", "error", err)
		streak = 0
	}

	NewJSONResponse().Body(struct {
		core.RewardOverview
		StreakDays int `json:"streak_days"`
	}{overview, streak}).Write(w)
}

func (s *Server) handleRewardTiers(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{"tiers": core.Tiers()}).Write(w)
}
