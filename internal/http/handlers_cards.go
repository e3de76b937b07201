package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"conti/internal/core"
	"conti/internal/services"
)

type cardRequest struct {
	Number  string          `json:"number" validate:"required"`
	Holder  string          `json:"holder" validate:"required"`
	Expiry  string          `json:"expiry" validate:"required"`
	CVV     string          `json:"cvv" validate:"required"`
	Balance decimal.Decimal `json:"balance"`
	Limit   decimal.Decimal `json:"limit"`
}

// cardView decorates a stored card with its derived utilization.
type cardView struct {
	core.Card
	Utilization decimal.Decimal `json:"utilization_percentage"`
	OverLimit   bool            `json:"over_limit"`
}

func viewCard(c core.Card) cardView {
	return cardView{
		Card:        c,
		Utilization: core.Utilization(c.Balance, c.Limit),
		OverLimit:   core.OverLimit(c.Balance, c.Limit),
	}
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.deps.Cards.List(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Card listing failed", "error", err)
		WriteError(w, err)
		return
	}

	views := make([]cardView, 0, len(cards))
	for _, c := range cards {
		views = append(views, viewCard(c))
	}
	NewJSONResponse().Body(map[string]any{"cards": views}).Write(w)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	card, err := s.deps.Cards.Create(r.Context(), services.CreateCardInput{
		CardInput: core.CardInput{
			Number: req.Number,
			Holder: req.Holder,
			Expiry: req.Expiry,
			CVV:    req.CVV,
		},
		Balance: req.Balance,
		Limit:   req.Limit,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(viewCard(card)).Write(w)
}

func (s *Server) handleFreezeCard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	card, err := s.deps.Cards.ToggleFreeze(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	NewJSONResponse().Body(viewCard(card)).Write(w)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Cards.Delete(r.Context(), r.PathValue("id")); err != nil {
		WriteError(w, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
