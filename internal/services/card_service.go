package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"conti/internal/cardvault"
	"conti/internal/core"
)

// CardService manages the local card vault. Every mutation rewrites the
// whole vault file synchronously; the last writer wins.
type CardService struct {
	vault *cardvault.Vault
}

func NewCardService(vault *cardvault.Vault) *CardService {
	return &CardService{vault: vault}
}

// List returns all stored cards, newest first.
func (s *CardService) List(ctx context.Context) ([]core.Card, error) {
	cards, err := s.vault.List()
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

// CreateCardInput is the raw user input plus the optional credit line.
type CreateCardInput struct {
	core.CardInput
	Balance decimal.Decimal
	Limit   decimal.Decimal
}

// Create validates the input and stores a new card. Only the masked
// number is persisted; the CVV is validated and discarded.
func (s *CardService) Create(ctx context.Context, in CreateCardInput) (core.Card, error) {
	if err := core.ValidateCardInput(in.CardInput); err != nil {
		return core.Card{}, err
	}
	if in.Balance.Sign() < 0 || in.Limit.Sign() < 0 {
		return core.Card{}, core.NewValidationError("limit", "balance and limit must not be negative")
	}

	card := core.Card{
		ID:        uuid.NewString(),
		Number:    core.MaskCardNumber(in.Number),
		Holder:    in.Holder,
		Expiry:    core.NormalizeExpiry(in.Expiry),
		Issuer:    core.InferIssuer(in.Number),
		Balance:   core.RoundAmount(in.Balance),
		Limit:     core.RoundAmount(in.Limit),
		CreatedAt: time.Now().UTC(),
	}

	err := s.vault.Update(func(cards []core.Card) ([]core.Card, error) {
		return append([]core.Card{card}, cards...), nil
	})
	if err != nil {
		return core.Card{}, fmt.Errorf("store card: %w", err)
	}

	slog.InfoContext(ctx, "Card added",
		"card_id", card.ID,
		"issuer", card.Issuer,
		"number", card.Number)
	return card, nil
}

// ToggleFreeze flips the frozen flag and returns the updated card.
func (s *CardService) ToggleFreeze(ctx context.Context, id string) (core.Card, error) {
	var updated core.Card
	err := s.vault.Update(func(cards []core.Card) ([]core.Card, error) {
		for i := range cards {
			if cards[i].ID == id {
				cards[i].Frozen = !cards[i].Frozen
				updated = cards[i]
				return cards, nil
			}
		}
		return nil, core.ErrNotFound
	})
	if err != nil {
		return core.Card{}, fmt.Errorf("freeze card %s: %w", id, err)
	}

	slog.InfoContext(ctx, "Card freeze toggled",
		"card_id", id, "frozen", updated.Frozen)
	return updated, nil
}

// Delete removes a card from the vault.
func (s *CardService) Delete(ctx context.Context, id string) error {
	err := s.vault.Update(func(cards []core.Card) ([]core.Card, error) {
		for i := range cards {
			if cards[i].ID == id {
				return append(cards[:i], cards[i+1:]...), nil
			}
		}
		return nil, core.ErrNotFound
	})
	if err != nil {
		return fmt.Errorf("delete card %s: %w", id, err)
	}

	slog.InfoContext(ctx, "Card deleted", "card_id", id)
	return nil
}
