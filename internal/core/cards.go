package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Cards live in the local vault only. They are created from user input,
// mutated by the freeze toggle and balance edits, and never synced to
// the SQL store.

const (
	CardNumberLength = 16
	CardCVVLength    = 3
	CardExpiryDigits = 4
)

type CardIssuer string

const (
	IssuerVisa       CardIssuer = "visa"
	IssuerMastercard CardIssuer = "mastercard"
)

type Card struct {
	ID        string          `json:"id"`
	Number    string          `json:"number"` // masked, last 4 visible
	Holder    string          `json:"holder"`
	Expiry    string          `json:"expiry"` // MM/YY
	Issuer    CardIssuer      `json:"issuer"`
	Balance   decimal.Decimal `json:"balance"`
	Limit     decimal.Decimal `json:"limit"`
	Frozen    bool            `json:"frozen"`
	CreatedAt time.Time       `json:"created_at"`
}

// CardInput is raw, pre-normalization user input for a new card.
type CardInput struct {
	Number string
	Holder string
	Expiry string
	CVV    string
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeCardNumber strips everything but digits and truncates to the
// 16-digit card length.
func NormalizeCardNumber(s string) string {
	d := digitsOnly(s)
	if len(d) > CardNumberLength {
		d = d[:CardNumberLength]
	}
	return d
}

// FormatCardNumber renders a normalized number in groups of four:
// "4111111111111111" -> "4111 1111 1111 1111". Partial input formats
// as far as it goes.
func FormatCardNumber(s string) string {
	d := NormalizeCardNumber(s)
	var groups []string
	for i := 0; i < len(d); i += 4 {
		end := i + 4
		if end > len(d) {
			end = len(d)
		}
		groups = append(groups, d[i:end])
	}
	return strings.Join(groups, " ")
}

// MaskCardNumber hides all but the last group of the formatted number.
func MaskCardNumber(s string) string {
	formatted := FormatCardNumber(s)
	if len(formatted) <= 4 {
		return formatted
	}
	groups := strings.Split(formatted, " ")
	for i := 0; i < len(groups)-1; i++ {
		groups[i] = strings.Repeat("*", len(groups[i]))
	}
	return strings.Join(groups, " ")
}

// NormalizeExpiry keeps digits only, truncates to four, and inserts the
// slash after the month once more than two digits are present:
// "1226" -> "12/26", "1" -> "1".
func NormalizeExpiry(s string) string {
	d := digitsOnly(s)
	if len(d) > CardExpiryDigits {
		d = d[:CardExpiryDigits]
	}
	if len(d) <= 2 {
		return d
	}
	return d[:2] + "/" + d[2:]
}

// NormalizeCVV keeps digits only, truncated to three.
func NormalizeCVV(s string) string {
	d := digitsOnly(s)
	if len(d) > CardCVVLength {
		d = d[:CardCVVLength]
	}
	return d
}

// InferIssuer guesses the brand from the leading digit: '5' means
// mastercard, anything else visa. Leading digit only, not a BIN table.
func InferIssuer(number string) CardIssuer {
	d := NormalizeCardNumber(number)
	if strings.HasPrefix(d, "5") {
		return IssuerMastercard
	}
	return IssuerVisa
}

// ValidateCardInput normalizes and checks the input, reporting the
// first unmet rule as a field-scoped ValidationError.
func ValidateCardInput(in CardInput) error {
	if strings.TrimSpace(in.Holder) == "" {
		return NewValidationError("holder", "holder name is required")
	}
	number := NormalizeCardNumber(in.Number)
	if number == "" {
		return NewValidationError("number", "card number is required")
	}
	if len(number) != CardNumberLength {
		return NewValidationError("number", "card number must be 16 digits")
	}
	expiry := NormalizeExpiry(in.Expiry)
	if len(digitsOnly(expiry)) != CardExpiryDigits {
		return NewValidationError("expiry", "expiry must be MM/YY")
	}
	month := (expiry[0]-'0')*10 + (expiry[1] - '0')
	if month < 1 || month > 12 {
		return NewValidationError("expiry", "expiry month must be 01-12")
	}
	cvv := NormalizeCVV(in.CVV)
	if len(cvv) != CardCVVLength {
		return NewValidationError("cvv", "cvv must be 3 digits")
	}
	return nil
}

// Utilization returns balance over limit as a percentage. Values above
// 100 are legitimate (over limit) and pass through unclamped. A missing
// or non-positive limit yields zero.
func Utilization(balance, limit decimal.Decimal) decimal.Decimal {
	if limit.Sign() <= 0 {
		return decimal.Zero
	}
	return balance.Div(limit).Mul(decimal.NewFromInt(100)).Round(2)
}

// OverLimit reports a utilization past 100 percent, which the dashboard
// renders distinctly.
func OverLimit(balance, limit decimal.Decimal) bool {
	return Utilization(balance, limit).Cmp(decimal.NewFromInt(100)) > 0
}
