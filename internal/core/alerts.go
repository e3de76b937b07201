package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	AlertType     string
	AlertSeverity string
	AlertStatus   string
)

const (
	AlertBudgetExceeded      AlertType = "budget_exceeded"
	AlertBudgetNearingLimit  AlertType = "budget_nearing_limit"
	AlertLargeTransaction    AlertType = "large_transaction"
	AlertUnusualSpending     AlertType = "unusual_spending"
	AlertLowBalance          AlertType = "low_balance"
	AlertBillDue             AlertType = "bill_due"
	AlertSubscriptionRenewal AlertType = "subscription_renewal"
	AlertCashFlowWarning     AlertType = "cash_flow_warning"
	AlertIncomeReceived      AlertType = "income_received"
	AlertSystem              AlertType = "system"
	AlertInfo                AlertType = "info"

	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"

	StatusActive    AlertStatus = "active"
	StatusResolved  AlertStatus = "resolved"
	StatusDismissed AlertStatus = "dismissed"
)

// Alert is the fully-typed record every consumer works with. Raw
// payloads go through NormalizeAlert first; nothing downstream deals
// with alternate field names or missing read flags.
type Alert struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"-"`
	Type       AlertType       `json:"alert_type"`
	Severity   AlertSeverity   `json:"severity"`
	Status     AlertStatus     `json:"status"`
	IsRead     bool            `json:"is_read"`
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	Amount     decimal.Decimal `json:"amount,omitempty"`
	Threshold  decimal.Decimal `json:"threshold,omitempty"`
	EntityType string          `json:"entity_type,omitempty"`
	EntityID   int64           `json:"entity_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	ExpiresAt  time.Time       `json:"expires_at,omitempty"`
}

// MarkRead and friends implement the alert state machine: active can
// move to resolved or dismissed; both transitions force the read flag
// on. A bulk mark-unread can force it back off.

func (a *Alert) MarkRead()   { a.IsRead = true }
func (a *Alert) MarkUnread() { a.IsRead = false }

func (a *Alert) Resolve() {
	a.Status = StatusResolved
	a.IsRead = true
}

func (a *Alert) Dismiss() {
	a.Status = StatusDismissed
	a.IsRead = true
}

// RawAlert mirrors the loose shapes alert payloads arrive in: older
// producers send "type" instead of "alert_type" and encode read state
// only in the status, while queue events carry "alert_id" and
// "timestamp" instead of "id" and "created_at".
type RawAlert struct {
	ID         int64           `json:"id"`
	AlertID    int64           `json:"alert_id"`
	UserID     int64           `json:"user_id"`
	AlertType  string          `json:"alert_type"`
	LegacyType string          `json:"type"`
	Severity   string          `json:"severity"`
	Status     string          `json:"status"`
	IsRead     *bool           `json:"is_read"`
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	Amount     decimal.Decimal `json:"amount"`
	Threshold  decimal.Decimal `json:"threshold"`
	EntityType string          `json:"entity_type"`
	EntityID   int64           `json:"entity_id"`
	CreatedAt  time.Time       `json:"created_at"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NormalizeAlert converts a raw payload to a typed Alert. Precedence is
// fixed and documented here:
//
//   - id: alert_id wins over id.
//   - type: alert_type wins over type; both empty means "info".
//   - status: defaults to active when absent or unknown.
//   - read state: an explicit is_read always wins; otherwise it is
//     derived from status (resolved and dismissed are read, active is
//     unread).
//   - severity: defaults to info.
//   - created_at wins over timestamp.
func NormalizeAlert(raw RawAlert) Alert {
	id := raw.AlertID
	if id == 0 {
		id = raw.ID
	}

	typ := raw.AlertType
	if typ == "" {
		typ = raw.LegacyType
	}
	if typ == "" {
		typ = string(AlertInfo)
	}

	status := AlertStatus(raw.Status)
	switch status {
	case StatusActive, StatusResolved, StatusDismissed:
	default:
		status = StatusActive
	}

	var isRead bool
	if raw.IsRead != nil {
		isRead = *raw.IsRead
	} else {
		isRead = status == StatusResolved || status == StatusDismissed
	}

	severity := AlertSeverity(raw.Severity)
	switch severity {
	case SeverityInfo, SeverityWarning, SeverityCritical:
	default:
		severity = SeverityInfo
	}

	created := raw.CreatedAt
	if created.IsZero() {
		created = raw.Timestamp
	}

	return Alert{
		ID:         id,
		UserID:     raw.UserID,
		Type:       AlertType(typ),
		Severity:   severity,
		Status:     status,
		IsRead:     isRead,
		Title:      raw.Title,
		Message:    raw.Message,
		Amount:     raw.Amount,
		Threshold:  raw.Threshold,
		EntityType: raw.EntityType,
		EntityID:   raw.EntityID,
		CreatedAt:  created,
	}
}

// AlertFilter narrows an alert list. Zero value matches everything.
type AlertFilter struct {
	Query      string // case-insensitive substring on title/message/type
	Status     string // exact match; "" or "all" disables
	UnreadOnly bool
}

// FilterAlerts applies the three predicates in a fixed order: search,
// then status, then unread. They are independent, so the order affects
// only how much work each later stage sees.
func FilterAlerts(alerts []Alert, f AlertFilter) []Alert {
	out := alerts
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		var matched []Alert
		for _, a := range out {
			if strings.Contains(strings.ToLower(a.Title), q) ||
				strings.Contains(strings.ToLower(a.Message), q) ||
				strings.Contains(strings.ToLower(string(a.Type)), q) {
				matched = append(matched, a)
			}
		}
		out = matched
	}
	if f.Status != "" && f.Status != "all" {
		var matched []Alert
		for _, a := range out {
			if string(a.Status) == f.Status {
				matched = append(matched, a)
			}
		}
		out = matched
	}
	if f.UnreadOnly {
		var matched []Alert
		for _, a := range out {
			if !a.IsRead {
				matched = append(matched, a)
			}
		}
		out = matched
	}
	return out
}

// CountAlertStats derives the stats panel numbers from a full alert
// list relative to now.
func CountAlertStats(alerts []Alert, now time.Time) AlertStats {
	stats := AlertStats{
		ByType:     make(map[string]int),
		BySeverity: make(map[string]int),
	}
	today := DateOf(now)
	for _, a := range alerts {
		stats.Total++
		if !a.IsRead {
			stats.Unread++
		}
		switch a.Status {
		case StatusActive:
			stats.Active++
		case StatusResolved:
			stats.Resolved++
		case StatusDismissed:
			stats.Dismissed++
		}
		stats.ByType[string(a.Type)]++
		stats.BySeverity[string(a.Severity)]++
		age := now.Sub(a.CreatedAt)
		if DateOf(a.CreatedAt).Equal(today.Time) {
			stats.Today++
		}
		if age <= 7*24*time.Hour {
			stats.Last7Days++
		}
		if age <= 30*24*time.Hour {
			stats.Last30Days++
		}
	}
	return stats
}
