package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"conti/internal/core"
	"conti/internal/log"
)

type billRequest struct {
	Name         string          `json:"name" validate:"required,max=200"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency" validate:"omitempty,currency"`
	DueDate      string          `json:"due_date" validate:"required,dateonly"`
	Frequency    string          `json:"frequency" validate:"omitempty,oneof=monthly quarterly biannually annually one_time"`
	ReminderDays int             `json:"reminder_days" validate:"gte=0"`
	Category     string          `json:"category" validate:"required,max=50"`
}

func (r billRequest) toBill() core.Bill {
	due, _ := parseDateOnly(r.DueDate)
	return core.Bill{
		Name:         r.Name,
		Amount:       core.RoundAmount(r.Amount),
		Currency:     core.Currency(r.Currency),
		DueDate:      due,
		Frequency:    core.BillFrequency(r.Frequency),
		ReminderDays: r.ReminderDays,
		Category:     r.Category,
	}
}

// billView decorates a bill with how far its reminder window has
// elapsed, so clients can render countdowns without redoing the date
// math.
type billView struct {
	core.Bill
	ReminderProgress float64 `json:"reminder_progress"`
}

func viewBill(b core.Bill, today core.Date) billView {
	return billView{Bill: b, ReminderProgress: core.ReminderProgress(b, today)}
}

func viewBills(bills []core.Bill, today core.Date) []billView {
	out := make([]billView, 0, len(bills))
	for _, b := range bills {
		out = append(out, viewBill(b, today))
	}
	return out
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	var paid *bool
	if r.URL.Query().Has("paid") {
		v := queryBool(r, "paid")
		paid = &v
	}

	bills, err := s.deps.Bills.List(r.Context(), s.session(r).UserID, r.URL.Query().Get("category"), paid)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Bill listing failed", "error", err)
		WriteError(w, err)
		return
	}
	NewJSONResponse().Body(map[string]any{"bills": viewBills(bills, core.DateOf(time.Now()))}).Write(w)
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	session := s.session(r)
	created, err := s.deps.Bills.Create(r.Context(), session.UserID, req.toBill())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Bill creation failed",
			log.FieldUserID, session.UserID, "error", err)
		WriteError(w, err)
		return
	}

	s.deps.Dashboard.Invalidate(session.UserID, time.Now())
	NewJSONResponse().Status(http.StatusCreated).Body(viewBill(created, core.DateOf(time.Now()))).Write(w)
}

func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	bill, err := s.deps.Bills.Get(r.Context(), s.session(r).UserID, id)
	if err != nil {
		WriteError(w, err)
		return
	}
	NewJSONResponse().Body(viewBill(bill, core.DateOf(time.Now()))).Write(w)
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req billRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	session := s.session(r)
	bill := req.toBill()
	bill.ID = id
	updated, err := s.deps.Bills.Update(r.Context(), session.UserID, bill)
	if err != nil {
		WriteError(w, err)
		return
	}

	s.deps.Dashboard.Invalidate(session.UserID, time.Now())
	NewJSONResponse().Body(viewBill(updated, core.DateOf(time.Now()))).Write(w)
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	session := s.session(r)
	if err := s.deps.Bills.Delete(r.Context(), session.UserID, id); err != nil {
		WriteError(w, err)
		return
	}

	s.deps.Dashboard.Invalidate(session.UserID, time.Now())
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleBillsDueSoon(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 7)
	bills, err := s.deps.Bills.DueSoon(r.Context(), s.session(r).UserID, days, time.Now())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Due-soon listing failed", "error", err)
		WriteError(w, err)
		return
	}
	NewJSONResponse().Body(map[string]any{"bills": viewBills(bills, core.DateOf(time.Now())), "days": days}).Write(w)
}

func (s *Server) handleBillsSummary(w http.ResponseWriter, r *http.Request) {
	month, year := queryMonthYear(r)
	summary, err := s.deps.Bills.MonthSummary(r.Context(), s.session(r).UserID, month, year, time.Now())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Bill summary failed", "error", err)
		WriteError(w, err)
		return
	}
	NewJSONResponse().Body(summary).Write(w)
}

func (s *Server) handlePayBill(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	session := s.session(r)
	bill, err := s.deps.Bills.Pay(r.Context(), session.UserID, id, time.Now())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Bill payment failed",
			log.FieldBillID, id, log.FieldUserID, session.UserID, "error", err)
		WriteError(w, err)
		return
	}

	s.deps.Dashboard.Invalidate(session.UserID, time.Now())
	NewJSONResponse().Body(viewBill(bill, core.DateOf(time.Now()))).Write(w)
}
