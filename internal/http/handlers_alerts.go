package http

import (
	"net/http"
	"time"

	"conti/internal/core"
	"conti/internal/log"
	"conti/internal/services"
)

// defaultAlertPageSize bounds an alert listing when the client does not
// pass an explicit limit.
const defaultAlertPageSize = 50

type alertPatchRequest struct {
	Status *string `json:"status"`
	IsRead *bool   `json:"is_read"`
}

type bulkAlertRequest struct {
	IDs    []int64 `json:"ids"`
	Action string  `json:"action" validate:"required"`
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	filter := core.AlertFilter{
		Query:      r.URL.Query().Get("search"),
		Status:     r.URL.Query().Get("status"),
		UnreadOnly: queryBool(r, "unread_only"),
	}
	typ := core.AlertType(r.URL.Query().Get("type"))
	limit := queryInt(r, "limit", defaultAlertPageSize)
	offset := queryInt(r, "offset", 0)

	alerts, total, err := s.deps.Alerts.List(r.Context(), s.session(r).UserID, filter, typ, limit, offset)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Alert listing failed", "error", err)
		WriteError(w, err)
		return
	}
	NewJSONResponse().Body(map[string]any{
		"alerts":      alerts,
		"total_count": total,
		"limit":       limit,
		"offset":      offset,
	}).Write(w)
}

func (s *Server) handleAlertStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Alerts.Stats(r.Context(), s.session(r).UserID, time.Now())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Alert stats failed", "error", err)
		WriteError(w, err)
		return
	}
	NewJSONResponse().Body(stats).Write(w)
}

func (s *Server) handleUpdateAlert(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req alertPatchRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	patch := services.AlertUpdate{IsRead: req.IsRead}
	if req.Status != nil {
		status := core.AlertStatus(*req.Status)
		patch.Status = &status
	}

	alert, err := s.deps.Alerts.Update(r.Context(), s.session(r).UserID, id, patch)
	if err != nil {
		WriteError(w, err)
		return
	}
	NewJSONResponse().Body(alert).Write(w)
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := s.deps.Alerts.Delete(r.Context(), s.session(r).UserID, id); err != nil {
		WriteError(w, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// handleToggleAlertSelection flips an alert in and out of the user's
// bulk selection set. The selection lives in memory only.
func (s *Server) handleToggleAlertSelection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	session := s.session(r)
	if _, err := s.deps.Alerts.Get(r.Context(), session.UserID, id); err != nil {
		WriteError(w, err)
		return
	}

	selected := s.deps.Alerts.Toggle(session.UserID, id)
	NewJSONResponse().Body(map[string]any{
		"selected":       selected,
		"selected_count": len(s.deps.Alerts.Selected(session.UserID)),
	}).Write(w)
}

func (s *Server) handleBulkAlerts(w http.ResponseWriter, r *http.Request) {
	var req bulkAlertRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	session := s.session(r)
	result, err := s.deps.Alerts.Bulk(r.Context(), session.UserID, req.IDs, services.BulkAction(req.Action))
	if err != nil {
		s.logger.WarnContext(r.Context(), "Bulk alert action incomplete",
			log.FieldUserID, session.UserID, "action", req.Action, "error", err)
		WriteError(w, err)
		return
	}
	NewJSONResponse().Body(newBatchBody(result)).Write(w)
}

func (s *Server) handleMarkAllAlertsRead(w http.ResponseWriter, r *http.Request) {
	count, err := s.deps.Alerts.MarkAllRead(r.Context(), s.session(r).UserID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Mark-all-read failed", "error", err)
		WriteError(w, err)
		return
	}
	NewJSONResponse().Body(map[string]any{"updated_count": count}).Write(w)
}
