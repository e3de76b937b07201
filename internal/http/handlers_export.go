package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"conti/internal/export"
	"conti/internal/log"
	"conti/internal/services"
)

// handleExportTransactions renders one month of transactions either as
// a CSV download or as an append to the configured spreadsheet. The CSV
// is buffered before any header goes out so validation failures still
// produce a clean JSON error.
func (s *Server) handleExportTransactions(w http.ResponseWriter, r *http.Request) {
	session := s.session(r)
	month, year := queryMonthYear(r)

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	switch format {
	case "csv":
		var buf bytes.Buffer
		st, err := s.deps.Exports.WriteCSV(r.Context(), &buf, session.UserID, month, year, time.Now())
		if err != nil {
			WriteError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", export.FileName(st.Month, st.Year)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(buf.Bytes()); err != nil {
			s.logger.WarnContext(r.Context(), "CSV download interrupted",
				log.FieldUserID, session.UserID, "error", err)
		}

	case "sheets":
		result, err := s.deps.Exports.ToSheet(r.Context(), session.UserID, month, year, time.Now())
		if err != nil {
			if errors.Is(err, services.ErrSheetsNotConfigured) {
				FieldErrorResponse(http.StatusUnprocessableEntity, "format", "sheets export is not configured").Write(w)
				return
			}
			s.logger.ErrorContext(r.Context(), "Sheet export failed",
				log.FieldUserID, session.UserID, "error", err)
			WriteError(w, err)
			return
		}
		NewJSONResponse().Body(result).Write(w)

	default:
		FieldErrorResponse(http.StatusUnprocessableEntity, "format", "must be csv or sheets").Write(w)
	}
}
