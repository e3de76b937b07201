// Package http provides the HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request
// data. Request bodies are JSON DTOs checked with go-playground/validator
// tags; failures surface as field-scoped core.ValidationError values so
// the response builder renders them as 422s.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"conti/internal/core"
)

// maxBodyBytes caps request bodies. Statement uploads do not exist;
// nothing legitimate comes close to a megabyte.
const maxBodyBytes = 1 << 20

var validate = validator.New()

func init() {
	// Report JSON field names, not Go struct names, in error messages.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(fld.Name)
		}
		return name
	})

	_ = validate.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return core.Currency(fl.Field().String()).Valid()
	})

	_ = validate.RegisterValidation("dateonly", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})
}

// DecodeJSON reads the request body into dst and runs tag validation.
// Both failure modes come back as a core.ValidationError.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return core.NewValidationError("body", "malformed JSON")
	}
	return ValidateStruct(dst)
}

// ValidateStruct checks a DTO against its validate tags. The first
// failing field wins, mirroring how the domain validators report.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		return core.NewValidationError(e.Field(), fieldMessage(e))
	}
	return core.NewValidationError("body", err.Error())
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "currency":
		return "unsupported currency"
	case "dateonly":
		return "must be a date in YYYY-MM-DD format"
	case "oneof":
		return "must be one of: " + e.Param()
	case "min":
		return "must be at least " + e.Param() + " characters"
	case "max":
		return "must be at most " + e.Param() + " characters"
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be at least " + e.Param()
	case "lte":
		return "must be at most " + e.Param()
	default:
		return fmt.Sprintf("is invalid (%s)", e.Tag())
	}
}

// parseDateOnly parses a YYYY-MM-DD string into a civil date.
func parseDateOnly(s string) (core.Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return core.Date{}, err
	}
	return core.Date{Time: t}, nil
}

// pathID extracts the numeric {id} path segment. Unparseable IDs read
// as records that cannot exist, so callers answer 404.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.ErrNotFound
	}
	return id, nil
}

// queryInt reads an integer query parameter, falling back to def when
// absent or unparseable.
func queryInt(r *http.Request, key string, def int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// queryBool reads a boolean query parameter: "true" and "1" are true.
func queryBool(r *http.Request, key string) bool {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	return v == "true" || v == "1"
}

// queryMonthYear reads the optional month/year pair. Zero values mean
// "not provided"; callers decide the default period.
func queryMonthYear(r *http.Request) (month, year int) {
	return queryInt(r, "month", 0), queryInt(r, "year", 0)
}

// queryDate reads a YYYY-MM-DD query parameter. Absent reads as the
// zero time; malformed input is an error naming the parameter.
func queryDate(r *http.Request, key string) (time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, core.NewValidationError(key, "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}
