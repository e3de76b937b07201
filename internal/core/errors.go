package core

import (
	"fmt"
	"strings"
)

// ValidationError reports bad user input before any storage or network
// work happens. Field names the offending input so callers can render
// an inline message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError builds a field-scoped validation failure.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// RequestError wraps a failed call to storage or a downstream service.
// These are retryable from the caller's point of view: re-running the
// whole operation is always safe.
type RequestError struct {
	Op  string
	Err error
}

func (e *RequestError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// BatchItemResult is the outcome of one item in a bulk operation.
type BatchItemResult struct {
	ID  int64  `json:"id"`
	OK  bool   `json:"ok"`
	Err string `json:"error,omitempty"`
}

// BatchResult collects per-item outcomes of a bulk operation. Items are
// processed independently; a failure never halts the remainder and
// nothing is rolled back.
type BatchResult struct {
	Items []BatchItemResult `json:"items"`
}

func (r *BatchResult) Add(id int64, err error) {
	item := BatchItemResult{ID: id, OK: err == nil}
	if err != nil {
		item.Err = err.Error()
	}
	r.Items = append(r.Items, item)
}

func (r *BatchResult) Succeeded() int {
	n := 0
	for _, it := range r.Items {
		if it.OK {
			n++
		}
	}
	return n
}

func (r *BatchResult) Failed() int {
	return len(r.Items) - r.Succeeded()
}

// Err returns nil when every item succeeded, otherwise a
// PartialBatchError carrying the full result.
func (r *BatchResult) Err() error {
	if r.Failed() == 0 {
		return nil
	}
	return &PartialBatchError{Result: r}
}

// PartialBatchError means some but not all items of a bulk operation
// failed. The caller decides whether to retry the failed subset or
// surface the list.
type PartialBatchError struct {
	Result *BatchResult
}

func (e *PartialBatchError) Error() string {
	failed := make([]string, 0, e.Result.Failed())
	for _, it := range e.Result.Items {
		if !it.OK {
			failed = append(failed, fmt.Sprintf("%d", it.ID))
		}
	}
	return fmt.Sprintf("%d of %d items failed (ids %s)",
		e.Result.Failed(), len(e.Result.Items), strings.Join(failed, ", "))
}
