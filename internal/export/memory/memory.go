// Package memory is the in-process statement target: tests use it as a
// fake and the memory backend uses it when no spreadsheet is wired.
package memory

import (
	"context"
	"fmt"
	"sync"

	"conti/internal/export"
)

type Store struct {
	mu         sync.Mutex
	statements []export.Statement
}

var _ export.StatementAppender = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// AppendStatement stores the statement and returns a synthetic range
// reference.
func (s *Store) AppendStatement(_ context.Context, st export.Statement) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statements = append(s.statements, st)
	return fmt.Sprintf("mem:%d", len(s.statements)), nil
}

// Statements returns a copy of everything appended so far.
func (s *Store) Statements() []export.Statement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]export.Statement(nil), s.statements...)
}
