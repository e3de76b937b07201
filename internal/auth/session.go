package auth

import "context"

// Session is the authenticated identity of a request. The auth
// middleware is the only writer; handlers read it with SessionFrom.
type Session struct {
	UserID   int64
	Username string
}

type contextKey struct{}

// WithSession attaches a session to the context.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// SessionFrom returns the session on the context, if any.
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}
