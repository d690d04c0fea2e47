package auth

import "context"

type contextKey string

const (
	contextKeySubject contextKey = "auth.subject"
	contextKeyEmail   contextKey = "auth.email"
	contextKeyScopes  contextKey = "auth.scopes"
)

// WithIdentity stores auth identity details in context.
func WithIdentity(ctx context.Context, subject, email string, scopes []Scope) context.Context {
	ctx = context.WithValue(ctx, contextKeySubject, subject)
	ctx = context.WithValue(ctx, contextKeyEmail, email)
	ctx = context.WithValue(ctx, contextKeyScopes, scopes)
	return ctx
}

// SubjectFromContext extracts the token subject from context.
func SubjectFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if subject, ok := ctx.Value(contextKeySubject).(string); ok {
		return subject
	}
	return ""
}

// EmailFromContext extracts the caller email from context.
func EmailFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if email, ok := ctx.Value(contextKeyEmail).(string); ok {
		return email
	}
	return ""
}

// ScopesFromContext extracts granted scopes from context.
func ScopesFromContext(ctx context.Context) []Scope {
	if ctx == nil {
		return nil
	}
	if scopes, ok := ctx.Value(contextKeyScopes).([]Scope); ok {
		return scopes
	}
	return nil
}
