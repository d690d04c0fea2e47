package auth

import "strings"

// Scope is a single granted permission carried in the token's
// space-separated scope claim.
type Scope string

const (
	ScopeReadSites       Scope = "read:sites"
	ScopeReadGeneration  Scope = "read:generation"
	ScopeReadForecast    Scope = "read:forecast"
	ScopeWriteGeneration Scope = "write:generation"
)

// NormalizeScope validates a scope string.
func NormalizeScope(value string) (Scope, bool) {
	switch Scope(value) {
	case ScopeReadSites, ScopeReadGeneration, ScopeReadForecast, ScopeWriteGeneration:
		return Scope(value), true
	default:
		return "", false
	}
}

// ParseScopes splits a space-separated scope claim, dropping unknown
// entries.
func ParseScopes(claim string) []Scope {
	fields := strings.Fields(claim)
	scopes := make([]Scope, 0, len(fields))
	for _, field := range fields {
		if scope, ok := NormalizeScope(field); ok {
			scopes = append(scopes, scope)
		}
	}
	return scopes
}

// HasScope reports whether the grant list contains the required scope.
func HasScope(granted []Scope, required Scope) bool {
	for _, scope := range granted {
		if scope == required {
			return true
		}
	}
	return false
}
