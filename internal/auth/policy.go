package auth

import (
	"net/http"
	"strings"
)

// Policy determines required scopes by request.
type Policy struct {
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
}

// NewDefaultPolicy builds a default policy with exemptions.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	set := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{ExemptPaths: set, ExemptPrefixes: exemptPrefixes}
}

// IsExempt returns true when a request should skip auth.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	if _, ok := p.ExemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

// RequiredScope resolves the scope a request needs.
func (p Policy) RequiredScope(r *http.Request) (Scope, bool) {
	if r == nil {
		return "", false
	}
	path := r.URL.Path
	method := r.Method

	switch {
	case path == "/api/v1/sources":
		return ScopeReadSites, true
	case path == "/api/v1/sites":
		return ScopeReadSites, true
	case strings.HasPrefix(path, "/api/v1/sites/"):
		switch {
		case strings.Contains(path, "/generation"):
			if method == http.MethodPost {
				return ScopeWriteGeneration, true
			}
			return ScopeReadGeneration, true
		case strings.Contains(path, "/forecast"):
			return ScopeReadForecast, true
		default:
			return ScopeReadSites, true
		}
	}

	if strings.HasPrefix(path, "/api/") {
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
			return ScopeReadSites, true
		}
		return ScopeWriteGeneration, true
	}
	return "", false
}
