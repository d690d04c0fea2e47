package auth

import "errors"

var (
	// ErrUnauthenticated is returned when a token is missing, unparsable,
	// badly signed or expired.
	ErrUnauthenticated = errors.New("auth: unauthenticated")
	// ErrForbidden is returned when a valid token lacks the scope a
	// route requires.
	ErrForbidden = errors.New("auth: forbidden")
)
