package users

import "errors"

var (
	// ErrEmailTaken indicates another account already uses the email
	// (comparison is case-insensitive).
	ErrEmailTaken = errors.New("email already in use")

	// ErrTokenExpired indicates the password reset token is past its TTL.
	ErrTokenExpired = errors.New("reset token expired")
)
