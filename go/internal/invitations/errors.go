package invitations

import "errors"

var (
	// ErrPendingExists indicates a pending invitation already covers this
	// email for the same target.
	ErrPendingExists = errors.New("pending invitation already exists")

	// ErrNotPending indicates the invitation was already accepted, declined,
	// cancelled, or expired.
	ErrNotPending = errors.New("invitation is not pending")

	// ErrExpired indicates the invitation's expiry passed before it was
	// accepted.
	ErrExpired = errors.New("invitation has expired")
)
