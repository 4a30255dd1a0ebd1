package pickem

import "errors"

var (
	// ErrAlreadyParticipant indicates the user already joined the game.
	ErrAlreadyParticipant = errors.New("user is already a participant")

	// ErrOwnerRemoval indicates an attempt to remove the game's owner.
	ErrOwnerRemoval = errors.New("owners cannot be removed")
)
