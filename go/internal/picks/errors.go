package picks

import "errors"

var (
	// ErrNotParticipant indicates the user has not joined the pick'em game.
	ErrNotParticipant = errors.New("user is not a participant")

	// ErrTeamNotInGame indicates the picked team plays in neither slot of the
	// scheduled game.
	ErrTeamNotInGame = errors.New("picked team is not in the game")

	// ErrGameLocked indicates the scheduled game has already kicked off.
	ErrGameLocked = errors.New("game has already started")
)
