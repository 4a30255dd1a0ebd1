package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EventTypePicksScored is emitted after pick correctness has been settled
// for a completed scheduled game.
const EventTypePicksScored = "picks.scored"

// PicksScoredEvent describes the outcome of a scoring pass over one game.
type PicksScoredEvent struct {
	EventID         uuid.UUID  `json:"event_id"`
	SeasonID        uuid.UUID  `json:"season_id"`
	ScheduledGameID uuid.UUID  `json:"scheduled_game_id"`
	WinnerTeamID    *uuid.UUID `json:"winner_team_id,omitempty"`
	Tie             bool       `json:"tie"`
	PicksUpdated    int        `json:"picks_updated"`
	OccurredAt      time.Time  `json:"occurred_at"`
}

// DedupeID keys duplicate detection on the game and its final result, so a
// rerun that lands the same result is dropped inside the duplicate window
// while a corrected winner still goes out.
func (e PicksScoredEvent) DedupeID() string {
	winner := "tie"
	if e.WinnerTeamID != nil {
		winner = e.WinnerTeamID.String()
	}
	return fmt.Sprintf("%s:%s", e.ScheduledGameID, winner)
}

// Publisher delivers scoring events to downstream consumers.
type Publisher interface {
	PublishPicksScored(ctx context.Context, event PicksScoredEvent) error
	Close() error
}

// NoopPublisher drops events. Used when no broker is configured.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (p *NoopPublisher) PublishPicksScored(ctx context.Context, event PicksScoredEvent) error {
	log.Debug().
		Str("scheduled_game_id", event.ScheduledGameID.String()).
		Int("picks_updated", event.PicksUpdated).
		Msg("event publishing disabled, dropping picks.scored event")
	return nil
}

func (p *NoopPublisher) Close() error {
	return nil
}
