package models

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus represents the lifecycle state of a scheduled game
type GameStatus string

const (
	GameStatusScheduled  GameStatus = "SCHEDULED"
	GameStatusInProgress GameStatus = "IN_PROGRESS"
	GameStatusCompleted  GameStatus = "COMPLETED"
)

// SeasonType distinguishes preseason from regular-season games
type SeasonType string

const (
	SeasonTypePreseason SeasonType = "PRE"
	SeasonTypeRegular   SeasonType = "REG"
)

// ScheduledGame represents a real NFL game on the league calendar.
// A game is uniquely identified by (season, week, home team, away team).
type ScheduledGame struct {
	ID           uuid.UUID  `json:"id"`
	SeasonID     uuid.UUID  `json:"season_id"`
	Week         int        `json:"week"`
	HomeTeamID   uuid.UUID  `json:"home_team_id"`
	AwayTeamID   uuid.UUID  `json:"away_team_id"`
	GameDate     time.Time  `json:"game_date"`
	Status       GameStatus `json:"status"`
	SeasonType   SeasonType `json:"season_type"`
	HomeScore    *int       `json:"home_score,omitempty"`
	AwayScore    *int       `json:"away_score,omitempty"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// WinnerTeamID returns the winning team of a completed game,
// or nil when the game is not completed, scores are missing, or it ended in a tie.
func (g *ScheduledGame) WinnerTeamID() *uuid.UUID {
	if g.Status != GameStatusCompleted || g.HomeScore == nil || g.AwayScore == nil {
		return nil
	}
	switch {
	case *g.HomeScore > *g.AwayScore:
		id := g.HomeTeamID
		return &id
	case *g.AwayScore > *g.HomeScore:
		id := g.AwayTeamID
		return &id
	default:
		return nil
	}
}

// IsTie reports whether a completed game ended with equal scores.
func (g *ScheduledGame) IsTie() bool {
	return g.Status == GameStatusCompleted &&
		g.HomeScore != nil && g.AwayScore != nil &&
		*g.HomeScore == *g.AwayScore
}
