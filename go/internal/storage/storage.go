// Package storage defines the record-level persistence contract shared by
// every domain repository. Two providers implement it: a relational SQLite
// variant and a key-value DynamoDB variant. Repositories treat the provider
// as the only gateway to persistence; nothing above it sees driver types.
package storage

import "context"

// Field names common to every table.
const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// Table names. Both providers use the same logical names; the DynamoDB
// provider prefixes them per environment.
const (
	TableUsers          = "users"
	TableTeams          = "teams"
	TableSeasons        = "seasons"
	TableScheduledGames = "scheduled_games"
	TablePickemGames    = "pickem_games"
	TableParticipants   = "participants"
	TablePicks          = "picks"
	TableInvitations    = "invitations"
	TableStandings      = "standings"
	TableSettings       = "system_settings"
)

// Secondary index names. The DynamoDB provider materializes these as GSIs;
// the SQLite provider ignores index hints and lets the planner choose.
const (
	IndexUsersByEmail           = "users-email-index"
	IndexUsersByAdminFlag       = "users-admin-index"
	IndexUsersByResetToken      = "users-reset-token-index"
	IndexTeamsByCode            = "teams-code-index"
	IndexSeasonsByYear          = "seasons-year-index"
	IndexSeasonsByCurrent       = "seasons-current-index"
	IndexGamesBySeason          = "scheduled-games-season-index"
	IndexGamesBySeasonWeek      = "scheduled-games-season-week-index"
	IndexGamesByMatchup         = "scheduled-games-matchup-index"
	IndexPickemGamesBySeason    = "pickem-games-season-index"
	IndexParticipantsByGame     = "participants-game-index"
	IndexParticipantsByUser     = "participants-user-index"
	IndexParticipantsByGameUser = "participants-game-user-index"
	IndexPicksByScheduledGame   = "picks-scheduled-game-index"
	IndexPicksByPickemGame      = "picks-pickem-game-index"
	IndexPicksByUser            = "picks-user-index"
	IndexPicksByUserGame        = "picks-user-game-index"
	IndexPicksByUserGameSched   = "picks-user-game-sched-index"
	IndexInvitationsByToken     = "invitations-token-index"
	IndexInvitationsByGame      = "invitations-game-index"
	IndexInvitationsByEmail     = "invitations-email-index"
	IndexInvitationsByPending   = "invitations-pending-index"
	IndexStandingsByGame        = "standings-game-index"
	IndexStandingsByGameUser    = "standings-game-user-index"
	IndexSettingsByCategory     = "settings-category-index"
)

// Query describes an equality lookup, optionally through a named secondary
// index. All conditions are ANDed.
type Query struct {
	Index string
	Key   map[string]any
}

// OpKind enumerates the write kinds accepted by Transact.
type OpKind int

const (
	OpPut OpKind = iota
	OpUpdate
	OpDelete
)

// Op is a single write inside a Transact batch.
type Op struct {
	Kind   OpKind
	Table  string
	ID     string
	Record Record
	Fields map[string]any
}

// PutOp builds a full-record write op.
func PutOp(table string, rec Record) Op {
	return Op{Kind: OpPut, Table: table, Record: rec}
}

// UpdateOp builds a partial-update op.
func UpdateOp(table, id string, fields map[string]any) Op {
	return Op{Kind: OpUpdate, Table: table, ID: id, Fields: fields}
}

// DeleteOp builds a delete op.
func DeleteOp(table, id string) Op {
	return Op{Kind: OpDelete, Table: table, ID: id}
}

// Provider is the uniform persistence contract.
//
// Writes stamp created_at on first insert and updated_at on every change.
// Put persists the full record, dropping nil values. Update applies only the
// given fields; a nil value clears the field. Delete is idempotent. Query
// returns ErrIndexNotFound when the named index is missing so callers can
// fall back to a broader index or a scan. Transact applies a small,
// fixed-size batch atomically where the backend supports it.
type Provider interface {
	Get(ctx context.Context, table, id string) (Record, error)
	Put(ctx context.Context, table string, rec Record) error
	Update(ctx context.Context, table, id string, fields map[string]any) (Record, error)
	Delete(ctx context.Context, table, id string) error
	Query(ctx context.Context, table string, q Query) ([]Record, error)
	Scan(ctx context.Context, table string, filter map[string]any) ([]Record, error)
	Transact(ctx context.Context, ops []Op) error
	Close() error
}
