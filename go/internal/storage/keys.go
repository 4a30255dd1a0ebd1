package storage

import "strings"

// KeyDelimiter separates the parts of a synthetic composite attribute.
// Composite parts are UUIDs, normalized emails, or fixed literals, so the
// delimiter never needs escaping.
const KeyDelimiter = ":"

// CompositeKey concatenates parts into a synthetic key attribute, e.g.
// "{userID}:{pickemGameID}:{scheduledGameID}". Composites are computed by
// write paths and never accepted from callers.
func CompositeKey(parts ...string) string {
	return strings.Join(parts, KeyDelimiter)
}

// SplitCompositeKey splits a synthetic key attribute back into its parts.
func SplitCompositeKey(key string) []string {
	return strings.Split(key, KeyDelimiter)
}

// Synthetic attributes the key-value repositories compute on every write so
// secondary indexes can serve multi-attribute and flag lookups. Boolean
// flags are mirrored as "true"/"false" strings because index keys cannot be
// booleans.
const (
	AttrEmailLC       = "email_lc"        // lowercased email
	AttrAdminFlag     = "admin_flag"      // users.is_admin as string
	AttrCurrentFlag   = "current_flag"    // seasons.is_current as string
	AttrSeasonWeek    = "season_week"     // {seasonID}:{week}
	AttrMatchupKey    = "matchup_key"     // {seasonID}:{week}:{homeTeamID}:{awayTeamID}
	AttrGameUser      = "game_user"       // {pickemGameID}:{userID}
	AttrUserGame      = "user_game"       // {userID}:{pickemGameID}
	AttrUserGameSched = "user_game_sched" // {userID}:{pickemGameID}:{scheduledGameID}
	AttrPendingKey    = "pending_key"     // {pickemGameID|"admin"}:{emailLC}
)

// FlagValue renders a boolean as its synthetic index representation.
func FlagValue(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
