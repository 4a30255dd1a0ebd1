package sqlite

// Schema defines the relational layout. Referential integrity across
// aggregates is owned by the services (the key-value backend has no foreign
// keys), so only primary keys and uniqueness rules live here. Timestamps are
// RFC3339 TEXT, booleans are INTEGER 0/1.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE COLLATE NOCASE,
    password_hash TEXT NOT NULL DEFAULT '',
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    is_admin INTEGER NOT NULL DEFAULT 0,
    email_verified INTEGER NOT NULL DEFAULT 0,
    favorite_team_id TEXT,
    last_login_at TEXT,
    reset_token TEXT,
    reset_token_expires_at TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_users_is_admin ON users(is_admin);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_reset_token
    ON users(reset_token) WHERE reset_token IS NOT NULL;

CREATE TABLE IF NOT EXISTS teams (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL DEFAULT '',
    city TEXT NOT NULL DEFAULT '',
    conference TEXT NOT NULL DEFAULT '',
    division TEXT NOT NULL DEFAULT '',
    colors TEXT NOT NULL DEFAULT '',
    logo_url TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS seasons (
    id TEXT PRIMARY KEY,
    year INTEGER NOT NULL UNIQUE,
    is_current INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_seasons_current
    ON seasons(is_current) WHERE is_current = 1;

CREATE TABLE IF NOT EXISTS scheduled_games (
    id TEXT PRIMARY KEY,
    season_id TEXT NOT NULL,
    week INTEGER NOT NULL,
    home_team_id TEXT NOT NULL,
    away_team_id TEXT NOT NULL,
    game_date TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'SCHEDULED',
    season_type TEXT NOT NULL DEFAULT 'REG',
    home_score INTEGER,
    away_score INTEGER,
    last_synced_at TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    UNIQUE (season_id, week, home_team_id, away_team_id)
);

CREATE INDEX IF NOT EXISTS idx_scheduled_games_season_week
    ON scheduled_games(season_id, week);

CREATE INDEX IF NOT EXISTS idx_scheduled_games_status
    ON scheduled_games(status);

CREATE TABLE IF NOT EXISTS pickem_games (
    id TEXT PRIMARY KEY,
    season_id TEXT NOT NULL,
    commissioner_id TEXT NOT NULL,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    is_active INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pickem_games_season ON pickem_games(season_id);

CREATE TABLE IF NOT EXISTS participants (
    id TEXT PRIMARY KEY,
    pickem_game_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'MEMBER',
    joined_at TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    UNIQUE (pickem_game_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_participants_user ON participants(user_id);

CREATE TABLE IF NOT EXISTS picks (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    pickem_game_id TEXT NOT NULL,
    scheduled_game_id TEXT NOT NULL,
    picked_team_id TEXT NOT NULL,
    is_correct INTEGER,
    week INTEGER NOT NULL,
    season_id TEXT NOT NULL,
    tiebreaker INTEGER,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    UNIQUE (user_id, pickem_game_id, scheduled_game_id)
);

CREATE INDEX IF NOT EXISTS idx_picks_scheduled_game ON picks(scheduled_game_id);
CREATE INDEX IF NOT EXISTS idx_picks_pickem_game ON picks(pickem_game_id);
CREATE INDEX IF NOT EXISTS idx_picks_user_season ON picks(user_id, season_id);

CREATE TABLE IF NOT EXISTS invitations (
    id TEXT PRIMARY KEY,
    pickem_game_id TEXT,
    email TEXT NOT NULL COLLATE NOCASE,
    invited_by TEXT NOT NULL,
    token TEXT NOT NULL UNIQUE,
    status TEXT NOT NULL DEFAULT 'PENDING',
    expires_at TEXT NOT NULL,
    accepted_at TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_invitations_game ON invitations(pickem_game_id);
CREATE INDEX IF NOT EXISTS idx_invitations_email ON invitations(email);

-- COALESCE folds admin invitations (NULL game) into the uniqueness check;
-- distinct NULLs would otherwise let duplicates through.
CREATE UNIQUE INDEX IF NOT EXISTS idx_invitations_pending
    ON invitations(COALESCE(pickem_game_id, 'admin'), email) WHERE status = 'PENDING';

CREATE TABLE IF NOT EXISTS standings (
    id TEXT PRIMARY KEY,
    pickem_game_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    season_id TEXT NOT NULL,
    wins INTEGER NOT NULL DEFAULT 0,
    losses INTEGER NOT NULL DEFAULT 0,
    pending INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    UNIQUE (pickem_game_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_standings_game ON standings(pickem_game_id);

CREATE TABLE IF NOT EXISTS system_settings (
    id TEXT PRIMARY KEY,
    category TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL DEFAULT '',
    encrypted INTEGER NOT NULL DEFAULT 0,
    description TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    UNIQUE (category, key)
);

CREATE INDEX IF NOT EXISTS idx_system_settings_category ON system_settings(category);
`
