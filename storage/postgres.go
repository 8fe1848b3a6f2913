package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gridiron_hub/apisports"
	"gridiron_hub/config"
	"gridiron_hub/models"
	"gridiron_hub/stats"
)

// PostgresStore owns the document collections (players, games, player_stats,
// live_stats). Write operations convert storage failures into result values;
// a raw pgx error never crosses this boundary on the write paths.
type PostgresStore struct {
	pool *pgxpool.Pool
	team config.TeamConfig
}

func NewPostgresStore(ctx context.Context, connString string, team config.TeamConfig) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &PostgresStore{pool: pool, team: team}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		player_id BIGINT NOT NULL,
		season INT NOT NULL,
		team_id INT NOT NULL,
		team TEXT NOT NULL,
		doc JSONB NOT NULL,
		last_updated TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS games (
		game_id BIGINT NOT NULL,
		season INT NOT NULL,
		team_id INT NOT NULL,
		game_date TIMESTAMPTZ,
		status_short TEXT NOT NULL DEFAULT '',
		doc JSONB NOT NULL,
		last_updated TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS player_stats (
		player_id BIGINT NOT NULL,
		season INT NOT NULL,
		player_name TEXT NOT NULL DEFAULT '',
		position TEXT NOT NULL DEFAULT '',
		stats JSONB NOT NULL,
		raw_response JSONB,
		last_updated TIMESTAMPTZ NOT NULL,
		UNIQUE (player_id, season)
	);

	CREATE TABLE IF NOT EXISTS live_stats (
		game_id BIGINT NOT NULL,
		player_id BIGINT NOT NULL,
		season INT NOT NULL,
		doc JSONB NOT NULL,
		last_updated TIMESTAMPTZ NOT NULL,
		UNIQUE (game_id, player_id, season)
	);

	CREATE INDEX IF NOT EXISTS idx_players_season ON players(season);
	CREATE INDEX IF NOT EXISTS idx_players_team_season ON players(team_id, season);
	CREATE INDEX IF NOT EXISTS idx_games_schedule ON games(season, team_id, game_date);
	CREATE INDEX IF NOT EXISTS idx_live_stats_game ON live_stats(game_id, season);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// =============================================================================
// Roster
// =============================================================================

// ReplacePlayers swaps the full roster for a season in one transaction: the
// prior set is deleted and the new entries inserted, or neither happens. An
// empty entry list is a failure and leaves prior data untouched; a bad fetch
// must never wipe a good roster.
func (s *PostgresStore) ReplacePlayers(ctx context.Context, season int, entries []apisports.RosterEntry) models.ReplaceResult {
	if len(entries) == 0 {
		return models.ReplaceResult{Success: false, Season: season, Error: "nothing to insert"}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.ReplaceResult{Success: false, Season: season, Error: fmt.Sprintf("begin: %v", err)}
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM players WHERE season = $1`, season); err != nil {
		return models.ReplaceResult{Success: false, Season: season, Error: fmt.Sprintf("delete roster: %v", err)}
	}

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO players (player_id, season, team_id, team, doc, last_updated)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			e.PlayerID, season, s.team.ID, s.team.Name, e.Raw, now)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return models.ReplaceResult{Success: false, Season: season, Error: fmt.Sprintf("insert roster: %v", err)}
	}

	if err := tx.Commit(ctx); err != nil {
		return models.ReplaceResult{Success: false, Season: season, Error: fmt.Sprintf("commit: %v", err)}
	}

	return models.ReplaceResult{Success: true, Season: season, InsertedCount: len(entries)}
}

// Roster returns all player documents for a season.
func (s *PostgresStore) Roster(ctx context.Context, season int) ([]models.Player, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT player_id, season, team_id, team, doc, last_updated
		FROM players WHERE season = $1 ORDER BY player_id`, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.PlayerID, &p.Season, &p.TeamID, &p.Team, &p.Doc, &p.LastUpdated); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// SearchPlayersByName matches the roster by name, case-insensitive, against
// both the top-level and nested identity shapes the provider uses. Season
// zero means any season.
func (s *PostgresStore) SearchPlayersByName(ctx context.Context, name string, season int) ([]models.Player, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT player_id, season, team_id, team, doc, last_updated
		FROM players
		WHERE (doc->>'name' ILIKE '%' || $1 || '%' OR doc->'player'->>'name' ILIKE '%' || $1 || '%')
		  AND ($2 = 0 OR season = $2)
		ORDER BY player_id`, name, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.PlayerID, &p.Season, &p.TeamID, &p.Team, &p.Doc, &p.LastUpdated); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// PlayersForSweep lists the player ids the postgame sweep iterates over.
func (s *PostgresStore) PlayersForSweep(ctx context.Context, teamID, season int) ([]models.SweepPlayer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT player_id, COALESCE(doc->>'name', doc->'player'->>'name', '')
		FROM players WHERE team_id = $1 AND season = $2 ORDER BY player_id`, teamID, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []models.SweepPlayer
	for rows.Next() {
		var p models.SweepPlayer
		if err := rows.Scan(&p.PlayerID, &p.Name); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// =============================================================================
// Games
// =============================================================================

// ReplaceGames swaps the full schedule for (season, team) in one transaction.
// Same empty-input safety as ReplacePlayers.
func (s *PostgresStore) ReplaceGames(ctx context.Context, season, teamID int, entries []apisports.ScheduledGame) models.ReplaceResult {
	if len(entries) == 0 {
		return models.ReplaceResult{Success: false, Season: season, Error: "nothing to insert"}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.ReplaceResult{Success: false, Season: season, Error: fmt.Sprintf("begin: %v", err)}
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM games WHERE season = $1 AND team_id = $2`, season, teamID); err != nil {
		return models.ReplaceResult{Success: false, Season: season, Error: fmt.Sprintf("delete games: %v", err)}
	}

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, g := range entries {
		var gameDate any
		if !g.Date.IsZero() {
			gameDate = g.Date
		}
		batch.Queue(`
			INSERT INTO games (game_id, season, team_id, game_date, status_short, doc, last_updated)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			g.GameID, season, teamID, gameDate, g.StatusShort, g.Raw, now)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return models.ReplaceResult{Success: false, Season: season, Error: fmt.Sprintf("insert games: %v", err)}
	}

	if err := tx.Commit(ctx); err != nil {
		return models.ReplaceResult{Success: false, Season: season, Error: fmt.Sprintf("commit: %v", err)}
	}

	return models.ReplaceResult{Success: true, Season: season, InsertedCount: len(entries)}
}

// FindNextGame returns the earliest game whose status is not in the
// configured terminal set, or nil when the season has none left.
func (s *PostgresStore) FindNextGame(ctx context.Context, season, teamID int) (*models.Game, error) {
	var g models.Game
	var gameDate *time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT game_id, season, team_id, game_date, status_short, doc, last_updated
		FROM games
		WHERE season = $1 AND team_id = $2 AND NOT (status_short = ANY($3))
		ORDER BY game_date NULLS LAST
		LIMIT 1`, season, teamID, s.team.TerminalStatuses).Scan(
		&g.GameID, &g.Season, &g.TeamID, &gameDate, &g.StatusShort, &g.Doc, &g.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if gameDate != nil {
		g.GameDate = *gameDate
	}
	return &g, nil
}

// =============================================================================
// Player stats
// =============================================================================

// UpsertPlayerStat aggregates one season-stats payload and merges it into the
// (player_id, season) record. Only categories present in the payload are
// recomputed; untouched categories keep their stored values. Calling twice
// with identical input leaves the row alone: matched=1, modified=0.
func (s *PostgresStore) UpsertPlayerStat(ctx context.Context, playerID, season int, payload []apisports.PlayerSeasonStats) models.UpsertResult {
	agg, err := stats.Aggregate(payload, s.team.ID)
	if err != nil {
		return models.UpsertResult{Success: false, Error: err.Error()}
	}

	fullStats, err := agg.FullJSON()
	if err != nil {
		return models.UpsertResult{Success: false, Error: fmt.Sprintf("marshal stats: %v", err)}
	}
	seenStats, err := agg.CategoryJSON()
	if err != nil {
		return models.UpsertResult{Success: false, Error: fmt.Sprintf("marshal stats: %v", err)}
	}

	var inserted bool
	err = s.pool.QueryRow(ctx, `
		INSERT INTO player_stats (player_id, season, player_name, position, stats, raw_response, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (player_id, season) DO UPDATE SET
			player_name = EXCLUDED.player_name,
			position = EXCLUDED.position,
			stats = player_stats.stats || $7,
			raw_response = EXCLUDED.raw_response,
			last_updated = NOW()
		WHERE player_stats.stats || $7 IS DISTINCT FROM player_stats.stats
			OR player_stats.player_name IS DISTINCT FROM EXCLUDED.player_name
			OR player_stats.position IS DISTINCT FROM EXCLUDED.position
			OR player_stats.raw_response IS DISTINCT FROM EXCLUDED.raw_response
		RETURNING (xmax = 0)`,
		playerID, season, agg.PlayerName, agg.Position, fullStats, agg.RawResponse, seenStats).Scan(&inserted)

	if errors.Is(err, pgx.ErrNoRows) {
		// Conflict row exists and nothing changed.
		return models.UpsertResult{Success: true, Matched: 1, Modified: 0, Upserted: 0}
	}
	if err != nil {
		return models.UpsertResult{Success: false, Error: fmt.Sprintf("upsert player stat: %v", err)}
	}
	if inserted {
		return models.UpsertResult{Success: true, Upserted: 1}
	}
	return models.UpsertResult{Success: true, Matched: 1, Modified: 1}
}

// PlayerStat reads one season-aggregate record.
func (s *PostgresStore) PlayerStat(ctx context.Context, playerID, season int) (*models.PlayerStat, error) {
	var ps models.PlayerStat
	err := s.pool.QueryRow(ctx, `
		SELECT player_id, season, player_name, position, stats, raw_response, last_updated
		FROM player_stats WHERE player_id = $1 AND season = $2`, playerID, season).Scan(
		&ps.PlayerID, &ps.Season, &ps.PlayerName, &ps.Position, &ps.Stats, &ps.RawResponse, &ps.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ps, nil
}

// =============================================================================
// Live stats
// =============================================================================

// UpsertLiveStat replaces the observed stat-group document for one player in
// one game. Idempotent per (game_id, player_id, season).
func (s *PostgresStore) UpsertLiveStat(ctx context.Context, gameID, playerID, season int, doc json.RawMessage) models.UpsertResult {
	var inserted bool
	err := s.pool.QueryRow(ctx, `
		INSERT INTO live_stats (game_id, player_id, season, doc, last_updated)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (game_id, player_id, season) DO UPDATE SET
			doc = EXCLUDED.doc,
			last_updated = NOW()
		WHERE live_stats.doc IS DISTINCT FROM EXCLUDED.doc
		RETURNING (xmax = 0)`,
		gameID, playerID, season, doc).Scan(&inserted)

	if errors.Is(err, pgx.ErrNoRows) {
		return models.UpsertResult{Success: true, Matched: 1, Modified: 0, Upserted: 0}
	}
	if err != nil {
		return models.UpsertResult{Success: false, Error: fmt.Sprintf("upsert live stat: %v", err)}
	}
	if inserted {
		return models.UpsertResult{Success: true, Upserted: 1}
	}
	return models.UpsertResult{Success: true, Matched: 1, Modified: 1}
}

// LiveStatsForGame reads all live stat documents recorded for one game.
func (s *PostgresStore) LiveStatsForGame(ctx context.Context, gameID, season int) ([]models.LiveStat, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT game_id, player_id, season, doc, last_updated
		FROM live_stats WHERE game_id = $1 AND season = $2 ORDER BY player_id`, gameID, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LiveStat
	for rows.Next() {
		var ls models.LiveStat
		if err := rows.Scan(&ls.GameID, &ls.PlayerID, &ls.Season, &ls.Doc, &ls.LastUpdated); err != nil {
			return nil, err
		}
		out = append(out, ls)
	}
	return out, rows.Err()
}
