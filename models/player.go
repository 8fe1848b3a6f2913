package models

import (
	"encoding/json"
	"time"
)

// Player is one roster entry for a season, stored as the provider document
// plus the natural key columns we extract from it.
type Player struct {
	PlayerID    int             `json:"player_id" db:"player_id"`
	Season      int             `json:"season" db:"season"`
	TeamID      int             `json:"team_id" db:"team_id"`
	Team        string          `json:"team" db:"team"`
	Doc         json.RawMessage `json:"doc" db:"doc"`
	LastUpdated time.Time       `json:"last_updated" db:"last_updated"`
}

// SweepPlayer is the projection the postgame sweep iterates over.
type SweepPlayer struct {
	PlayerID int    `json:"player_id" db:"player_id"`
	Name     string `json:"name" db:"name"`
}

// PlayerStat is the season-aggregate stat record, keyed (player_id, season).
type PlayerStat struct {
	PlayerID    int             `json:"player_id" db:"player_id"`
	Season      int             `json:"season" db:"season"`
	PlayerName  string          `json:"player_name" db:"player_name"`
	Position    string          `json:"position" db:"position"`
	Stats       json.RawMessage `json:"stats" db:"stats"`
	RawResponse json.RawMessage `json:"raw_response" db:"raw_response"`
	LastUpdated time.Time       `json:"last_updated" db:"last_updated"`
}

// LiveStat holds the raw per-category stat groups observed for one player
// during one live game, keyed (game_id, player_id, season).
type LiveStat struct {
	GameID      int             `json:"game_id" db:"game_id"`
	PlayerID    int             `json:"player_id" db:"player_id"`
	Season      int             `json:"season" db:"season"`
	Doc         json.RawMessage `json:"doc" db:"doc"`
	LastUpdated time.Time       `json:"last_updated" db:"last_updated"`
}
