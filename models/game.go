package models

import (
	"encoding/json"
	"time"
)

// Game is one scheduled or played game for the tracked team in a season.
// status_short and game_date are extracted from the provider document so the
// next-game lookup can sort and filter without unpacking JSON.
type Game struct {
	GameID      int             `json:"game_id" db:"game_id"`
	Season      int             `json:"season" db:"season"`
	TeamID      int             `json:"team_id" db:"team_id"`
	GameDate    time.Time       `json:"game_date" db:"game_date"`
	StatusShort string          `json:"status_short" db:"status_short"`
	Doc         json.RawMessage `json:"doc" db:"doc"`
	LastUpdated time.Time       `json:"last_updated" db:"last_updated"`
}

// ReplaceResult reports a bulk replace write (roster, games).
type ReplaceResult struct {
	Success       bool   `json:"success"`
	InsertedCount int    `json:"inserted_count,omitempty"`
	Season        int    `json:"season,omitempty"`
	Error         string `json:"error,omitempty"`
}

// UpsertResult reports a keyed upsert write (player stats, live stats).
type UpsertResult struct {
	Success  bool   `json:"success"`
	Matched  int    `json:"matched"`
	Modified int    `json:"modified"`
	Upserted int    `json:"upserted"`
	Error    string `json:"error,omitempty"`
}
