package apisports

import (
	"encoding/json"
	"time"
)

// StatValue tolerates the provider's mixed value encoding: strings
// ("1,653"), bare numbers, and null all decode without error.
type StatValue string

func (v *StatValue) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*v = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = StatValue(s)
		return nil
	}
	*v = StatValue(b)
	return nil
}

type StatLine struct {
	Name  string    `json:"name"`
	Value StatValue `json:"value"`
}

// StatGroup is one named bundle of statistics (Passing, Rushing, ...).
type StatGroup struct {
	Name       string     `json:"name"`
	Statistics []StatLine `json:"statistics"`
}

type TeamRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

type PlayerIdentity struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position,omitempty"`
	Image    string `json:"image,omitempty"`
}

// PlayerSeasonStats is one player-season element from /players/statistics.
// Groups are irregular: which groups appear, and which statistics appear
// inside each, varies per player.
type PlayerSeasonStats struct {
	Player PlayerIdentity    `json:"player"`
	Teams  []PlayerTeamStats `json:"teams"`
}

type PlayerTeamStats struct {
	Team   TeamRef     `json:"team"`
	Groups []StatGroup `json:"groups"`
}

// GameTeamStats is one team element from /games/players: stat groups keyed
// by category, each holding the players that recorded stats in it.
type GameTeamStats struct {
	Team   TeamRef     `json:"team"`
	Groups []LiveGroup `json:"groups"`
}

type LiveGroup struct {
	Name    string            `json:"name"`
	Players []LivePlayerStats `json:"players"`
}

type LivePlayerStats struct {
	Player     PlayerIdentity `json:"player"`
	Statistics []StatLine     `json:"statistics"`
}

// RosterEntry is one roster element that survived the object check, with the
// player id pulled out for keying. Raw keeps the full provider document.
type RosterEntry struct {
	PlayerID int
	Name     string
	Raw      json.RawMessage
}

// ScheduledGame is one /games element with the natural key and sort fields
// extracted. Raw keeps the full nested game/teams/scores/status document.
type ScheduledGame struct {
	GameID      int
	Date        time.Time
	StatusShort string
	Raw         json.RawMessage
}

// LiveGame is one element of the live-games filter response.
type LiveGame struct {
	GameID      int
	StatusShort string
	HomeID      int
	AwayID      int
	HomeName    string
	AwayName    string
	Raw         json.RawMessage
}

func (g LiveGame) Involves(teamID int) bool {
	return g.HomeID == teamID || g.AwayID == teamID
}

type rosterEntryDoc struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Player struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"player"`
}

// DecodeRosterEntries filters a raw response list down to entries that decode
// as objects carrying a player id, either top-level or nested under "player".
// Anything else is dropped; callers gate on the survivor count.
func DecodeRosterEntries(raws []json.RawMessage) []RosterEntry {
	var entries []RosterEntry
	for _, raw := range raws {
		var doc rosterEntryDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		id, name := doc.ID, doc.Name
		if id == 0 {
			id, name = doc.Player.ID, doc.Player.Name
		}
		if id == 0 {
			continue
		}
		entries = append(entries, RosterEntry{PlayerID: id, Name: name, Raw: raw})
	}
	return entries
}

type gameDoc struct {
	Game struct {
		ID   int `json:"id"`
		Date struct {
			Date      string `json:"date"`
			Time      string `json:"time"`
			Timestamp int64  `json:"timestamp"`
		} `json:"date"`
		Status struct {
			Short string `json:"short"`
			Long  string `json:"long"`
		} `json:"status"`
	} `json:"game"`
}

// DecodeScheduledGames filters a raw /games response list down to entries
// with a usable game id, extracting date and status for storage.
func DecodeScheduledGames(raws []json.RawMessage) []ScheduledGame {
	var games []ScheduledGame
	for _, raw := range raws {
		var doc gameDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		if doc.Game.ID == 0 {
			continue
		}
		games = append(games, ScheduledGame{
			GameID:      doc.Game.ID,
			Date:        parseGameDate(doc.Game.Date.Timestamp, doc.Game.Date.Date, doc.Game.Date.Time),
			StatusShort: doc.Game.Status.Short,
			Raw:         raw,
		})
	}
	return games
}

func parseGameDate(timestamp int64, date, clock string) time.Time {
	if timestamp > 0 {
		return time.Unix(timestamp, 0).UTC()
	}
	if t, err := time.Parse("2006-01-02 15:04", date+" "+clock); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t
	}
	return time.Time{}
}

type liveGameDoc struct {
	Game struct {
		ID     int `json:"id"`
		Status struct {
			Short string `json:"short"`
		} `json:"status"`
	} `json:"game"`
	Teams struct {
		Home TeamRef `json:"home"`
		Away TeamRef `json:"away"`
	} `json:"teams"`
}

func decodeLiveGames(raws []json.RawMessage) []LiveGame {
	var games []LiveGame
	for _, raw := range raws {
		var doc liveGameDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		if doc.Game.ID == 0 {
			continue
		}
		games = append(games, LiveGame{
			GameID:      doc.Game.ID,
			StatusShort: doc.Game.Status.Short,
			HomeID:      doc.Teams.Home.ID,
			AwayID:      doc.Teams.Away.ID,
			HomeName:    doc.Teams.Home.Name,
			AwayName:    doc.Teams.Away.Name,
			Raw:         raw,
		})
	}
	return games
}
