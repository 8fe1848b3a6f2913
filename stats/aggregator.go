package stats

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"gridiron_hub/apisports"
)

// ErrNoTeamStats means the payload carried no entry for the tracked team.
// A legitimate empty case for players who moved mid-season, not a provider
// failure.
var ErrNoTeamStats = errors.New("no stats for tracked team")

// Aggregated is the output of one aggregation: the fixed schema, the
// denormalized identity, which categories the payload actually carried, and
// the payload filtered down to the tracked team.
type Aggregated struct {
	PlayerName  string
	Position    string
	Stats       PlayerStats
	Seen        map[Category]bool
	RawResponse json.RawMessage
}

// groupValues is the name→value lookup built from one group's statistics
// list. Keys are lowercased so provider casing drift doesn't matter.
type groupValues map[string]string

func (g groupValues) num(names ...string) float64 {
	for _, name := range names {
		if raw, ok := g[name]; ok {
			return parseStat(raw)
		}
	}
	return 0
}

// accumulators maps every known category to its schema update. Summation for
// counting fields; Punting.Average is replaced, not summed.
var accumulators = map[Category]func(ps *PlayerStats, g groupValues){
	CategoryPassing: func(ps *PlayerStats, g groupValues) {
		ps.Passing.Attempts += g.num("passing attempts", "attempts")
		ps.Passing.Completions += g.num("completions")
		ps.Passing.Yards += g.num("yards")
		ps.Passing.Touchdowns += g.num("passing touch downs", "passing touchdowns", "touchdowns")
		ps.Passing.Interceptions += g.num("interceptions")
	},
	CategoryRushing: func(ps *PlayerStats, g groupValues) {
		ps.Rushing.Carries += g.num("rushing attempts", "attempts")
		ps.Rushing.Yards += g.num("yards")
		ps.Rushing.Touchdowns += g.num("rushing touch downs", "rushing touchdowns", "touchdowns")
	},
	CategoryReceiving: func(ps *PlayerStats, g groupValues) {
		ps.Receiving.Targets += g.num("targets")
		ps.Receiving.Receptions += g.num("receptions")
		ps.Receiving.Yards += g.num("yards")
		ps.Receiving.Touchdowns += g.num("receiving touch downs", "receiving touchdowns", "touchdowns")
	},
	CategoryDefense: func(ps *PlayerStats, g groupValues) {
		ps.Defense.Tackles += g.num("tackles", "total tackles")
		ps.Defense.Assists += g.num("assists")
		ps.Defense.Sacks += g.num("sacks")
		ps.Defense.Interceptions += g.num("interceptions")
		ps.Defense.ForcedFumbles += g.num("forced fumbles")
	},
	CategoryKicking: func(ps *PlayerStats, g groupValues) {
		ps.Kicking.FieldGoalsMade += g.num("field goals made", "field goals")
		ps.Kicking.FieldGoalsAttempted += g.num("field goal attempts", "field goals attempts")
		ps.Kicking.ExtraPointsMade += g.num("extra points made", "extra points")
		ps.Kicking.ExtraPointsAttempted += g.num("extra point attempts", "extra points attempts")
	},
	CategoryPunting: func(ps *PlayerStats, g groupValues) {
		ps.Punting.Punts += g.num("punts")
		ps.Punting.Yards += g.num("yards")
		ps.Punting.Inside20 += g.num("inside 20", "inside twenty")
		// An average is not summable across groups; the latest one wins.
		if raw, ok := g["average"]; ok {
			ps.Punting.Average = parseStat(raw)
		}
	},
	CategoryReturning: func(ps *PlayerStats, g groupValues) {
		ps.Returning.KickReturns += g.num("kick returns", "kickoff returns")
		ps.Returning.PuntReturns += g.num("punt returns")
		ps.Returning.Yards += g.num("yards")
		ps.Returning.Touchdowns += g.num("touch downs", "touchdowns")
	},
	CategoryScoring: func(ps *PlayerStats, g groupValues) {
		ps.Scoring.Touchdowns += g.num("touchdowns", "touch downs")
		ps.Scoring.FieldGoals += g.num("field goals")
		ps.Scoring.Points += g.num("points", "total points")
	},
}

// Aggregate folds one player-season payload into the fixed schema for the
// tracked team. A list payload uses its first element. Returns ErrNoTeamStats
// when no team entry matches teamID.
func Aggregate(payload []apisports.PlayerSeasonStats, teamID int) (*Aggregated, error) {
	if len(payload) == 0 {
		return nil, ErrNoTeamStats
	}
	entry := payload[0]

	var matched *apisports.PlayerTeamStats
	for i := range entry.Teams {
		if entry.Teams[i].Team.ID == teamID {
			matched = &entry.Teams[i]
			break
		}
	}
	if matched == nil {
		return nil, ErrNoTeamStats
	}

	agg := &Aggregated{
		PlayerName: entry.Player.Name,
		Position:   entry.Player.Position,
		Seen:       make(map[Category]bool),
	}

	for _, group := range matched.Groups {
		cat := categoryFor(group.Name)
		if cat == CategoryUnknown {
			continue
		}
		agg.Seen[cat] = true

		values := make(groupValues, len(group.Statistics))
		for _, stat := range group.Statistics {
			values[strings.ToLower(stat.Name)] = string(stat.Value)
		}
		accumulators[cat](&agg.Stats, values)
	}

	filtered := struct {
		Player apisports.PlayerIdentity    `json:"player"`
		Teams  []apisports.PlayerTeamStats `json:"teams"`
	}{
		Player: entry.Player,
		Teams:  []apisports.PlayerTeamStats{*matched},
	}
	raw, err := json.Marshal(filtered)
	if err != nil {
		return nil, err
	}
	agg.RawResponse = raw

	return agg, nil
}

// CategoryJSON serializes only the categories seen in this aggregation, for
// merge-style upserts that must not clobber untouched categories.
func (a *Aggregated) CategoryJSON() (json.RawMessage, error) {
	out := make(map[string]any, len(a.Seen))
	for cat := range a.Seen {
		switch cat {
		case CategoryPassing:
			out["passing"] = a.Stats.Passing
		case CategoryRushing:
			out["rushing"] = a.Stats.Rushing
		case CategoryReceiving:
			out["receiving"] = a.Stats.Receiving
		case CategoryDefense:
			out["defense"] = a.Stats.Defense
		case CategoryKicking:
			out["kicking"] = a.Stats.Kicking
		case CategoryPunting:
			out["punting"] = a.Stats.Punting
		case CategoryReturning:
			out["returning"] = a.Stats.Returning
		case CategoryScoring:
			out["scoring"] = a.Stats.Scoring
		}
	}
	return json.Marshal(out)
}

// FullJSON serializes the complete eight-category schema, zeros included.
func (a *Aggregated) FullJSON() (json.RawMessage, error) {
	return json.Marshal(a.Stats)
}

// parseStat converts a provider value into a number. Thousands separators
// parse ("1,653" → 1653); empty, absent, and junk values are zero.
func parseStat(raw string) float64 {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if cleaned == "" || cleaned == "-" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}
