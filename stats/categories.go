package stats

// Category is the closed set of stat groups the aggregator understands.
// Group names dispatch by exact match; anything else maps to
// CategoryUnknown and is ignored.
type Category string

const (
	CategoryPassing   Category = "Passing"
	CategoryRushing   Category = "Rushing"
	CategoryReceiving Category = "Receiving"
	CategoryDefense   Category = "Defense"
	CategoryKicking   Category = "Kicking"
	CategoryPunting   Category = "Punting"
	CategoryReturning Category = "Returning"
	CategoryScoring   Category = "Scoring"
	CategoryUnknown   Category = ""
)

func categoryFor(groupName string) Category {
	switch groupName {
	case "Passing":
		return CategoryPassing
	case "Rushing":
		return CategoryRushing
	case "Receiving":
		return CategoryReceiving
	case "Defense":
		return CategoryDefense
	case "Kicking":
		return CategoryKicking
	case "Punting":
		return CategoryPunting
	case "Returning":
		return CategoryReturning
	case "Scoring":
		return CategoryScoring
	}
	return CategoryUnknown
}

// PlayerStats is the fixed eight-category schema every aggregation produces.
// All fields start at zero and only grow by summation within one payload,
// except Punting.Average which is last-value-wins.
type PlayerStats struct {
	Passing   Passing   `json:"passing"`
	Rushing   Rushing   `json:"rushing"`
	Receiving Receiving `json:"receiving"`
	Defense   Defense   `json:"defense"`
	Kicking   Kicking   `json:"kicking"`
	Punting   Punting   `json:"punting"`
	Returning Returning `json:"returning"`
	Scoring   Scoring   `json:"scoring"`
}

type Passing struct {
	Attempts      float64 `json:"attempts"`
	Completions   float64 `json:"completions"`
	Yards         float64 `json:"yards"`
	Touchdowns    float64 `json:"touchdowns"`
	Interceptions float64 `json:"interceptions"`
}

type Rushing struct {
	Carries    float64 `json:"carries"`
	Yards      float64 `json:"yards"`
	Touchdowns float64 `json:"touchdowns"`
}

type Receiving struct {
	Targets    float64 `json:"targets"`
	Receptions float64 `json:"receptions"`
	Yards      float64 `json:"yards"`
	Touchdowns float64 `json:"touchdowns"`
}

type Defense struct {
	Tackles       float64 `json:"tackles"`
	Assists       float64 `json:"assists"`
	Sacks         float64 `json:"sacks"`
	Interceptions float64 `json:"interceptions"`
	ForcedFumbles float64 `json:"forced_fumbles"`
}

type Kicking struct {
	FieldGoalsMade       float64 `json:"field_goals_made"`
	FieldGoalsAttempted  float64 `json:"field_goals_attempted"`
	ExtraPointsMade      float64 `json:"extra_points_made"`
	ExtraPointsAttempted float64 `json:"extra_points_attempted"`
}

type Punting struct {
	Punts    float64 `json:"punts"`
	Yards    float64 `json:"yards"`
	Average  float64 `json:"average"`
	Inside20 float64 `json:"inside_20"`
}

type Returning struct {
	KickReturns float64 `json:"kick_returns"`
	PuntReturns float64 `json:"punt_returns"`
	Yards       float64 `json:"yards"`
	Touchdowns  float64 `json:"touchdowns"`
}

type Scoring struct {
	Touchdowns float64 `json:"touchdowns"`
	FieldGoals float64 `json:"field_goals"`
	Points     float64 `json:"points"`
}
