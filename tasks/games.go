package tasks

import (
	"context"
	"fmt"
	"log"

	"gridiron_hub/apisports"
	"gridiron_hub/models"
)

// UpdateGames fetches the season schedule and replaces the stored games for
// the (season, team) scope in a single transaction.
func (r *Runner) UpdateGames(ctx context.Context, season int) (result models.TaskResult) {
	if season == 0 {
		season = r.team.Season
	}
	defer r.recoverResult(&result, season)

	log.Printf("Games update: team %d season %d", r.team.ID, season)

	raws, err := r.client.TeamGames(ctx, r.team.ID, season)
	if err != nil {
		return failResult(season, fmt.Sprintf("failed to fetch games from API: %v", err))
	}
	if len(raws) == 0 {
		return failResult(season, "no games found in API response")
	}

	entries := apisports.DecodeScheduledGames(raws)
	if len(entries) == 0 {
		return failResult(season, "no valid game data in API response")
	}

	r.archive(ctx, "games", season, raws)

	save := r.store.ReplaceGames(ctx, season, r.team.ID, entries)
	if !save.Success {
		return failResult(season, fmt.Sprintf("failed to save games: %s", save.Error))
	}

	log.Printf("Games update: saved %d games for season %d", save.InsertedCount, season)
	return models.TaskResult{
		Success:       true,
		Season:        season,
		InsertedCount: save.InsertedCount,
		Message:       fmt.Sprintf("updated %d games for season %d", save.InsertedCount, season),
	}.Stamp()
}
