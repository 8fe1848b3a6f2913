package tasks

import (
	"context"
	"fmt"
	"log"

	"gridiron_hub/apisports"
	"gridiron_hub/models"
)

// UpdateRoster fetches the full roster for one season and replaces the
// stored roster for that season in a single transaction.
func (r *Runner) UpdateRoster(ctx context.Context, season int) (result models.TaskResult) {
	if season == 0 {
		season = r.team.Season
	}
	defer r.recoverResult(&result, season)

	log.Printf("Roster update: team %d season %d", r.team.ID, season)

	raws, err := r.client.TeamRoster(ctx, r.team.ID, season)
	if err != nil {
		return failResult(season, fmt.Sprintf("failed to fetch roster from API: %v", err))
	}
	if len(raws) == 0 {
		return failResult(season, "no players found in API response")
	}

	entries := apisports.DecodeRosterEntries(raws)
	if len(entries) == 0 {
		return failResult(season, "no valid player data in API response")
	}

	r.archive(ctx, "roster", season, raws)

	save := r.store.ReplacePlayers(ctx, season, entries)
	if !save.Success {
		return failResult(season, fmt.Sprintf("failed to save roster: %s", save.Error))
	}

	log.Printf("Roster update: saved %d players for season %d", save.InsertedCount, season)
	return models.TaskResult{
		Success:       true,
		Season:        season,
		InsertedCount: save.InsertedCount,
		Message:       fmt.Sprintf("updated %d players for season %d", save.InsertedCount, season),
	}.Stamp()
}
