package tasks

import (
	"context"
	"fmt"
	"log"

	"gridiron_hub/models"
)

// UpdateStatsPostgame sweeps every rostered player, merging fresh season
// statistics into the store. One player failing never aborts the sweep; each
// failure is collected and reported alongside the updated count.
func (r *Runner) UpdateStatsPostgame(ctx context.Context, season int, force bool) (result models.TaskResult) {
	if season == 0 {
		season = r.team.Season
	}
	defer r.recoverResult(&result, season)

	log.Printf("Postgame sweep: team %d season %d (forced=%t)", r.team.ID, season, force)

	players, err := r.store.PlayersForSweep(ctx, r.team.ID, season)
	if err != nil {
		return failResult(season, fmt.Sprintf("failed to load roster from database: %v", err))
	}
	if len(players) == 0 {
		return failResult(season, fmt.Sprintf("no players found in database for %s", r.team.Name))
	}

	updated := 0
	var errs []models.TaskError
	for _, p := range players {
		payload, err := r.client.PlayerStatistics(ctx, p.PlayerID, season)
		if err != nil {
			errs = append(errs, models.TaskError{
				PlayerID:   p.PlayerID,
				PlayerName: p.Name,
				Error:      err.Error(),
			})
			continue
		}
		if len(payload) == 0 {
			// Provider has no stats for this player yet. Not an error.
			continue
		}

		res := r.store.UpsertPlayerStat(ctx, p.PlayerID, season, payload)
		if !res.Success {
			errs = append(errs, models.TaskError{
				PlayerID:   p.PlayerID,
				PlayerName: p.Name,
				Error:      res.Error,
			})
			continue
		}
		updated++
	}

	log.Printf("Postgame sweep: %d/%d players updated, %d errors", updated, len(players), len(errs))
	return models.TaskResult{
		Success:      true,
		Season:       season,
		UpdatedCount: updated,
		Errors:       errs,
		Message:      fmt.Sprintf("updated stats for %d of %d players", updated, len(players)),
	}.Stamp()
}
