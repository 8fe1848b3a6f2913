package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"gridiron_hub/apisports"
	"gridiron_hub/models"
)

// liveStatDoc is the per-player document stored for an in-progress game:
// the provider's group/statistic lists regrouped under one player.
type liveStatDoc struct {
	Team   apisports.TeamRef        `json:"team"`
	Player apisports.PlayerIdentity `json:"player"`
	Groups []apisports.StatGroup    `json:"groups"`
}

// UpdateLiveStats polls in-game statistics for the tracked team. The stored
// schedule is consulted first so no provider call is made outside a live
// window, and the job re-enqueues itself at the short interval only while a
// live game is confirmed.
func (r *Runner) UpdateLiveStats(ctx context.Context, season int) (result models.TaskResult) {
	if season == 0 {
		season = r.team.Season
	}
	defer r.recoverResult(&result, season)

	next, err := r.store.FindNextGame(ctx, season, r.team.ID)
	if err != nil {
		return failResult(season, fmt.Sprintf("failed to load schedule from database: %v", err))
	}
	if next == nil {
		return models.TaskResult{Success: true, Season: season, Status: "no-upcoming-game"}.Stamp()
	}
	if r.team.IsTerminal(next.StatusShort) {
		return models.TaskResult{
			Success:    true,
			Season:     season,
			Status:     "game-not-active",
			GameStatus: next.StatusShort,
		}.Stamp()
	}

	live, err := r.client.LiveGames(ctx, r.team.LeagueID, season)
	if err != nil {
		return failResult(season, fmt.Sprintf("failed to fetch live games from API: %v", err))
	}

	var game *apisports.LiveGame
	for i := range live {
		if live[i].Involves(r.team.ID) {
			game = &live[i]
			break
		}
	}
	if game == nil {
		return models.TaskResult{Success: true, Season: season, Status: "no-live-game"}.Stamp()
	}

	log.Printf("Live update: game %d (%s vs %s) status %s",
		game.GameID, game.HomeName, game.AwayName, game.StatusShort)

	teamStats, err := r.client.GamePlayerStatistics(ctx, game.GameID)
	if err != nil {
		return failResult(season, fmt.Sprintf("failed to fetch game player stats from API: %v", err))
	}

	updated := 0
	var errs []models.TaskError
	for _, entry := range teamStats {
		if entry.Team.ID != r.team.ID {
			continue
		}
		for _, doc := range collectPlayerDocs(entry) {
			if doc.Player.ID == 0 {
				group := ""
				if len(doc.Groups) > 0 {
					group = doc.Groups[0].Name
				}
				errs = append(errs, models.TaskError{
					PlayerName: doc.Player.Name,
					Group:      group,
					Error:      "missing player id",
				})
				continue
			}
			data, err := json.Marshal(doc)
			if err != nil {
				errs = append(errs, models.TaskError{
					PlayerID:   doc.Player.ID,
					PlayerName: doc.Player.Name,
					Error:      err.Error(),
				})
				continue
			}
			res := r.store.UpsertLiveStat(ctx, game.GameID, doc.Player.ID, season, data)
			if !res.Success {
				errs = append(errs, models.TaskError{
					PlayerID:   doc.Player.ID,
					PlayerName: doc.Player.Name,
					Error:      res.Error,
				})
				continue
			}
			updated++
		}
	}

	result = models.TaskResult{
		Success:      true,
		Season:       season,
		GameStatus:   game.StatusShort,
		UpdatedCount: updated,
		Errors:       errs,
		Message:      fmt.Sprintf("updated live stats for %d players in game %d", updated, game.GameID),
	}

	if _, err := r.queue.Enqueue(models.TaskUpdateLive, models.TaskParams{Season: season}, r.sched.LiveReschedule); err != nil {
		log.Printf("Warning: failed to reschedule live update: %v", err)
	} else {
		result.RescheduledIn = r.sched.LiveReschedule.String()
	}
	return result.Stamp()
}

// collectPlayerDocs inverts one team's group-major stat layout into
// per-player documents, preserving the provider's group order.
func collectPlayerDocs(entry apisports.GameTeamStats) []liveStatDoc {
	var order []int
	byID := map[int]*liveStatDoc{}
	var anonymous []liveStatDoc

	for _, group := range entry.Groups {
		for _, p := range group.Players {
			sg := apisports.StatGroup{Name: group.Name, Statistics: p.Statistics}
			if p.Player.ID == 0 {
				anonymous = append(anonymous, liveStatDoc{
					Team:   entry.Team,
					Player: p.Player,
					Groups: []apisports.StatGroup{sg},
				})
				continue
			}
			doc, ok := byID[p.Player.ID]
			if !ok {
				doc = &liveStatDoc{Team: entry.Team, Player: p.Player}
				byID[p.Player.ID] = doc
				order = append(order, p.Player.ID)
			}
			doc.Groups = append(doc.Groups, sg)
		}
	}

	docs := make([]liveStatDoc, 0, len(order)+len(anonymous))
	for _, id := range order {
		docs = append(docs, *byID[id])
	}
	return append(docs, anonymous...)
}
