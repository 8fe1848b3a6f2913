package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gridiron_hub/apisports"
	"gridiron_hub/config"
	"gridiron_hub/models"
)

// Fetcher is the slice of the provider client the jobs consume.
type Fetcher interface {
	TeamRoster(ctx context.Context, teamID, season int) ([]json.RawMessage, error)
	TeamGames(ctx context.Context, teamID, season int) ([]json.RawMessage, error)
	LiveGames(ctx context.Context, league, season int) ([]apisports.LiveGame, error)
	PlayerStatistics(ctx context.Context, playerID, season int) ([]apisports.PlayerSeasonStats, error)
	GamePlayerStatistics(ctx context.Context, gameID int) ([]apisports.GameTeamStats, error)
}

// Store is the repository surface the jobs write through.
type Store interface {
	ReplacePlayers(ctx context.Context, season int, entries []apisports.RosterEntry) models.ReplaceResult
	ReplaceGames(ctx context.Context, season, teamID int, entries []apisports.ScheduledGame) models.ReplaceResult
	UpsertPlayerStat(ctx context.Context, playerID, season int, payload []apisports.PlayerSeasonStats) models.UpsertResult
	UpsertLiveStat(ctx context.Context, gameID, playerID, season int, doc json.RawMessage) models.UpsertResult
	FindNextGame(ctx context.Context, season, teamID int) (*models.Game, error)
	PlayersForSweep(ctx context.Context, teamID, season int) ([]models.SweepPlayer, error)
}

// Queue is the slice of the task queue jobs need to reschedule themselves.
type Queue interface {
	Enqueue(task models.TaskType, params models.TaskParams, delay time.Duration) (string, error)
}

// Archiver stores raw payload snapshots. Optional.
type Archiver interface {
	Archive(ctx context.Context, entity string, season int, payload []byte) error
}

// Runner holds the ingestion jobs. Scheduled ticks, queue claims, and manual
// triggers all land on the same methods, so validation and persistence
// behave identically regardless of how a job was started.
type Runner struct {
	client   Fetcher
	store    Store
	queue    Queue
	archiver Archiver
	team     config.TeamConfig
	sched    config.SchedulerConfig
}

func NewRunner(client Fetcher, store Store, queue Queue, cfg *config.Config) *Runner {
	return &Runner{
		client: client,
		store:  store,
		queue:  queue,
		team:   cfg.Team,
		sched:  cfg.Scheduler,
	}
}

// SetArchiver enables best-effort raw snapshot archiving.
func (r *Runner) SetArchiver(a Archiver) {
	r.archiver = a
}

// Execute dispatches one claimed queue task to its job body and returns the
// structured outcome the queue stores.
func (r *Runner) Execute(ctx context.Context, task *models.Task) models.TaskResult {
	params := parseParams(task.Params)
	season := params.Season

	switch task.Task {
	case models.TaskUpdateRoster:
		return r.UpdateRoster(ctx, season)
	case models.TaskUpdateGames:
		return r.UpdateGames(ctx, season)
	case models.TaskUpdatePostgame:
		return r.UpdateStatsPostgame(ctx, season, params.Force)
	case models.TaskUpdateLive:
		return r.UpdateLiveStats(ctx, season)
	}
	return failResult(season, fmt.Sprintf("unknown task type: %s", task.Task))
}

func parseParams(raw json.RawMessage) models.TaskParams {
	if len(raw) == 0 {
		return models.TaskParams{}
	}
	var params models.TaskParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return models.TaskParams{}
	}
	return params
}

// recoverResult is deferred at the top of every job so an unexpected panic
// becomes a failed result instead of crossing the job boundary.
func (r *Runner) recoverResult(result *models.TaskResult, season int) {
	if rec := recover(); rec != nil {
		log.Printf("Task panic: %v", rec)
		*result = failResult(season, fmt.Sprintf("unexpected error: %v", rec))
	}
}

func failResult(season int, msg string) models.TaskResult {
	return models.TaskResult{Success: false, Season: season, Error: msg}.Stamp()
}

// archive snapshots a raw response list. Never fails the job.
func (r *Runner) archive(ctx context.Context, entity string, season int, raws []json.RawMessage) {
	if r.archiver == nil {
		return
	}
	data, err := json.Marshal(raws)
	if err != nil {
		log.Printf("Warning: marshal %s snapshot: %v", entity, err)
		return
	}
	if err := r.archiver.Archive(ctx, entity, season, data); err != nil {
		log.Printf("Warning: archive %s snapshot: %v", entity, err)
	}
}
