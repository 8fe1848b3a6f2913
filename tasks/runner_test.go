package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"gridiron_hub/apisports"
	"gridiron_hub/config"
	"gridiron_hub/models"
)

type fakeFetcher struct {
	rosterRaws []json.RawMessage
	rosterErr  error

	gameRaws []json.RawMessage
	gamesErr error

	liveGames    []apisports.LiveGame
	liveErr      error
	liveCalled   bool
	gameStats    []apisports.GameTeamStats
	gameStatsErr error

	playerStats    map[int][]apisports.PlayerSeasonStats
	playerStatsErr map[int]error
}

func (f *fakeFetcher) TeamRoster(ctx context.Context, teamID, season int) ([]json.RawMessage, error) {
	return f.rosterRaws, f.rosterErr
}

func (f *fakeFetcher) TeamGames(ctx context.Context, teamID, season int) ([]json.RawMessage, error) {
	return f.gameRaws, f.gamesErr
}

func (f *fakeFetcher) LiveGames(ctx context.Context, league, season int) ([]apisports.LiveGame, error) {
	f.liveCalled = true
	return f.liveGames, f.liveErr
}

func (f *fakeFetcher) PlayerStatistics(ctx context.Context, playerID, season int) ([]apisports.PlayerSeasonStats, error) {
	if err, ok := f.playerStatsErr[playerID]; ok {
		return nil, err
	}
	return f.playerStats[playerID], nil
}

func (f *fakeFetcher) GamePlayerStatistics(ctx context.Context, gameID int) ([]apisports.GameTeamStats, error) {
	return f.gameStats, f.gameStatsErr
}

type fakeStore struct {
	replacePlayersCalls int
	replacePlayersGot   []apisports.RosterEntry
	replaceResult       models.ReplaceResult

	replaceGamesCalls int
	replaceGamesGot   []apisports.ScheduledGame

	sweepPlayers []models.SweepPlayer
	sweepErr     error
	upsertFails  map[int]string
	upsertCalls  []int

	nextGame    *models.Game
	nextGameErr error

	liveUpserts []int
	liveFails   map[int]string
}

func (s *fakeStore) ReplacePlayers(ctx context.Context, season int, entries []apisports.RosterEntry) models.ReplaceResult {
	s.replacePlayersCalls++
	s.replacePlayersGot = entries
	if s.replaceResult.Success || s.replaceResult.Error != "" {
		return s.replaceResult
	}
	return models.ReplaceResult{Success: true, InsertedCount: len(entries), Season: season}
}

func (s *fakeStore) ReplaceGames(ctx context.Context, season, teamID int, entries []apisports.ScheduledGame) models.ReplaceResult {
	s.replaceGamesCalls++
	s.replaceGamesGot = entries
	return models.ReplaceResult{Success: true, InsertedCount: len(entries), Season: season}
}

func (s *fakeStore) UpsertPlayerStat(ctx context.Context, playerID, season int, payload []apisports.PlayerSeasonStats) models.UpsertResult {
	s.upsertCalls = append(s.upsertCalls, playerID)
	if msg, ok := s.upsertFails[playerID]; ok {
		return models.UpsertResult{Success: false, Error: msg}
	}
	return models.UpsertResult{Success: true, Matched: 1, Modified: 1}
}

func (s *fakeStore) UpsertLiveStat(ctx context.Context, gameID, playerID, season int, doc json.RawMessage) models.UpsertResult {
	s.liveUpserts = append(s.liveUpserts, playerID)
	if msg, ok := s.liveFails[playerID]; ok {
		return models.UpsertResult{Success: false, Error: msg}
	}
	return models.UpsertResult{Success: true, Matched: 1, Modified: 1}
}

func (s *fakeStore) FindNextGame(ctx context.Context, season, teamID int) (*models.Game, error) {
	return s.nextGame, s.nextGameErr
}

func (s *fakeStore) PlayersForSweep(ctx context.Context, teamID, season int) ([]models.SweepPlayer, error) {
	return s.sweepPlayers, s.sweepErr
}

type fakeQueue struct {
	enqueued []models.TaskType
	delays   []time.Duration
	err      error
}

func (q *fakeQueue) Enqueue(task models.TaskType, params models.TaskParams, delay time.Duration) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.enqueued = append(q.enqueued, task)
	q.delays = append(q.delays, delay)
	return "task-id", nil
}

func testConfig() *config.Config {
	return &config.Config{
		Team: config.TeamConfig{
			ID:               15,
			Name:             "Green Bay Packers",
			LeagueID:         1,
			Season:           2024,
			TerminalStatuses: []string{"FT", "AOT", "CANC", "PST"},
		},
		Scheduler: config.SchedulerConfig{
			LiveReschedule: 30 * time.Second,
		},
	}
}

func newTestRunner(f *fakeFetcher, s *fakeStore, q *fakeQueue) *Runner {
	return NewRunner(f, s, q, testConfig())
}

func TestUpdateRoster_FetchError(t *testing.T) {
	fetcher := &fakeFetcher{rosterErr: errors.New("connection refused")}
	store := &fakeStore{}
	runner := newTestRunner(fetcher, store, &fakeQueue{})

	result := runner.UpdateRoster(context.Background(), 2024)
	if result.Success {
		t.Fatalf("expected failure, got %+v", result)
	}
	if result.Error == "" {
		t.Fatalf("expected error message")
	}
	if store.replacePlayersCalls != 0 {
		t.Fatalf("expected no store write on fetch failure")
	}
	if result.Timestamp == "" {
		t.Fatalf("expected timestamp on result")
	}
}

func TestUpdateRoster_EmptyResponse(t *testing.T) {
	fetcher := &fakeFetcher{rosterRaws: []json.RawMessage{}}
	store := &fakeStore{}
	runner := newTestRunner(fetcher, store, &fakeQueue{})

	result := runner.UpdateRoster(context.Background(), 2024)
	if result.Success {
		t.Fatalf("expected failure on empty response, got %+v", result)
	}
	if store.replacePlayersCalls != 0 {
		t.Fatalf("expected no store write on empty response")
	}
}

func TestUpdateRoster_NoValidEntries(t *testing.T) {
	// Non-empty response whose elements all fail the object check is a
	// distinct failure from an empty response.
	fetcher := &fakeFetcher{rosterRaws: []json.RawMessage{
		json.RawMessage(`"just a string"`),
		json.RawMessage(`{"name": "no id"}`),
	}}
	store := &fakeStore{}
	runner := newTestRunner(fetcher, store, &fakeQueue{})

	result := runner.UpdateRoster(context.Background(), 2024)
	if result.Success {
		t.Fatalf("expected failure on zero valid entries, got %+v", result)
	}
	if store.replacePlayersCalls != 0 {
		t.Fatalf("expected no store write when nothing decodes")
	}
}

func TestUpdateRoster_Success(t *testing.T) {
	fetcher := &fakeFetcher{rosterRaws: []json.RawMessage{
		json.RawMessage(`{"id": 10, "name": "Jordan Love"}`),
		json.RawMessage(`{"id": 11, "name": "Josh Jacobs"}`),
		json.RawMessage(`{"name": "dropped"}`),
	}}
	store := &fakeStore{}
	runner := newTestRunner(fetcher, store, &fakeQueue{})

	result := runner.UpdateRoster(context.Background(), 2024)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.InsertedCount != 2 {
		t.Fatalf("expected 2 inserted, got %d", result.InsertedCount)
	}
	if len(store.replacePlayersGot) != 2 {
		t.Fatalf("expected 2 entries passed to store, got %d", len(store.replacePlayersGot))
	}
	if result.Season != 2024 {
		t.Fatalf("expected season 2024, got %d", result.Season)
	}
}

func TestUpdateRoster_StoreFailure(t *testing.T) {
	fetcher := &fakeFetcher{rosterRaws: []json.RawMessage{
		json.RawMessage(`{"id": 10, "name": "Jordan Love"}`),
	}}
	store := &fakeStore{replaceResult: models.ReplaceResult{Success: false, Error: "deadlock detected"}}
	runner := newTestRunner(fetcher, store, &fakeQueue{})

	result := runner.UpdateRoster(context.Background(), 2024)
	if result.Success {
		t.Fatalf("expected failure when store rejects, got %+v", result)
	}
	if result.Error == "" {
		t.Fatalf("expected store error surfaced in result")
	}
}

func TestUpdateRoster_DefaultsSeason(t *testing.T) {
	fetcher := &fakeFetcher{rosterErr: errors.New("boom")}
	runner := newTestRunner(fetcher, &fakeStore{}, &fakeQueue{})

	result := runner.UpdateRoster(context.Background(), 0)
	if result.Season != 2024 {
		t.Fatalf("expected configured season 2024, got %d", result.Season)
	}
}

func TestUpdateGames_Success(t *testing.T) {
	fetcher := &fakeFetcher{gameRaws: []json.RawMessage{
		json.RawMessage(`{"game": {"id": 201, "date": {"timestamp": 1726430400}, "status": {"short": "NS"}}}`),
	}}
	store := &fakeStore{}
	runner := newTestRunner(fetcher, store, &fakeQueue{})

	result := runner.UpdateGames(context.Background(), 2024)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.InsertedCount != 1 {
		t.Fatalf("expected 1 inserted, got %d", result.InsertedCount)
	}
	if store.replaceGamesCalls != 1 {
		t.Fatalf("expected 1 replace call, got %d", store.replaceGamesCalls)
	}
}

func TestUpdateStatsPostgame_ContinueOnError(t *testing.T) {
	payload := []apisports.PlayerSeasonStats{{
		Player: apisports.PlayerIdentity{ID: 1, Name: "A"},
	}}
	fetcher := &fakeFetcher{
		playerStats: map[int][]apisports.PlayerSeasonStats{
			1: payload,
			3: payload,
			4: payload,
		},
		playerStatsErr: map[int]error{2: errors.New("timeout")},
	}
	store := &fakeStore{
		sweepPlayers: []models.SweepPlayer{
			{PlayerID: 1, Name: "A"},
			{PlayerID: 2, Name: "B"},
			{PlayerID: 3, Name: "C"},
			{PlayerID: 4, Name: "D"},
		},
		upsertFails: map[int]string{3: "db down"},
	}
	runner := newTestRunner(fetcher, store, &fakeQueue{})

	result := runner.UpdateStatsPostgame(context.Background(), 2024, false)
	if !result.Success {
		t.Fatalf("expected overall success, got %+v", result)
	}
	if result.UpdatedCount != 2 {
		t.Fatalf("expected 2 updated, got %d", result.UpdatedCount)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d: %+v", len(result.Errors), result.Errors)
	}
	// The fetch failure on player 2 must not stop players 3 and 4.
	if len(store.upsertCalls) != 3 {
		t.Fatalf("expected 3 upsert attempts, got %v", store.upsertCalls)
	}
}

func TestUpdateStatsPostgame_EmptyStatsIsBenign(t *testing.T) {
	fetcher := &fakeFetcher{playerStats: map[int][]apisports.PlayerSeasonStats{}}
	store := &fakeStore{
		sweepPlayers: []models.SweepPlayer{{PlayerID: 1, Name: "A"}},
	}
	runner := newTestRunner(fetcher, store, &fakeQueue{})

	result := runner.UpdateStatsPostgame(context.Background(), 2024, false)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.UpdatedCount != 0 || len(result.Errors) != 0 {
		t.Fatalf("expected no updates and no errors, got %+v", result)
	}
	if len(store.upsertCalls) != 0 {
		t.Fatalf("expected no upsert for player without stats")
	}
}

func TestUpdateStatsPostgame_EmptyRoster(t *testing.T) {
	runner := newTestRunner(&fakeFetcher{}, &fakeStore{}, &fakeQueue{})

	result := runner.UpdateStatsPostgame(context.Background(), 2024, false)
	if result.Success {
		t.Fatalf("expected failure on empty roster, got %+v", result)
	}
}

func TestUpdateLiveStats_NoUpcomingGame(t *testing.T) {
	fetcher := &fakeFetcher{}
	store := &fakeStore{nextGame: nil}
	queue := &fakeQueue{}
	runner := newTestRunner(fetcher, store, queue)

	result := runner.UpdateLiveStats(context.Background(), 2024)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Status != "no-upcoming-game" {
		t.Fatalf("expected no-upcoming-game, got %s", result.Status)
	}
	if fetcher.liveCalled {
		t.Fatalf("expected no provider call without a scheduled game")
	}
	if len(queue.enqueued) != 0 {
		t.Fatalf("expected no reschedule, got %v", queue.enqueued)
	}
}

func TestUpdateLiveStats_GameNotActive(t *testing.T) {
	fetcher := &fakeFetcher{}
	store := &fakeStore{nextGame: &models.Game{GameID: 301, StatusShort: "FT"}}
	queue := &fakeQueue{}
	runner := newTestRunner(fetcher, store, queue)

	result := runner.UpdateLiveStats(context.Background(), 2024)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Status != "game-not-active" {
		t.Fatalf("expected game-not-active, got %s", result.Status)
	}
	if result.GameStatus != "FT" {
		t.Fatalf("expected game status FT, got %s", result.GameStatus)
	}
	if fetcher.liveCalled {
		t.Fatalf("terminal status must short-circuit before any provider call")
	}
	if len(queue.enqueued) != 0 {
		t.Fatalf("expected no reschedule for finished game")
	}
}

func TestUpdateLiveStats_NoLiveGameForTeam(t *testing.T) {
	fetcher := &fakeFetcher{
		liveGames: []apisports.LiveGame{
			{GameID: 400, StatusShort: "Q3", HomeID: 7, AwayID: 9},
		},
	}
	store := &fakeStore{nextGame: &models.Game{GameID: 301, StatusShort: "Q1"}}
	queue := &fakeQueue{}
	runner := newTestRunner(fetcher, store, queue)

	result := runner.UpdateLiveStats(context.Background(), 2024)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Status != "no-live-game" {
		t.Fatalf("expected no-live-game, got %s", result.Status)
	}
	if len(queue.enqueued) != 0 {
		t.Fatalf("expected no reschedule without a live game")
	}
}

func TestUpdateLiveStats_LiveGameUpsertsAndReschedules(t *testing.T) {
	fetcher := &fakeFetcher{
		liveGames: []apisports.LiveGame{
			{GameID: 500, StatusShort: "Q2", HomeID: 15, AwayID: 3, HomeName: "Green Bay Packers", AwayName: "Chicago Bears"},
		},
		gameStats: []apisports.GameTeamStats{
			{
				Team: apisports.TeamRef{ID: 15, Name: "Green Bay Packers"},
				Groups: []apisports.LiveGroup{
					{
						Name: "Passing",
						Players: []apisports.LivePlayerStats{
							{Player: apisports.PlayerIdentity{ID: 10, Name: "Jordan Love"},
								Statistics: []apisports.StatLine{{Name: "Yards", Value: "211"}}},
						},
					},
					{
						Name: "Rushing",
						Players: []apisports.LivePlayerStats{
							{Player: apisports.PlayerIdentity{ID: 10, Name: "Jordan Love"},
								Statistics: []apisports.StatLine{{Name: "Yards", Value: "12"}}},
							{Player: apisports.PlayerIdentity{ID: 11, Name: "Josh Jacobs"},
								Statistics: []apisports.StatLine{{Name: "Yards", Value: "84"}}},
						},
					},
				},
			},
			{
				// Opponent stats must be ignored entirely.
				Team: apisports.TeamRef{ID: 3, Name: "Chicago Bears"},
				Groups: []apisports.LiveGroup{
					{Name: "Passing", Players: []apisports.LivePlayerStats{
						{Player: apisports.PlayerIdentity{ID: 99, Name: "Opponent QB"}},
					}},
				},
			},
		},
	}
	store := &fakeStore{nextGame: &models.Game{GameID: 500, StatusShort: "Q1"}}
	queue := &fakeQueue{}
	runner := newTestRunner(fetcher, store, queue)

	result := runner.UpdateLiveStats(context.Background(), 2024)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.UpdatedCount != 2 {
		t.Fatalf("expected 2 players updated, got %d", result.UpdatedCount)
	}
	if len(store.liveUpserts) != 2 {
		t.Fatalf("expected 2 live upserts, got %v", store.liveUpserts)
	}
	for _, id := range store.liveUpserts {
		if id == 99 {
			t.Fatalf("opponent player leaked into upserts: %v", store.liveUpserts)
		}
	}
	if len(queue.enqueued) != 1 || queue.enqueued[0] != models.TaskUpdateLive {
		t.Fatalf("expected exactly one live reschedule, got %v", queue.enqueued)
	}
	if queue.delays[0] != 30*time.Second {
		t.Fatalf("expected 30s reschedule delay, got %v", queue.delays[0])
	}
	if result.RescheduledIn != "30s" {
		t.Fatalf("expected rescheduled_in 30s, got %q", result.RescheduledIn)
	}
	if result.GameStatus != "Q2" {
		t.Fatalf("expected game status Q2, got %s", result.GameStatus)
	}
}

func TestUpdateLiveStats_MissingPlayerIDRecordsGroup(t *testing.T) {
	fetcher := &fakeFetcher{
		liveGames: []apisports.LiveGame{
			{GameID: 600, StatusShort: "Q1", HomeID: 15, AwayID: 3},
		},
		gameStats: []apisports.GameTeamStats{
			{
				Team: apisports.TeamRef{ID: 15, Name: "Green Bay Packers"},
				Groups: []apisports.LiveGroup{
					{
						Name: "Defense",
						Players: []apisports.LivePlayerStats{
							{Player: apisports.PlayerIdentity{ID: 0, Name: "Unknown Defender"},
								Statistics: []apisports.StatLine{{Name: "Tackles", Value: "4"}}},
							{Player: apisports.PlayerIdentity{ID: 12, Name: "Quay Walker"},
								Statistics: []apisports.StatLine{{Name: "Tackles", Value: "6"}}},
						},
					},
				},
			},
		},
	}
	store := &fakeStore{nextGame: &models.Game{GameID: 600, StatusShort: "NS"}}
	runner := newTestRunner(fetcher, store, &fakeQueue{})

	result := runner.UpdateLiveStats(context.Background(), 2024)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.UpdatedCount != 1 {
		t.Fatalf("expected 1 player updated, got %d", result.UpdatedCount)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error for missing id, got %+v", result.Errors)
	}
	e := result.Errors[0]
	if e.PlayerName != "Unknown Defender" || e.Group != "Defense" {
		t.Fatalf("expected group recorded on missing-id error, got %+v", e)
	}
	if len(store.liveUpserts) != 1 || store.liveUpserts[0] != 12 {
		t.Fatalf("expected only the identified player upserted, got %v", store.liveUpserts)
	}
}

func TestExecute_DispatchesAndRejectsUnknown(t *testing.T) {
	fetcher := &fakeFetcher{rosterErr: errors.New("down")}
	runner := newTestRunner(fetcher, &fakeStore{}, &fakeQueue{})

	params, _ := json.Marshal(models.TaskParams{Season: 2023})
	result := runner.Execute(context.Background(), &models.Task{
		Task:   models.TaskUpdateRoster,
		Params: params,
	})
	if result.Success {
		t.Fatalf("expected roster failure to propagate")
	}
	if result.Season != 2023 {
		t.Fatalf("expected season from params, got %d", result.Season)
	}

	result = runner.Execute(context.Background(), &models.Task{Task: "bogus"})
	if result.Success {
		t.Fatalf("expected failure for unknown task type")
	}
}

func TestRecoverResult_ConvertsPanic(t *testing.T) {
	// A nil store field makes the job panic; the deferred recover has to
	// turn that into a failed result.
	runner := NewRunner(&fakeFetcher{rosterRaws: []json.RawMessage{
		json.RawMessage(`{"id": 1, "name": "A"}`),
	}}, nil, &fakeQueue{}, testConfig())

	result := runner.UpdateRoster(context.Background(), 2024)
	if result.Success {
		t.Fatalf("expected panic to produce failed result")
	}
	if result.Error == "" || result.Timestamp == "" {
		t.Fatalf("expected error and timestamp on recovered result, got %+v", result)
	}
}
