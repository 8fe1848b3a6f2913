package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gridiron_hub/apisports"
	"gridiron_hub/config"
	"gridiron_hub/httputil"
	"gridiron_hub/logging"
	"gridiron_hub/models"
	"gridiron_hub/scheduler"
	"gridiron_hub/storage"
	"gridiron_hub/tasks"
)

var (
	rosterNow   = flag.Bool("roster", false, "Run roster update once and exit")
	gamesNow    = flag.Bool("games", false, "Run games update once and exit")
	postgameNow = flag.Bool("postgame", false, "Run postgame stats sweep once and exit")
	liveNow     = flag.Bool("live", false, "Run live stats update once and exit")
	season      = flag.Int("season", 0, "Season override for one-shot runs")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile, err := logging.Setup(cfg.LogPath)
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Printf("Starting gridiron_hub for %s (team %d, league %d, season %d)",
		cfg.Team.Name, cfg.Team.ID, cfg.Team.LeagueID, cfg.Team.Season)

	ctx := context.Background()

	clients := httputil.NewClients()
	client := apisports.NewClient(clients.Provider, cfg.APISports)

	store, err := storage.NewPostgresStore(ctx, cfg.Database.URL, cfg.Team)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer store.Close()

	queue, err := storage.NewTaskQueue(cfg.QueuePath)
	if err != nil {
		log.Fatalf("Failed to open task queue: %v", err)
	}
	defer queue.Close()
	log.Printf("Task queue: %s", cfg.QueuePath)

	runner := tasks.NewRunner(client, store, queue, cfg)

	if cfg.Archive.Enabled() {
		archiver, err := storage.NewSnapshotArchiver(ctx, cfg.Archive, clients.Archive)
		if err != nil {
			log.Printf("Warning: snapshot archiving disabled: %v", err)
		} else {
			runner.SetArchiver(archiver)
			log.Printf("Archiving raw snapshots to s3://%s", cfg.Archive.Bucket)
		}
	}

	if runOneShot(ctx, runner, *season) {
		return
	}

	sched := scheduler.New(cfg, queue, runner)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()
	log.Println("Goodbye!")
}

// runOneShot executes a single job when one of the one-shot flags is set.
// Returns true when a one-shot ran.
func runOneShot(ctx context.Context, runner *tasks.Runner, season int) bool {
	var result models.TaskResult
	switch {
	case *rosterNow:
		result = runner.UpdateRoster(ctx, season)
	case *gamesNow:
		result = runner.UpdateGames(ctx, season)
	case *postgameNow:
		result = runner.UpdateStatsPostgame(ctx, season, true)
	case *liveNow:
		result = runner.UpdateLiveStats(ctx, season)
	default:
		return false
	}

	log.Printf("Result: %s", result.ToJSON())
	if !result.Success {
		os.Exit(1)
	}
	return true
}
