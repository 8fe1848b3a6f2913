package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	APISports APISportsConfig
	Database  DatabaseConfig
	Archive   ArchiveConfig
	Scheduler SchedulerConfig
	Team      TeamConfig
	QueuePath string
	LogPath   string
}

type APISportsConfig struct {
	Key     string
	BaseURL string
}

type DatabaseConfig struct {
	URL string
}

type ArchiveConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

type SchedulerConfig struct {
	RosterCron     string
	GamesCron      string
	PostgameCron   string
	LiveFallback   time.Duration
	LiveReschedule time.Duration
	Workers        int
}

// TeamConfig identifies the tracked franchise and the provider status codes
// that mark a game as over. The terminal set is provider-specific, so it
// lives in configuration rather than code.
type TeamConfig struct {
	ID               int      `yaml:"id"`
	Name             string   `yaml:"name"`
	LeagueID         int      `yaml:"league_id"`
	Season           int      `yaml:"season"`
	TerminalStatuses []string `yaml:"terminal_statuses"`
}

// IsTerminal reports whether a game status code means the game is over or
// will not be played.
func (t TeamConfig) IsTerminal(status string) bool {
	for _, s := range t.TerminalStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type teamFile struct {
	Team      TeamConfig `yaml:"team"`
	Scheduler struct {
		RosterCron     string `yaml:"roster_cron"`
		GamesCron      string `yaml:"games_cron"`
		PostgameCron   string `yaml:"postgame_cron"`
		LiveFallback   string `yaml:"live_fallback"`
		LiveReschedule string `yaml:"live_reschedule"`
		Workers        int    `yaml:"workers"`
	} `yaml:"scheduler"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APISports: APISportsConfig{
			Key:     os.Getenv("API_SPORTS_KEY"),
			BaseURL: getEnv("API_SPORTS_URL", "https://v1.american-football.api-sports.io"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Archive: ArchiveConfig{
			Bucket:          os.Getenv("ARCHIVE_BUCKET"),
			Region:          getEnv("ARCHIVE_REGION", "us-east-1"),
			Endpoint:        os.Getenv("ARCHIVE_ENDPOINT"),
			AccessKeyID:     os.Getenv("ARCHIVE_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("ARCHIVE_SECRET_ACCESS_KEY"),
		},
		Scheduler: SchedulerConfig{
			RosterCron:     getEnv("ROSTER_CRON", "0 2 * * 1"),
			GamesCron:      getEnv("GAMES_CRON", "30 2 * * 2"),
			PostgameCron:   getEnv("POSTGAME_CRON", "*/15 0-6,20-23 * * 0,1"),
			LiveFallback:   getEnvDuration("LIVE_FALLBACK", 5*time.Minute),
			LiveReschedule: getEnvDuration("LIVE_RESCHEDULE", 30*time.Second),
			Workers:        getEnvInt("QUEUE_WORKERS", 2),
		},
		Team: TeamConfig{
			ID:               getEnvInt("TEAM_ID", 15),
			Name:             getEnv("TEAM_NAME", "Green Bay Packers"),
			LeagueID:         getEnvInt("LEAGUE_ID", 1),
			Season:           getEnvInt("SEASON", time.Now().Year()),
			TerminalStatuses: []string{"FT", "AOT", "CANC", "PST"},
		},
		QueuePath: getEnv("QUEUE_PATH", "tasks.db"),
		LogPath:   getEnv("LOG_PATH", "daemon.log"),
	}

	if err := cfg.loadTeamFile(); err != nil {
		return nil, err
	}

	// Absence of the provider key is a startup error, not a per-call error.
	if cfg.APISports.Key == "" {
		return nil, fmt.Errorf("API_SPORTS_KEY is not set")
	}
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	return cfg, nil
}

// loadTeamFile overlays config/team.yaml when present. The file wins over env
// defaults for the team block and any schedule fields it sets.
func (c *Config) loadTeamFile() error {
	path := getEnv("TEAM_CONFIG", "config/team.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var f teamFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if f.Team.ID != 0 {
		c.Team.ID = f.Team.ID
	}
	if f.Team.Name != "" {
		c.Team.Name = f.Team.Name
	}
	if f.Team.LeagueID != 0 {
		c.Team.LeagueID = f.Team.LeagueID
	}
	if f.Team.Season != 0 {
		c.Team.Season = f.Team.Season
	}
	if len(f.Team.TerminalStatuses) > 0 {
		c.Team.TerminalStatuses = f.Team.TerminalStatuses
	}
	if f.Scheduler.RosterCron != "" {
		c.Scheduler.RosterCron = f.Scheduler.RosterCron
	}
	if f.Scheduler.GamesCron != "" {
		c.Scheduler.GamesCron = f.Scheduler.GamesCron
	}
	if f.Scheduler.PostgameCron != "" {
		c.Scheduler.PostgameCron = f.Scheduler.PostgameCron
	}
	if f.Scheduler.LiveFallback != "" {
		d, err := time.ParseDuration(f.Scheduler.LiveFallback)
		if err != nil {
			return fmt.Errorf("parse live_fallback: %w", err)
		}
		c.Scheduler.LiveFallback = d
	}
	if f.Scheduler.LiveReschedule != "" {
		d, err := time.ParseDuration(f.Scheduler.LiveReschedule)
		if err != nil {
			return fmt.Errorf("parse live_reschedule: %w", err)
		}
		c.Scheduler.LiveReschedule = d
	}
	if f.Scheduler.Workers > 0 {
		c.Scheduler.Workers = f.Scheduler.Workers
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
