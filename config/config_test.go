package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_RequiresKeyAndDatabase(t *testing.T) {
	t.Setenv("API_SPORTS_KEY", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TEAM_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Fatalf("expected error without API_SPORTS_KEY")
	}

	t.Setenv("API_SPORTS_KEY", "abc")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_SPORTS_KEY", "abc")
	t.Setenv("DATABASE_URL", "postgres://localhost/hub")
	t.Setenv("TEAM_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Team.ID != 15 {
		t.Fatalf("expected default team 15, got %d", cfg.Team.ID)
	}
	if cfg.Team.Name != "Green Bay Packers" {
		t.Fatalf("expected default team name, got %s", cfg.Team.Name)
	}
	if cfg.Team.LeagueID != 1 {
		t.Fatalf("expected default league 1, got %d", cfg.Team.LeagueID)
	}
	if cfg.Scheduler.LiveFallback != 5*time.Minute {
		t.Fatalf("expected 5m live fallback, got %v", cfg.Scheduler.LiveFallback)
	}
	if cfg.Scheduler.LiveReschedule != 30*time.Second {
		t.Fatalf("expected 30s reschedule, got %v", cfg.Scheduler.LiveReschedule)
	}
	if cfg.Scheduler.Workers != 2 {
		t.Fatalf("expected 2 workers, got %d", cfg.Scheduler.Workers)
	}
	if cfg.APISports.BaseURL != "https://v1.american-football.api-sports.io" {
		t.Fatalf("unexpected base url %s", cfg.APISports.BaseURL)
	}
}

func TestLoad_TeamFileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "team.yaml")
	yaml := `
team:
  id: 7
  name: Dallas Cowboys
  season: 2023
  terminal_statuses: ["FT", "CANC"]
scheduler:
  live_fallback: 2m
  live_reschedule: 45s
  workers: 4
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write team file: %v", err)
	}

	t.Setenv("API_SPORTS_KEY", "abc")
	t.Setenv("DATABASE_URL", "postgres://localhost/hub")
	t.Setenv("TEAM_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Team.ID != 7 || cfg.Team.Name != "Dallas Cowboys" {
		t.Fatalf("expected team overlay applied, got %+v", cfg.Team)
	}
	if cfg.Team.Season != 2023 {
		t.Fatalf("expected season 2023, got %d", cfg.Team.Season)
	}
	if len(cfg.Team.TerminalStatuses) != 2 {
		t.Fatalf("expected overridden terminal set, got %v", cfg.Team.TerminalStatuses)
	}
	if cfg.Scheduler.LiveFallback != 2*time.Minute {
		t.Fatalf("expected 2m fallback, got %v", cfg.Scheduler.LiveFallback)
	}
	if cfg.Scheduler.LiveReschedule != 45*time.Second {
		t.Fatalf("expected 45s reschedule, got %v", cfg.Scheduler.LiveReschedule)
	}
	if cfg.Scheduler.Workers != 4 {
		t.Fatalf("expected 4 workers, got %d", cfg.Scheduler.Workers)
	}
	// League keeps its default when the file omits it.
	if cfg.Team.LeagueID != 1 {
		t.Fatalf("expected default league preserved, got %d", cfg.Team.LeagueID)
	}
}

func TestIsTerminal(t *testing.T) {
	team := TeamConfig{TerminalStatuses: []string{"FT", "AOT", "CANC", "PST"}}
	for _, status := range []string{"FT", "AOT", "CANC", "PST"} {
		if !team.IsTerminal(status) {
			t.Fatalf("expected %s to be terminal", status)
		}
	}
	for _, status := range []string{"Q1", "Q4", "HT", "OT", "NS", ""} {
		if team.IsTerminal(status) {
			t.Fatalf("expected %s to be non-terminal", status)
		}
	}
}
