package apisports

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"gridiron_hub/config"
)

// Client talks to the API-Sports american-football API. It holds no
// per-call state; the http.Client is constructed once at process start and
// shared for the lifetime of the daemon.
type Client struct {
	httpClient *http.Client
	baseURL    string
	key        string
}

func NewClient(httpClient *http.Client, cfg config.APISportsConfig) *Client {
	if httpClient == nil {
		// Programming error: the shared client is supposed to be built in
		// main before anything else is wired.
		panic("apisports: nil http client")
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		key:        cfg.Key,
	}
}

// get issues one authenticated GET and decodes the standard {response: [...]}
// envelope. Network failures, non-200 statuses, and malformed bodies come
// back as classified errors; this function never panics on provider input.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]json.RawMessage, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &UnexpectedError{Message: err.Error()}
	}
	req.Header.Set("x-apisports-key", c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		log.Printf("apisports: %s returned %d", path, resp.StatusCode)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnexpectedError{Message: fmt.Sprintf("read body: %v", err)}
	}

	var envelope struct {
		Response []json.RawMessage `json:"response"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &UnexpectedError{Message: fmt.Sprintf("decode %s response: %v", path, err)}
	}

	return envelope.Response, nil
}

// Teams lists the league's teams for a season.
func (c *Client) Teams(ctx context.Context, league, season int) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("league", strconv.Itoa(league))
	params.Set("season", strconv.Itoa(season))
	return c.get(ctx, "/teams", params)
}

// TeamRoster fetches the raw roster list for a team and season. Callers run
// DecodeRosterEntries to apply the object check.
func (c *Client) TeamRoster(ctx context.Context, teamID, season int) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("team", strconv.Itoa(teamID))
	params.Set("season", strconv.Itoa(season))
	return c.get(ctx, "/players", params)
}

// SearchPlayers searches players by name within a league and season.
func (c *Client) SearchPlayers(ctx context.Context, name string, league, season int) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("search", name)
	params.Set("league", strconv.Itoa(league))
	params.Set("season", strconv.Itoa(season))
	return c.get(ctx, "/players", params)
}

// TeamGames fetches the raw schedule for a team and season. Callers run
// DecodeScheduledGames.
func (c *Client) TeamGames(ctx context.Context, teamID, season int) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("team", strconv.Itoa(teamID))
	params.Set("season", strconv.Itoa(season))
	return c.get(ctx, "/games", params)
}

// LiveGames fetches every game currently in progress in the league.
func (c *Client) LiveGames(ctx context.Context, league, season int) ([]LiveGame, error) {
	params := url.Values{}
	params.Set("live", "all")
	params.Set("league", strconv.Itoa(league))
	params.Set("season", strconv.Itoa(season))

	raws, err := c.get(ctx, "/games", params)
	if err != nil {
		return nil, err
	}
	return decodeLiveGames(raws), nil
}

// PlayerStatistics fetches season-aggregate stats for one player. Elements
// that do not decode to the expected shape are dropped.
func (c *Client) PlayerStatistics(ctx context.Context, playerID, season int) ([]PlayerSeasonStats, error) {
	params := url.Values{}
	params.Set("id", strconv.Itoa(playerID))
	params.Set("season", strconv.Itoa(season))

	raws, err := c.get(ctx, "/players/statistics", params)
	if err != nil {
		return nil, err
	}

	var out []PlayerSeasonStats
	for _, raw := range raws {
		var ps PlayerSeasonStats
		if err := json.Unmarshal(raw, &ps); err != nil {
			log.Printf("apisports: skipping malformed player stats element: %v", err)
			continue
		}
		out = append(out, ps)
	}
	return out, nil
}

// GamePlayerStatistics fetches per-player stat groups for one game, covering
// every player on both teams.
func (c *Client) GamePlayerStatistics(ctx context.Context, gameID int) ([]GameTeamStats, error) {
	params := url.Values{}
	params.Set("id", strconv.Itoa(gameID))

	raws, err := c.get(ctx, "/games/players", params)
	if err != nil {
		return nil, err
	}

	var out []GameTeamStats
	for _, raw := range raws {
		var ts GameTeamStats
		if err := json.Unmarshal(raw, &ts); err != nil {
			log.Printf("apisports: skipping malformed game stats element: %v", err)
			continue
		}
		out = append(out, ts)
	}
	return out, nil
}
