// Package igdb implements a minimal client for the IGDB game catalog API.
// IGDB authenticates with Twitch app-access tokens obtained through the
// client-credentials grant; the client caches the token until shortly before
// it expires.
package igdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/checkpoint/api/config"
)

var (
	// ErrUnavailable is returned when IGDB is unreachable, rate limiting, or
	// returning server errors
	ErrUnavailable = errors.New("igdb unavailable")

	// ErrNotFound is returned when no game matches the requested ID
	ErrNotFound = errors.New("igdb game not found")
)

// Game is a game record as returned by IGDB
type Game struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Summary          string `json:"summary"`
	FirstReleaseDate int64  `json:"first_release_date"` // unix seconds
	Cover            *Cover `json:"cover"`
}

// Cover is a game cover image reference
type Cover struct {
	URL string `json:"url"`
}

// ReleaseDate converts the unix release timestamp, or nil when unset
func (g *Game) ReleaseDate() *time.Time {
	if g.FirstReleaseDate == 0 {
		return nil
	}
	t := time.Unix(g.FirstReleaseDate, 0).UTC()
	return &t
}

// CoverURL returns the cover image URL, or "" when the game has no cover
func (g *Game) CoverURL() string {
	if g.Cover == nil {
		return ""
	}
	return g.Cover.URL
}

// tokenResponse is the Twitch OAuth2 client-credentials response
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// Client queries the IGDB API
type Client struct {
	cfg        config.IGDBConfig
	httpClient *http.Client
	logger     *zap.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a new IGDB client
func NewClient(cfg config.IGDBConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		logger: logger,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

const gameFields = "fields id,name,summary,first_release_date,cover.url;"

// Search searches IGDB for games matching the query
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Game, error) {
	body := fmt.Sprintf("search %q; %s limit %d;", query, gameFields, limit)
	return c.queryGames(ctx, body)
}

// GetByID fetches a single game by its IGDB identifier
func (c *Client) GetByID(ctx context.Context, externalID int64) (*Game, error) {
	body := fmt.Sprintf("%s where id = %d; limit 1;", gameFields, externalID)
	games, err := c.queryGames(ctx, body)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, ErrNotFound
	}
	return &games[0], nil
}

// queryGames posts an APIcalypse query to the /games endpoint
func (c *Client) queryGames(ctx context.Context, query string) ([]Game, error) {
	token, err := c.appToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/games", bytes.NewBufferString(query))
	if err != nil {
		return nil, fmt.Errorf("create igdb request: %w", err)
	}
	req.Header.Set("Client-ID", c.cfg.ClientID)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("igdb request failed", zap.Error(err))
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read igdb response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("igdb returned error status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody))
		return nil, ErrUnavailable
	}

	var games []Game
	if err := json.Unmarshal(respBody, &games); err != nil {
		return nil, fmt.Errorf("parse igdb response: %w", err)
	}
	return games, nil
}

// appToken returns a valid Twitch app-access token, requesting a new one when
// the cached token is missing or about to expire.
func (c *Client) appToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	data := url.Values{
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"grant_type":    {"client_credentials"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.TokenURL, bytes.NewBufferString(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("twitch token request failed", zap.Error(err))
		return "", ErrUnavailable
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("twitch token exchange failed",
			zap.Int("status", resp.StatusCode))
		return "", ErrUnavailable
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(respBody, &tokenResp); err != nil {
		return "", fmt.Errorf("parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("no access_token in response")
	}

	c.accessToken = tokenResp.AccessToken
	// renew one minute early
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - time.Minute)

	return c.accessToken, nil
}
