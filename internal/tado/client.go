package tado

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrNoRefreshToken       = errors.New("no refresh token available")
	ErrAuthorizationPending = errors.New("authorization pending")
)

const (
	defaultAuthURL = "https://login.tado.com/oauth2"
	defaultAPIURL  = "https://my.tado.com/api/v2"
	defaultHopsURL = "https://hops.tado.com"

	// offline_access is what gets us a refresh token for unattended polling
	deviceFlowScope = "offline_access home.user"
	deviceGrantType = "urn:ietf:params:oauth:grant-type:device_code"
)

// TokenStore persists the current token set across restarts
type TokenStore interface {
	Load() (*TokenSet, error)
	Save(tokens *TokenSet) error
}

// Config contains tado API endpoints and client identity
type Config struct {
	ClientID string
	AuthURL  string // OAuth endpoint, defaults to the tado login server
	APIURL   string // v2 REST API, defaults to my.tado.com
	HopsURL  string // hops API for rooms and heat pump, defaults to hops.tado.com
}

// Client talks to the tado cloud API. It owns the OAuth session: tokens are
// loaded from the store at construction time, refreshed transparently on 401
// and written back to the store on every change.
type Client struct {
	config     Config
	store      TokenStore
	httpClient *http.Client
	logger     *slog.Logger

	tokenMutex sync.RWMutex
	token      *TokenSet
}

// NewClient creates a tado client. A corrupt or missing persisted token is
// tolerated and leaves the client unauthenticated until a login completes.
func NewClient(config Config, store TokenStore, logger *slog.Logger) *Client {
	if config.AuthURL == "" {
		config.AuthURL = defaultAuthURL
	}
	if config.APIURL == "" {
		config.APIURL = defaultAPIURL
	}
	if config.HopsURL == "" {
		config.HopsURL = defaultHopsURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		config: config,
		store:  store,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}

	if store != nil {
		tokens, err := store.Load()
		if err != nil {
			logger.Warn("Failed to load persisted tokens, starting unauthenticated", "error", err)
		} else if tokens != nil {
			c.token = tokens
		}
	}

	return c
}

// IsAuthenticated reports whether a token set with an access token is held.
// It is a local presence check only and says nothing about token validity.
func (c *Client) IsAuthenticated() bool {
	c.tokenMutex.RLock()
	defer c.tokenMutex.RUnlock()
	return c.token != nil && c.token.AccessToken != ""
}

// StartDeviceAuthorization initiates the OAuth device flow. The returned
// user code and verification URI are shown to the user, who approves access
// in a browser while the caller polls PollForToken.
func (c *Client) StartDeviceAuthorization(ctx context.Context) (*DeviceAuthorization, error) {
	params := url.Values{}
	params.Set("client_id", c.config.ClientID)
	params.Set("scope", deviceFlowScope)

	var auth DeviceAuthorization
	if err := c.postForm(ctx, c.config.AuthURL+"/device_authorize", params, &auth); err != nil {
		return nil, fmt.Errorf("device authorization failed: %w", err)
	}

	return &auth, nil
}

// PollForToken exchanges a device code for a token set. While the user has
// not approved yet it returns ErrAuthorizationPending, which callers must
// treat as "keep polling" rather than failure. On success the tokens are
// persisted and installed as the active session.
func (c *Client) PollForToken(ctx context.Context, deviceCode string) (*TokenSet, error) {
	params := url.Values{}
	params.Set("client_id", c.config.ClientID)
	params.Set("grant_type", deviceGrantType)
	params.Set("device_code", deviceCode)

	var tokens TokenSet
	if err := c.postForm(ctx, c.config.AuthURL+"/token", params, &tokens); err != nil {
		return nil, err
	}

	if tokens.AccessToken == "" {
		return nil, errors.New("token response contained no access token")
	}

	c.installTokens(&tokens)
	return &tokens, nil
}

// GetMe fetches the account profile, including home identifiers
func (c *Client) GetMe(ctx context.Context) (*Me, error) {
	var me Me
	if err := c.getJSON(ctx, c.config.APIURL+"/me", &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// GetWeather fetches the weather report for a home
func (c *Client) GetWeather(ctx context.Context, homeID int) (*Weather, error) {
	var weather Weather
	if err := c.getJSON(ctx, fmt.Sprintf("%s/homes/%d/weather", c.config.APIURL, homeID), &weather); err != nil {
		return nil, err
	}
	return &weather, nil
}

// GetRooms fetches room sensor and heating state for a home
func (c *Client) GetRooms(ctx context.Context, homeID int) ([]Room, error) {
	var rooms []Room
	if err := c.getJSON(ctx, fmt.Sprintf("%s/homes/%d/rooms?ngsw-bypass=true", c.config.HopsURL, homeID), &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// GetHeatPump fetches the heat pump state for a home
func (c *Client) GetHeatPump(ctx context.Context, homeID int) (*HeatPump, error) {
	var heatPump HeatPump
	if err := c.getJSON(ctx, fmt.Sprintf("%s/homes/%d/heatPump?ngsw-bypass=true", c.config.HopsURL, homeID), &heatPump); err != nil {
		return nil, err
	}
	return &heatPump, nil
}

// getJSON performs an authorized GET and decodes the JSON response
func (c *Client) getJSON(ctx context.Context, requestURL string, v interface{}) error {
	resp, err := c.authorizedRequest(ctx, http.MethodGet, requestURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request to %s failed with status %d: %s", requestURL, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", requestURL, err)
	}

	return nil
}

// authorizedRequest sends a request with the current access token attached.
// On a 401 it refreshes the token and retries exactly once; a second 401 is
// returned to the caller as-is. The single retry bounds refresh attempts
// under sustained rejection.
func (c *Client) authorizedRequest(ctx context.Context, method, requestURL string) (*http.Response, error) {
	c.tokenMutex.RLock()
	token := c.token
	c.tokenMutex.RUnlock()

	if token == nil || token.AccessToken == "" {
		return nil, ErrNotAuthenticated
	}

	resp, err := c.doBearer(ctx, method, requestURL, token.AccessToken)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	c.logger.Info("Access token rejected, refreshing", "url", requestURL)
	accessToken, err := c.refreshTokens(ctx)
	if err != nil {
		return nil, err
	}

	retry, err := c.doBearer(ctx, method, requestURL, accessToken)
	if err != nil {
		return nil, err
	}
	if retry.StatusCode == http.StatusUnauthorized {
		retry.Body.Close()
		c.tokenMutex.Lock()
		c.token = nil
		c.tokenMutex.Unlock()
		return nil, fmt.Errorf("%w: request unauthorized after token refresh", ErrNotAuthenticated)
	}

	return retry, nil
}

func (c *Client) doBearer(ctx context.Context, method, requestURL, accessToken string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// refreshTokens exchanges the refresh token for a fresh token set and
// persists it. On any failure the in-memory session is dropped so that
// IsAuthenticated reads false until a new login completes; the stored file
// is left in place for diagnostics.
func (c *Client) refreshTokens(ctx context.Context) (string, error) {
	c.tokenMutex.Lock()
	defer c.tokenMutex.Unlock()

	if c.token == nil || c.token.RefreshToken == "" {
		c.token = nil
		return "", ErrNoRefreshToken
	}

	params := url.Values{}
	params.Set("client_id", c.config.ClientID)
	params.Set("grant_type", "refresh_token")
	params.Set("refresh_token", c.token.RefreshToken)

	var tokens TokenSet
	if err := c.postForm(ctx, c.config.AuthURL+"/token", params, &tokens); err != nil {
		c.token = nil
		return "", fmt.Errorf("token refresh failed: %w", err)
	}

	c.token = &tokens
	c.saveTokens(&tokens)

	return tokens.AccessToken, nil
}

// installTokens sets the active token set and persists it
func (c *Client) installTokens(tokens *TokenSet) {
	c.tokenMutex.Lock()
	c.token = tokens
	c.tokenMutex.Unlock()

	c.saveTokens(tokens)
}

func (c *Client) saveTokens(tokens *TokenSet) {
	if c.store == nil {
		return
	}
	if err := c.store.Save(tokens); err != nil {
		// The token is still live in memory, so keep going.
		c.logger.Warn("Failed to persist tokens", "error", err)
	}
}

// oauthError is the error body returned by the tado auth server
type oauthError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// postForm sends a form-encoded POST to the auth server and decodes the JSON
// response. OAuth-level rejections arrive as non-2xx responses with an error
// body; authorization_pending is surfaced as its sentinel.
func (c *Client) postForm(ctx context.Context, requestURL string, params url.Values, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var oerr oauthError
		if json.Unmarshal(body, &oerr) == nil && oerr.Error != "" {
			if oerr.Error == "authorization_pending" {
				return ErrAuthorizationPending
			}
			if oerr.ErrorDescription != "" {
				return fmt.Errorf("auth server returned %s: %s", oerr.Error, oerr.ErrorDescription)
			}
			return fmt.Errorf("auth server returned %s", oerr.Error)
		}
		return fmt.Errorf("auth server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
