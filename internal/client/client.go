// Package client is the HTTP accessor layer for the nutrition API. Each
// method performs one request and decodes one response; caching and
// optimistic updates live in CachedClient.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jmoreau/nutritrack/internal/listquery"
	"github.com/jmoreau/nutritrack/internal/models"
	"github.com/jmoreau/nutritrack/internal/service"
)

// Client talks to a running nutrition API server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a Client for the given server base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token after login.
func (c *Client) SetToken(token string) { c.token = token }

type errorResponse struct {
	Error string `json:"error"`
}

// do performs one request and decodes the response into out when non-nil.
// Error statuses map onto the shared error taxonomy with the server's
// message attached.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr errorResponse
		raw, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(raw, &apiErr)
		return statusError(resp.StatusCode, apiErr.Error)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func statusError(status int, message string) error {
	var sentinel error
	switch status {
	case http.StatusBadRequest:
		sentinel = service.ErrInvalid
	case http.StatusForbidden:
		sentinel = service.ErrDenied
	case http.StatusNotFound:
		sentinel = service.ErrNotFound
	case http.StatusConflict:
		sentinel = service.ErrConflict
	case http.StatusRequestEntityTooLarge:
		sentinel = service.ErrPayloadTooLarge
	case http.StatusUnsupportedMediaType:
		sentinel = service.ErrUnsupportedMedia
	default:
		if message == "" {
			return fmt.Errorf("server returned status %d", status)
		}
		return fmt.Errorf("server error: %s", message)
	}
	if message == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, message)
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Register creates an account and stores the returned token.
func (c *Client) Register(ctx context.Context, email, password, login string) error {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"login":    login,
	}, &resp)
	if err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

// Login authenticates and stores the returned token.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

// ListAliments fetches one catalog page for the given parameters.
func (c *Client) ListAliments(ctx context.Context, p listquery.Params) (models.AlimentPage, error) {
	var page models.AlimentPage
	path := "/api/v1/aliments"
	if encoded := p.Encode().Encode(); encoded != "" {
		path += "?" + encoded
	}
	err := c.do(ctx, http.MethodGet, path, nil, &page)
	return page, err
}

// Categories fetches the distinct catalog categories.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var resp struct {
		Categories []string `json:"categories"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/aliments/categories", nil, &resp)
	return resp.Categories, err
}

// GetAliment fetches one catalog entry.
func (c *Client) GetAliment(ctx context.Context, id uuid.UUID) (models.Aliment, error) {
	var a models.Aliment
	err := c.do(ctx, http.MethodGet, "/api/v1/aliments/"+id.String(), nil, &a)
	return a, err
}

// CreateAliment adds a catalog entry.
func (c *Client) CreateAliment(ctx context.Context, input service.AlimentInput) (models.Aliment, error) {
	var a models.Aliment
	err := c.do(ctx, http.MethodPost, "/api/v1/aliments", input, &a)
	return a, err
}

// UpdateAliment replaces a catalog entry.
func (c *Client) UpdateAliment(ctx context.Context, id uuid.UUID, input service.AlimentInput) (models.Aliment, error) {
	var a models.Aliment
	err := c.do(ctx, http.MethodPut, "/api/v1/aliments/"+id.String(), input, &a)
	return a, err
}

// DeleteAliment removes a catalog entry.
func (c *Client) DeleteAliment(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/aliments/"+id.String(), nil, nil)
}

// Preferences fetches the full preference map, aliment id to state.
func (c *Client) Preferences(ctx context.Context) (map[string]string, error) {
	var resp struct {
		Preferences map[string]string `json:"preferences"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/preferences", nil, &resp)
	return resp.Preferences, err
}

// SetPreference stores a preference state for an aliment.
func (c *Client) SetPreference(ctx context.Context, alimentID uuid.UUID, preference string) error {
	return c.do(ctx, http.MethodPut, "/api/v1/preferences/"+alimentID.String(), map[string]string{
		"preference": preference,
	}, nil)
}

// ClearPreference removes a preference.
func (c *Client) ClearPreference(ctx context.Context, alimentID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/preferences/"+alimentID.String(), nil, nil)
}

// RecipeView is a recipe as rendered by the server, totals included.
type RecipeView struct {
	models.Recipe
	Totals models.RecipeTotals `json:"totals"`
}

// ListRecipes fetches the caller's recipes with computed totals.
func (c *Client) ListRecipes(ctx context.Context) ([]RecipeView, error) {
	var resp struct {
		Recipes []RecipeView `json:"recipes"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/recipes", nil, &resp)
	return resp.Recipes, err
}

// GetRecipe fetches one recipe with computed totals.
func (c *Client) GetRecipe(ctx context.Context, id uuid.UUID) (RecipeView, error) {
	var r RecipeView
	err := c.do(ctx, http.MethodGet, "/api/v1/recipes/"+id.String(), nil, &r)
	return r, err
}

// ProfileView is a profile as rendered by the server, signed avatar URL
// included when an avatar is set.
type ProfileView struct {
	models.Profile
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Profile fetches the caller's profile.
func (c *Client) Profile(ctx context.Context) (ProfileView, error) {
	var p ProfileView
	err := c.do(ctx, http.MethodGet, "/api/v1/profile", nil, &p)
	return p, err
}

// UpdateProfile applies a partial profile update.
func (c *Client) UpdateProfile(ctx context.Context, input service.ProfileInput) (ProfileView, error) {
	var p ProfileView
	err := c.do(ctx, http.MethodPut, "/api/v1/profile", input, &p)
	return p, err
}
