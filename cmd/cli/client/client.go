// Package client is a small resty-based client for the Reminders JSON API.
package client

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/crucial707/reminders/internal/models"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s (HTTP %d): %s", msg, e.Status, strings.Join(parts, ", "))
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// LoginResult is the body of a successful POST /api/login.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type Client struct {
	r *resty.Client
}

// New returns a client for baseURL. token is sent as a Bearer token when non-empty.
func New(baseURL, token string) *Client {
	r := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(10*time.Second).
		SetHeader("Accept", "application/json").
		SetRedirectPolicy(resty.NoRedirectPolicy())
	if token != "" {
		r.SetAuthToken(token)
	}
	return &Client{r: r}
}

func (c *Client) ListReminders() ([]models.Reminder, error) {
	var out []models.Reminder
	if err := c.do(c.r.R().SetResult(&out), http.MethodGet, "/api/reminders"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateReminder(in models.ReminderInput) (*models.Reminder, error) {
	var out models.Reminder
	if err := c.do(c.r.R().SetBody(in).SetResult(&out), http.MethodPost, "/api/reminders/create"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetReminder(id int) (*models.Reminder, error) {
	var out models.Reminder
	if err := c.do(c.r.R().SetResult(&out), http.MethodGet, "/api/reminders/"+strconv.Itoa(id)); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(username, password string) (*LoginResult, error) {
	var out LoginResult
	body := map[string]string{"username": username, "password": password}
	if err := c.do(c.r.R().SetBody(body).SetResult(&out), http.MethodPost, "/api/login"); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("login succeeded but no token returned")
	}
	return &out, nil
}

// Logout ends the session behind the client's token.
func (c *Client) Logout() error {
	return c.do(c.r.R(), http.MethodPost, "/api/logout")
}

func (c *Client) Me() (*models.User, error) {
	var out models.User
	if err := c.do(c.r.R().SetResult(&out), http.MethodGet, "/api/me"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(req *resty.Request, method, path string) error {
	resp, err := req.SetError(&errorBody{}).Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if !resp.IsError() {
		return nil
	}
	apiErr := &APIError{Status: resp.StatusCode()}
	if body, ok := resp.Error().(*errorBody); ok && body != nil {
		apiErr.Message = body.Error
		apiErr.Fields = body.Fields
	}
	return apiErr
}
