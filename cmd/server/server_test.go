package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/crucial707/reminders/internal/auth"
	"github.com/crucial707/reminders/internal/config"
	"github.com/crucial707/reminders/internal/repo/memstore"
	"github.com/crucial707/reminders/internal/seed"
	"github.com/crucial707/reminders/internal/storage"
)

type reminderJSON struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func testConfig() config.Config {
	return config.Config{
		Env:           config.EnvDev,
		Storage:       config.StorageMemory,
		BcryptCost:    bcrypt.MinCost,
		SessionCookie: "reminders_session",
		SessionTTL:    time.Hour,
		JWTSecret:     "test-secret-for-integration",
	}
}

// newTestServer builds the full router over an in-memory store seeded with tim/tim.
func newTestServer(t *testing.T) (*httptest.Server, *storage.Stores) {
	t.Helper()
	return newTestServerConfig(t, testConfig())
}

func newTestServerConfig(t *testing.T, cfg config.Config) (*httptest.Server, *storage.Stores) {
	t.Helper()
	stores := storage.FromMemory(memstore.New())
	if _, err := seed.DemoUser(context.Background(), stores.Users, auth.NewHasher(bcrypt.MinCost), "tim", "tim"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	r, err := newRouter(cfg, stores, zap.NewNop())
	if err != nil {
		t.Fatalf("newRouter: %v", err)
	}
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, stores
}

// newClient returns a client with its own cookie jar that does not follow redirects.
func newClient(srv *httptest.Server) *resty.Client {
	return resty.New().
		SetBaseURL(srv.URL).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))
}

func reminderCount(t *testing.T, stores *storage.Stores) int {
	t.Helper()
	n, err := stores.Reminders.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestAPI_CreateThenFetch(t *testing.T) {
	srv, stores := newTestServer(t)
	c := newClient(srv)

	var list []reminderJSON
	resp, err := c.R().SetResult(&list).Get("/api/reminders")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.StatusCode() != http.StatusOK || strings.TrimSpace(resp.String()) != "[]" {
		t.Fatalf("empty list: got %d %q, want 200 []", resp.StatusCode(), resp.String())
	}

	var created reminderJSON
	resp, err = c.R().
		SetBody(map[string]string{"title": "Dentist", "description": "Tuesday 9am"}).
		SetResult(&created).
		Post("/api/reminders/create")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.StatusCode() != http.StatusCreated || created.ID == 0 {
		t.Fatalf("create: got %d %s", resp.StatusCode(), resp.String())
	}

	var fetched reminderJSON
	resp, err = c.R().SetResult(&fetched).Get("/api/reminders/" + strconv.Itoa(created.ID))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode() != http.StatusOK {
		t.Fatalf("get status: got %d, want 200", resp.StatusCode())
	}
	if fetched.Title != "Dentist" || fetched.Description != "Tuesday 9am" {
		t.Errorf("fetched %+v, want the created reminder", fetched)
	}
	if n := reminderCount(t, stores); n != 1 {
		t.Errorf("count: got %d, want 1", n)
	}
}

func TestAPI_ValidationAndNotFound(t *testing.T) {
	srv, stores := newTestServer(t)
	c := newClient(srv)

	for _, body := range []string{`{"description":"no title"}`, `{}`, ``, `not json`} {
		resp, err := c.R().SetHeader("Content-Type", "application/json").SetBody(body).Post("/api/reminders/create")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if resp.StatusCode() != http.StatusBadRequest {
			t.Errorf("create %q: got %d, want 400", body, resp.StatusCode())
		}
	}
	if n := reminderCount(t, stores); n != 0 {
		t.Errorf("rejected creates changed the store: count %d", n)
	}

	for _, id := range []string{"1", "999", "abc"} {
		resp, err := c.R().Get("/api/reminders/" + id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if resp.StatusCode() != http.StatusNotFound {
			t.Errorf("GET /api/reminders/%s: got %d, want 404", id, resp.StatusCode())
		}
	}
}

func TestWeb_GateRedirectsAnonymous(t *testing.T) {
	srv, stores := newTestServer(t)
	c := newClient(srv)

	resp, err := c.R().Get("/create")
	if err != nil {
		t.Fatalf("GET /create: %v", err)
	}
	if resp.StatusCode() != http.StatusFound || resp.Header().Get("Location") != "/login?next=%2Fcreate" {
		t.Errorf("GET /create: got %d Location=%q", resp.StatusCode(), resp.Header().Get("Location"))
	}

	resp, err = c.R().SetFormData(map[string]string{"title": "t", "description": "d"}).Post("/create")
	if err != nil {
		t.Fatalf("POST /create: %v", err)
	}
	if resp.StatusCode() != http.StatusFound || !strings.HasPrefix(resp.Header().Get("Location"), "/login") {
		t.Errorf("POST /create: got %d Location=%q", resp.StatusCode(), resp.Header().Get("Location"))
	}
	if n := reminderCount(t, stores); n != 0 {
		t.Errorf("anonymous POST /create created a reminder")
	}
}

func TestWeb_LoginCreateFetch(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newClient(srv)

	resp, err := c.R().SetFormData(map[string]string{"username": "tim", "password": "tim", "next": "/create"}).Post("/login")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.StatusCode() != http.StatusFound || resp.Header().Get("Location") != "/create" {
		t.Fatalf("login: got %d Location=%q", resp.StatusCode(), resp.Header().Get("Location"))
	}

	resp, err = c.R().Get("/create")
	if err != nil {
		t.Fatalf("GET /create: %v", err)
	}
	if resp.StatusCode() != http.StatusOK {
		t.Fatalf("GET /create with session: got %d, want 200", resp.StatusCode())
	}

	resp, err = c.R().SetFormData(map[string]string{"title": "Groceries", "description": "eggs, bread"}).Post("/create")
	if err != nil {
		t.Fatalf("POST /create: %v", err)
	}
	location := resp.Header().Get("Location")
	if resp.StatusCode() != http.StatusFound || !strings.HasPrefix(location, "/reminder/") {
		t.Fatalf("POST /create: got %d Location=%q", resp.StatusCode(), location)
	}

	var fetched reminderJSON
	id := strings.TrimPrefix(location, "/reminder/")
	if _, err := c.R().SetResult(&fetched).Get("/api/reminders/" + id); err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Title != "Groceries" || fetched.Description != "eggs, bread" {
		t.Errorf("fetched %+v", fetched)
	}

	resp, err = c.R().Get(location)
	if err != nil || resp.StatusCode() != http.StatusOK || !strings.Contains(resp.String(), "Groceries") {
		t.Errorf("detail page: %v %d", err, resp.StatusCode())
	}

	resp, err = c.R().Post("/logout")
	if err != nil || resp.StatusCode() != http.StatusFound {
		t.Fatalf("logout: %v %d", err, resp.StatusCode())
	}
	resp, err = c.R().Get("/create")
	if err != nil || resp.StatusCode() != http.StatusFound {
		t.Errorf("GET /create after logout: %v %d, want 302", err, resp.StatusCode())
	}
}

func TestWeb_LoginFailuresIndistinguishable(t *testing.T) {
	srv, _ := newTestServer(t)

	bad, err := newClient(srv).R().SetFormData(map[string]string{"username": "tim", "password": "nope"}).Post("/login")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	unknown, err := newClient(srv).R().SetFormData(map[string]string{"username": "ghost", "password": "nope"}).Post("/login")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if bad.StatusCode() != http.StatusOK || unknown.StatusCode() != http.StatusOK {
		t.Errorf("status: bad=%d unknown=%d, want 200", bad.StatusCode(), unknown.StatusCode())
	}
	if bad.String() != unknown.String() {
		t.Errorf("responses differ between wrong password and unknown user")
	}
	if len(bad.Cookies()) != 0 || len(unknown.Cookies()) != 0 {
		t.Errorf("failed login set a cookie")
	}
}

func TestAPI_TokenLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newClient(srv)

	var login struct {
		Token string `json:"token"`
	}
	resp, err := c.R().SetBody(map[string]string{"username": "tim", "password": "tim"}).SetResult(&login).Post("/api/login")
	if err != nil || resp.StatusCode() != http.StatusOK || login.Token == "" {
		t.Fatalf("api login: %v %d %s", err, resp.StatusCode(), resp.String())
	}

	resp, _ = c.R().Get("/api/me")
	if resp.StatusCode() != http.StatusUnauthorized {
		t.Errorf("/api/me without token: got %d, want 401", resp.StatusCode())
	}

	resp, _ = c.R().SetAuthToken(login.Token).Get("/api/me")
	if resp.StatusCode() != http.StatusOK || !strings.Contains(resp.String(), `"username":"tim"`) {
		t.Errorf("/api/me: got %d %s", resp.StatusCode(), resp.String())
	}

	resp, _ = c.R().SetAuthToken(login.Token).Get("/api/audit")
	if resp.StatusCode() != http.StatusOK || !strings.Contains(resp.String(), `"action":"login"`) {
		t.Errorf("/api/audit: got %d %s", resp.StatusCode(), resp.String())
	}

	resp, _ = c.R().SetAuthToken(login.Token).Post("/api/logout")
	if resp.StatusCode() != http.StatusNoContent {
		t.Errorf("/api/logout: got %d, want 204", resp.StatusCode())
	}

	resp, _ = c.R().SetAuthToken(login.Token).Get("/api/me")
	if resp.StatusCode() != http.StatusUnauthorized {
		t.Errorf("/api/me after logout: got %d, want 401", resp.StatusCode())
	}

	resp, _ = c.R().SetBody(map[string]string{"username": "tim", "password": "bad"}).Post("/api/login")
	if resp.StatusCode() != http.StatusUnauthorized {
		t.Errorf("api login bad password: got %d, want 401", resp.StatusCode())
	}
}

func TestOps(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newClient(srv)

	for path, want := range map[string]string{"/health": "ok", "/ready": "ready"} {
		resp, err := c.R().Get(path)
		if err != nil || resp.StatusCode() != http.StatusOK || resp.String() != want {
			t.Errorf("GET %s: %v %d %q", path, err, resp.StatusCode(), resp.String())
		}
	}

	resp, err := c.R().Get("/metrics")
	if err != nil || resp.StatusCode() != http.StatusOK || !strings.Contains(resp.String(), "http_requests_total") {
		t.Errorf("GET /metrics: %v %d", err, resp.StatusCode())
	}

	resp, _ = c.R().Get("/api/nope")
	if resp.StatusCode() != http.StatusNotFound || !strings.Contains(resp.Header().Get("Content-Type"), "application/json") {
		t.Errorf("unknown API path: got %d %s", resp.StatusCode(), resp.Header().Get("Content-Type"))
	}
	resp, _ = c.R().Get("/nope")
	if resp.StatusCode() != http.StatusNotFound || !strings.Contains(resp.String(), "Page not found.") {
		t.Errorf("unknown page: got %d", resp.StatusCode())
	}
}

// badLogins posts n failing API logins, each with a different X-Real-IP, and counts 429s.
func badLogins(t *testing.T, cfg config.Config, n int) int {
	t.Helper()
	srv, _ := newTestServerConfig(t, cfg)
	c := newClient(srv)

	limited := 0
	for i := 0; i < n; i++ {
		resp, err := c.R().
			SetHeader("X-Real-IP", "203.0.113."+strconv.Itoa(i+1)).
			SetHeader("X-Forwarded-For", "198.51.100."+strconv.Itoa(i+1)).
			SetBody(map[string]string{"username": "tim", "password": "wrong"}).
			Post("/api/login")
		if err != nil {
			t.Fatalf("login %d: %v", i, err)
		}
		if resp.StatusCode() == http.StatusTooManyRequests {
			limited++
		}
	}
	return limited
}

func TestLoginRateLimit_IgnoresForwardedHeaders(t *testing.T) {
	cfg := testConfig()
	cfg.LoginRatePerMin = 10
	cfg.LoginBurst = 5

	if got := badLogins(t, cfg, 20); got < 15 {
		t.Errorf("spoofed client IPs: got %d/20 limited, want at least 15", got)
	}
}

func TestLoginRateLimit_TrustProxy(t *testing.T) {
	cfg := testConfig()
	cfg.LoginRatePerMin = 10
	cfg.LoginBurst = 5
	cfg.TrustProxy = true

	if got := badLogins(t, cfg, 20); got != 0 {
		t.Errorf("distinct forwarded IPs behind a trusted proxy: got %d/20 limited, want 0", got)
	}
}
