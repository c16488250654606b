package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/braindev/assets"
	"github.com/robalobadob/braindev/internal/database"
)

// fakeClock is a settable clock shared by every session of a test server.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	srv    *Server
	ts     *httptest.Server
	client *http.Client
	clock  *fakeClock
}

func newTestEnv(t *testing.T, clock *fakeClock) *testEnv {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err := database.Migrate(db, assets.Migrations()); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.JWTSecret = "test_secret"
	if clock != nil {
		cfg.Now = clock.Now
	}
	srv := New(cfg, db)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
		db.Close()
	})
	return &testEnv{srv: srv, ts: ts, client: newClient(t), clock: clock}
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{Jar: jar}
}

// call sends body as JSON and decodes the response into out (when non-nil).
func (e *testEnv) call(t *testing.T, c *http.Client, method, path string, body, out any) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.ts.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := c.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return res.StatusCode
}

func TestHealthAndCatalog(t *testing.T) {
	e := newTestEnv(t, nil)

	var health map[string]bool
	if code := e.call(t, e.client, "GET", "/health", nil, &health); code != 200 || !health["ok"] {
		t.Fatalf("health = %d %v", code, health)
	}

	var games []struct {
		Kind      string   `json:"kind"`
		HowToPlay []string `json:"howToPlay"`
	}
	e.call(t, e.client, "GET", "/games", nil, &games)
	if len(games) != 4 || games[0].Kind != "train" || len(games[3].HowToPlay) != 4 {
		t.Errorf("games = %+v", games)
	}
	if code := e.call(t, e.client, "GET", "/games/chess", nil, nil); code != 404 {
		t.Errorf("unknown kind status = %d", code)
	}
	var nf map[string]string
	if code := e.call(t, e.client, "GET", "/nope", nil, &nf); code != 404 || nf["error"] != "not_found" {
		t.Errorf("404 = %d %v", code, nf)
	}
}

func TestAuthFlow(t *testing.T) {
	e := newTestEnv(t, nil)
	creds := map[string]string{"username": "dana", "password": "password123"}

	if code := e.call(t, e.client, "GET", "/auth/me", nil, nil); code != 401 {
		t.Errorf("me without token = %d", code)
	}
	if code := e.call(t, e.client, "POST", "/auth/signup", creds, nil); code != 200 {
		t.Fatalf("signup = %d", code)
	}
	var me authUser
	if code := e.call(t, e.client, "GET", "/auth/me", nil, &me); code != 200 || me.Username != "dana" {
		t.Fatalf("me = %d %+v", code, me)
	}
	if code := e.call(t, newClient(t), "POST", "/auth/signup", creds, nil); code != 409 {
		t.Errorf("duplicate signup = %d", code)
	}
	bad := map[string]string{"username": "dana", "password": "wrongpass1"}
	if code := e.call(t, newClient(t), "POST", "/auth/login", bad, nil); code != 401 {
		t.Errorf("bad login = %d", code)
	}
	if code := e.call(t, newClient(t), "POST", "/auth/login", creds, nil); code != 200 {
		t.Errorf("login = %d", code)
	}
	e.call(t, e.client, "POST", "/auth/logout", nil, nil)
	if code := e.call(t, e.client, "GET", "/stats/me", nil, nil); code != 401 {
		t.Errorf("stats after logout = %d", code)
	}

	req, _ := http.NewRequest("GET", e.ts.URL+"/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != 401 {
		t.Errorf("garbage bearer = %d", res.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	e := newTestEnv(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/train/new", nil)
	rr := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Errorf("preflight = %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow origin = %q", got)
	}
}
