package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/iamasit07/blog/backend/internal/repository/memory"
	"github.com/iamasit07/blog/backend/internal/service/post"
	"github.com/iamasit07/blog/backend/internal/service/session"
	transporthttp "github.com/iamasit07/blog/backend/internal/transport/http"
	"github.com/iamasit07/blog/backend/pkg/auth"
	"github.com/iamasit07/blog/backend/pkg/httputil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testEnv wires the full router over in-memory stores. The issuer clock can
// be shifted to mint tokens that are already expired.
type testEnv struct {
	Router   *gin.Engine
	Sessions *memory.SessionStore

	clockMu sync.Mutex
	offset  time.Duration
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, nil)
}

// newTestEnvWithStore lets a test put wrap in front of the memory session
// store, e.g. to inject store failures. A nil wrap uses the store directly.
func newTestEnvWithStore(t *testing.T, wrap func(*memory.SessionStore) session.SessionStore) *testEnv {
	t.Helper()
	env := &testEnv{}

	issuer := auth.NewIssuer("access-secret", "refresh-secret", 15*time.Minute, 0).
		WithClock(env.now)
	env.Sessions = memory.NewSessionStore()
	var sessions session.SessionStore = env.Sessions
	if wrap != nil {
		sessions = wrap(env.Sessions)
	}
	authSvc := session.NewAuthService(memory.NewUserRepo(), sessions, issuer, auth.NewHasher(bcrypt.MinCost))
	postSvc := post.NewService(memory.NewPostRepo(), nil)

	env.Router = transporthttp.NewRouter(transporthttp.RouterConfig{
		Auth:           transporthttp.NewAuthHandler(authSvc, httputil.CookiePolicy{}),
		Posts:          transporthttp.NewPostHandler(postSvc),
		AllowedOrigins: []string{"http://localhost:5173"},
	})
	return env
}

func (e *testEnv) now() time.Time {
	e.clockMu.Lock()
	defer e.clockMu.Unlock()
	return time.Now().Add(e.offset)
}

func (e *testEnv) shiftClock(d time.Duration) {
	e.clockMu.Lock()
	defer e.clockMu.Unlock()
	e.offset = d
}

type loginResponse struct {
	User struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
	AccessToken string `json:"accessToken"`
}

type request struct {
	method string
	path   string
	body   string
	bearer string
	cookie *http.Cookie
	header map[string]string
}

func (e *testEnv) do(r request) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if r.body != "" {
		body = bytes.NewReader([]byte(r.body))
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(r.method, r.path, body)
	if r.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+r.bearer)
	}
	if r.cookie != nil {
		req.AddCookie(r.cookie)
	}
	for k, v := range r.header {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) register(t *testing.T, email, username, password string) {
	t.Helper()
	body := `{"email":"` + email + `","username":"` + username + `","password":"` + password + `"}`
	rec := e.do(request{method: http.MethodPost, path: "/register", body: body})
	expectStatus(t, http.StatusCreated, rec)
}

func (e *testEnv) login(t *testing.T, email, password string) (loginResponse, *http.Cookie) {
	t.Helper()
	body := `{"email":"` + email + `","password":"` + password + `"}`
	rec := e.do(request{method: http.MethodPost, path: "/login", body: body})
	expectStatus(t, http.StatusOK, rec)

	var resp loginResponse
	decode(t, rec, &resp)
	cookie := findCookie(rec, httputil.RefreshCookieName)
	if cookie == nil {
		t.Fatal("login did not set the refresh cookie")
	}
	return resp, cookie
}

func expectStatus(t *testing.T, want int, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, strings.TrimSpace(rec.Body.String()))
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
