package dashboard

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folioadmin/folioadmin/internal/apiclient"
	"github.com/folioadmin/folioadmin/internal/config"
	"github.com/folioadmin/folioadmin/internal/content"
	"github.com/folioadmin/folioadmin/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeBackend is a tiny stand-in for the portfolio API
type fakeBackend struct {
	mu      sync.Mutex
	deleted []string
	expired bool
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}

	mux.HandleFunc("POST /user/login", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), `"password":"secret"`) {
			write(w, http.StatusOK, `{"token":"tok-123"}`)
			return
		}
		write(w, http.StatusUnauthorized, `{}`)
	})
	mux.HandleFunc("GET /blog", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, `{"data":[{"_id":"b1","title":"First post","category":"go"}]}`)
	})
	mux.HandleFunc("GET /exp", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		expired := b.expired
		b.mu.Unlock()
		if expired {
			write(w, http.StatusUnauthorized, `{"message":"jwt expired"}`)
			return
		}
		write(w, http.StatusOK, `[{"_id":"e1","designation":"Engineer","company":"Acme"}]`)
	})
	mux.HandleFunc("DELETE /exp/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.deleted = append(b.deleted, r.PathValue("id"))
		b.mu.Unlock()
		write(w, http.StatusOK, `{"message":"deleted"}`)
	})
	mux.HandleFunc("GET /project/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "p1" {
			write(w, http.StatusOK, `{"_id":"p1","title":"Folio","client":"Me"}`)
			return
		}
		write(w, http.StatusNotFound, `{"message":"Project not found"}`)
	})
	mux.HandleFunc("GET /subscribe/list", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			write(w, http.StatusUnauthorized, `{}`)
			return
		}
		write(w, http.StatusOK, `[{"_id":"s1","email":"fan@example.com"}]`)
	})
	mux.HandleFunc("POST /subscribe/send-newsletter", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, `{"message":"Newsletter sent"}`)
	})
	return mux
}

type testEnv struct {
	backend  *fakeBackend
	sessions *session.Store
	server   *Server
}

func newTestEnv(t *testing.T, token string, opts ...func(*config.Config)) *testEnv {
	t.Helper()

	backend := &fakeBackend{}
	api := httptest.NewServer(backend.handler())
	t.Cleanup(api.Close)

	sessions := session.NewStore(session.NewMemoryStore(token), zerolog.Nop())
	sessions.Initialize(context.Background())

	client := apiclient.New(api.URL, 5*time.Second, zerolog.Nop())
	svc := content.NewService(client, sessions, zerolog.Nop())

	cfg := config.Default()
	cfg.Dashboard.Addr = "127.0.0.1:0"
	for _, opt := range opts {
		opt(cfg)
	}
	srv, err := New(cfg, sessions, svc, zerolog.Nop())
	require.NoError(t, err)

	return &testEnv{backend: backend, sessions: sessions, server: srv}
}

func (e *testEnv) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	return e.doWithHeaders(method, path, form, nil)
}

func (e *testEnv) doWithHeaders(method, path string, form url.Values, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func TestGuardedPagesRedirectToLogin(t *testing.T) {
	env := newTestEnv(t, "")

	for _, path := range []string{"/", "/manage/blog", "/manage/project/p1", "/manage-subscriber"} {
		w := env.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusSeeOther, w.Code, path)
		assert.Equal(t, "/login", w.Header().Get("Location"), path)
		assert.NotContains(t, w.Body.String(), "<table", path)
	}
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t, "")

	w := env.do(http.MethodGet, "/login", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `action="/login"`)

	w = env.do(http.MethodPost, "/login", url.Values{"email": {"admin@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
	assert.Contains(t, w.Body.String(), "admin@example.com")
	assert.False(t, env.sessions.IsAuthenticated())

	w = env.do(http.MethodPost, "/login", url.Values{"email": {"admin@example.com"}, "password": {"secret"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.True(t, env.sessions.IsAuthenticated())
	assert.Equal(t, "tok-123", env.sessions.Token())

	// Logged in users are bounced off the login page.
	w = env.do(http.MethodGet, "/login", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestLogin_MissingFields(t *testing.T) {
	env := newTestEnv(t, "")

	w := env.do(http.MethodPost, "/login", url.Values{"email": {""}, "password": {""}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Email and password are required")
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, "tok-123")

	w := env.do(http.MethodPost, "/logout", nil)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.False(t, env.sessions.IsAuthenticated())
}

func TestOverview(t *testing.T) {
	env := newTestEnv(t, "tok-123")

	w := env.do(http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `href="/manage/blog"`)
	assert.Contains(t, body, "Log out")
}

func TestManageList(t *testing.T) {
	env := newTestEnv(t, "tok-123")

	w := env.do(http.MethodGet, "/manage/blog", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "First post")
	assert.Contains(t, w.Body.String(), `action="/manage/blog/b1/delete"`)
}

func TestManageDetail(t *testing.T) {
	env := newTestEnv(t, "tok-123")

	w := env.do(http.MethodGet, "/manage/project/p1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Folio")

	w = env.do(http.MethodGet, "/manage/project/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "No project with id")
}

func TestManageDelete(t *testing.T) {
	env := newTestEnv(t, "tok-123")

	w := env.do(http.MethodPost, "/manage/exp/e1/delete", nil)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/manage/exp?notice="))
	assert.Equal(t, []string{"e1"}, env.backend.deleted)
}

func TestRejectedTokenEndsSession(t *testing.T) {
	env := newTestEnv(t, "tok-123")
	env.backend.expired = true

	w := env.do(http.MethodGet, "/manage/exp", nil)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/login"))
	assert.False(t, env.sessions.IsAuthenticated())
}

func TestNewsletter(t *testing.T) {
	env := newTestEnv(t, "tok-123")

	w := env.do(http.MethodGet, "/manage-subscriber", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fan@example.com")

	w = env.do(http.MethodPost, "/manage-subscriber", url.Values{"subject": {"Hi"}, "content": {"News"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(http.MethodPost, "/manage-subscriber", url.Values{
		"subject":    {"Hi"},
		"content":    {"News"},
		"recipients": {"fan@example.com"},
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/manage-subscriber?notice=Newsletter+sent", w.Header().Get("Location"))
}

func TestNotFoundAndHealth(t *testing.T) {
	env := newTestEnv(t, "tok-123")

	w := env.do(http.MethodGet, "/manage/widgets", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Page not found")

	w = env.do(http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"online"`)
}

func TestStartStopsWithContext(t *testing.T) {
	env := newTestEnv(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.server.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestCorsConfig(t *testing.T) {
	_, ok := corsConfig(nil)
	assert.False(t, ok)

	c, ok := corsConfig([]string{"*"})
	require.True(t, ok)
	assert.True(t, c.AllowAllOrigins)
	assert.False(t, c.AllowCredentials)

	c, ok = corsConfig([]string{"http://localhost:3000"})
	require.True(t, ok)
	assert.Equal(t, []string{"http://localhost:3000"}, c.AllowOrigins)
}

func TestCrossSitePostsAreRefused(t *testing.T) {
	origins := map[string][]string{
		"no cors":    nil,
		"any origin": {"*"},
		"default":    config.Default().Dashboard.AllowedOrigins,
	}

	for name, allowed := range origins {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t, "tok-123", func(cfg *config.Config) {
				cfg.Dashboard.AllowedOrigins = allowed
			})

			for _, headers := range []map[string]string{
				{"Origin": "https://evil.example"},
				{"Sec-Fetch-Site": "cross-site", "Origin": "https://evil.example"},
				{"Referer": "https://evil.example/page"},
				{"Origin": "null"},
			} {
				w := env.doWithHeaders(http.MethodPost, "/manage/exp/e1/delete", url.Values{}, headers)
				assert.Equal(t, http.StatusForbidden, w.Code, headers)
			}

			w := env.doWithHeaders(http.MethodPost, "/manage-subscriber",
				url.Values{"subject": {"Hi"}, "content": {"x"}, "sendToAll": {"on"}},
				map[string]string{"Origin": "https://evil.example"})
			assert.Equal(t, http.StatusForbidden, w.Code)

			w = env.doWithHeaders(http.MethodPost, "/logout", nil, map[string]string{"Origin": "https://evil.example"})
			assert.Equal(t, http.StatusForbidden, w.Code)

			assert.Empty(t, env.backend.deleted)
			assert.True(t, env.sessions.IsAuthenticated())
		})
	}
}

func TestCrossSiteLoginIsRefused(t *testing.T) {
	env := newTestEnv(t, "", func(cfg *config.Config) {
		cfg.Dashboard.AllowedOrigins = nil
	})

	w := env.doWithHeaders(http.MethodPost, "/login",
		url.Values{"email": {"admin@example.com"}, "password": {"secret"}},
		map[string]string{"Sec-Fetch-Site": "cross-site"})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, env.sessions.IsAuthenticated())
}

func TestSameOriginPostsAreAccepted(t *testing.T) {
	env := newTestEnv(t, "tok-123", func(cfg *config.Config) {
		cfg.Dashboard.AllowedOrigins = []string{"*"}
	})

	// httptest requests target example.com
	for _, headers := range []map[string]string{
		{"Origin": "http://example.com"},
		{"Sec-Fetch-Site": "same-origin"},
		{"Referer": "http://example.com/manage/exp"},
	} {
		w := env.doWithHeaders(http.MethodPost, "/manage/exp/e1/delete", url.Values{}, headers)
		assert.Equal(t, http.StatusSeeOther, w.Code, headers)
	}
	assert.Equal(t, []string{"e1", "e1", "e1"}, env.backend.deleted)
}

func TestFromSameOrigin(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    bool
	}{
		{"no browser headers", nil, true},
		{"fetch none", map[string]string{"Sec-Fetch-Site": "none"}, true},
		{"fetch same-site", map[string]string{"Sec-Fetch-Site": "same-site"}, false},
		{"fetch wins over origin", map[string]string{"Sec-Fetch-Site": "cross-site", "Origin": "http://example.com"}, false},
		{"other port", map[string]string{"Origin": "http://example.com:8080"}, false},
		{"bad referer", map[string]string{"Referer": "::"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/logout", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, fromSameOrigin(req))
		})
	}
}
