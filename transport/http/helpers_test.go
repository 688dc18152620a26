package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fidena/fidena/adapters/events"
	"github.com/fidena/fidena/adapters/memory"
	"github.com/fidena/fidena/adapters/store"
	"github.com/fidena/fidena/adapters/tokenizer"
	"github.com/fidena/fidena/config"
	"github.com/fidena/fidena/internal/ratelimit"
	"github.com/fidena/fidena/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t          *testing.T
	router     *gin.Engine
	auth       *service.AuthService
	storage    *memory.Storage
	challenges *store.MemoryChallengeStore
}

type serverOption func(*Deps)

func withRateLimit(rpm int) serverOption {
	return func(d *Deps) {
		d.RateLimit = &ratelimit.Config{Enabled: true, RequestsPerMinute: rpm}
	}
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	tk, err := tokenizer.NewJWTTokenizer([]byte("transport-test-secret"))
	require.NoError(t, err)

	storage := memory.NewStorage()
	challenges := store.NewMemoryChallengeStore()
	logger := zap.NewNop()

	auth := service.NewAuthService(tk, challenges, nil, events.NopPublisher{}, logger, service.AuthConfig{
		Issuer: tokenizer.Issuer("test"),
	})

	deps := Deps{
		Auth:         auth,
		Registration: service.NewRegistrationService(storage, auth, events.NopPublisher{}, logger),
		Users:        service.NewUserService(storage),
		Finance:      service.NewFinanceService(storage, logger),
		Gate:         GateConfig{PathPatterns: config.DefaultGatePaths, RedirectTarget: "/auth/login"},
		Cookies:      CookieConfig{TTL: auth.SessionTTL()},
		Logger:       logger,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	router, err := SetupRouter(deps)
	require.NoError(t, err)

	return &testServer{t: t, router: router, auth: auth, storage: storage, challenges: challenges}
}

type request struct {
	method  string
	path    string
	body    string
	cookie  string
	headers map[string]string
}

func (s *testServer) do(r request) *httptest.ResponseRecorder {
	s.t.Helper()

	req := httptest.NewRequest(r.method, r.path, strings.NewReader(r.body))
	if r.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.cookie != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: r.cookie})
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// signUp registers a password user and returns its id and session token
func (s *testServer) signUp(email string) (string, string) {
	s.t.Helper()

	rec := s.do(request{
		method: http.MethodPost,
		path:   "/api/auth/register",
		body:   `{"type":"password","email":"` + email + `","password":"correct-horse"}`,
	})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		UserID string `json:"userId"`
	}
	decodeJSON(s.t, rec, &out)
	return out.UserID, sessionCookie(s.t, rec).Value
}

func (s *testServer) tokenFor(userID string) string {
	s.t.Helper()
	token, _, err := s.auth.IssueSession(userID)
	require.NoError(s.t, err)
	return token
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", SessionCookieName)
	return nil
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(dst), rec.Body.String())
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var out errorResponse
	decodeJSON(t, rec, &out)
	return out
}
