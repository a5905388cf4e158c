package api

import (
	"bitwise74/leads-api/db"
	"bitwise74/leads-api/email"
	"bitwise74/leads-api/metrics"
	"bitwise74/leads-api/model"
	"bitwise74/leads-api/ratelimit"
	"bitwise74/leads-api/security"
	"bitwise74/leads-api/service"
	"bitwise74/leads-api/util"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testSecret = "api-test-secret"
	guideURL   = "https://example.com/resources/intro-guide"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type captureSender struct {
	mu   sync.Mutex
	fail bool
	sent []*email.Message
}

func (s *captureSender) Send(_ context.Context, m *email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail {
		return errors.New("smtp down")
	}

	s.sent = append(s.sent, m)
	return nil
}

type testServer struct {
	api    *API
	db     *gorm.DB
	sender *captureSender
	token  string
}

func newTestServer(t *testing.T, maxPerDay int) *testServer {
	t.Helper()

	conn, err := db.Open("sqlite", util.MemoryDSN(t.Name()))
	require.NoError(t, err)

	sender := &captureSender{}
	mail, err := email.NewService(sender, email.NewTemplates("../templates/email"), email.Config{
		AdminEmail: "admin@example.com",
		SiteName:   "Resource Desk",
	})
	require.NoError(t, err)

	requests := service.NewResourceRequests(conn, ratelimit.NewDBLimiter(conn, maxPerDay, 0), mail, service.Options{
		MaxPerDay:    maxPerDay,
		AutoResponse: true,
	})

	reg := prometheus.NewRegistry()
	require.NoError(t, metrics.Register(reg))

	a := NewRouter(requests, mail, Config{
		CORSOrigins: []string{"http://localhost:3000"},
		JWTSecret:   testSecret,
		RateLimit:   100,
		Gatherer:    reg,
	})

	token, err := security.IssueAdminToken(testSecret, "ops@example.com", time.Hour)
	require.NoError(t, err)

	return &testServer{api: a, db: conn, sender: sender, token: token}
}

func (s *testServer) do(method, path, body string, admin bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if admin {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	w := httptest.NewRecorder()
	s.api.Router.ServeHTTP(w, req)
	return w
}

func (s *testServer) submit(t *testing.T, userEmail, resourceURL string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]string{
		"userEmail":   userEmail,
		"resourceUrl": resourceURL,
		"sourceUrl":   "https://example.com/blog/anchoring",
		"message":     "Could you send it over?",
	})
	require.NoError(t, err)

	return s.do(http.MethodPost, "/api/resource-request", string(body), false)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHeartbeat(t *testing.T) {
	s := newTestServer(t, 5)

	w := s.do(http.MethodHead, "/api/heartbeat", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubmitResourceRequest(t *testing.T) {
	s := newTestServer(t, 5)

	w := s.submit(t, "lead@example.com", guideURL)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	id, _ := decode(t, w)["id"].(string)
	require.NotEmpty(t, id)

	var stored model.ResourceRequest
	require.NoError(t, s.db.First(&stored, "id = ?", id).Error)
	assert.Equal(t, "lead@example.com", stored.UserEmail)

	// One admin notification and one auto-response
	require.Len(t, s.sender.sent, 2)
	assert.Equal(t, "admin@example.com", s.sender.sent[0].To)
	assert.Contains(t, s.sender.sent[0].HTML, "lead@example.com")
	assert.Equal(t, "lead@example.com", s.sender.sent[1].To)
}

func TestSubmitResourceRequestValidation(t *testing.T) {
	s := newTestServer(t, 5)

	w := s.submit(t, "not-an-email", guideURL)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "userEmail", decode(t, w)["field"])

	w = s.do(http.MethodPost, "/api/resource-request", "{not json", false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, decode(t, w)["requestID"])

	w = s.do(http.MethodPost, "/api/resource-request", `{"message":"`+strings.Repeat("a", maxBodySize)+`"}`, false)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestSubmitResourceRequestRateLimited(t *testing.T) {
	s := newTestServer(t, 2)

	for range 2 {
		w := s.submit(t, "lead@example.com", guideURL)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := s.submit(t, "lead@example.com", guideURL)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	retry, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Positive(t, retry)
	assert.LessOrEqual(t, retry, 24*60*60)
}

func TestSubmitSurvivesEmailFailure(t *testing.T) {
	s := newTestServer(t, 5)
	s.sender.fail = true

	w := s.submit(t, "lead@example.com", guideURL)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSubmitStorageUnavailable(t *testing.T) {
	s := newTestServer(t, 5)

	sqlDB, err := s.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := s.submit(t, "lead@example.com", guideURL)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestResourceRequestCount(t *testing.T) {
	s := newTestServer(t, 5)

	w := s.do(http.MethodGet, "/api/resource-request/count", "", false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, e := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		require.Equal(t, http.StatusCreated, s.submit(t, e, guideURL).Code)
	}

	w = s.do(http.MethodGet, "/api/resource-request/count?url="+guideURL, "", false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode(t, w)["count"])

	// Served from the cache for a while
	require.Equal(t, http.StatusCreated, s.submit(t, "d@example.com", guideURL).Code)
	w = s.do(http.MethodGet, "/api/resource-request/count?url="+guideURL, "", false)
	assert.EqualValues(t, 3, decode(t, w)["count"])
}

func TestAdminRequiresToken(t *testing.T) {
	s := newTestServer(t, 5)

	w := s.do(http.MethodGet, "/api/admin/resource-requests/stats", "", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/admin/resource-requests/stats", "", true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminStats(t *testing.T) {
	s := newTestServer(t, 5)

	require.Equal(t, http.StatusCreated, s.submit(t, "a@example.com", guideURL).Code)
	require.Equal(t, http.StatusCreated, s.submit(t, "b@example.com", guideURL).Code)

	w := s.do(http.MethodGet, "/api/admin/resource-requests/stats", "", true)
	require.Equal(t, http.StatusOK, w.Code)

	var stats service.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 2, stats.Pending)
	assert.EqualValues(t, 1, stats.UniqueResources)
}

func TestAdminListsAndStatus(t *testing.T) {
	s := newTestServer(t, 5)

	var ids []string
	for _, e := range []string{"a@example.com", "b@example.com"} {
		w := s.submit(t, e, guideURL)
		require.Equal(t, http.StatusCreated, w.Code)
		ids = append(ids, decode(t, w)["id"].(string))
	}

	w := s.do(http.MethodGet, "/api/admin/resource-requests/most-requested?limit=5", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	resources := decode(t, w)["resources"].([]any)
	require.Len(t, resources, 1)
	assert.EqualValues(t, 2, resources[0].(map[string]any)["requestCount"])

	w = s.do(http.MethodGet, "/api/admin/resource-requests/pending?limit=nope", "", true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, "/api/admin/resource-requests/"+ids[0], `{"status":"completed"}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", decode(t, w)["status"])

	w = s.do(http.MethodPatch, "/api/admin/resource-requests/"+ids[0], `{"status":"archived"}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, "/api/admin/resource-requests/00000000-0000-0000-0000-000000000000", `{"status":"completed"}`, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/admin/resource-requests/pending", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	pending := decode(t, w)["requests"].([]any)
	require.Len(t, pending, 1)
	assert.Equal(t, ids[1], pending[0].(map[string]any)["id"])
}

func TestAdminJobs(t *testing.T) {
	s := newTestServer(t, 5)

	require.Equal(t, http.StatusCreated, s.submit(t, "a@example.com", guideURL).Code)

	// Nothing is old enough yet
	w := s.do(http.MethodPost, "/api/admin/resource-requests/cleanup", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["deleted"])

	s.sender.sent = nil

	w = s.do(http.MethodPost, "/api/admin/reports/weekly", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, s.sender.sent, 1)
	assert.Contains(t, s.sender.sent[0].Subject, "Weekly resource request report")

	w = s.do(http.MethodPost, "/api/admin/email/test", "", true)
	assert.Equal(t, http.StatusOK, w.Code)

	s.sender.fail = true
	w = s.do(http.MethodPost, "/api/admin/email/test", "", true)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = s.do(http.MethodPost, "/api/admin/reports/weekly", "", true)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, 5)

	require.Equal(t, http.StatusCreated, s.submit(t, "a@example.com", guideURL).Code)

	w := s.do(http.MethodGet, "/metrics", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "leads_resource_request_submissions_total")
}
