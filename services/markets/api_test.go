package markets

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, accessToken string) http.Handler {
	t.Helper()
	service, _ := newTestService(t, newFakeClock())
	return NewHandler(service, accessToken)
}

func getJSON(t *testing.T, handler http.Handler, target string) map[string]json.RawMessage {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetSnapshotEndpoint(t *testing.T) {
	handler := newTestHandler(t, "")

	body := getJSON(t, handler, "/datos")
	require.Contains(t, body, "testsource")
	require.Contains(t, body, "last_updated")
}

func TestGetSummaryEndpoint(t *testing.T) {
	handler := newTestHandler(t, "")

	body := getJSON(t, handler, "/datos/resume")
	require.Contains(t, body, "acciones")
	require.Contains(t, body, "sources")
	require.Contains(t, body, "last_updated")
}

func TestScrapeEndpoint(t *testing.T) {
	handler := newTestHandler(t, "")

	req := httptest.NewRequest(
		http.MethodPost, "/scrape",
		strings.NewReader(`{"sources":["testsource"]}`),
	)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body.Data, "testsource")
}

func TestScrapeEndpointRejectsBadBody(t *testing.T) {
	handler := newTestHandler(t, "")

	req := httptest.NewRequest(http.MethodPost, "/scrape", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSourcesEndpoint(t *testing.T) {
	handler := newTestHandler(t, "")

	body := getJSON(t, handler, "/sources")
	require.Contains(t, body, "sources")
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestHandler(t, "")

	body := getJSON(t, handler, "/health")
	var status string
	require.NoError(t, json.Unmarshal(body["status"], &status))
	require.Equal(t, "ok", status)
}

func TestBearerAuth(t *testing.T) {
	handler := newTestHandler(t, "sekrit")

	// protected route without a token
	req := httptest.NewRequest(http.MethodGet, "/datos", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// with the token
	req = httptest.NewRequest(http.MethodGet, "/datos", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// health stays open
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
