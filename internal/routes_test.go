package internal

import (
	"net/http"
	"net/http/httptest"
	"pcsd/internal/controllers"
	"pcsd/internal/services"
	"pcsd/internal/structures"
	"pcsd/internal/testutil"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() (*http.ServeMux, []structures.Route, *testutil.FakeSnapshotStore) {
	store := testutil.NewFakeSnapshotStore()
	menus := testutil.NewFakeMenuStore()
	cache := testutil.NewMockCache()
	metrics := testutil.NewMockMetrics()
	logger := &testutil.MockLogger{}
	conf := &structures.Config{Graph: structures.GraphConfig{Enabled: false}}

	acquirer := services.NewAcquirer(conf, logger)
	snapshots := services.NewSnapshotService(store, acquirer, cache, metrics, logger)
	graph := services.NewGraphService(conf, store, cache, metrics, logger)
	reports := services.NewReportService(store, graph)
	ac := controllers.NewApiController(logger, store, snapshots, reports, graph, cache)
	mc := controllers.NewMenuController(ac, services.NewMenuService(menus, reports, snapshots))

	routes := InitRoutes(ac, mc).GetRoutes()
	mux := http.NewServeMux()
	for _, r := range routes {
		mux.Handle(r.Url, r.Handler)
	}
	return mux, routes, store
}

func TestInitRoutes_RegistersEveryEndpointOnce(t *testing.T) {
	_, routes, _ := newTestRouter()

	urls := make([]string, len(routes))
	for i, r := range routes {
		urls[i] = r.Url
	}
	require.Len(t, urls, 9)
	assert.Equal(t, []string{
		"/report", "/graph", "/ranges", "/snapshots", "/snapshots/latest",
		"/snapshots/at", "/series", "/menus", "/menus/report",
	}, urls)
}

func TestInitRoutes_MethodEnforcement(t *testing.T) {
	mux, _, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/report", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/snapshots", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	req = httptest.NewRequest(http.MethodPut, "/menus", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestInitRoutes_RecordThenReport(t *testing.T) {
	mux, _, _ := newTestRouter()

	for _, body := range []string{
		`{"ts":1000,"counts":{"black":5,"green":10}}`,
		`{"ts":4600,"counts":{"black":8,"green":9}}`,
	} {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/snapshots", strings.NewReader(body)))
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/report?graph=true", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "17 (+2)")
	assert.Contains(t, body, services.GraphUnavailable)
}
