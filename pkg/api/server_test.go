package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azybler/roadpath/pkg/graph"
	"github.com/azybler/roadpath/pkg/routing"
)

type panicRouter struct{ *mockRouter }

func (panicRouter) Route(context.Context, routing.Request) (*routing.RouteResult, error) {
	panic("boom")
}

// blockingRouter holds every request until release is closed.
type blockingRouter struct {
	mockRouter
	entered chan struct{}
	release chan struct{}
}

func (b *blockingRouter) Route(ctx context.Context, _ routing.Request) (*routing.RouteResult, error) {
	b.entered <- struct{}{}
	<-b.release
	return sampleResult(), nil
}

func serve(t *testing.T, cfg ServerConfig, router routing.Router) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(cfg, NewHandlers(router, nil, cfg.MaxBatch)))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRouterRoutesAndHeaders(t *testing.T) {
	cfg := DefaultConfig(":0")
	cfg.CORSOrigin = "https://example.org"
	srv := serve(t, cfg, &mockRouter{result: sampleResult()})

	resp := post(t, srv.URL+"/api/v1/route", validBody)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "https://example.org", resp.Header.Get("Access-Control-Allow-Origin"))

	for _, path := range []string{"/api/v1/health", "/api/v1/stats", "/api/v1/algorithms"} {
		r, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		r.Body.Close()
		assert.Equal(t, http.StatusOK, r.StatusCode, path)
	}

	r, err := http.Get(srv.URL + "/api/v1/route")
	require.NoError(t, err)
	r.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, r.StatusCode)

	r, err = http.Get(srv.URL + "/api/v2/route")
	require.NoError(t, err)
	r.Body.Close()
	assert.Equal(t, http.StatusNotFound, r.StatusCode)
}

func TestMiddlewareRecoversPanics(t *testing.T) {
	srv := serve(t, DefaultConfig(":0"), panicRouter{})

	resp := post(t, srv.URL+"/api/v1/route", validBody)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "internal_error", body.Error)
}

func TestMiddlewareLimitsConcurrency(t *testing.T) {
	cfg := DefaultConfig(":0")
	cfg.MaxConcurrent = 1
	br := &blockingRouter{entered: make(chan struct{}), release: make(chan struct{})}
	srv := serve(t, cfg, br)

	done := make(chan int)
	go func() {
		resp, err := http.Post(srv.URL+"/api/v1/route", "application/json", strings.NewReader(validBody))
		if err != nil {
			done <- 0
			return
		}
		resp.Body.Close()
		done <- resp.StatusCode
	}()

	select {
	case <-br.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first request never reached the router")
	}

	resp := post(t, srv.URL+"/api/v1/route", validBody)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))

	close(br.release)
	assert.Equal(t, http.StatusOK, <-done)
}

func TestServerWithEngine(t *testing.T) {
	b := graph.NewBuilder()
	a := b.AddNode(1.30, 103.800)
	c := b.AddNode(1.30, 103.801)
	b.AddRoad(a, c, 111, graph.RoadInfo{RoadType: graph.RoadPrimary})
	g, err := b.Build()
	require.NoError(t, err)

	engine := routing.NewEngine(g, routing.Options{})
	cfg := DefaultConfig(":0")
	srv := httptest.NewServer(NewRouter(cfg, NewHandlers(engine, EngineStats(engine), 0)))
	t.Cleanup(srv.Close)

	resp := post(t, srv.URL+"/api/v1/route", `{"start":{"lat":1.3,"lng":103.8},"end":{"lat":1.3,"lng":103.801},"inspector":"car-time"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var route RouteResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&route))
	assert.Equal(t, 111.0, route.TotalDistanceMeters)
	assert.Equal(t, "TIME", route.Mode)
	require.Len(t, route.Segments, 1)
	assert.Equal(t, "primary", route.Segments[0].RoadType)

	resp = post(t, srv.URL+"/api/v1/route", `{"start":{"lat":1.3,"lng":103.8},"end":{"lat":1.4,"lng":103.8}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	r, err := http.Get(srv.URL + "/api/v1/stats")
	require.NoError(t, err)
	defer r.Body.Close()
	var stats StatsResponse
	require.NoError(t, json.NewDecoder(r.Body).Decode(&stats))
	assert.EqualValues(t, 2, stats.NumNodes)
	assert.EqualValues(t, 2, stats.NumArcs)
	assert.EqualValues(t, 2, stats.Queries)
	assert.EqualValues(t, 1, stats.Found)
	assert.EqualValues(t, 1, stats.Failed)
}
