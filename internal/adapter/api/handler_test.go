package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"mflix/internal/adapter/client"
	"mflix/internal/adapter/store"
	"mflix/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, backend http.HandlerFunc, omdb http.HandlerFunc) *fiber.App {
	t.Helper()
	recServer := httptest.NewServer(backend)
	t.Cleanup(recServer.Close)

	rec, err := client.NewRecommendAPI(recServer.URL)
	require.NoError(t, err)

	apiKey := ""
	omdbURL := ""
	if omdb != nil {
		omdbServer := httptest.NewServer(omdb)
		t.Cleanup(omdbServer.Close)
		apiKey, omdbURL = "key", omdbServer.URL
	}
	enricher := usecase.NewEnricher(client.NewOMDbClient(apiKey, omdbURL), nil)
	orch := usecase.NewOrchestrator(rec, enricher, usecase.WithTracker(store.NewMemoryTracker(time.Hour)))

	app := fiber.New()
	SetupRouter(app, NewRecommendationHandler(orch, enricher, 5*time.Second), BuildInfo{Version: "test", Env: "test"})
	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return resp, body
}

func postRecommend(title string, topK string, session string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/recommendations",
		strings.NewReader(`{"title":`+title+`,"top_k":`+topK+`}`))
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}
	return req
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {}, nil)
	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestRecommendEnrichesInOrder(t *testing.T) {
	app := newTestApp(t,
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"title":"Heat","recommendations":["Ronin (1998)","Unknown Film","Collateral (2004)"]}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Query().Get("t") {
			case "Ronin":
				_, _ = w.Write([]byte(`{"Response":"True","Title":"Ronin","Year":"1998","Poster":"N/A","imdbRating":"7.2","Plot":"Mercenaries."}`))
			case "Collateral":
				time.Sleep(20 * time.Millisecond)
				_, _ = w.Write([]byte(`{"Response":"True","Title":"Collateral","Year":"2004","Poster":"https://p/c.jpg","imdbRating":"7.5","Plot":"A cab driver."}`))
			default:
				_, _ = w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
			}
		})

	resp, body := do(t, app, postRecommend(`"heat"`, `"3"`, "session-1"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "session-1", resp.Header.Get(SessionHeader))
	assert.Equal(t, "Heat", body["base_title"])
	assert.Equal(t, "done", body["state"])
	assert.Equal(t, false, body["no_results"])
	assert.Equal(t, false, body["superseded"])

	movies := body["movies"].([]any)
	require.Len(t, movies, 3)
	first := movies[0].(map[string]any)
	assert.Equal(t, "Ronin (1998)", first["id"])
	assert.Equal(t, "", first["poster"])
	assert.Equal(t, "7.2", first["rating"])
	second := movies[1].(map[string]any)
	assert.Equal(t, "Unknown Film", second["title"])
	assert.Equal(t, "", second["plot"])
	third := movies[2].(map[string]any)
	assert.Equal(t, "Collateral", third["title"])
	assert.Equal(t, "https://p/c.jpg", third["poster"])
}

func TestRecommendValidationError(t *testing.T) {
	var called atomic.Bool
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) { called.Store(true) }, nil)

	resp, body := do(t, app, postRecommend(`"   "`, `5`, ""))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Please enter a movie title.", body["error"])
	assert.Equal(t, "error", body["state"])
	assert.NotEmpty(t, resp.Header.Get(SessionHeader))
	assert.False(t, called.Load())
}

func TestRecommendBackendError(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, nil)

	resp, body := do(t, app, postRecommend(`"Heat"`, `2`, ""))
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Backend returned status 500. Check if the API is running.", body["error"])
	assert.Equal(t, float64(500), body["backend_status"])
}

func TestRecommendNoResults(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"title":"Inception","recommendations":[]}`))
	}, nil)

	resp, body := do(t, app, postRecommend(`"Inception"`, `5`, ""))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Inception", body["base_title"])
	assert.Equal(t, true, body["no_results"])
	assert.Empty(t, body["movies"])
	assert.Nil(t, body["error"])
}

func TestRecommendWithoutOMDbKeyReturnsFallbacks(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"recommendations":["Alien (1979)"]}`))
	}, nil)

	_, body := do(t, app, postRecommend(`"Aliens"`, `1`, ""))
	assert.Equal(t, "Aliens", body["base_title"])
	movie := body["movies"].([]any)[0].(map[string]any)
	assert.Equal(t, map[string]any{
		"id": "Alien (1979)", "title": "Alien (1979)", "year": "", "poster": "", "rating": "", "plot": "",
	}, movie)
}

func TestRecommendInvalidBody(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {}, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/recommendations", strings.NewReader(`{`))
	req.Header.Set("Content-Type", "application/json")

	resp, body := do(t, app, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid request body", body["error"])
}

func TestLookup(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2010", r.URL.Query().Get("y"))
		_, _ = w.Write([]byte(`{"Response":"True","Title":"Inception","Year":"2010","Poster":"N/A","imdbRating":"8.8","Plot":"N/A"}`))
	})

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/v1/movies/lookup?title=Inception+%282010%29", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "found", body["status"])
	movie := body["movie"].(map[string]any)
	assert.Equal(t, "Inception (2010)", movie["id"])
	assert.Equal(t, "", movie["plot"])

	resp, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/v1/movies/lookup", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
