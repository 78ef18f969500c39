package opshttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andy6609/roomchat/internal/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedStats chat.Stats

func (f fixedStats) Stats() chat.Stats { return chat.Stats(f) }

func TestRouter_Healthz(t *testing.T) {
	h := NewRouter(fixedStats{}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRouter_Stats(t *testing.T) {
	h := NewRouter(fixedStats{Sessions: 2, Rooms: []string{"Lobby", "Tech"}}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got chat.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Sessions)
	assert.Equal(t, []string{"Lobby", "Tech"}, got.Rooms)
}

func TestRouter_StatsFromHub(t *testing.T) {
	hub := chat.NewHub(chat.HubConfig{DefaultRoom: "Lobby"}, nil)
	hub.Rooms().Ensure("Tech")

	h := NewRouter(hub, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	assert.JSONEq(t, `{"sessions":0,"rooms":["Lobby","Tech"]}`, rec.Body.String())
}

func TestRouter_Metrics(t *testing.T) {
	h := NewRouter(fixedStats{}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "chat_connected_clients"))
}

func TestRouter_UnknownPath(t *testing.T) {
	h := NewRouter(fixedStats{}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
