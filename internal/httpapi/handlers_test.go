package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/quiz-night-backend/internal/catalog"
	"github.com/DoyleJ11/quiz-night-backend/internal/hub"
	"github.com/DoyleJ11/quiz-night-backend/internal/quiz"
)

type memStore struct {
	games map[string]quiz.Definition
}

func (m *memStore) Save(_ context.Context, def quiz.Definition) (quiz.Definition, error) {
	catalog.Normalize(&def)
	if err := catalog.Validate(def); err != nil {
		return quiz.Definition{}, err
	}
	if def.ID == "" {
		def.ID = "g" + string(rune('0'+len(m.games)))
	}
	m.games[def.ID] = def
	return def, nil
}

func (m *memStore) Get(_ context.Context, id string) (quiz.Definition, error) {
	def, ok := m.games[id]
	if !ok {
		return quiz.Definition{}, catalog.ErrNotFound
	}
	return def, nil
}

func (m *memStore) List(_ context.Context) ([]catalog.Summary, error) {
	out := make([]catalog.Summary, 0, len(m.games))
	for _, def := range m.games {
		out = append(out, catalog.Summary{ID: def.ID, Name: def.Name, Mode: def.Mode})
	}
	return out, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	if _, ok := m.games[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(m.games, id)
	return nil
}

func boardDef() quiz.Definition {
	return quiz.Definition{
		Name: "Art Night",
		Board: &quiz.BoardGame{Categories: []quiz.Category{{Name: "Art", Questions: []quiz.BoardQuestion{
			{Prompt: "Water lilies", Answer: "Monet"},
		}}}},
		Teams: []quiz.Team{{Name: "Owls"}, {Name: "Foxes"}},
	}
}

func newServer(t *testing.T, games GameStore) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv := httptest.NewServer(SetupRoutes(Deps{
		Hub:       hub.NewHub(ctx, hub.Options{}),
		Games:     games,
		PublicURL: "https://quiz.example.com",
	}))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode()
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.NotContains(t, code, "O")
	assert.NotContains(t, code, "0")
}

func TestCreateSession_Inline(t *testing.T) {
	srv := newServer(t, nil)

	def := boardDef()
	res := postJSON(t, srv.URL+"/sessions", map[string]any{"definition": def, "theme": "neon"})
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var got sessionResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	assert.Len(t, got.Code, 6)
	assert.Equal(t, quiz.ModeBoard, got.Mode)
	assert.Equal(t, "wss://quiz.example.com/ws/host?code="+got.Code, got.HostURL)
	assert.Equal(t, "wss://quiz.example.com/ws/display?code="+got.Code, got.DisplayURL)

	list, err := http.Get(srv.URL + "/sessions")
	require.NoError(t, err)
	defer list.Body.Close()
	var codes struct {
		Codes []string `json:"codes"`
	}
	require.NoError(t, json.NewDecoder(list.Body).Decode(&codes))
	assert.Equal(t, []string{got.Code}, codes.Codes)

	qr, err := http.Get(srv.URL + "/sessions/" + got.Code + "/qr.png")
	require.NoError(t, err)
	defer qr.Body.Close()
	assert.Equal(t, http.StatusOK, qr.StatusCode)
	assert.Equal(t, "image/png", qr.Header.Get("Content-Type"))

	page, err := http.Get(srv.URL + "/display?code=" + got.Code)
	require.NoError(t, err)
	defer page.Body.Close()
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", page.Header.Get("Content-Type"))
	html, err := io.ReadAll(page.Body)
	require.NoError(t, err)
	assert.Contains(t, string(html), "/ws/display?code=")

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/sessions/"+got.Code, nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer del.Body.Close()
	assert.Equal(t, http.StatusNoContent, del.StatusCode)

	missing, err := http.Get(srv.URL + "/sessions/" + got.Code + "/qr.png")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)

	gone, err := http.Get(srv.URL + "/display?code=" + got.Code)
	require.NoError(t, err)
	defer gone.Body.Close()
	assert.Equal(t, http.StatusNotFound, gone.StatusCode)
}

func TestCreateSession_Rejects(t *testing.T) {
	srv := newServer(t, nil)

	res := postJSON(t, srv.URL+"/sessions", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	bad := boardDef()
	bad.Teams = nil
	res = postJSON(t, srv.URL+"/sessions", map[string]any{"definition": bad})
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	res = postJSON(t, srv.URL+"/sessions", map[string]any{"gameId": "g0"})
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)

	raw, err := http.Post(srv.URL+"/sessions", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestGames_SaveThenStart(t *testing.T) {
	srv := newServer(t, &memStore{games: map[string]quiz.Definition{}})

	res := postJSON(t, srv.URL+"/games", boardDef())
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var saved quiz.Definition
	require.NoError(t, json.NewDecoder(res.Body).Decode(&saved))
	require.NotEmpty(t, saved.ID)
	assert.Equal(t, quiz.ModeBoard, saved.Mode)

	get, err := http.Get(srv.URL + "/games/" + saved.ID)
	require.NoError(t, err)
	defer get.Body.Close()
	assert.Equal(t, http.StatusOK, get.StatusCode)

	list, err := http.Get(srv.URL + "/games")
	require.NoError(t, err)
	defer list.Body.Close()
	var games struct {
		Games []catalog.Summary `json:"games"`
	}
	require.NoError(t, json.NewDecoder(list.Body).Decode(&games))
	require.Len(t, games.Games, 1)
	assert.Equal(t, "Art Night", games.Games[0].Name)

	start := postJSON(t, srv.URL+"/sessions", map[string]any{"gameId": saved.ID})
	assert.Equal(t, http.StatusCreated, start.StatusCode)

	unknown := postJSON(t, srv.URL+"/sessions", map[string]any{"gameId": "nope"})
	assert.Equal(t, http.StatusNotFound, unknown.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/games/"+saved.ID, nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer del.Body.Close()
	assert.Equal(t, http.StatusNoContent, del.StatusCode)

	invalid := boardDef()
	invalid.Teams = nil
	rejected := postJSON(t, srv.URL+"/games", invalid)
	assert.Equal(t, http.StatusUnprocessableEntity, rejected.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv := newServer(t, nil)
	res, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
