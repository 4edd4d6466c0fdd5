package httpapi

import (
	"context"
	"crypto/rand"
	"embed"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/url"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/DoyleJ11/quiz-night-backend/internal/catalog"
	"github.com/DoyleJ11/quiz-night-backend/internal/hub"
	"github.com/DoyleJ11/quiz-night-backend/internal/lobby"
	"github.com/DoyleJ11/quiz-night-backend/internal/quiz"
)

const codeAttempts = 8

//go:embed assets/display.html
var assets embed.FS

// GameStore is the persistent catalog. It is optional; without it only
// inline definitions can start a session.
type GameStore interface {
	Save(ctx context.Context, def quiz.Definition) (quiz.Definition, error)
	Get(ctx context.Context, id string) (quiz.Definition, error)
	List(ctx context.Context) ([]catalog.Summary, error)
	Delete(ctx context.Context, id string) error
}

type Deps struct {
	Hub   *hub.Hub
	Games GameStore
	// PublicURL is where displays reach this server; derived from the
	// request when empty.
	PublicURL      string
	AllowedOrigins []string
	Logger         *zap.Logger
}

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

type createSessionRequest struct {
	GameID     string           `json:"gameId,omitempty"`
	Definition *quiz.Definition `json:"definition,omitempty"`
	Theme      string           `json:"theme,omitempty"`
}

type sessionResponse struct {
	Code       string    `json:"code"`
	Mode       quiz.Mode `json:"mode"`
	HostURL    string    `json:"hostUrl"`
	DisplayURL string    `json:"displayUrl"`
	QRURL      string    `json:"qrUrl"`
}

func CreateSession(d Deps) http.HandlerFunc {
	log := logger(d)
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}

		var def quiz.Definition
		switch {
		case req.Definition != nil:
			def = *req.Definition
			catalog.Normalize(&def)
			if err := catalog.Validate(def); err != nil {
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
		case req.GameID != "":
			if d.Games == nil {
				writeError(w, http.StatusServiceUnavailable, "no game catalog configured")
				return
			}
			got, err := d.Games.Get(r.Context(), req.GameID)
			if errors.Is(err, catalog.ErrNotFound) {
				writeError(w, http.StatusNotFound, "game not found")
				return
			}
			if err != nil {
				log.Error("load game", zap.String("game", req.GameID), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "failed to load game")
				return
			}
			def = got
		default:
			writeError(w, http.StatusBadRequest, "definition or gameId required")
			return
		}

		code, err := StartSession(d.Hub, def, req.Theme)
		if err != nil {
			log.Error("create session", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to create session")
			return
		}

		base := publicBase(d, r)
		writeJSON(w, http.StatusCreated, sessionResponse{
			Code:       code,
			Mode:       def.Mode,
			HostURL:    wsURL(base, "/ws/host", code),
			DisplayURL: wsURL(base, "/ws/display", code),
			QRURL:      base + "/sessions/" + code + "/qr.png",
		})
	}
}

// StartSession opens a lobby under a fresh code, retrying on collisions.
func StartSession(h *hub.Hub, def quiz.Definition, theme string) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code, err := GenerateCode()
		if err != nil {
			return "", err
		}
		reply := make(chan hub.Created, 1)
		h.Inbox() <- hub.CreateLobby{Code: code, Definition: def, Theme: theme, Reply: reply}
		res := <-reply
		if errors.Is(res.Err, hub.ErrCodeInUse) {
			continue
		}
		if res.Err != nil {
			return "", res.Err
		}
		return code, nil
	}
	return "", hub.ErrCodeInUse
}

func ListSessions(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan []string, 1)
		h.Inbox() <- hub.ListLobbies{Reply: reply}
		codes := <-reply
		sort.Strings(codes)
		writeJSON(w, http.StatusOK, struct {
			Codes []string `json:"codes"`
		}{Codes: codes})
	}
}

func DeleteSession(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if findLobby(h, code) == nil {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		h.Inbox() <- hub.RemoveLobby{Code: code}
		w.WriteHeader(http.StatusNoContent)
	}
}

// SessionQR renders a PNG QR code that opens the spectator display.
func SessionQR(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if findLobby(d.Hub, code) == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		target := publicBase(d, r) + "/display?code=" + url.QueryEscape(code)
		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(target, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

// DisplayPage serves the browser display the QR code points at.
func DisplayPage(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if findLobby(h, r.URL.Query().Get("code")) == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		data, err := assets.ReadFile("assets/display.html")
		if err != nil {
			http.Error(w, "display unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(data)
	}
}

func SaveGame(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Games == nil {
			writeError(w, http.StatusServiceUnavailable, "no game catalog configured")
			return
		}
		var def quiz.Definition
		if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		saved, err := d.Games.Save(r.Context(), def)
		if errors.Is(err, catalog.ErrInvalid) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err != nil {
			logger(d).Error("save game", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to save game")
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	}
}

func ListGames(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Games == nil {
			writeError(w, http.StatusServiceUnavailable, "no game catalog configured")
			return
		}
		games, err := d.Games.List(r.Context())
		if err != nil {
			logger(d).Error("list games", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to list games")
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Games []catalog.Summary `json:"games"`
		}{Games: games})
	}
}

func GetGame(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Games == nil {
			writeError(w, http.StatusServiceUnavailable, "no game catalog configured")
			return
		}
		def, err := d.Games.Get(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load game")
			return
		}
		writeJSON(w, http.StatusOK, def)
	}
}

func DeleteGame(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Games == nil {
			writeError(w, http.StatusServiceUnavailable, "no game catalog configured")
			return
		}
		err := d.Games.Delete(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		if err != nil {
			logger(d).Error("delete game", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to delete game")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func findLobby(h *hub.Hub, code string) *lobby.Lobby {
	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- hub.GetLobby{Code: code, Reply: reply}
	return <-reply
}

// publicBase derives the scheme and host, respecting X-Forwarded-Proto.
func publicBase(d Deps, r *http.Request) string {
	if d.PublicURL != "" {
		return d.PublicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

func wsURL(base, path, code string) string {
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = path
	u.RawQuery = url.Values{"code": {code}}.Encode()
	return u.String()
}

func logger(d Deps) *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{Error: msg})
}
