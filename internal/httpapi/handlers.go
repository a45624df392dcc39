package httpapi

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/batalla-naval/internal/archive"
	"github.com/DoyleJ11/batalla-naval/internal/engine"
	"github.com/DoyleJ11/batalla-naval/internal/hub"
	"github.com/DoyleJ11/batalla-naval/internal/lobby"
	"github.com/DoyleJ11/batalla-naval/internal/types"
	"github.com/DoyleJ11/batalla-naval/internal/web"
	pub "github.com/DoyleJ11/batalla-naval/pkg/types"
)

// RoundLister is the read side of the round archive.
type RoundLister interface {
	Rounds(ctx context.Context, code string, limit int) ([]archive.Round, error)
}

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

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

func CreateLobby(h *hub.Hub, roster []engine.Team, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var code string
		for {
			c, err := GenerateCode()
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to generate code")
				return
			}
			if h.Get(c) == nil {
				code = c
				break
			}
			log.Debug("collision on code, regenerating", zap.String("code", c))
		}

		if h.Ensure(code, engine.NewEmptyState(roster)) == nil {
			writeError(w, http.StatusInternalServerError, "failed to create lobby")
			return
		}
		log.Info("lobby created", zap.String("lobby", code))

		writeJSON(w, http.StatusCreated, struct {
			Code string `json:"code"`
		}{Code: code})
	}
}

func GetBoard(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb := lookup(w, r, h)
		if lb == nil {
			return
		}
		v, err := lb.View(r.Context())
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, types.BoardView(lobby.Snapshot{Version: v.Version, State: v.State}))
	}
}

func PostCommand(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb := lookup(w, r, h)
		if lb == nil {
			return
		}

		var cm types.ClientMessage
		if err := json.NewDecoder(r.Body).Decode(&cm); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		cmd, err := types.ToCommand(cm)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		snap, err := lb.Do(r.Context(), cmd)
		switch {
		case errors.Is(err, lobby.ErrLobbyClosed):
			writeError(w, http.StatusNotFound, err.Error())
		case err != nil:
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeJSON(w, http.StatusOK, types.BoardView(snap))
		}
	}
}

func ListRounds(store RoundLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			writeError(w, http.StatusNotFound, "round archive disabled")
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		rounds, err := store.Rounds(r.Context(), lobbyCode(r), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list rounds")
			return
		}
		views := make([]pub.Round, 0, len(rounds))
		for _, round := range rounds {
			views = append(views, archive.ToView(round))
		}
		writeJSON(w, http.StatusOK, views)
	}
}

// BoardPage renders the HTML board for the {code} URL param, or for
// fallback when the route has none.
func BoardPage(h *hub.Hub, page *web.Page, fallback string, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := lobbyCode(r)
		if code == "" {
			code = fallback
		}
		lb := h.Get(code)
		if lb == nil {
			http.Error(w, "lobby not found", http.StatusNotFound)
			return
		}
		v, err := lb.View(r.Context())
		if err != nil {
			http.Error(w, "lobby not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		board := types.BoardView(lobby.Snapshot{Version: v.Version, State: v.State})
		if err := page.Render(w, code, board); err != nil {
			log.Error("render board page", zap.String("lobby", code), zap.Error(err))
		}
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func lobbyCode(r *http.Request) string {
	return strings.ToUpper(chi.URLParam(r, "code"))
}

func lookup(w http.ResponseWriter, r *http.Request, h *hub.Hub) *lobby.Lobby {
	lb := h.Get(lobbyCode(r))
	if lb == nil {
		writeError(w, http.StatusNotFound, "lobby not found")
	}
	return lb
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
