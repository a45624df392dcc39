package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/batalla-naval/internal/engine"
	"github.com/DoyleJ11/batalla-naval/internal/hub"
	"github.com/DoyleJ11/batalla-naval/internal/web"
	"github.com/DoyleJ11/batalla-naval/internal/ws"
)

type Deps struct {
	Hub          *hub.Hub
	Roster       []engine.Team
	BasePath     string // "" or "/prefix"
	DefaultLobby string
	Rounds       RoundLister // nil disables the rounds endpoint
	Log          *zap.Logger
}

func SetupRoutes(d Deps) (http.Handler, error) {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	page, err := web.NewPage(d.BasePath)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(d.Log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", Healthz)

	app := func(r chi.Router) {
		r.Get("/", BoardPage(d.Hub, page, d.DefaultLobby, d.Log))
		r.Get("/l/{code}", BoardPage(d.Hub, page, d.DefaultLobby, d.Log))
		r.Handle("/assets/*", http.StripPrefix(d.BasePath+"/assets/", web.Assets()))

		r.Post("/lobbies", CreateLobby(d.Hub, d.Roster, d.Log))
		r.Get("/lobbies/{code}", GetBoard(d.Hub))
		r.Post("/lobbies/{code}/commands", PostCommand(d.Hub))
		r.Get("/lobbies/{code}/rounds", ListRounds(d.Rounds))
		r.Get("/ws", ws.Handler(d.Hub, d.Log))
	}
	if d.BasePath == "" {
		r.Group(app)
	} else {
		r.Route(d.BasePath, app)
	}
	return r, nil
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
