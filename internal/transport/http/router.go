package httptransport

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	appclient "chain-poker/internal/app/client"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Pinger is the health probe of the durable store.
type Pinger interface {
	Ping(ctx context.Context) error
}

func NewRouter(svc *appclient.Service, store Pinger) *chi.Mux {
	sessionHandlers := NewSessionHandlers(svc)
	lobbyHandlers := NewLobbyHandlers(svc)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", Health(store))
	r.Route("/debug", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Use(BodyCaptureMiddleware(4096))
		r.Get("/vars", expvar.Handler().ServeHTTP)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Use(LocalOnlyMiddleware)

		r.Get("/session", sessionHandlers.Get())
		r.Post("/session/connect", sessionHandlers.Connect())
		r.Delete("/session", sessionHandlers.Disconnect())
		r.Get("/session/events", sessionHandlers.Events())

		r.Get("/preferences/display-name", sessionHandlers.DisplayName())
		r.Put("/preferences/display-name", sessionHandlers.SetDisplayName())
		r.Post("/amounts/validate", sessionHandlers.ValidateAmount())

		r.Post("/lobbies", lobbyHandlers.Create())
		r.Route("/lobbies/{lobby_id}", func(r chi.Router) {
			r.Get("/status", lobbyHandlers.Status())
			r.Get("/status/events", lobbyHandlers.StatusEvents())
			r.Get("/game", lobbyHandlers.Game())
			r.Get("/game/events", lobbyHandlers.GameEvents())
			r.Get("/bet", lobbyHandlers.Bet())
			r.Put("/bet", lobbyHandlers.SetBet())
			r.Post("/actions/{action}", lobbyHandlers.Action())
		})
	})
	return r
}

// Health pings store when there is one; a nil store is always up.
func Health(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			if err := store.Ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "store": "down"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "store": "up"})
	}
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
