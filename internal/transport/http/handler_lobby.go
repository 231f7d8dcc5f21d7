package httptransport

import (
	"net/http"
	"time"

	appclient "chain-poker/internal/app/client"
	"chain-poker/internal/game"
	"chain-poker/internal/poller"
	"chain-poker/internal/stream"

	"github.com/go-chi/chi/v5"
)

var ssePingInterval = 15 * time.Second

type LobbyHandlers struct {
	svc *appclient.Service
}

func NewLobbyHandlers(svc *appclient.Service) *LobbyHandlers {
	return &LobbyHandlers{svc: svc}
}

func (h *LobbyHandlers) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appclient.CreateLobbyRequest
		if err := decodeJSON(r, &req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.CreateLobby(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func (h *LobbyHandlers) Status() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.LobbyStatus(r.Context(), chi.URLParam(r, "lobby_id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *LobbyHandlers) Game() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.GameStatus(r.Context(), chi.URLParam(r, "lobby_id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *LobbyHandlers) Bet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, h.svc.Bet(chi.URLParam(r, "lobby_id")))
	}
}

// SetBet edits the bet input; a bad amount is reported in visible_error, not
// as a request failure.
func (h *LobbyHandlers) SetBet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appclient.BetRequest
		if err := decodeJSON(r, &req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.SetBet(r.Context(), chi.URLParam(r, "lobby_id"), req.Raw)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *LobbyHandlers) StatusEvents() http.HandlerFunc {
	return h.events(h.svc.WatchLobby)
}

func (h *LobbyHandlers) GameEvents() http.HandlerFunc {
	return h.events(h.svc.WatchGame)
}

// events holds a poll open for as long as the client stays connected.
func (h *LobbyHandlers) events(open func(lobbyID string) appclient.Watch) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lobbyID := chi.URLParam(r, "lobby_id")
		if lobbyID == "" {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		metricSSEConnectionsTotal.Add(1)
		metricSSEConnectionsActive.Add(1)
		defer metricSSEConnectionsActive.Add(-1)

		watch := open(lobbyID)
		defer watch.Release()

		updates := watch.Updates
		if watch.Initial != nil {
			updates = prepend(r, *watch.Initial, watch.Updates)
		}
		err := stream.Pump(r.Context(), w, updates, ssePingInterval, renderUpdate)
		streamFailed(w, err)
	}
}

func renderUpdate(u poller.Update) stream.Event {
	if u.Err != nil {
		_, code, msg := MapError(u.Err)
		return stream.Event{
			Event:    "poll_error",
			Resource: u.ResourceID,
			Data:     map[string]any{"error": code, "message": msg, "has_snapshot": u.Snapshot != nil},
		}
	}
	return stream.Event{Event: "snapshot", Resource: u.ResourceID, Data: u.Snapshot}
}

func prepend(r *http.Request, first poller.Update, rest <-chan poller.Update) <-chan poller.Update {
	out := make(chan poller.Update, 1)
	out <- first
	go func() {
		defer close(out)
		for {
			select {
			case <-r.Context().Done():
				return
			case u, ok := <-rest:
				if !ok {
					return
				}
				select {
				case out <- u:
				case <-r.Context().Done():
					return
				}
			}
		}
	}()
	return out
}

func (h *LobbyHandlers) Action() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricActionSubmitTotal.Add(1)
		var req game.ActionRequest
		if r.ContentLength != 0 {
			if err := decodeJSON(r, &req); err != nil {
				metricActionSubmitErrors.Add(1)
				WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
				return
			}
		}
		resp, err := h.svc.SubmitAction(r.Context(), chi.URLParam(r, "lobby_id"), chi.URLParam(r, "action"), req)
		if err != nil {
			metricActionSubmitErrors.Add(1)
			status, body := errorBody(err)
			if resp != nil {
				body["action"] = resp
			}
			writeJSON(w, status, body)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
