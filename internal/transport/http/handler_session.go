package httptransport

import (
	"net/http"

	appclient "chain-poker/internal/app/client"
	"chain-poker/internal/stream"
)

type SessionHandlers struct {
	svc *appclient.Service
}

func NewSessionHandlers(svc *appclient.Service) *SessionHandlers {
	return &SessionHandlers{svc: svc}
}

func (h *SessionHandlers) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, h.svc.Session())
	}
}

func (h *SessionHandlers) Connect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := h.svc.Connect(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func (h *SessionHandlers) Disconnect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := h.svc.Disconnect(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// Events streams the current session first, then every change.
func (h *SessionHandlers) Events() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricSSEConnectionsTotal.Add(1)
		metricSSEConnectionsActive.Add(1)
		defer metricSSEConnectionsActive.Add(-1)

		updates, unsubscribe := h.svc.SessionEvents()
		defer unsubscribe()
		ch := make(chan appclient.SessionView, 1)
		ch <- h.svc.Session()
		go func() {
			defer close(ch)
			for {
				select {
				case <-r.Context().Done():
					return
				case v, ok := <-updates:
					if !ok {
						return
					}
					select {
					case ch <- v:
					case <-r.Context().Done():
						return
					}
				}
			}
		}()
		err := stream.Pump[appclient.SessionView](r.Context(), w, ch, ssePingInterval, func(v appclient.SessionView) stream.Event {
			return stream.Event{Event: "session", Data: v}
		})
		streamFailed(w, err)
	}
}

type displayNameBody struct {
	DisplayName string `json:"display_name"`
}

func (h *SessionHandlers) DisplayName() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := h.svc.DisplayName(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, displayNameBody{DisplayName: name})
	}
}

func (h *SessionHandlers) SetDisplayName() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req displayNameBody
		if err := decodeJSON(r, &req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if err := h.svc.SetDisplayName(r.Context(), req.DisplayName); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, req)
	}
}

func (h *SessionHandlers) ValidateAmount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appclient.AmountRequest
		if err := decodeJSON(r, &req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		v, err := h.svc.ValidateAmount(req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}
