// Package stream writes server-sent event streams.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

var ErrNotSupported = errors.New("stream_not_supported")

// Event is one SSE frame. Data is JSON encoded.
type Event struct {
	ID       string `json:"event_id,omitempty"`
	Event    string `json:"event"`
	Resource string `json:"resource_id,omitempty"`
	ServerTS int64  `json:"server_ts"`
	Data     any    `json:"data"`
}

func WriteSSE(w http.ResponseWriter, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if ev.ID != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", ev.ID); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "event: %s\n", ev.Event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return nil
}

// Pump writes events from ch until ctx ends or ch closes, with a ping every
// pingInterval. Headers are sent before the first read.
func Pump[T any](ctx context.Context, w http.ResponseWriter, ch <-chan T, pingInterval time.Duration, render func(T) Event) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return ErrNotSupported
	}
	SetSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	var seq uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case v, ok := <-ch:
			if !ok {
				return nil
			}
			seq++
			ev := render(v)
			ev.ID = strconv.FormatUint(seq, 10)
			if ev.ServerTS == 0 {
				ev.ServerTS = time.Now().UnixMilli()
			}
			if err := WriteSSE(w, ev); err != nil {
				return err
			}
			flusher.Flush()
		case <-ticker.C:
			now := time.Now().UnixMilli()
			if err := WriteSSE(w, Event{Event: "ping", ServerTS: now, Data: map[string]any{"ts": now}}); err != nil {
				return err
			}
			flusher.Flush()
		}
	}
}
