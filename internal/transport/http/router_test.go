package httptransport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chain-poker/internal/action"
	appclient "chain-poker/internal/app/client"
	"chain-poker/internal/chain"
	"chain-poker/internal/form"
	"chain-poker/internal/kvstore"
	"chain-poker/internal/permit"
	"chain-poker/internal/poller"
	"chain-poker/internal/session"
	"chain-poker/internal/wallet"
)

const testLobbyJSON = `{
	"admin": "secret1me",
	"lobby_config": {"big_blind": 100000, "max_buy_in_bb": 100, "min_buy_in_bb": 20},
	"is_started": true,
	"balances": [["secret1me", "5000000"]]
}`

type testProvider struct{}

func (testProvider) Enable(context.Context, string) error { return nil }
func (testProvider) Identity(context.Context, string) (string, error) {
	return "secret1me", nil
}
func (testProvider) Signer(string) (chain.Signer, error) { return nil, nil }

type testHandle struct {
	receipt chain.Receipt
}

func (testHandle) Identity() string { return "secret1me" }
func (testHandle) Query(context.Context, string, any) (json.RawMessage, error) {
	return json.RawMessage(testLobbyJSON), nil
}
func (h testHandle) Execute(context.Context, string, any, []chain.Coin, uint64) (chain.Receipt, error) {
	return h.receipt, nil
}
func (testHandle) Instantiate(context.Context, any, string, uint64) (chain.Receipt, error) {
	return chain.Receipt{}, nil
}
func (testHandle) SignPermit(context.Context, string, string) (chain.PermitToken, error) {
	return chain.PermitToken{}, nil
}

type publicReader struct{}

func (publicReader) Query(context.Context, string, any) (json.RawMessage, error) {
	return json.RawMessage(testLobbyJSON), nil
}

func newTestRouter(t *testing.T, provider wallet.Provider, h testHandle) http.Handler {
	t.Helper()
	store := kvstore.NewMemory()
	sessions := session.NewManager(provider, "pulsar-3", store, func(string, chain.Signer) (chain.Handle, error) {
		return h, nil
	})
	svc := appclient.NewService(appclient.Deps{
		Sessions:     sessions,
		Permits:      permit.NewCache(store),
		Poller:       poller.New(),
		Dispatcher:   action.NewDispatcher(sessions),
		Public:       publicReader{},
		ChainID:      "pulsar-3",
		PollInterval: 10 * time.Millisecond,
	})
	return NewRouter(svc, nil)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return body.Error, body.Message
}

func TestConnectWithoutProvider(t *testing.T) {
	router := newTestRouter(t, nil, testHandle{})
	w := doJSON(t, router, http.MethodPost, "/api/session/connect", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if code, _ := errorCode(t, w); code != "provider_unavailable" {
		t.Fatalf("code = %s, want provider_unavailable", code)
	}
}

func TestActionWithoutSession(t *testing.T) {
	router := newTestRouter(t, testProvider{}, testHandle{})
	w := doJSON(t, router, http.MethodPost, "/api/lobbies/secret1lobby/actions/fold", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if code, _ := errorCode(t, w); code != "not_connected" {
		t.Fatalf("code = %s, want not_connected", code)
	}
}

func TestStateChangesRefuseForeignPages(t *testing.T) {
	router := newTestRouter(t, testProvider{}, testHandle{receipt: chain.Receipt{TxHash: "F00"}})
	doJSON(t, router, http.MethodPost, "/api/session/connect", nil)

	post := func(origin, contentType string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/lobbies/secret1lobby/actions/fold", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	cases := []struct {
		name        string
		origin      string
		contentType string
		status      int
		code        string
	}{
		{"foreign origin", "https://evil.example", "application/json", http.StatusForbidden, "cross_origin"},
		{"opaque origin", "null", "application/json", http.StatusForbidden, "cross_origin"},
		{"text plain", "", "text/plain", http.StatusUnsupportedMediaType, "unsupported_media_type"},
		{"form post", "", "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType, "unsupported_media_type"},
		{"no content type", "", "", http.StatusUnsupportedMediaType, "unsupported_media_type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := post(tc.origin, tc.contentType)
			if w.Code != tc.status {
				t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
			}
			if code, _ := errorCode(t, w); code != tc.code {
				t.Fatalf("code = %s, want %s", code, tc.code)
			}
		})
	}

	// httptest requests target example.com
	if w := post("http://example.com", "application/json; charset=utf-8"); w.Code != http.StatusOK {
		t.Fatalf("same-origin status=%d body=%s", w.Code, w.Body.String())
	}
	if w := doJSON(t, router, http.MethodGet, "/api/session", nil); w.Code != http.StatusOK {
		t.Fatalf("GET status=%d", w.Code)
	}
}

func TestActionRejectedKeepsRemoteMessage(t *testing.T) {
	router := newTestRouter(t, testProvider{}, testHandle{receipt: chain.Receipt{TxHash: "F00", Code: 5, RawLog: "not your turn"}})
	if w := doJSON(t, router, http.MethodPost, "/api/session/connect", nil); w.Code != http.StatusOK {
		t.Fatalf("connect status=%d body=%s", w.Code, w.Body.String())
	}

	w := doJSON(t, router, http.MethodPost, "/api/lobbies/secret1lobby/actions/fold", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	code, msg := errorCode(t, w)
	if code != "remote_rejected" {
		t.Fatalf("code = %s, want remote_rejected", code)
	}
	if !strings.Contains(msg, "Status code: 5") || !strings.Contains(msg, "not your turn") {
		t.Fatalf("message = %q", msg)
	}
	var body struct {
		RemoteMessage string `json:"remote_message"`
		RemoteCode    uint32 `json:"remote_code"`
		TxHash        string `json:"tx_hash"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.RemoteMessage != "not your turn" || body.RemoteCode != 5 || body.TxHash != "F00" {
		t.Fatalf("remote fields = %+v", body)
	}
}

func TestActionAccepted(t *testing.T) {
	router := newTestRouter(t, testProvider{}, testHandle{receipt: chain.Receipt{TxHash: "F00"}})
	doJSON(t, router, http.MethodPost, "/api/session/connect", nil)

	w := doJSON(t, router, http.MethodPost, "/api/lobbies/secret1lobby/actions/call", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp appclient.ActionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Outcome != action.OutcomeAccepted || resp.TxHash != "F00" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestDisplayNameValidation(t *testing.T) {
	router := newTestRouter(t, testProvider{}, testHandle{})
	w := doJSON(t, router, http.MethodPut, "/api/preferences/display-name", map[string]string{"display_name": "al"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if _, msg := errorCode(t, w); msg != "This field must be at least 3 characters long" {
		t.Fatalf("message = %q", msg)
	}

	w = doJSON(t, router, http.MethodPut, "/api/preferences/display-name", map[string]string{"display_name": "alice"})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	w = doJSON(t, router, http.MethodGet, "/api/preferences/display-name", nil)
	if !strings.Contains(w.Body.String(), `"alice"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestValidateAmountEndpoint(t *testing.T) {
	router := newTestRouter(t, testProvider{}, testHandle{})
	w := doJSON(t, router, http.MethodPost, "/api/amounts/validate", appclient.AmountRequest{
		Raw:   "0.5",
		Rules: appclient.AmountRules{Required: true, Min: "1"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "This field must be at least 1") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestBetEndpoints(t *testing.T) {
	router := newTestRouter(t, testProvider{}, testHandle{})
	w := doJSON(t, router, http.MethodGet, "/api/lobbies/secret1lobby/bet", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp appclient.BetResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.VisibleError != "" {
		t.Fatalf("untouched bet shows error %q", resp.VisibleError)
	}

	w = doJSON(t, router, http.MethodPut, "/api/lobbies/secret1lobby/bet", appclient.BetRequest{Raw: "1"})
	if w.Code != http.StatusConflict {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestLobbyStatusEventsStream(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t, testProvider{}, testHandle{}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/lobbies/secret1lobby/status/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type = %q", ct)
	}

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		if sc.Text() == "event: snapshot" {
			return
		}
	}
	t.Fatalf("no snapshot event: %v", sc.Err())
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	Health(failingPinger{})(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
	w = httptest.NewRecorder()
	Health(nil)(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }

func TestMapError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{wallet.ErrProviderUnavailable, http.StatusServiceUnavailable, "provider_unavailable"},
		{chain.ErrNotConnected, http.StatusConflict, "not_connected"},
		{fmt.Errorf("query: %w", chain.ErrUnauthorized), http.StatusUnauthorized, "unauthorized"},
		{&chain.RemoteError{Code: 3, Message: "boom"}, http.StatusUnprocessableEntity, "remote_rejected"},
		{fmt.Errorf("%w: This field is required", form.ErrValidationFailed), http.StatusBadRequest, "validation_failed"},
		{action.ErrActionPending, http.StatusConflict, "action_pending"},
		{fmt.Errorf("%w: timeout", chain.ErrTransient), http.StatusBadGateway, "transient"},
		{errors.New("other"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		status, code, _ := MapError(tt.err)
		if status != tt.status || code != tt.code {
			t.Fatalf("MapError(%v) = %d %s, want %d %s", tt.err, status, code, tt.status, tt.code)
		}
	}
	_, _, msg := MapError(fmt.Errorf("%w: This field is required", form.ErrValidationFailed))
	if msg != "This field is required" {
		t.Fatalf("message = %q", msg)
	}
}
