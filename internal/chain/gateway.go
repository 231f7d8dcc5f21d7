package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	queryPath     = "/compute/v1beta1/query/"
	broadcastPath = "/cosmos/tx/v1beta1/txs"

	broadcastModeBlock = "BROADCAST_MODE_BLOCK"
)

// Gateway talks JSON to the chain's REST gateway.
type Gateway struct {
	baseURL string
	inner   *http.Client
}

func NewGateway(baseURL string, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		inner:   &http.Client{Timeout: timeout},
	}
}

type queryRequest struct {
	CodeHash string `json:"code_hash"`
	Query    any    `json:"query"`
}

// Query runs a smart query against contract. A 401/403, or an error body
// mentioning "unauthorized", is reported as ErrUnauthorized; any other
// failure is ErrTransient.
func (g *Gateway) Query(ctx context.Context, contract, codeHash string, msg any) (json.RawMessage, error) {
	metricQueryTotal.Add(1)
	status, body, err := g.sendJSON(ctx, http.MethodPost, queryPath+url.PathEscape(contract), queryRequest{CodeHash: codeHash, Query: msg})
	if err == nil {
		return json.RawMessage(body), nil
	}
	metricQueryErrors.Add(1)
	if status == http.StatusUnauthorized || status == http.StatusForbidden ||
		strings.Contains(strings.ToLower(string(body)), "unauthorized") {
		metricQueryUnauthorized.Add(1)
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, remoteMessage(body))
	}
	return nil, fmt.Errorf("%w: %v", ErrTransient, err)
}

type broadcastRequest struct {
	TxBytes []byte `json:"tx_bytes"`
	Mode    string `json:"mode"`
}

type broadcastResponse struct {
	TxResponse Receipt `json:"tx_response"`
}

// Broadcast submits a signed transaction and waits for it to be included.
// A receipt with a non-zero code is returned without error; callers decide
// what a rejection means.
func (g *Gateway) Broadcast(ctx context.Context, tx SignedTx) (Receipt, error) {
	metricBroadcastTotal.Add(1)
	raw, err := json.Marshal(tx)
	if err != nil {
		return Receipt{}, err
	}
	_, body, err := g.sendJSON(ctx, http.MethodPost, broadcastPath, broadcastRequest{TxBytes: raw, Mode: broadcastModeBlock})
	if err != nil {
		metricBroadcastErrors.Add(1)
		return Receipt{}, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	var resp broadcastResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		metricBroadcastErrors.Add(1)
		return Receipt{}, fmt.Errorf("%w: decode tx response: %v", ErrTransient, err)
	}
	return resp.TxResponse, nil
}

func (g *Gateway) sendJSON(ctx context.Context, method, path string, body any) (int, []byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.inner.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	bodyRaw, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return resp.StatusCode, nil, readErr
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.StatusCode, bodyRaw, nil
	}
	return resp.StatusCode, bodyRaw, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, remoteMessage(bodyRaw))
}

// remoteMessage extracts the "message" field of a gateway error body, falling
// back to the raw text.
func remoteMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil && e.Message != "" {
		return e.Message
	}
	return strings.TrimSpace(string(body))
}
