package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"chain-poker/internal/chain"
)

// Backend is the wallet a Server exposes over the bridge.
type Backend interface {
	Enable(ctx context.Context, chainID string) error
	Identity(ctx context.Context, chainID string) (string, error)
	Signer(chainID string) (chain.Signer, error)
}

type conn struct {
	ws   *websocket.Conn
	send chan []byte
}

// Server answers bridge requests from client processes. Each connection
// handles its requests in order. Browser pages from another origin are
// refused at the handshake; local processes send no Origin header.
type Server struct {
	backend  Backend
	upgrader websocket.Upgrader
	mu       sync.Mutex
	conns    map[*conn]bool
}

func NewServer(backend Backend) *Server {
	return &Server{
		backend:  backend,
		upgrader: websocket.Upgrader{},
		conns:    map[*conn]bool{},
	}
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("remote", r.RemoteAddr).Str("origin", r.Header.Get("Origin")).Msg("wallet_bridge_refused")
		return
	}
	c := &conn{ws: wsConn, send: make(chan []byte, 8)}
	s.mu.Lock()
	s.conns[c] = true
	s.mu.Unlock()
	log.Info().Str("remote", r.RemoteAddr).Msg("wallet_bridge_connected")

	hello, _ := json.Marshal(Hello{Type: "hello", ProtocolVersion: ProtocolVersion})
	c.send <- hello

	go s.writeLoop(c)
	s.readLoop(r.Context(), c)
}

// Connections reports the number of live bridge connections.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Close drops every live connection. Clients observe ErrClosed.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		_ = c.ws.Close()
	}
}

func (s *Server) readLoop(ctx context.Context, c *conn) {
	defer s.unregister(c)

	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var req Request
		if err := json.Unmarshal(msg, &req); err != nil || req.Type != "request" || req.ID == "" {
			continue
		}
		resp := s.handleRequest(ctx, req)
		out, _ := json.Marshal(resp)
		safeSend(c.send, out)
	}
}

func (s *Server) writeLoop(c *conn) {
	for msg := range c.send {
		_ = c.ws.WriteMessage(websocket.TextMessage, msg)
	}
}

func (s *Server) handleRequest(ctx context.Context, req Request) Response {
	result, err := s.dispatch(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("method", req.Method).Str("request_id", req.ID).Msg("wallet_bridge_request_failed")
		return Response{Type: "response", ID: req.ID, Ok: false, Error: err.Error()}
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return Response{Type: "response", ID: req.ID, Ok: false, Error: err.Error()}
	}
	return Response{Type: "response", ID: req.ID, Ok: true, Result: raw}
}

func (s *Server) dispatch(ctx context.Context, req Request) (any, error) {
	switch req.Method {
	case MethodEnable:
		var p ChainParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, errInvalidParams
		}
		return struct{}{}, s.backend.Enable(ctx, p.ChainID)
	case MethodGetIdentity:
		var p ChainParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, errInvalidParams
		}
		addr, err := s.backend.Identity(ctx, p.ChainID)
		if err != nil {
			return nil, err
		}
		return IdentityResult{Address: addr}, nil
	case MethodSignPermit:
		var p SignPermitParams
		var params chain.PermitParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, errInvalidParams
		}
		if err := json.Unmarshal(p.Permit, &params); err != nil {
			return nil, errInvalidParams
		}
		signer, err := s.backend.Signer(p.ChainID)
		if err != nil {
			return nil, err
		}
		return signer.SignPermit(ctx, params)
	case MethodSignTx:
		var p SignTxParams
		var doc chain.TxDoc
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, errInvalidParams
		}
		if err := json.Unmarshal(p.Doc, &doc); err != nil {
			return nil, errInvalidParams
		}
		signer, err := s.backend.Signer(p.ChainID)
		if err != nil {
			return nil, err
		}
		return signer.SignTx(ctx, doc)
	default:
		return nil, errUnknownMethod
	}
}

func (s *Server) unregister(c *conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	safeClose(c.send)
	_ = c.ws.Close()
}

func safeClose(ch chan []byte) {
	defer func() {
		_ = recover()
	}()
	close(ch)
}

func safeSend(ch chan []byte, msg []byte) {
	defer func() {
		_ = recover()
	}()
	ch <- msg
}
