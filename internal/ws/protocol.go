package ws

import "encoding/json"

// ProtocolVersion is sent by the server in its hello frame.
const ProtocolVersion = "1"

const (
	MethodEnable      = "enable"
	MethodGetIdentity = "get_identity"
	MethodSignPermit  = "sign_permit"
	MethodSignTx      = "sign_tx"
)

type Hello struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

type Request struct {
	Type   string          `json:"type"`
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type Response struct {
	Type   string          `json:"type"`
	ID     string          `json:"id"`
	Ok     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type ChainParams struct {
	ChainID string `json:"chain_id"`
}

type IdentityResult struct {
	Address string `json:"address"`
}

type SignPermitParams struct {
	ChainID string          `json:"chain_id"`
	Permit  json.RawMessage `json:"permit"`
}

type SignTxParams struct {
	ChainID string          `json:"chain_id"`
	Doc     json.RawMessage `json:"doc"`
}
