package chain

import (
	"encoding/json"
	"fmt"
)

// Denom is the base unit denomination attached to funded messages.
const Denom = "uscrt"

type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// PermitParams is the signed body of a query permit.
type PermitParams struct {
	PermitName    string   `json:"permit_name"`
	AllowedTokens []string `json:"allowed_tokens"`
	ChainID       string   `json:"chain_id"`
	Permissions   []string `json:"permissions"`
}

type PubKey struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type PermitSignature struct {
	PubKey    PubKey `json:"pub_key"`
	Signature string `json:"signature"`
}

// PermitToken is opaque to everything except the remote program; it is
// embedded as-is into authenticated queries.
type PermitToken struct {
	Params    PermitParams    `json:"params"`
	Signature PermitSignature `json:"signature"`
}

// NewPermitParams builds the owner permit for one contract.
func NewPermitParams(chainID, contract string) PermitParams {
	return PermitParams{
		PermitName:    "Query permit",
		AllowedTokens: []string{contract},
		ChainID:       chainID,
		Permissions:   []string{"owner"},
	}
}

// TxMsg is one compute message inside a transaction. Contract is empty for
// instantiate; CodeID and Label are empty for execute.
type TxMsg struct {
	Type      string          `json:"type"`
	Sender    string          `json:"sender"`
	Contract  string          `json:"contract,omitempty"`
	CodeID    uint64          `json:"code_id,omitempty"`
	CodeHash  string          `json:"code_hash"`
	Label     string          `json:"label,omitempty"`
	Admin     string          `json:"admin,omitempty"`
	Msg       json.RawMessage `json:"msg"`
	SentFunds []Coin          `json:"sent_funds,omitempty"`
}

const (
	MsgTypeExecute     = "wasm/MsgExecuteContract"
	MsgTypeInstantiate = "wasm/MsgInstantiateContract"
)

// TxDoc is the document a wallet signs.
type TxDoc struct {
	ChainID  string  `json:"chain_id"`
	Msgs     []TxMsg `json:"msgs"`
	GasLimit uint64  `json:"gas_limit"`
	Memo     string  `json:"memo,omitempty"`
}

type SignedTx struct {
	Doc       TxDoc  `json:"doc"`
	PubKey    PubKey `json:"pub_key"`
	Signature string `json:"signature"`
}

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Event struct {
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes"`
}

type TxLog struct {
	MsgIndex int     `json:"msg_index"`
	Events   []Event `json:"events"`
}

// Receipt is the broadcast outcome as reported by the gateway.
type Receipt struct {
	TxHash    string  `json:"txhash"`
	Height    int64   `json:"height,string,omitempty"`
	Code      uint32  `json:"code"`
	Codespace string  `json:"codespace,omitempty"`
	RawLog    string  `json:"raw_log"`
	GasUsed   int64   `json:"gas_used,string,omitempty"`
	Logs      []TxLog `json:"logs"`
}

// FindInLogs returns the first attribute named key on a "message" event.
func (r Receipt) FindInLogs(key string) (string, error) {
	for _, l := range r.Logs {
		for _, ev := range l.Events {
			if ev.Type != "message" {
				continue
			}
			for _, attr := range ev.Attributes {
				if attr.Key == key {
					return attr.Value, nil
				}
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrLogKeyNotFound, key)
}
