package client

import (
	"time"

	"chain-poker/internal/action"
	"chain-poker/internal/game"
	"chain-poker/internal/game/viewmodel"
)

type SessionView struct {
	Connected     bool   `json:"connected"`
	Identity      string `json:"identity,omitempty"`
	ChainID       string `json:"chain_id"`
	AutoReconnect bool   `json:"auto_reconnect"`
}

// AmountRules carries bounds as decimal SCRT strings.
type AmountRules struct {
	Required  bool   `json:"required"`
	Min       string `json:"min,omitempty"`
	Max       string `json:"max,omitempty"`
	AllowZero bool   `json:"allow_zero,omitempty"`
}

type AmountRequest struct {
	Raw   string      `json:"raw"`
	Rules AmountRules `json:"rules"`
}

type CreateLobbyRequest struct {
	Username string `json:"username"`
	game.LobbyConfigInput
}

type CreateLobbyResponse struct {
	LobbyID string `json:"lobby_id"`
	TxHash  string `json:"txhash"`
}

type LobbyStatusResponse struct {
	LobbyID   string              `json:"lobby_id"`
	FetchedAt time.Time           `json:"fetched_at"`
	Lobby     viewmodel.LobbyView `json:"lobby"`
}

type GameStatusResponse struct {
	LobbyID   string              `json:"lobby_id"`
	Identity  string              `json:"identity"`
	FetchedAt time.Time           `json:"fetched_at"`
	Table     viewmodel.TableView `json:"table"`

	status game.InGameStatus
}

type ActionResponse struct {
	ActionID string         `json:"action_id"`
	Action   string         `json:"action"`
	LobbyID  string         `json:"lobby_id"`
	TxHash   string         `json:"txhash,omitempty"`
	Outcome  action.Outcome `json:"outcome"`
}
