package game

import "errors"

var (
	ErrInvalidCard      = errors.New("invalid_card")
	ErrInvalidBalance   = errors.New("invalid_balance")
	ErrInvalidLobbySize = errors.New("invalid_lobby_config")
	ErrUnknownAction    = errors.New("unknown_action")
)
