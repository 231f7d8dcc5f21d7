package session

import (
	"chain-poker/internal/chain"
	"chain-poker/internal/wallet"
)

var (
	ErrNotConnected        = chain.ErrNotConnected
	ErrProviderUnavailable = wallet.ErrProviderUnavailable
)
