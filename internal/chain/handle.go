package chain

import (
	"context"
	"encoding/json"
)

// Signer is the wallet side of a session: it signs permits and transaction
// documents on behalf of one identity.
type Signer interface {
	SignPermit(ctx context.Context, params PermitParams) (PermitToken, error)
	SignTx(ctx context.Context, doc TxDoc) (SignedTx, error)
}

// Handle is the signing/query capability a connected session holds.
type Handle interface {
	Identity() string
	Query(ctx context.Context, resourceID string, msg any) (json.RawMessage, error)
	Execute(ctx context.Context, resourceID string, msg any, funds []Coin, gasLimit uint64) (Receipt, error)
	Instantiate(ctx context.Context, msg any, label string, gasLimit uint64) (Receipt, error)
	SignPermit(ctx context.Context, identity, resourceID string) (PermitToken, error)
}
