package httptransport

import (
	"errors"
	"net/http"
	"strings"

	"chain-poker/internal/action"
	appclient "chain-poker/internal/app/client"
	"chain-poker/internal/chain"
	"chain-poker/internal/form"
	"chain-poker/internal/game"
	"chain-poker/internal/wallet"
)

// MapError turns a service error into a status, a code and an optional
// message for display.
func MapError(err error) (int, string, string) {
	var remote *chain.RemoteError
	var fields game.FieldErrors
	switch {
	case errors.As(err, &remote):
		return http.StatusUnprocessableEntity, "remote_rejected", remote.Error()
	case errors.As(err, &fields):
		return http.StatusBadRequest, "validation_failed", firstFieldError(fields)
	case errors.Is(err, form.ErrValidationFailed):
		return http.StatusBadRequest, "validation_failed", validationMessage(err)
	case errors.Is(err, wallet.ErrProviderUnavailable):
		return http.StatusServiceUnavailable, "provider_unavailable", ""
	case errors.Is(err, chain.ErrNotConnected):
		return http.StatusConflict, "not_connected", ""
	case errors.Is(err, action.ErrActionPending):
		return http.StatusConflict, "action_pending", ""
	case errors.Is(err, chain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized", ""
	case errors.Is(err, chain.ErrTransient):
		return http.StatusBadGateway, "transient", ""
	case errors.Is(err, game.ErrUnknownAction):
		return http.StatusNotFound, "unknown_action", ""
	case errors.Is(err, appclient.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request", ""
	case errors.Is(err, wallet.ErrNotEnabled), errors.Is(err, wallet.ErrUnknownChain):
		return http.StatusForbidden, "wallet_refused", ""
	default:
		return http.StatusInternalServerError, "internal_error", ""
	}
}

func validationMessage(err error) string {
	prefix := form.ErrValidationFailed.Error() + ": "
	msg := err.Error()
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}

func firstFieldError(f game.FieldErrors) string {
	for _, k := range []string{"big_blind", "min_buy_in_bb", "max_buy_in_bb"} {
		if msg, ok := f[k]; ok {
			return k + ": " + msg
		}
	}
	return ""
}

// errorBody is the JSON error envelope for err. A chain rejection also carries
// the remote text untouched in remote_message.
func errorBody(err error) (int, map[string]any) {
	status, code, msg := MapError(err)
	body := map[string]any{"error": code}
	if msg != "" {
		body["message"] = msg
	}
	var remote *chain.RemoteError
	if errors.As(err, &remote) {
		body["remote_message"] = remote.Message
		body["remote_code"] = remote.Code
		if remote.TxHash != "" {
			body["tx_hash"] = remote.TxHash
		}
	}
	return status, body
}

func writeServiceError(w http.ResponseWriter, err error) {
	status, body := errorBody(err)
	writeJSON(w, status, body)
}
