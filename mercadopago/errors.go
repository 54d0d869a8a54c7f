package mercadopago

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/agendateonline/agendate/errors"
)

// errorBody is the provider's error envelope. Token endpoint errors use "error", the
// REST API uses "message" plus "cause".
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
	Cause   []struct {
		Code        any    `json:"code"`
		Description string `json:"description"`
	} `json:"cause"`
}

func parseError(status int, raw []byte) *apperrors.ProviderError {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return apperrors.NewProviderError(status, "", http.StatusText(status), raw)
	}

	message := body.Message
	if message == "" && len(body.Cause) > 0 {
		message = body.Cause[0].Description
	}
	return apperrors.NewProviderError(status, body.Error, message, raw)
}
