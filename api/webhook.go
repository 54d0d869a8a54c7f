package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	apperrors "github.com/agendateonline/agendate/errors"
	"github.com/agendateonline/agendate/services"
)

// ParseNotification builds a services.Notification from a webhook request. The
// payment id comes from the JSON body's data.id, falling back to the data.id or id
// query parameters used by IPN-style deliveries.
func ParseNotification(body []byte, query url.Values, header http.Header) (services.Notification, error) {
	n := services.Notification{
		TenantHint: query.Get(services.TenantHintParam),
		Signature:  header.Get("X-Signature"),
		RequestID:  header.Get("X-Request-Id"),
	}

	var parsed webhookBody
	if len(bytes.TrimSpace(body)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&parsed); err != nil && query.Get("data.id") == "" && query.Get("id") == "" {
			return n, fmt.Errorf("%w: malformed notification body", apperrors.ErrBadRequest)
		}
	}

	n.PaymentID = idString(parsed.Data.ID)
	if n.PaymentID == "" {
		n.PaymentID = query.Get("data.id")
	}
	if n.PaymentID == "" {
		n.PaymentID = query.Get("id")
	}

	n.Topic = firstOf(parsed.Type, parsed.Topic, query.Get("type"), query.Get("topic"))
	return n, nil
}

func idString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
