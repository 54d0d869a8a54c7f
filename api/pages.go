package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/agendateonline/agendate/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Message types posted to the window that opened the OAuth popup.
const (
	MessageLinked = "mercadopago:linked"
	MessageFailed = "mercadopago:failed"
)

type popupMessage struct {
	Type     string `json:"type"`
	TenantID string `json:"tenantId,omitempty"`
	UserID   string `json:"userId,omitempty"`
	LiveMode bool   `json:"liveMode,omitempty"`
	Status   int    `json:"status,omitempty"`
}

type pageData struct {
	Payload popupMessage
	Origin  string
	Message string
	Detail  string
}

// LinkedPage renders the page shown after a successful account link.
func LinkedPage(origin string, cred *domain.Credential) ([]byte, error) {
	return render("linked.html", pageData{
		Payload: popupMessage{
			Type:     MessageLinked,
			TenantID: cred.TenantID,
			UserID:   cred.UserID,
			LiveMode: cred.LiveMode,
		},
		Origin: targetOrigin(origin),
	})
}

// FailedPage renders the diagnostic page for a failed link. detail is shown
// verbatim (escaped) to help the business owner report the problem.
func FailedPage(origin string, status int, detail string) ([]byte, error) {
	return render("failed.html", pageData{
		Payload: popupMessage{Type: MessageFailed, Status: status},
		Origin:  targetOrigin(origin),
		Message: failureMessage(status),
		Detail:  detail,
	})
}

func failureMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "La autorización fue cancelada o llegó incompleta."
	case http.StatusNotFound:
		return "No encontramos el negocio que inició la conexión."
	case http.StatusBadGateway:
		return "Mercado Pago rechazó el código de autorización."
	default:
		return "Ocurrió un error inesperado."
	}
}

func targetOrigin(origin string) string {
	if origin == "" {
		return "*"
	}
	return origin
}

func render(name string, data pageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
