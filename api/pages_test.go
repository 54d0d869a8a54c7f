package api

import (
	"net/http"
	"testing"

	"github.com/agendateonline/agendate/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkedPage(t *testing.T) {
	page, err := LinkedPage("https://app.agendate.test", &domain.Credential{TenantID: "t-1", UserID: "42", LiveMode: true})
	require.NoError(t, err)

	html := string(page)
	assert.Contains(t, html, "postMessage")
	assert.Contains(t, html, MessageLinked)
	assert.Contains(t, html, `"tenantId":"t-1"`)
	assert.Contains(t, html, "app.agendate.test")
	assert.Contains(t, html, "window.close()")
}

func TestFailedPage_EscapesDetail(t *testing.T) {
	page, err := FailedPage("", http.StatusBadGateway, `<script>alert("x")</script>`)
	require.NoError(t, err)

	html := string(page)
	assert.Contains(t, html, "Mercado Pago rechazó")
	assert.NotContains(t, html, `<script>alert("x")</script>`)
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, `"*"`)
}

func TestErrorStatusMapping(t *testing.T) {
	status, _ := PaymentErrorStatus(assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, status)

	status, _ = WebhookErrorStatus(assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, status)

	assert.Equal(t, http.StatusInternalServerError, OAuthErrorStatus(assert.AnError))
}
