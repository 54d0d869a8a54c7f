package mercadopago

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationPath(t *testing.T) {
	assert.Equal(t, "/v1/payments/:id", operationPath("/v1/payments/123456"))
	assert.Equal(t, "/v1/payments", operationPath("/v1/payments"))
	assert.Equal(t, "/checkout/preferences", operationPath("/checkout/preferences?x=1"))
	assert.Equal(t, "/users/me", operationPath("/users/me"))
}
