package domain

import "time"

// Tenant is a registered business. The Mercado Pago credential lives inside the
// tenant document so that linking an account never clobbers other settings.
type Tenant struct {
	ID          string      `bson:"_id"                   json:"id"`
	Name        string      `bson:"name"                  json:"name"`
	Slug        string      `bson:"slug,omitempty"        json:"slug,omitempty"`
	Email       string      `bson:"email,omitempty"       json:"email,omitempty"`
	MercadoPago *Credential `bson:"mercadopago,omitempty" json:"-"`
	CreatedAt   time.Time   `bson:"created_at"            json:"created_at"`
	UpdatedAt   time.Time   `bson:"updated_at"            json:"updated_at"`
}
