package domain

import "time"

// Credential is the Mercado Pago OAuth credential set stored for a tenant.
// At most one exists per tenant.
type Credential struct {
	TenantID     string    `bson:"tenant_id"               json:"tenant_id"               yaml:"tenant_id"`
	AccessToken  string    `bson:"access_token"            json:"access_token"            yaml:"access_token"`
	RefreshToken string    `bson:"refresh_token"           json:"refresh_token"           yaml:"refresh_token"`
	UserID       string    `bson:"user_id"                 json:"user_id"                 yaml:"user_id"`
	PublicKey    string    `bson:"public_key,omitempty"    json:"public_key,omitempty"    yaml:"public_key,omitempty"`
	LiveMode     bool      `bson:"live_mode"               json:"live_mode"               yaml:"live_mode"`
	Scope        string    `bson:"scope,omitempty"         json:"scope,omitempty"         yaml:"scope,omitempty"`
	ExpiresAt    time.Time `bson:"expires_at,omitempty"    json:"expires_at,omitempty"    yaml:"expires_at,omitempty"`
	UpdatedAt    time.Time `bson:"updated_at"              json:"updated_at"              yaml:"updated_at"`
}

// Redacted returns a copy safe to print: tokens keep only their last four characters.
func (c *Credential) Redacted() *Credential {
	if c == nil {
		return nil
	}
	out := *c
	out.AccessToken = redact(c.AccessToken)
	out.RefreshToken = redact(c.RefreshToken)
	return &out
}

func redact(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
