package mongodb

const (
	// TenantsCollection holds one document per business, including the embedded
	// "mercadopago" credential sub-document.
	TenantsCollection       = "businesses"
	BookingsCollection      = "bookings"
	PaymentAuditsCollection = "payment_audits"
)
