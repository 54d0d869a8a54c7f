package mongodb

import (
	"context"

	"github.com/agendateonline/agendate/domain"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// PaymentAuditRepositoryMongo keeps one document per provider payment id.
type PaymentAuditRepositoryMongo struct {
	collection *mongo.Collection
}

// NewPaymentAuditRepositoryMongo creates a new PaymentAuditRepositoryMongo.
func NewPaymentAuditRepositoryMongo(db *mongo.Database) *PaymentAuditRepositoryMongo {
	return &PaymentAuditRepositoryMongo{collection: db.Collection(PaymentAuditsCollection)}
}

// UpsertPaymentAudit inserts or overwrites the entry for entry.ProviderPaymentID.
func (r *PaymentAuditRepositoryMongo) UpsertPaymentAudit(ctx context.Context, entry *domain.PaymentAudit) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": entry.ProviderPaymentID}, entry, opts); err != nil {
		log.Error().Err(err).Str("paymentID", entry.ProviderPaymentID).Msg("Error upserting payment audit")
		return err
	}
	return nil
}

// GetPaymentAudit returns the stored entry for paymentID.
func (r *PaymentAuditRepositoryMongo) GetPaymentAudit(ctx context.Context, paymentID string) (*domain.PaymentAudit, error) {
	var entry domain.PaymentAudit
	if err := r.collection.FindOne(ctx, bson.M{"_id": paymentID}).Decode(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

var _ domain.PaymentAuditRepository = (*PaymentAuditRepositoryMongo)(nil)
