package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/agendateonline/agendate/domain"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const credentialField = "mercadopago"

// CredentialRepositoryMongo stores credentials as the "mercadopago" sub-document of
// the tenant document. Writes only touch that field.
type CredentialRepositoryMongo struct {
	collection *mongo.Collection
}

// NewCredentialRepositoryMongo creates a new CredentialRepositoryMongo.
func NewCredentialRepositoryMongo(db *mongo.Database) *CredentialRepositoryMongo {
	return &CredentialRepositoryMongo{collection: db.Collection(TenantsCollection)}
}

// Get returns the tenant's credential or domain.ErrCredentialNotFound.
func (r *CredentialRepositoryMongo) Get(ctx context.Context, tenantID string) (*domain.Credential, error) {
	var tenant domain.Tenant
	opts := options.FindOne().SetProjection(bson.M{credentialField: 1})
	err := r.collection.FindOne(ctx, bson.M{"_id": tenantID}, opts).Decode(&tenant)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCredentialNotFound
		}
		log.Error().Err(err).Str("tenantID", tenantID).Msg("Error retrieving credential from MongoDB")
		return nil, err
	}
	if tenant.MercadoPago == nil || tenant.MercadoPago.AccessToken == "" {
		return nil, domain.ErrCredentialNotFound
	}

	cred := tenant.MercadoPago
	cred.TenantID = tenantID
	return cred, nil
}

// Put replaces the credential sub-document. The rest of the tenant document is left
// as is. It returns domain.ErrTenantNotFound if the tenant does not exist.
func (r *CredentialRepositoryMongo) Put(ctx context.Context, tenantID string, cred *domain.Credential) error {
	stored := *cred
	stored.TenantID = tenantID
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}

	update := bson.M{"$set": bson.M{
		credentialField: stored,
		"updated_at":    time.Now().UTC(),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": tenantID}, update)
	if err != nil {
		log.Error().Err(err).Str("tenantID", tenantID).Msg("Error storing credential in MongoDB")
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}

// Delete removes the credential. Deleting a missing credential is not an error.
func (r *CredentialRepositoryMongo) Delete(ctx context.Context, tenantID string) error {
	update := bson.M{
		"$unset": bson.M{credentialField: ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	}
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": tenantID}, update); err != nil {
		log.Error().Err(err).Str("tenantID", tenantID).Msg("Error deleting credential from MongoDB")
		return err
	}
	return nil
}

var _ domain.CredentialRepository = (*CredentialRepositoryMongo)(nil)
