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

// TenantRepositoryMongo reads businesses from the tenants collection.
type TenantRepositoryMongo struct {
	collection *mongo.Collection
}

// NewTenantRepositoryMongo creates a new TenantRepositoryMongo and ensures its indexes.
func NewTenantRepositoryMongo(ctx context.Context, db *mongo.Database) (*TenantRepositoryMongo, error) {
	repo := &TenantRepositoryMongo{collection: db.Collection(TenantsCollection)}

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "mercadopago.user_id", Value: 1}},
		},
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if _, err := repo.collection.Indexes().CreateMany(timeoutCtx, indexModels); err != nil {
		log.Warn().Err(err).Msg("Issue creating indexes for businesses collection (might already exist or other error)")
	} else {
		log.Info().Msg("Indexes for businesses collection ensured.")
	}
	return repo, nil
}

// GetTenant returns the tenant without its credential.
func (r *TenantRepositoryMongo) GetTenant(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	var tenant domain.Tenant
	opts := options.FindOne().SetProjection(bson.M{"mercadopago": 0})
	err := r.collection.FindOne(ctx, bson.M{"_id": tenantID}, opts).Decode(&tenant)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTenantNotFound
		}
		log.Error().Err(err).Str("tenantID", tenantID).Msg("Error retrieving tenant from MongoDB")
		return nil, err
	}
	return &tenant, nil
}

// TenantExists reports whether tenantID is registered.
func (r *TenantRepositoryMongo) TenantExists(ctx context.Context, tenantID string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": tenantID}, options.Count().SetLimit(1))
	if err != nil {
		log.Error().Err(err).Str("tenantID", tenantID).Msg("Error counting tenants in MongoDB")
		return false, err
	}
	return n > 0, nil
}

// CreateTenant inserts a new tenant. It is used by seeding and tests.
func (r *TenantRepositoryMongo) CreateTenant(ctx context.Context, tenant *domain.Tenant) error {
	now := time.Now().UTC()
	if tenant.CreatedAt.IsZero() {
		tenant.CreatedAt = now
	}
	tenant.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, tenant)
	if err != nil {
		log.Error().Err(err).Str("tenantID", tenant.ID).Msg("Error creating tenant in MongoDB")
		return err
	}
	return nil
}

var _ domain.TenantRepository = (*TenantRepositoryMongo)(nil)
