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

// BookingRepositoryMongo implements domain.BookingRepository.
type BookingRepositoryMongo struct {
	collection *mongo.Collection
}

// NewBookingRepositoryMongo creates a new BookingRepositoryMongo and ensures its indexes.
func NewBookingRepositoryMongo(ctx context.Context, db *mongo.Database) (*BookingRepositoryMongo, error) {
	repo := &BookingRepositoryMongo{collection: db.Collection(BookingsCollection)}

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "scheduled_at", Value: 1}}},
		{
			Keys:    bson.D{{Key: "payment_meta.provider_payment_id", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if _, err := repo.collection.Indexes().CreateMany(timeoutCtx, indexModels); err != nil {
		log.Warn().Err(err).Msg("Issue creating indexes for bookings collection (might already exist or other error)")
	}
	return repo, nil
}

// GetBooking returns a tenant's booking or domain.ErrBookingNotFound.
func (r *BookingRepositoryMongo) GetBooking(ctx context.Context, tenantID, bookingID string) (*domain.Booking, error) {
	var booking domain.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": bookingID, "tenant_id": tenantID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBookingNotFound
		}
		log.Error().Err(err).Str("tenantID", tenantID).Str("bookingID", bookingID).Msg("Error retrieving booking from MongoDB")
		return nil, err
	}
	if booking.PaymentState == "" {
		booking.PaymentState = domain.PaymentStateNone
	}
	return &booking, nil
}

// CreateBooking inserts a booking. Bookings are created elsewhere in the platform;
// this exists for seeding and tests.
func (r *BookingRepositoryMongo) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}
	if booking.PaymentState == "" {
		booking.PaymentState = domain.PaymentStateNone
	}
	_, err := r.collection.InsertOne(ctx, booking)
	return err
}

// ApplyPayment is a compare-and-set on the booking's payment state. The update
// matches only when the stored state ranks at or below state and the stored
// provider payment id is absent or equal to meta's.
func (r *BookingRepositoryMongo) ApplyPayment(ctx context.Context, tenantID, bookingID string, state domain.PaymentState, meta domain.PaymentMeta) (bool, error) {
	allowed := bson.A{nil, ""}
	for _, s := range state.StatesAtOrBelow() {
		allowed = append(allowed, s)
	}

	filter := bson.M{
		"_id":           bookingID,
		"tenant_id":     tenantID,
		"payment_state": bson.M{"$in": allowed},
		"$or": bson.A{
			bson.M{"payment_meta.provider_payment_id": bson.M{"$exists": false}},
			bson.M{"payment_meta.provider_payment_id": ""},
			bson.M{"payment_meta.provider_payment_id": meta.ProviderPaymentID},
		},
	}
	update := bson.M{"$set": bson.M{
		"payment_state": state,
		"payment_meta":  meta,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		log.Error().Err(err).Str("tenantID", tenantID).Str("bookingID", bookingID).Msg("Error applying payment to booking")
		return false, err
	}
	if result.MatchedCount > 0 {
		return true, nil
	}

	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": bookingID, "tenant_id": tenantID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, domain.ErrBookingNotFound
	}
	return false, nil
}

var _ domain.BookingRepository = (*BookingRepositoryMongo)(nil)
