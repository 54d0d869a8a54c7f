package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/agendateonline/agendate/domain"
	"github.com/agendateonline/agendate/mongodb/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestCredentialRepositoryMongo(t *testing.T) {
	db, cleanup := testutil.SetupTestMongoDB(t, "agendate_credentials")
	defer cleanup()
	ctx := context.Background()

	tenants, err := NewTenantRepositoryMongo(ctx, db)
	require.NoError(t, err)
	creds := NewCredentialRepositoryMongo(db)

	require.NoError(t, tenants.CreateTenant(ctx, &domain.Tenant{ID: "t-1", Name: "Barbería Centro", Slug: "barberia-centro"}))

	t.Run("Get without credential", func(t *testing.T) {
		_, err := creds.Get(ctx, "t-1")
		assert.ErrorIs(t, err, domain.ErrCredentialNotFound)

		_, err = creds.Get(ctx, "unknown")
		assert.ErrorIs(t, err, domain.ErrCredentialNotFound)
	})

	t.Run("Put merges into tenant document", func(t *testing.T) {
		cred := &domain.Credential{
			AccessToken:  "APP_USR-1",
			RefreshToken: "TG-1",
			UserID:       "42",
			LiveMode:     true,
			UpdatedAt:    time.Now().UTC().Truncate(time.Millisecond),
		}
		require.NoError(t, creds.Put(ctx, "t-1", cred))

		got, err := creds.Get(ctx, "t-1")
		require.NoError(t, err)
		assert.Equal(t, "t-1", got.TenantID)
		assert.Equal(t, "APP_USR-1", got.AccessToken)
		assert.Equal(t, "TG-1", got.RefreshToken)
		assert.True(t, got.LiveMode)

		tenant, err := tenants.GetTenant(ctx, "t-1")
		require.NoError(t, err)
		assert.Equal(t, "Barbería Centro", tenant.Name)
		assert.Equal(t, "barberia-centro", tenant.Slug)
		assert.Nil(t, tenant.MercadoPago)
	})

	t.Run("Put for unknown tenant", func(t *testing.T) {
		err := creds.Put(ctx, "ghost", &domain.Credential{AccessToken: "x"})
		assert.ErrorIs(t, err, domain.ErrTenantNotFound)
	})

	t.Run("Delete keeps the tenant", func(t *testing.T) {
		require.NoError(t, creds.Delete(ctx, "t-1"))
		_, err := creds.Get(ctx, "t-1")
		assert.ErrorIs(t, err, domain.ErrCredentialNotFound)

		exists, err := tenants.TenantExists(ctx, "t-1")
		require.NoError(t, err)
		assert.True(t, exists)

		require.NoError(t, creds.Delete(ctx, "t-1"))
	})
}

func TestTenantRepositoryMongo_TenantExists(t *testing.T) {
	db, cleanup := testutil.SetupTestMongoDB(t, "agendate_tenants")
	defer cleanup()
	ctx := context.Background()

	tenants, err := NewTenantRepositoryMongo(ctx, db)
	require.NoError(t, err)

	exists, err := tenants.TenantExists(ctx, "t-1")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = tenants.GetTenant(ctx, "t-1")
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}

func TestBookingRepositoryMongo_ApplyPayment(t *testing.T) {
	db, cleanup := testutil.SetupTestMongoDB(t, "agendate_bookings")
	defer cleanup()
	ctx := context.Background()

	bookings, err := NewBookingRepositoryMongo(ctx, db)
	require.NoError(t, err)

	require.NoError(t, bookings.CreateBooking(ctx, &domain.Booking{
		ID:                "b-1",
		TenantID:          "t-1",
		CustomerContact:   "ana@example.com",
		ServiceDescriptor: "Corte",
		ScheduledAt:       time.Date(2026, 11, 2, 10, 0, 0, 0, time.UTC),
	}))

	meta := func(id, status string) domain.PaymentMeta {
		return domain.PaymentMeta{ProviderPaymentID: id, Amount: 1500, Status: status, UpdatedAt: time.Now().UTC().Truncate(time.Millisecond)}
	}

	applied, err := bookings.ApplyPayment(ctx, "t-1", "b-1", domain.PaymentStatePending, meta("100", "in_process"))
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = bookings.ApplyPayment(ctx, "t-1", "b-1", domain.PaymentStateConfirmed, meta("100", "approved"))
	require.NoError(t, err)
	assert.True(t, applied)

	// A late in_process delivery must not regress the booking.
	applied, err = bookings.ApplyPayment(ctx, "t-1", "b-1", domain.PaymentStatePending, meta("100", "in_process"))
	require.NoError(t, err)
	assert.False(t, applied)

	// Same state again rewrites the meta.
	applied, err = bookings.ApplyPayment(ctx, "t-1", "b-1", domain.PaymentStateConfirmed, meta("100", "approved"))
	require.NoError(t, err)
	assert.True(t, applied)

	// A different payment never replaces the recorded one.
	applied, err = bookings.ApplyPayment(ctx, "t-1", "b-1", domain.PaymentStateConfirmed, meta("200", "approved"))
	require.NoError(t, err)
	assert.False(t, applied)

	booking, err := bookings.GetBooking(ctx, "t-1", "b-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStateConfirmed, booking.PaymentState)
	require.NotNil(t, booking.PaymentMeta)
	assert.Equal(t, "100", booking.PaymentMeta.ProviderPaymentID)
	assert.Equal(t, "approved", booking.PaymentMeta.Status)

	_, err = bookings.ApplyPayment(ctx, "t-1", "missing", domain.PaymentStateConfirmed, meta("100", "approved"))
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)

	_, err = bookings.ApplyPayment(ctx, "t-2", "b-1", domain.PaymentStateConfirmed, meta("100", "approved"))
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestBookingRepositoryMongo_LegacyDocumentWithoutState(t *testing.T) {
	db, cleanup := testutil.SetupTestMongoDB(t, "agendate_bookings_legacy")
	defer cleanup()
	ctx := context.Background()

	bookings, err := NewBookingRepositoryMongo(ctx, db)
	require.NoError(t, err)

	_, err = db.Collection(BookingsCollection).InsertOne(ctx, bson.M{"_id": "b-old", "tenant_id": "t-1"})
	require.NoError(t, err)

	booking, err := bookings.GetBooking(ctx, "t-1", "b-old")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStateNone, booking.PaymentState)

	applied, err := bookings.ApplyPayment(ctx, "t-1", "b-old", domain.PaymentStatePending, domain.PaymentMeta{ProviderPaymentID: "1", Status: "in_process"})
	require.NoError(t, err)
	assert.True(t, applied)
}

func TestPaymentAuditRepositoryMongo_Upsert(t *testing.T) {
	db, cleanup := testutil.SetupTestMongoDB(t, "agendate_audits")
	defer cleanup()
	ctx := context.Background()

	audits := NewPaymentAuditRepositoryMongo(db)

	entry := &domain.PaymentAudit{ProviderPaymentID: "100", TenantID: "t-1", BookingID: "b-1", Amount: 1500, Status: "in_process"}
	require.NoError(t, audits.UpsertPaymentAudit(ctx, entry))

	entry.Status = "approved"
	require.NoError(t, audits.UpsertPaymentAudit(ctx, entry))

	got, err := audits.GetPaymentAudit(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, "approved", got.Status)

	n, err := db.Collection(PaymentAuditsCollection).CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
