// Package app builds the storage, provider client and services from configuration.
// Both the server and agendactl start from it.
package app

import (
	"context"
	"fmt"

	"github.com/agendateonline/agendate/cache"
	rediscache "github.com/agendateonline/agendate/cache/redis"
	"github.com/agendateonline/agendate/config"
	"github.com/agendateonline/agendate/domain"
	"github.com/agendateonline/agendate/mercadopago"
	"github.com/agendateonline/agendate/mongodb"
	"github.com/agendateonline/agendate/services"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// App holds the wired components.
type App struct {
	Config *config.ServerConfig

	Tenants     *mongodb.TenantRepositoryMongo
	Bookings    *mongodb.BookingRepositoryMongo
	Audits      *mongodb.PaymentAuditRepositoryMongo
	Credentials domain.CredentialRepository

	Provider  *mercadopago.Client
	Refresher *services.TokenRefresher
	Payments  *services.PaymentService
	Webhooks  *services.WebhookService
	Accounts  *services.OAuthService

	closers []func(context.Context) error
}

// New connects to MongoDB (and Redis when it is the credential backend) and builds
// the services.
func New(ctx context.Context, cfg *config.ServerConfig) (*App, error) {
	if err := mongodb.InitMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName); err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB: %w", err)
	}
	db := mongodb.GetDB()

	a := &App{
		Config: cfg,
		closers: []func(context.Context) error{func(ctx context.Context) error {
			mongodb.CloseMongoDB(ctx)
			return nil
		}},
	}

	tenants, err := mongodb.NewTenantRepositoryMongo(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tenant repository: %w", err)
	}
	bookings, err := mongodb.NewBookingRepositoryMongo(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize booking repository: %w", err)
	}
	a.Tenants = tenants
	a.Bookings = bookings
	a.Audits = mongodb.NewPaymentAuditRepositoryMongo(db)

	creds, err := a.credentialStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Credentials = creds

	a.Provider = mercadopago.NewClient(mercadopago.Config{
		BaseURL:      cfg.MPBaseURL,
		AuthURL:      cfg.MPAuthURL,
		ClientID:     cfg.MPClientID,
		ClientSecret: cfg.MPClientSecret,
		RedirectURL:  cfg.MPRedirectURL,
		Timeout:      cfg.MPTimeout,
	})

	a.Refresher = services.NewTokenRefresher(a.Credentials, a.Provider)
	a.Payments = services.NewPaymentService(a.Credentials, a.Refresher, a.Provider, services.PaymentConfig{
		NotificationURL:        cfg.MPNotificationURL,
		DefaultPaymentMethodID: cfg.MPDefaultMethodID,
		CurrencyID:             cfg.MPCurrencyID,
		BackURLs: mercadopago.BackURLs{
			Success: cfg.BackURLSuccess,
			Pending: cfg.BackURLPending,
			Failure: cfg.BackURLFailure,
		},
	})
	a.Webhooks = a.NewReconciler(cfg.MPWebhookSecret)
	a.Accounts = services.NewOAuthService(a.Tenants, a.Credentials, a.Provider)

	return a, nil
}

// NewReconciler builds a webhook reconciler. An empty secret skips signature
// checks, which agendactl uses for operator-triggered reconciliation.
func (a *App) NewReconciler(secret string) *services.WebhookService {
	return services.NewWebhookService(a.Credentials, a.Bookings, a.Audits, a.Provider, services.WebhookConfig{
		PlatformAccessToken: a.Config.MPPlatformAccessToken,
		Secret:              secret,
	})
}

func (a *App) credentialStore(ctx context.Context, cfg *config.ServerConfig) (domain.CredentialRepository, error) {
	var store domain.CredentialRepository

	switch cfg.CredentialBackend {
	case config.BackendRedis:
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.RedisAddr},
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		store = rediscache.NewCredentialStore(client, cfg.RedisPrefix)
		log.Info().Str("addr", cfg.RedisAddr).Msg("Using redis credential store")
	default:
		store = mongodb.NewCredentialRepositoryMongo(mongodb.GetDB())
		log.Info().Msg("Using mongodb credential store")
	}

	if cfg.CredentialCacheTTL > 0 {
		cached := cache.NewCachedCredentialStore(store, cfg.CredentialCacheTTL)
		a.closers = append(a.closers, func(context.Context) error { return cached.Close() })
		return cached, nil
	}
	return store, nil
}

// Close releases connections in reverse order of creation.
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			log.Error().Err(err).Msg("Error while closing application resource")
		}
	}
}
