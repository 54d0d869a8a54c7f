// Package cache provides a read-through in-memory cache in front of a
// domain.CredentialRepository.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/agendateonline/agendate/domain"
	"github.com/jellydator/ttlcache/v3"
)

// CachedCredentialStore caches credentials for ttl. Put and Delete go to the
// underlying repository first and then invalidate the entry.
type CachedCredentialStore struct {
	next  domain.CredentialRepository
	cache *ttlcache.Cache[string, *domain.Credential]

	// gen counts writes per tenant. A read only fills the cache when no
	// write landed while it was talking to next.
	mu  sync.Mutex
	gen map[string]uint64
}

// NewCachedCredentialStore wraps next. Call Close to stop the expiry goroutine.
func NewCachedCredentialStore(next domain.CredentialRepository, ttl time.Duration) *CachedCredentialStore {
	c := ttlcache.New(
		ttlcache.WithTTL[string, *domain.Credential](ttl),
		ttlcache.WithDisableTouchOnHit[string, *domain.Credential](),
	)
	go c.Start()

	return &CachedCredentialStore{next: next, cache: c, gen: make(map[string]uint64)}
}

// Get implements domain.CredentialRepository.
func (s *CachedCredentialStore) Get(ctx context.Context, tenantID string) (*domain.Credential, error) {
	if item := s.cache.Get(tenantID); item != nil {
		cred := *item.Value()
		return &cred, nil
	}
	return s.load(ctx, tenantID)
}

// GetFresh skips the cache and reads from the underlying repository, refreshing
// the cached entry. Other replicas may have rotated the credential since it was
// cached, so anything about to spend the refresh token reads through here.
func (s *CachedCredentialStore) GetFresh(ctx context.Context, tenantID string) (*domain.Credential, error) {
	return s.load(ctx, tenantID)
}

func (s *CachedCredentialStore) load(ctx context.Context, tenantID string) (*domain.Credential, error) {
	s.mu.Lock()
	gen := s.gen[tenantID]
	s.mu.Unlock()

	cred, err := s.next.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	stored := *cred
	s.mu.Lock()
	if s.gen[tenantID] == gen {
		s.cache.Set(tenantID, &stored, ttlcache.DefaultTTL)
	}
	s.mu.Unlock()
	return cred, nil
}

// Put implements domain.CredentialRepository.
func (s *CachedCredentialStore) Put(ctx context.Context, tenantID string, cred *domain.Credential) error {
	defer s.invalidate(tenantID)
	return s.next.Put(ctx, tenantID, cred)
}

// Delete implements domain.CredentialRepository.
func (s *CachedCredentialStore) Delete(ctx context.Context, tenantID string) error {
	defer s.invalidate(tenantID)
	return s.next.Delete(ctx, tenantID)
}

func (s *CachedCredentialStore) invalidate(tenantID string) {
	s.mu.Lock()
	s.gen[tenantID]++
	s.cache.Delete(tenantID)
	s.mu.Unlock()
}

// Len returns the number of cached credentials.
func (s *CachedCredentialStore) Len() int {
	return s.cache.Len()
}

// Close stops the cleanup goroutine.
func (s *CachedCredentialStore) Close() error {
	s.cache.Stop()
	return nil
}

var _ domain.CredentialRepository = (*CachedCredentialStore)(nil)
