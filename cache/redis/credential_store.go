package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/agendateonline/agendate/domain"
	"github.com/redis/go-redis/v9"
)

// CredentialStore implements domain.CredentialRepository on Redis. Each credential
// is a JSON value under "<prefix>:credential:<tenantID>" and SET replaces it
// atomically.
type CredentialStore struct {
	client redis.UniversalClient
	prefix string
}

// NewCredentialStore creates a new [CredentialStore].
func NewCredentialStore(client redis.UniversalClient, prefix string) *CredentialStore {
	return &CredentialStore{
		client: client,
		prefix: prefix,
	}
}

func (s *CredentialStore) redisKey(tenantID string) string {
	return fmt.Sprintf("%s:credential:%s", s.prefix, tenantID)
}

// Get returns the tenant's credential or domain.ErrCredentialNotFound.
func (s *CredentialStore) Get(ctx context.Context, tenantID string) (*domain.Credential, error) {
	raw, err := s.client.Get(ctx, s.redisKey(tenantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCredentialNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential from Redis: %w", err)
	}

	var cred domain.Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credential: %w", err)
	}
	cred.TenantID = tenantID
	return &cred, nil
}

// Put stores cred without expiry.
func (s *CredentialStore) Put(ctx context.Context, tenantID string, cred *domain.Credential) error {
	stored := *cred
	stored.TenantID = tenantID
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}
	if err := s.client.Set(ctx, s.redisKey(tenantID), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to set credential in Redis: %w", err)
	}
	return nil
}

// Delete removes the tenant's credential.
func (s *CredentialStore) Delete(ctx context.Context, tenantID string) error {
	if err := s.client.Del(ctx, s.redisKey(tenantID)).Err(); err != nil {
		return fmt.Errorf("failed to delete credential from Redis: %w", err)
	}
	return nil
}

var _ domain.CredentialRepository = (*CredentialStore)(nil)
