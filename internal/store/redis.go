// internal/store/redis.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"claims-client/internal/common/logger"
	"claims-client/internal/models"
)

const (
	sessionTokenKey   = "claims:session:token"
	decisionKeyPrefix = "claims:decision:"
)

// Store caches the session token and recent claim decisions in Redis
// so a restarted client can resume without a fresh login. Everything
// it holds is reconstructable; a miss is never an error.
type Store struct {
	client      *redis.Client
	logger      logger.Logger
	decisionTTL time.Duration
}

func New(client *redis.Client, decisionTTL time.Duration, log logger.Logger) *Store {
	return &Store{
		client:      client,
		logger:      log,
		decisionTTL: decisionTTL,
	}
}

// SaveToken caches the bearer token with the given lifetime.
func (s *Store) SaveToken(ctx context.Context, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionTokenKey, token, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache session token: %w", err)
	}
	return nil
}

// LoadToken returns the cached bearer token, empty when absent or
// expired.
func (s *Store) LoadToken(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, sessionTokenKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load session token: %w", err)
	}
	return token, nil
}

// SaveDecision caches a decision under its claim id.
func (s *Store) SaveDecision(ctx context.Context, decision *models.ClaimDecision) error {
	payload, err := json.Marshal(decision)
	if err != nil {
		return fmt.Errorf("failed to marshal decision: %w", err)
	}
	key := decisionKeyPrefix + decision.ClaimID
	if err := s.client.Set(ctx, key, payload, s.decisionTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache decision %s: %w", decision.ClaimID, err)
	}
	s.logger.Debug("Decision cached", map[string]interface{}{
		"claim_id": decision.ClaimID,
		"ttl":      s.decisionTTL.String(),
	})
	return nil
}

// GetDecision returns a cached decision, nil when absent.
func (s *Store) GetDecision(ctx context.Context, claimID string) (*models.ClaimDecision, error) {
	payload, err := s.client.Get(ctx, decisionKeyPrefix+claimID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load decision %s: %w", claimID, err)
	}

	var decision models.ClaimDecision
	if err := json.Unmarshal(payload, &decision); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decision %s: %w", claimID, err)
	}
	return &decision, nil
}

// RecordDecision satisfies the orchestrator's decision sink.
func (s *Store) RecordDecision(ctx context.Context, decision *models.ClaimDecision) error {
	return s.SaveDecision(ctx, decision)
}
