package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/netfab/bdscan/internal/domain"
)

// Store persists service instances and consolidation groups in redis,
// keyed by signature. Entries carry no TTL: the pruner decides when an
// instance is stale, expiry must never race a consolidation run.
type Store struct {
	client *redis.Client
}

// NewStore creates a redis-backed store.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// SaveInstance stores one instance under its signature.
func (s *Store) SaveInstance(ctx context.Context, inst *domain.ServiceInstance) error {
	if inst.Signature == "" {
		return fmt.Errorf("refusing to store instance %q without signature", inst.Name)
	}

	data, err := json.Marshal(inst)
	if err != nil {
		return fmt.Errorf("failed to marshal instance: %w", err)
	}

	if err := s.client.Set(ctx, InstanceKey(inst.Signature), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save instance: %w", err)
	}
	if err := s.client.SAdd(ctx, KeyAllInstances, inst.Signature).Err(); err != nil {
		return fmt.Errorf("failed to add instance to set: %w", err)
	}

	return nil
}

// GetInstance retrieves an instance by its exact signature.
func (s *Store) GetInstance(ctx context.Context, signature string) (*domain.ServiceInstance, error) {
	data, err := s.client.Get(ctx, InstanceKey(signature)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("instance not found: %s", signature)
		}
		return nil, fmt.Errorf("failed to get instance: %w", err)
	}

	var inst domain.ServiceInstance
	if err := json.Unmarshal(data, &inst); err != nil {
		return nil, fmt.Errorf("failed to unmarshal instance: %w", err)
	}

	return &inst, nil
}

// GetAllInstances retrieves every stored instance.
func (s *Store) GetAllInstances(ctx context.Context) ([]*domain.ServiceInstance, error) {
	sigs, err := s.client.SMembers(ctx, KeyAllInstances).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get signatures: %w", err)
	}

	instances := make([]*domain.ServiceInstance, 0, len(sigs))
	for _, sig := range sigs {
		inst, err := s.GetInstance(ctx, sig)
		if err != nil {
			// Dangling set member; skip rather than fail the batch.
			continue
		}
		instances = append(instances, inst)
	}

	return instances, nil
}

// DeleteInstance removes an instance.
func (s *Store) DeleteInstance(ctx context.Context, signature string) error {
	if err := s.client.Del(ctx, InstanceKey(signature)).Err(); err != nil {
		return fmt.Errorf("failed to delete instance: %w", err)
	}
	if err := s.client.SRem(ctx, KeyAllInstances, signature).Err(); err != nil {
		return fmt.Errorf("failed to remove instance from set: %w", err)
	}
	return nil
}

// SaveInstancesMany stores multiple instances in one pipeline round trip.
// Instances without a signature are skipped; they belong in the review
// queue, not the identity keyspace.
func (s *Store) SaveInstancesMany(ctx context.Context, instances []*domain.ServiceInstance) error {
	pipe := s.client.Pipeline()

	for _, inst := range instances {
		if inst.Signature == "" {
			continue
		}
		data, err := json.Marshal(inst)
		if err != nil {
			return fmt.Errorf("failed to marshal instance %s: %w", inst.Signature, err)
		}
		pipe.Set(ctx, InstanceKey(inst.Signature), data, 0)
		pipe.SAdd(ctx, KeyAllInstances, inst.Signature)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save instances: %w", err)
	}

	return nil
}
