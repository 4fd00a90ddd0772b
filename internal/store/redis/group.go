package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/netfab/bdscan/internal/domain"
)

// SaveGroup stores a consolidation group outcome under its signature.
func (s *Store) SaveGroup(ctx context.Context, group *domain.ConsolidationGroup) error {
	if group.Signature == "" {
		return fmt.Errorf("refusing to store group without signature")
	}

	data, err := json.Marshal(group)
	if err != nil {
		return fmt.Errorf("failed to marshal group: %w", err)
	}

	if err := s.client.Set(ctx, GroupKey(group.Signature), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save group: %w", err)
	}
	if err := s.client.SAdd(ctx, KeyAllGroups, group.Signature).Err(); err != nil {
		return fmt.Errorf("failed to add group to set: %w", err)
	}

	return nil
}

// GetAllGroups retrieves every stored consolidation group.
func (s *Store) GetAllGroups(ctx context.Context) ([]*domain.ConsolidationGroup, error) {
	sigs, err := s.client.SMembers(ctx, KeyAllGroups).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get group signatures: %w", err)
	}

	groups := make([]*domain.ConsolidationGroup, 0, len(sigs))
	for _, sig := range sigs {
		data, err := s.client.Get(ctx, GroupKey(sig)).Bytes()
		if err != nil {
			continue
		}
		var group domain.ConsolidationGroup
		if err := json.Unmarshal(data, &group); err != nil {
			continue
		}
		groups = append(groups, &group)
	}

	return groups, nil
}

// SaveReview replaces the stored review queue with the latest run's.
func (s *Store) SaveReview(ctx context.Context, instances []*domain.ServiceInstance) error {
	data, err := json.Marshal(instances)
	if err != nil {
		return fmt.Errorf("failed to marshal review queue: %w", err)
	}
	if err := s.client.Set(ctx, KeyReview, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save review queue: %w", err)
	}
	return nil
}

// GetReview retrieves the stored review queue.
func (s *Store) GetReview(ctx context.Context) ([]*domain.ServiceInstance, error) {
	data, err := s.client.Get(ctx, KeyReview).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get review queue: %w", err)
	}

	var instances []*domain.ServiceInstance
	if err := json.Unmarshal(data, &instances); err != nil {
		return nil, fmt.Errorf("failed to unmarshal review queue: %w", err)
	}
	return instances, nil
}
