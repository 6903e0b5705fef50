package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"jan-server/services/engage-api/internal/domain/consent"
)

// RedisConsentStore keeps one hash per user with a field per consent type.
// A companion list holds the types in first-write order so history matches the memory store.
type RedisConsentStore struct {
	client redis.UniversalClient
}

// NewRedisConsentStore creates a consent store on client.
func NewRedisConsentStore(client redis.UniversalClient) *RedisConsentStore {
	return &RedisConsentStore{client: client}
}

// Put replaces the record for the (user, type) pair.
func (s *RedisConsentStore) Put(ctx context.Context, record consent.Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode consent record: %w", err)
	}
	added, err := s.client.HSet(ctx, consentKey(record.UserID), string(record.Type), payload).Result()
	if err != nil {
		return fmt.Errorf("store consent record: %w", err)
	}
	// HSET reports 1 only for the write that created the field.
	if added > 0 {
		if err := s.client.RPush(ctx, consentOrderKey(record.UserID), string(record.Type)).Err(); err != nil {
			return fmt.Errorf("store consent order: %w", err)
		}
	}
	return nil
}

// Get returns the record for the (user, type) pair.
func (s *RedisConsentStore) Get(ctx context.Context, userID string, t consent.Type) (consent.Record, error) {
	raw, err := s.client.HGet(ctx, consentKey(userID), string(t)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return consent.Record{}, consent.ErrRecordNotFound
		}
		return consent.Record{}, fmt.Errorf("load consent record: %w", err)
	}
	return decodeConsent(raw)
}

// ListByUser returns every record held for userID in first-write order.
func (s *RedisConsentStore) ListByUser(ctx context.Context, userID string) ([]consent.Record, error) {
	fields, err := s.client.HGetAll(ctx, consentKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list consent records: %w", err)
	}
	order, err := s.client.LRange(ctx, consentOrderKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list consent order: %w", err)
	}
	return orderConsent(order, fields)
}

// orderConsent decodes fields following order. Fields missing from order follow, oldest decision first.
func orderConsent(order []string, fields map[string]string) ([]consent.Record, error) {
	out := make([]consent.Record, 0, len(fields))
	seen := make(map[string]bool, len(order))
	for _, field := range order {
		raw, ok := fields[field]
		if !ok || seen[field] {
			continue
		}
		seen[field] = true
		record, err := decodeConsent(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}

	var rest []consent.Record
	for field, raw := range fields {
		if seen[field] {
			continue
		}
		record, err := decodeConsent(raw)
		if err != nil {
			return nil, err
		}
		rest = append(rest, record)
	}
	sortConsent(rest)
	return append(out, rest...), nil
}

func decodeConsent(raw string) (consent.Record, error) {
	var record consent.Record
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return consent.Record{}, fmt.Errorf("decode consent record: %w", err)
	}
	return record, nil
}

func sortConsent(records []consent.Record) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].Timestamp.Before(records[j].Timestamp)
		}
		return records[i].Type < records[j].Type
	})
}
