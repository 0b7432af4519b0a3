package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"rehabDose/business/prediction"
	"rehabDose/domain"
	"time"

	"github.com/redis/go-redis/v9"
)

type PredictionCache struct {
	client *redis.Client
}

var _ prediction.RecommendationCache = (*PredictionCache)(nil)

func NewPredictionCache(client *redis.Client) *PredictionCache {
	return &PredictionCache{
		client: client,
	}
}

func recommendedKey(patientID string) string {
	return fmt.Sprintf("prediction:recommended:%s", patientID)
}

func (r *PredictionCache) SetRecommended(ctx context.Context, patientID string, pred domain.Prediction, ttl time.Duration) error {
	jsonData, err := json.Marshal(pred)
	if err != nil {
		return fmt.Errorf("failed to marshal prediction: %w", err)
	}

	if err := r.client.Set(ctx, recommendedKey(patientID), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store prediction in Redis: %w", err)
	}

	return nil
}

// GetRecommended returns nil, nil when nothing is cached for the patient.
func (r *PredictionCache) GetRecommended(ctx context.Context, patientID string) (*domain.Prediction, error) {
	val, err := r.client.Get(ctx, recommendedKey(patientID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get prediction from Redis: %w", err)
	}

	var pred domain.Prediction
	if err := json.Unmarshal([]byte(val), &pred); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prediction: %w", err)
	}

	return &pred, nil
}

// Invalidate drops the cached recommendation, e.g. after the patient changed.
func (r *PredictionCache) Invalidate(ctx context.Context, patientID string) error {
	if err := r.client.Del(ctx, recommendedKey(patientID)).Err(); err != nil {
		return fmt.Errorf("failed to delete prediction from Redis: %w", err)
	}
	return nil
}
