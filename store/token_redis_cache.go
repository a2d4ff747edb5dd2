package store

import (
	"context"
	"time"

	"github.com/go-redis/redis"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"carrental_service/domain"
)

type TokenRedisCache struct {
	client *redis.Client
	tracer trace.Tracer
}

func NewTokenRedisCache(client *redis.Client, tracer trace.Tracer) domain.TokenCache {
	return &TokenRedisCache{
		client: client,
		tracer: tracer,
	}
}

func (cache *TokenRedisCache) PostCacheData(ctx context.Context, key string, value string) error {
	ctx, span := cache.tracer.Start(ctx, "TokenRedisCache.PostCacheData")
	defer span.End()

	result := cache.client.Set(key, value, 10*time.Minute)
	if result.Err() != nil {
		span.SetStatus(codes.Error, "Error posting cached value")
		return result.Err()
	}
	return nil
}

func (cache *TokenRedisCache) GetCachedValue(ctx context.Context, key string) (string, error) {
	ctx, span := cache.tracer.Start(ctx, "TokenRedisCache.GetCachedValue")
	defer span.End()

	result := cache.client.Get(key)
	value, err := result.Result()
	if err != nil {
		span.SetStatus(codes.Error, "Error getting cached value")
		return "", err
	}
	return value, nil
}

func (cache *TokenRedisCache) DelCachedValue(ctx context.Context, key string) error {
	ctx, span := cache.tracer.Start(ctx, "TokenRedisCache.DelCachedValue")
	defer span.End()

	result := cache.client.Del(key)
	if result.Err() != nil {
		span.SetStatus(codes.Error, "Error deleting cached value")
		return result.Err()
	}
	return nil
}
