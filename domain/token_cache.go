package domain

import "context"

// TokenCache keeps short-lived account verification tokens.
type TokenCache interface {
	PostCacheData(ctx context.Context, key string, value string) error
	GetCachedValue(ctx context.Context, key string) (string, error)
	DelCachedValue(ctx context.Context, key string) error
}
