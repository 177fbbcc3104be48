package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gstbill/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "gstbill"

// NotificationChannel carries broadcast notifications to connected listeners.
const NotificationChannel = keyPrefix + ":notifications"

type CacheService interface {
	// Catalog items are cached by case-folded name, the key the invoice path looks them up by.
	GetItem(ctx context.Context, tenantID uuid.UUID, name string) (*models.Item, error)
	SetItem(ctx context.Context, item *models.Item, ttl time.Duration) error
	DeleteItem(ctx context.Context, tenantID uuid.UUID, name string) error

	// GetJSON decodes the value under key into dst and reports whether it was present.
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error

	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	ResetRateLimit(ctx context.Context, key string) error

	Publish(ctx context.Context, channel string, payload any) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func() error)

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

// NewRedisClient accepts either host:port or a redis:// URL.
func NewRedisClient(addr, password string, db int, logger *logrus.Logger) *redis.Client {
	opts := &redis.Options{Addr: addr, Password: password, DB: db}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			logger.WithError(err).Warn("invalid redis url, falling back to raw address")
		} else {
			opts = parsed
			if password != "" {
				opts.Password = password
			}
		}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.WithError(err).WithField("addr", opts.Addr).Warn("redis ping failed on initialization")
	} else {
		logger.WithField("addr", opts.Addr).Info("redis connection established")
	}
	return client
}

func NewRedisCacheService(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

func itemKey(tenantID uuid.UUID, name string) string {
	return fmt.Sprintf("%s:item:%s:%s", keyPrefix, tenantID.String(), strings.ToLower(strings.TrimSpace(name)))
}

// GetItem returns nil, nil on a cache miss.
func (r *redisCacheService) GetItem(ctx context.Context, tenantID uuid.UUID, name string) (*models.Item, error) {
	data, err := r.client.Get(ctx, itemKey(tenantID, name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var item models.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *redisCacheService) SetItem(ctx context.Context, item *models.Item, ttl time.Duration) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, itemKey(item.TenantID, item.Name), data, ttl).Err()
}

func (r *redisCacheService) DeleteItem(ctx context.Context, tenantID uuid.UUID, name string) error {
	return r.client.Del(ctx, itemKey(tenantID, name)).Err()
}

// ReportKey names a cached per-tenant report.
func ReportKey(tenantID uuid.UUID, parts ...string) string {
	return fmt.Sprintf("%s:report:%s:%s", keyPrefix, tenantID.String(), strings.Join(parts, ":"))
}

func (r *redisCacheService) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

// IsRateLimited counts one hit against key and reports whether the limit for
// the current window has been exceeded.
func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("%s:ratelimit:%s", keyPrefix, key)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, cacheKey)
	pipe.ExpireNX(ctx, cacheKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() > int64(limit), nil
}

func (r *redisCacheService) ResetRateLimit(ctx context.Context, key string) error {
	return r.client.Del(ctx, fmt.Sprintf("%s:ratelimit:%s", keyPrefix, key)).Err()
}

func (r *redisCacheService) Publish(ctx context.Context, channel string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, channel, data).Err()
}

// Subscribe streams raw message payloads until the returned close function is
// called or ctx ends.
func (r *redisCacheService) Subscribe(ctx context.Context, channel string) (<-chan []byte, func() error) {
	sub := r.client.Subscribe(ctx, channel)
	out := make(chan []byte)

	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			select {
			case out <- []byte(msg.Payload):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, sub.Close
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
