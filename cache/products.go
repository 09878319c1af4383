// Package cache puts Redis in front of the product repository. Redis
// failures never fail a request; the repository answers instead.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"jinstore-backend/models"
)

const (
	notFoundMarker = "notfound"
	notFoundTTL    = time.Minute
	versionKey     = "products:version"
	categoriesKey  = "products:categories"
)

type ProductStore interface {
	Create(ctx context.Context, p models.Product) (models.Product, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	List(ctx context.Context, f models.ProductFilter) ([]models.Product, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, ch models.ProductChanges) (models.Product, error)
	PutReview(ctx context.Context, id primitive.ObjectID, r models.Review, now time.Time) (models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	SetStock(ctx context.Context, id primitive.ObjectID, stock int) error
	Categories(ctx context.Context) ([]string, error)
}

// ProductCache is a read-through cache. Single products are keyed by id;
// list pages are keyed by a version counter that every write bumps, so
// stale pages simply stop being read and expire.
type ProductCache struct {
	repo  ProductStore
	redis *redis.Client
	ttl   time.Duration
	log   *slog.Logger
}

func NewProductCache(repo ProductStore, rdb *redis.Client, ttl time.Duration, log *slog.Logger) *ProductCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &ProductCache{repo: repo, redis: rdb, ttl: ttl, log: log}
}

func productKey(id primitive.ObjectID) string {
	return "product:" + id.Hex()
}

type listPage struct {
	Items []models.Product `json:"items"`
	Total int64            `json:"total"`
}

func (c *ProductCache) Get(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	key := productKey(id)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return models.Product{}, fmt.Errorf("find product: %w", models.ErrNotFound)
		}
		var p models.Product
		if err := json.Unmarshal(data, &p); err == nil {
			return p, nil
		}
		c.log.Warn("cached product unreadable", slog.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("redis get failed, using database", slog.String("key", key), slog.Any("err", err))
	}

	p, err := c.repo.Get(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		c.set(ctx, key, notFoundMarker, notFoundTTL)
		return models.Product{}, err
	}
	if err != nil {
		return models.Product{}, err
	}
	c.setJSON(ctx, key, p)
	return p, nil
}

func (c *ProductCache) List(ctx context.Context, f models.ProductFilter) ([]models.Product, int64, error) {
	key, ok := c.listKey(ctx, f)
	if ok {
		data, err := c.redis.Get(ctx, key).Bytes()
		if err == nil {
			var page listPage
			if err := json.Unmarshal(data, &page); err == nil {
				return page.Items, page.Total, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			c.log.Warn("redis get failed, using database", slog.String("key", key), slog.Any("err", err))
		}
	}

	items, total, err := c.repo.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	if ok {
		c.setJSON(ctx, key, listPage{Items: items, Total: total})
	}
	return items, total, nil
}

func (c *ProductCache) Categories(ctx context.Context) ([]string, error) {
	data, err := c.redis.Get(ctx, categoriesKey).Bytes()
	if err == nil {
		var out []string
		if err := json.Unmarshal(data, &out); err == nil {
			return out, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("redis get failed, using database", slog.String("key", categoriesKey), slog.Any("err", err))
	}

	out, err := c.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	c.setJSON(ctx, categoriesKey, out)
	return out, nil
}

func (c *ProductCache) Create(ctx context.Context, p models.Product) (models.Product, error) {
	created, err := c.repo.Create(ctx, p)
	if err != nil {
		return models.Product{}, err
	}
	c.Invalidate(ctx, created.ID)
	return created, nil
}

func (c *ProductCache) Update(ctx context.Context, id primitive.ObjectID, ch models.ProductChanges) (models.Product, error) {
	updated, err := c.repo.Update(ctx, id, ch)
	c.Invalidate(ctx, id)
	return updated, err
}

func (c *ProductCache) PutReview(ctx context.Context, id primitive.ObjectID, r models.Review, now time.Time) (models.Product, error) {
	updated, err := c.repo.PutReview(ctx, id, r, now)
	c.Invalidate(ctx, id)
	return updated, err
}

func (c *ProductCache) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := c.repo.Delete(ctx, id)
	c.Invalidate(ctx, id)
	return err
}

func (c *ProductCache) SetStock(ctx context.Context, id primitive.ObjectID, stock int) error {
	err := c.repo.SetStock(ctx, id, stock)
	c.Invalidate(ctx, id)
	return err
}

// Invalidate drops the given products and retires every cached list page.
func (c *ProductCache) Invalidate(ctx context.Context, ids ...primitive.ObjectID) {
	keys := []string{categoriesKey}
	for _, id := range ids {
		keys = append(keys, productKey(id))
	}

	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.Incr(ctx, versionKey)
		return nil
	})
	if err != nil {
		c.log.Warn("product cache invalidation failed", slog.Int("products", len(ids)), slog.Any("err", err))
	}
}

// listKey is false when the version cannot be read; the page is then not
// cached at all rather than cached under a version nobody bumps.
func (c *ProductCache) listKey(ctx context.Context, f models.ProductFilter) (string, bool) {
	version, err := c.redis.Get(ctx, versionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", false
	}
	raw, err := json.Marshal(f)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("products:list:v%d:%016x", version, xxhash.Sum64(raw)), true
}

func (c *ProductCache) setJSON(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("product cache marshal failed", slog.String("key", key), slog.Any("err", err))
		return
	}
	c.set(ctx, key, data, c.ttl)
}

func (c *ProductCache) set(ctx context.Context, key string, v any, ttl time.Duration) {
	if err := c.redis.Set(ctx, key, v, ttl).Err(); err != nil {
		c.log.Warn("product cache write failed", slog.String("key", key), slog.Any("err", err))
	}
}
