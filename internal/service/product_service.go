package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/order-manager/internal/domain"
	"github.com/spec-kit/order-manager/internal/persistence"
	"github.com/spec-kit/order-manager/internal/repository"
	apperrors "github.com/spec-kit/order-manager/pkg/util/errorutil"
)

const productCacheKeyPrefix = "product:"

// ProductService handles catalog CRUD. Single-product reads are served
// through a Redis cache; cache failures are logged and fall back to the
// store, never failing the request.
type ProductService struct {
	products repository.ProductRepository
	cache    *persistence.Redis
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewProductService builds the service.
func NewProductService(products repository.ProductRepository, cache *persistence.Redis, cacheTTL time.Duration, logger *zap.Logger) *ProductService {
	return &ProductService{products: products, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Create adds a new product, rejecting duplicate names.
func (s *ProductService) Create(ctx context.Context, name, description string, price float64) (*domain.Product, error) {
	taken, err := s.products.ExistsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewConflict("product name already exists", map[string]any{"name": name})
	}

	product := &domain.Product{Name: name, Description: description, Price: price}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	s.logger.Info("product created", zap.String("product_id", product.ID))
	return product, nil
}

// Get returns a product, preferring the cache.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	if cached := s.cacheGet(ctx, id); cached != nil {
		return cached, nil
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", map[string]any{"id": id})
		}
		return nil, err
	}

	s.cacheSet(ctx, product)
	return product, nil
}

// List returns all products straight from the store.
func (s *ProductService) List(ctx context.Context) ([]*domain.Product, error) {
	return s.products.List(ctx)
}

// Update mutates a product and drops its cache entry.
func (s *ProductService) Update(ctx context.Context, id, name, description string, price float64) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", map[string]any{"id": id})
		}
		return nil, err
	}

	product.Name = name
	product.Description = description
	product.Price = price
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	s.cacheInvalidate(ctx, id)
	s.logger.Info("product updated", zap.String("product_id", id))
	return product, nil
}

// Delete removes a product and drops its cache entry.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("product", map[string]any{"id": id})
		}
		return err
	}
	s.cacheInvalidate(ctx, id)
	s.logger.Info("product deleted", zap.String("product_id", id))
	return nil
}

func (s *ProductService) cacheGet(ctx context.Context, id string) *domain.Product {
	if s.cache == nil || s.cache.Client == nil {
		return nil
	}
	raw, err := s.cache.Client.Get(ctx, productCacheKeyPrefix+id).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Debug("product cache read failed", zap.Error(err))
		}
		return nil
	}
	var product domain.Product
	if err := json.Unmarshal(raw, &product); err != nil {
		s.logger.Debug("product cache entry corrupt", zap.String("product_id", id))
		return nil
	}
	return &product
}

func (s *ProductService) cacheSet(ctx context.Context, product *domain.Product) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	raw, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := s.cache.Client.Set(ctx, productCacheKeyPrefix+product.ID, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Debug("product cache write failed", zap.Error(err))
	}
}

func (s *ProductService) cacheInvalidate(ctx context.Context, id string) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	if err := s.cache.Client.Del(ctx, productCacheKeyPrefix+id).Err(); err != nil {
		s.logger.Debug("product cache invalidation failed", zap.Error(err))
	}
}
