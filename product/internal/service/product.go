package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/repository"
	"github.com/Alturino/storefront/product/internal/common/cache"
	"github.com/Alturino/storefront/product/pkg/request"
	"github.com/Alturino/storefront/product/pkg/response"
)

type ProductService struct {
	queries *repository.Queries
	cache   *redis.Client
}

func NewProductService(queries *repository.Queries, cache *redis.Client) *ProductService {
	return &ProductService{queries: queries, cache: cache}
}

func productKey(id uuid.UUID) string {
	return fmt.Sprintf(cache.KeyProduct, id.String())
}

// FindProductById reads through the cache. A cache miss or a broken cache
// entry falls back to the database and repopulates the cache.
func (s *ProductService) FindProductById(
	c context.Context,
	id uuid.UUID,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProductById")
	defer span.End()

	cacheKey := productKey(id)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProductById").
		Str(log.KeyProductID, id.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product in cache").Logger()
	logger.Trace().Msg("finding product in cache")
	cached, err := s.cache.Get(c, cacheKey).Result()
	if err == nil && cached != "" {
		product := response.Product{}
		if err := json.Unmarshal([]byte(cached), &product); err == nil {
			logger.Debug().Msg("found product in cache")
			return product, nil
		}
		logger.Warn().Msg("cached product is not decodable, falling back to database")
	} else if err != nil && !errors.Is(err, redis.Nil) {
		logger.Error().Err(err).Msg("failed reading product cache, falling back to database")
	}

	logger = logger.With().Str(log.KeyProcess, "finding product in database").Logger()
	logger.Info().Msg("finding product in database")
	found, err := s.queries.FindProductById(c, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("%w: productId=%s", inErrors.ErrProductNotFound, id.String())
		} else {
			err = fmt.Errorf("failed finding productId=%s with error=%w", id.String(), err)
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	product := response.FromProduct(found)
	logger.Info().Msg("found product in database")

	logger = logger.With().Str(log.KeyProcess, "inserting product to cache").Logger()
	encoded, err := json.Marshal(product)
	if err != nil {
		logger.Error().Err(err).Msg("failed marshaling product for cache")
		return product, nil
	}
	if err := s.cache.Set(c, cacheKey, encoded, cache.ProductTTL).Err(); err != nil {
		logger.Error().Err(err).Msg("failed inserting product to cache")
	}

	return product, nil
}

func (s *ProductService) FindProducts(c context.Context) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProducts").
		Str(log.KeyProcess, "finding products").
		Logger()

	logger.Info().Msg("finding products")
	found, err := s.queries.FindProducts(c)
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int(log.KeyProducts, len(found)).Msg("found products")

	products := make([]response.Product, len(found))
	for i, p := range found {
		products[i] = response.FromProduct(p)
	}
	return products, nil
}

func (s *ProductService) InsertProduct(
	c context.Context,
	req request.InsertProduct,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService InsertProduct").
		Str(log.KeyProcess, "inserting product").
		Logger()

	price := pgtype.Numeric{Int: req.Price.Coefficient(), Exp: req.Price.Exponent(), Valid: true}
	logger.Info().Msg("inserting product")
	inserted, err := s.queries.InsertProduct(c, repository.InsertProductParams{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Category:    repository.ProductCategory(req.Category),
		ImageUrl:    req.ImageUrl,
	})
	if err != nil {
		err = fmt.Errorf("failed inserting product with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	product := response.FromProduct(inserted)
	logger = logger.With().Str(log.KeyProductID, product.Id.String()).Logger()
	logger.Info().Msg("inserted product")

	logger = logger.With().Str(log.KeyProcess, "inserting product to cache").Logger()
	encoded, err := json.Marshal(product)
	if err != nil {
		logger.Error().Err(err).Msg("failed marshaling product for cache")
		return product, nil
	}
	if err := s.cache.Set(c, productKey(product.Id), encoded, cache.ProductTTL).Err(); err != nil {
		logger.Error().Err(err).Msg("failed inserting product to cache")
	}

	return product, nil
}
