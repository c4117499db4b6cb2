package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/cart/internal/common/cache"
	"github.com/Alturino/storefront/cart/pkg/response"
	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/manifest"
	"github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/repository"
)

const (
	// maxQuantity bounds a single cart line. The original flow accepted any
	// integer from the client.
	maxQuantity = 99

	// sessionTTL is refreshed on every mutation, the cart disappears with
	// the session.
	sessionTTL = 24 * time.Hour
)

type CartService struct {
	queries *repository.Queries
	cache   *redis.Client
	builder manifest.Builder
}

func NewCartService(
	queries *repository.Queries,
	cache *redis.Client,
	builder manifest.Builder,
) *CartService {
	return &CartService{queries: queries, cache: cache, builder: builder}
}

func cartKey(userId uuid.UUID) string {
	return fmt.Sprintf(cache.KeyCart, userId.String())
}

// AddItem increments the quantity for productId by one, creating the entry
// at one when absent. Unknown products are rejected up front so the cart
// can only ever hold ids that existed at add time.
func (s *CartService) AddItem(c context.Context, userId, productId uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	cacheKey := cartKey(userId)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, productId.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Info().Msg("finding product")
	_, err := s.queries.FindProductById(c, productId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("%w: productId=%s", inErrors.ErrProductNotFound, productId.String())
		} else {
			err = fmt.Errorf("failed finding productId=%s with error=%w", productId.String(), err)
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("found product")

	logger = logger.With().Str(log.KeyProcess, "checking quantity limit").Logger()
	logger.Info().Msg("checking quantity limit")
	current, err := s.cache.HGet(c, cacheKey, productId.String()).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		err = fmt.Errorf("failed reading cart entry with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if current >= maxQuantity {
		err = fmt.Errorf("%w: productId=%s", inErrors.ErrQuantityLimit, productId.String())
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Int(log.KeyQuantity, current).Msg("checked quantity limit")

	logger = logger.With().Str(log.KeyProcess, "incrementing cart entry").Logger()
	logger.Info().Msg("incrementing cart entry")
	pipe := s.cache.TxPipeline()
	pipe.HIncrBy(c, cacheKey, productId.String(), 1)
	pipe.Expire(c, cacheKey, sessionTTL)
	if _, err := pipe.Exec(c); err != nil {
		err = fmt.Errorf("failed incrementing cart entry with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("incremented cart entry")

	return nil
}

// SetQuantity overwrites the quantity of an existing entry. A productId
// that is not in the cart is silently left alone, matching the update form
// on the cart page which only renders existing lines.
func (s *CartService) SetQuantity(
	c context.Context,
	userId, productId uuid.UUID,
	quantity int32,
) error {
	c, span := otel.Tracer.Start(c, "CartService SetQuantity")
	defer span.End()

	cacheKey := cartKey(userId)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService SetQuantity").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, productId.String()).
		Int32(log.KeyQuantity, quantity).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	if quantity < 1 || quantity > maxQuantity {
		err := fmt.Errorf("%w: got %d", inErrors.ErrInvalidQuantity, quantity)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	logger = logger.With().Str(log.KeyProcess, "checking cart entry").Logger()
	logger.Info().Msg("checking cart entry")
	exists, err := s.cache.HExists(c, cacheKey, productId.String()).Result()
	if err != nil {
		err = fmt.Errorf("failed checking cart entry with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if !exists {
		logger.Info().Msg("productId not in cart, nothing to update")
		return nil
	}

	logger = logger.With().Str(log.KeyProcess, "updating cart entry").Logger()
	logger.Info().Msg("updating cart entry")
	pipe := s.cache.TxPipeline()
	pipe.HSet(c, cacheKey, productId.String(), int64(quantity))
	pipe.Expire(c, cacheKey, sessionTTL)
	if _, err := pipe.Exec(c); err != nil {
		err = fmt.Errorf("failed updating cart entry with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("updated cart entry")

	return nil
}

// RemoveItem deletes the entry entirely, a no-op when absent.
func (s *CartService) RemoveItem(c context.Context, userId, productId uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	cacheKey := cartKey(userId)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveItem").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, productId.String()).
		Str(log.KeyCacheKey, cacheKey).
		Str(log.KeyProcess, "removing cart entry").
		Logger()

	logger.Info().Msg("removing cart entry")
	if err := s.cache.HDel(c, cacheKey, productId.String()).Err(); err != nil {
		err = fmt.Errorf("failed removing cart entry with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("removed cart entry")

	return nil
}

// Clear empties the whole cart.
func (s *CartService) Clear(c context.Context, userId uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "CartService Clear")
	defer span.End()

	cacheKey := cartKey(userId)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Clear").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyCacheKey, cacheKey).
		Str(log.KeyProcess, "clearing cart").
		Logger()

	logger.Info().Msg("clearing cart")
	if err := s.cache.Del(c, cacheKey).Err(); err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("cleared cart")

	return nil
}

// Snapshot returns the current mapping for read-only use. A missing key is
// an empty cart, the first access does not create anything.
func (s *CartService) Snapshot(
	c context.Context,
	userId uuid.UUID,
) (map[uuid.UUID]int32, error) {
	c, span := otel.Tracer.Start(c, "CartService Snapshot")
	defer span.End()

	cacheKey := cartKey(userId)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Snapshot").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyCacheKey, cacheKey).
		Str(log.KeyProcess, "reading cart").
		Logger()

	entries, err := s.cache.HGetAll(c, cacheKey).Result()
	if err != nil {
		err = fmt.Errorf("failed reading cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	snapshot := make(map[uuid.UUID]int32, len(entries))
	for field, value := range entries {
		productId, err := uuid.Parse(field)
		if err != nil {
			err = fmt.Errorf("failed parsing cart field=%s with error=%w", field, err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		quantity, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			err = fmt.Errorf("failed parsing cart quantity=%s with error=%w", value, err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		snapshot[productId] = int32(quantity)
	}
	logger.Info().Int(log.KeyCartItems, len(snapshot)).Msg("read cart")

	return snapshot, nil
}

// View prices the current cart against the catalog. Nothing is cached, a
// catalog price change shows up on the next view.
func (s *CartService) View(c context.Context, userId uuid.UUID) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService View")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService View").
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "reading cart snapshot").Logger()
	logger.Info().Msg("reading cart snapshot")
	c = logger.WithContext(c)
	snapshot, err := s.Snapshot(c, userId)
	if err != nil {
		err = fmt.Errorf("failed reading cart snapshot with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("read cart snapshot")

	logger = logger.With().Str(log.KeyProcess, "building manifest").Logger()
	logger.Info().Msg("building manifest")
	m, err := s.builder.Build(c, snapshot)
	if err != nil {
		err = fmt.Errorf("failed building manifest with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Int64(log.KeyTotalMinor, m.TotalMinor).Msg("built manifest")

	return response.FromManifest(userId, m), nil
}
