package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/repository"
	"github.com/Alturino/storefront/product/internal/controller"
	"github.com/Alturino/storefront/product/internal/service"
)

func AttachProductService(
	c context.Context,
	router *mux.Router,
	queries *repository.Queries,
	cache *redis.Client,
) *service.ProductService {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AttachProductService").
		Str(log.KeyProcess, "initializing product service").
		Logger()

	logger.Info().Msg("initializing product service")
	productService := service.NewProductService(queries, cache)
	controller.AttachProductController(router, productService)
	logger.Info().Msg("initialized product service")

	return productService
}
