package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/repository"
	"github.com/Alturino/storefront/order/internal/controller"
	"github.com/Alturino/storefront/order/internal/service"
)

func AttachOrderService(
	c context.Context,
	router *mux.Router,
	queries *repository.Queries,
) *service.OrderService {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AttachOrderService").
		Str(log.KeyProcess, "initializing order service").
		Logger()

	logger.Info().Msg("initializing order service")
	orderService := service.NewOrderService(queries)
	controller.AttachOrderController(router, orderService)
	logger.Info().Msg("initialized order service")

	return orderService
}
