package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/repository"
	"github.com/Alturino/storefront/order/pkg/response"
)

type OrderService struct {
	queries *repository.Queries
}

func NewOrderService(queries *repository.Queries) *OrderService {
	return &OrderService{queries: queries}
}

func (s *OrderService) FindOrdersByUserId(
	c context.Context,
	userId uuid.UUID,
) ([]response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrdersByUserId")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrdersByUserId").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProcess, "finding orders").
		Logger()

	logger.Info().Msg("finding orders")
	details, err := s.queries.FindOrderDetailsByUserId(c, userId)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int(log.KeyOrders, len(details)).Msg("found orders")

	orders := make([]response.Order, len(details))
	for i, detail := range details {
		orders[i] = response.FromOrderDetail(detail)
	}
	return orders, nil
}

func (s *OrderService) FindOrderById(
	c context.Context,
	userId, orderId uuid.UUID,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrderById").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyOrderID, orderId.String()).
		Str(log.KeyProcess, "finding order").
		Logger()

	logger.Info().Msg("finding order")
	detail, err := s.queries.FindOrderDetailById(c, repository.FindOrderDetailByIdParams{
		ID:     orderId,
		UserID: userId,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("%w: orderId=%s", inErrors.ErrOrderNotFound, orderId.String())
		} else {
			err = fmt.Errorf("failed finding order with error=%w", err)
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("found order")

	return response.FromOrderDetail(detail), nil
}

// FindAllOrders lists every order in the store, a back-office view.
func (s *OrderService) FindAllOrders(c context.Context) ([]response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindAllOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindAllOrders").
		Str(log.KeyProcess, "finding orders").
		Logger()

	logger.Info().Msg("finding orders")
	details, err := s.queries.FindOrderDetails(c)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int(log.KeyOrders, len(details)).Msg("found orders")

	orders := make([]response.Order, len(details))
	for i, detail := range details {
		orders[i] = response.FromOrderDetail(detail)
	}
	return orders, nil
}

// UpdateStatus sets an order to any known status. Transitions are not
// restricted, a cancelled order can be reinstated by support.
func (s *OrderService) UpdateStatus(
	c context.Context,
	orderId uuid.UUID,
	status string,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService UpdateStatus")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService UpdateStatus").
		Str(log.KeyOrderID, orderId.String()).
		Str(log.KeyOrderStatus, status).
		Logger()

	orderStatus := repository.OrderStatus(status)
	if !orderStatus.Valid() {
		err := fmt.Errorf("%w: got %s", inErrors.ErrInvalidStatus, status)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "updating order status").Logger()
	logger.Info().Msg("updating order status")
	order, err := s.queries.UpdateOrderStatus(c, repository.UpdateOrderStatusParams{
		ID:     orderId,
		Status: orderStatus,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("%w: orderId=%s", inErrors.ErrOrderNotFound, orderId.String())
		} else {
			err = fmt.Errorf("failed updating order status with error=%w", err)
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("updated order status")

	detail, err := s.queries.FindOrderDetailById(c, repository.FindOrderDetailByIdParams{
		ID:     order.ID,
		UserID: order.UserID,
	})
	if err != nil {
		err = fmt.Errorf("failed finding updated order with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	return response.FromOrderDetail(detail), nil
}
