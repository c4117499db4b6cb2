package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/checkout/internal/common/cache"
	"github.com/Alturino/storefront/checkout/pkg/response"
	"github.com/Alturino/storefront/internal/config"
	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/manifest"
	"github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/payment"
	"github.com/Alturino/storefront/internal/repository"
)

// tokenTTL caps how long an abandoned checkout blocks a new one. The
// gateway session expires well before this.
const tokenTTL = 15 * time.Minute

// CartStore is the slice of the cart service the checkout flow needs: a
// read-only snapshot to price, and a clear once orders are committed.
type CartStore interface {
	Snapshot(c context.Context, userId uuid.UUID) (map[uuid.UUID]int32, error)
	Clear(c context.Context, userId uuid.UUID) error
}

type MailSender interface {
	Send(subject, body, recipient string) error
}

type CheckoutService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
	cache   *redis.Client
	builder manifest.Builder
	gateway payment.Gateway
	carts   CartStore
	mailer  MailSender
	cfg     config.Payment
}

func NewCheckoutService(
	pool *pgxpool.Pool,
	queries *repository.Queries,
	cache *redis.Client,
	builder manifest.Builder,
	gateway payment.Gateway,
	carts CartStore,
	mailer MailSender,
	cfg config.Payment,
) *CheckoutService {
	return &CheckoutService{
		pool:    pool,
		queries: queries,
		cache:   cache,
		builder: builder,
		gateway: gateway,
		carts:   carts,
		mailer:  mailer,
		cfg:     cfg,
	}
}

func tokenKey(userId uuid.UUID) string {
	return fmt.Sprintf(cache.KeyCheckoutToken, userId.String())
}

func (s *CheckoutService) gatewayTimeout() time.Duration {
	if s.cfg.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.cfg.TimeoutSeconds) * time.Second
}

func (s *CheckoutService) releaseToken(c context.Context, userId uuid.UUID) {
	logger := zerolog.Ctx(c)
	if err := s.cache.Del(c, tokenKey(userId)).Err(); err != nil {
		logger.Error().
			Err(err).
			Str(log.KeyUserID, userId.String()).
			Msg("failed releasing checkout token")
	}
}

// CreateSession snapshots the cart, prices it, persists the snapshot and
// opens a gateway session for the customer to pay. The persisted snapshot
// is the single source the eventual orders are committed from, later cart
// mutations do not leak into an in-flight checkout.
func (s *CheckoutService) CreateSession(
	c context.Context,
	userId uuid.UUID,
) (response.CheckoutSession, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService CreateSession")
	defer span.End()

	sessionId := uuid.New()
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService CreateSession").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyCheckoutSessionID, sessionId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "acquiring checkout token").Logger()
	logger.Info().Msg("acquiring checkout token")
	acquired, err := s.cache.SetNX(c, tokenKey(userId), sessionId.String(), tokenTTL).Result()
	if err != nil {
		err = fmt.Errorf("failed acquiring checkout token with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutSession{}, err
	}
	if !acquired {
		err = fmt.Errorf("%w: userId=%s", inErrors.ErrCheckoutInProgress, userId.String())
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutSession{}, err
	}
	logger.Info().Msg("acquired checkout token")

	logger = logger.With().Str(log.KeyProcess, "building manifest").Logger()
	logger.Info().Msg("building manifest")
	c = logger.WithContext(c)
	snapshot, err := s.carts.Snapshot(c, userId)
	if err != nil {
		s.releaseToken(c, userId)
		err = fmt.Errorf("failed reading cart snapshot with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutSession{}, err
	}
	m, err := s.builder.Build(c, snapshot)
	if err != nil {
		s.releaseToken(c, userId)
		err = fmt.Errorf("failed building manifest with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutSession{}, err
	}
	if m.IsEmpty() {
		s.releaseToken(c, userId)
		err = fmt.Errorf("%w: userId=%s", inErrors.ErrEmptyCart, userId.String())
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutSession{}, err
	}
	logger.Info().Int64(log.KeyTotalMinor, m.TotalMinor).Msg("built manifest")

	logger = logger.With().Str(log.KeyProcess, "persisting checkout session").Logger()
	logger.Info().Msg("persisting checkout session")
	items, err := json.Marshal(m)
	if err != nil {
		s.releaseToken(c, userId)
		err = fmt.Errorf("failed marshaling manifest with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutSession{}, err
	}
	session, err := s.queries.InsertCheckoutSession(c, repository.InsertCheckoutSessionParams{
		ID:         sessionId,
		UserID:     userId,
		Items:      items,
		TotalMinor: m.TotalMinor,
		Currency:   m.Currency,
	})
	if err != nil {
		s.releaseToken(c, userId)
		err = fmt.Errorf("failed inserting checkout session with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutSession{}, err
	}
	logger.Info().Msg("persisted checkout session")

	logger = logger.With().Str(log.KeyProcess, "creating gateway session").Logger()
	logger.Info().Msg("creating gateway session")
	lineItems := make([]payment.LineItem, len(m.Lines))
	for i, line := range m.Lines {
		lineItems[i] = payment.LineItem{
			Name:            line.Name,
			Currency:        m.Currency,
			UnitAmountMinor: line.UnitAmountMinor,
			Quantity:        line.Quantity,
		}
	}
	gatewayCtx, cancel := context.WithTimeout(c, s.gatewayTimeout())
	defer cancel()
	gatewaySession, err := s.gateway.CreateSession(gatewayCtx, payment.SessionRequest{
		Reference:   sessionId.String(),
		LineItems:   lineItems,
		AmountMinor: m.TotalMinor,
		Currency:    m.Currency,
		SuccessURL:  s.cfg.SuccessURL,
		CancelURL:   s.cfg.CancelURL,
	})
	if err != nil {
		if _, cancelErr := s.queries.FinalizeCheckoutSession(c, repository.FinalizeCheckoutSessionParams{
			ID:     sessionId,
			Status: repository.CheckoutStatusCancelled,
		}); cancelErr != nil {
			logger.Error().Err(cancelErr).Msg("failed cancelling checkout session")
		}
		s.releaseToken(c, userId)
		err = fmt.Errorf("failed creating gateway session with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutSession{}, err
	}
	logger = logger.With().Str(log.KeyGatewaySessionID, gatewaySession.SessionID).Logger()
	logger.Info().Msg("created gateway session")

	logger = logger.With().Str(log.KeyProcess, "attaching gateway session").Logger()
	logger.Info().Msg("attaching gateway session")
	session, err = s.queries.SetCheckoutGatewaySession(c, repository.SetCheckoutGatewaySessionParams{
		ID:               sessionId,
		GatewaySessionID: gatewaySession.SessionID,
	})
	if err != nil {
		s.releaseToken(c, userId)
		err = fmt.Errorf("failed attaching gateway session with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutSession{}, err
	}
	logger.Info().Msg("attached gateway session")

	res, err := response.FromCheckoutSession(session)
	if err != nil {
		err = fmt.Errorf("failed mapping checkout session with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutSession{}, err
	}
	res.PaymentURL = gatewaySession.PaymentURL
	return res, nil
}

// FindSessionById returns the persisted session for the user, for the
// storefront to poll while the customer is at the gateway.
func (s *CheckoutService) FindSessionById(
	c context.Context,
	userId, sessionId uuid.UUID,
) (response.CheckoutSession, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService FindSessionById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService FindSessionById").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyCheckoutSessionID, sessionId.String()).
		Str(log.KeyProcess, "finding checkout session").
		Logger()

	logger.Info().Msg("finding checkout session")
	session, err := s.queries.FindCheckoutSessionById(c, repository.FindCheckoutSessionByIdParams{
		ID:     sessionId,
		UserID: userId,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("%w: sessionId=%s", inErrors.ErrCheckoutNotFound, sessionId.String())
		} else {
			err = fmt.Errorf("failed finding checkout session with error=%w", err)
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutSession{}, err
	}
	logger.Info().Msg("found checkout session")

	res, err := response.FromCheckoutSession(session)
	if err != nil {
		err = fmt.Errorf("failed mapping checkout session with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutSession{}, err
	}
	return res, nil
}

// Confirm verifies the payment against the gateway and commits one order
// per manifest line inside a single transaction. The conditional status
// flip makes a duplicate confirmation fail with a conflict instead of
// committing the orders twice. Orders are inserted from the persisted
// snapshot, the live cart is never re-read here.
func (s *CheckoutService) Confirm(
	c context.Context,
	userId, sessionId uuid.UUID,
	email string,
) ([]response.Order, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService Confirm")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService Confirm").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyCheckoutSessionID, sessionId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding checkout session").Logger()
	logger.Info().Msg("finding checkout session")
	session, err := s.queries.FindCheckoutSessionById(c, repository.FindCheckoutSessionByIdParams{
		ID:     sessionId,
		UserID: userId,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("%w: sessionId=%s", inErrors.ErrCheckoutNotFound, sessionId.String())
		} else {
			err = fmt.Errorf("failed finding checkout session with error=%w", err)
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	if session.Status.IsTerminal() {
		err = fmt.Errorf("%w: sessionId=%s status=%s", inErrors.ErrCheckoutConflict, sessionId.String(), session.Status)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("found checkout session")

	logger = logger.With().Str(log.KeyProcess, "verifying payment").Logger()
	logger.Info().Msg("verifying payment")
	gatewayCtx, cancel := context.WithTimeout(c, s.gatewayTimeout())
	defer cancel()
	status, err := s.gateway.LookupSession(gatewayCtx, session.GatewaySessionID.String)
	if err != nil {
		err = fmt.Errorf("failed verifying payment with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	if !status.Paid() {
		err = fmt.Errorf("%w: sessionId=%s state=%s", inErrors.ErrPaymentNotCompleted, sessionId.String(), status.State)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Str(log.KeyGatewaySessionID, status.SessionID).Msg("verified payment")

	logger = logger.With().Str(log.KeyProcess, "committing orders").Logger()
	logger.Info().Msg("committing orders")
	tx, err := s.pool.Begin(c)
	if err != nil {
		err = fmt.Errorf("failed beginning transaction with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	defer func() {
		if err := tx.Rollback(c); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Error().Err(err).Msg("failed rolling back transaction")
		}
	}()

	qtx := s.queries.WithTx(tx)
	session, err = qtx.FinalizeCheckoutSession(c, repository.FinalizeCheckoutSessionParams{
		ID:     sessionId,
		Status: repository.CheckoutStatusCompleted,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("%w: sessionId=%s", inErrors.ErrCheckoutConflict, sessionId.String())
		} else {
			err = fmt.Errorf("failed completing checkout session with error=%w", err)
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	m := manifest.Manifest{}
	if err := json.Unmarshal(session.Items, &m); err != nil {
		err = fmt.Errorf("failed unmarshaling checkout items with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	orders := make([]response.Order, 0, len(m.Lines))
	for _, line := range m.Lines {
		order, err := qtx.InsertOrder(c, repository.InsertOrderParams{
			ID:        uuid.New(),
			UserID:    userId,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
		if err != nil {
			err = fmt.Errorf("failed inserting order for productId=%s with error=%w", line.ProductID.String(), err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		orders = append(orders, response.FromOrder(order))
	}

	if err := tx.Commit(c); err != nil {
		err = fmt.Errorf("failed committing orders with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int(log.KeyOrders, len(orders)).Msg("committed orders")

	// Post-commit cleanup is best effort, the orders already exist.
	logger = logger.With().Str(log.KeyProcess, "post-commit cleanup").Logger()
	c = logger.WithContext(c)
	if err := s.carts.Clear(c, userId); err != nil {
		logger.Error().Err(err).Msg("failed clearing cart after checkout")
	}
	s.releaseToken(c, userId)

	if email != "" {
		body := fmt.Sprintf(
			"Your payment of %d %s was received and %d order(s) were placed.",
			session.TotalMinor, session.Currency, len(orders),
		)
		if err := s.mailer.Send("Order confirmation", body, email); err != nil {
			logger.Error().Err(err).Str(log.KeyEmail, email).Msg("failed sending confirmation mail")
		}
	}

	return orders, nil
}

// Cancel finalizes the session as cancelled and releases the checkout
// token. The cart is left untouched so the customer can try again.
func (s *CheckoutService) Cancel(
	c context.Context,
	userId, sessionId uuid.UUID,
) (response.CheckoutSession, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService Cancel")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService Cancel").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyCheckoutSessionID, sessionId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding checkout session").Logger()
	logger.Info().Msg("finding checkout session")
	if _, err := s.queries.FindCheckoutSessionById(c, repository.FindCheckoutSessionByIdParams{
		ID:     sessionId,
		UserID: userId,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("%w: sessionId=%s", inErrors.ErrCheckoutNotFound, sessionId.String())
		} else {
			err = fmt.Errorf("failed finding checkout session with error=%w", err)
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutSession{}, err
	}
	logger.Info().Msg("found checkout session")

	logger = logger.With().Str(log.KeyProcess, "cancelling checkout session").Logger()
	logger.Info().Msg("cancelling checkout session")
	session, err := s.queries.FinalizeCheckoutSession(c, repository.FinalizeCheckoutSessionParams{
		ID:     sessionId,
		Status: repository.CheckoutStatusCancelled,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("%w: sessionId=%s", inErrors.ErrCheckoutConflict, sessionId.String())
		} else {
			err = fmt.Errorf("failed cancelling checkout session with error=%w", err)
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutSession{}, err
	}
	logger.Info().Msg("cancelled checkout session")

	c = logger.WithContext(c)
	s.releaseToken(c, userId)

	res, err := response.FromCheckoutSession(session)
	if err != nil {
		err = fmt.Errorf("failed mapping checkout session with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutSession{}, err
	}
	return res, nil
}
