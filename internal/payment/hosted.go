package payment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Alturino/storefront/internal/config"
	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/otel"
)

type HostedGateway struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewHostedGateway(cfg config.Payment) *HostedGateway {
	return &HostedGateway{
		baseURL:   cfg.BaseURL,
		secretKey: cfg.SecretKey,
		client:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

func (g *HostedGateway) CreateSession(
	c context.Context,
	req SessionRequest,
) (SessionResponse, error) {
	c, span := otel.Tracer.Start(c, "HostedGateway CreateSession")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "HostedGateway CreateSession").
		Str(log.KeyTotalMinor, fmt.Sprintf("%d", req.AmountMinor)).
		Logger()

	body, err := json.Marshal(req)
	if err != nil {
		err = fmt.Errorf("failed marshaling session request with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return SessionResponse{}, err
	}

	httpReq, err := http.NewRequestWithContext(
		c,
		http.MethodPost,
		g.baseURL+"/v1/checkout/sessions",
		bytes.NewBuffer(body),
	)
	if err != nil {
		err = fmt.Errorf("failed creating session request with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return SessionResponse{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		err = fmt.Errorf("%w: create session: %w", inErrors.ErrPaymentGateway, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return SessionResponse{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("%w: reading create session response: %w", inErrors.ErrPaymentGateway, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return SessionResponse{}, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		err = fmt.Errorf(
			"%w: create session returned http=%d body=%s",
			inErrors.ErrPaymentGateway,
			resp.StatusCode,
			string(raw),
		)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return SessionResponse{}, err
	}

	session := SessionResponse{}
	if err := json.Unmarshal(raw, &session); err != nil {
		err = fmt.Errorf("%w: decoding create session response: %w", inErrors.ErrPaymentGateway, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return SessionResponse{}, err
	}

	logger.Info().
		Str(log.KeyGatewaySessionID, session.SessionID).
		Msg("created gateway checkout session")
	return session, nil
}

func (g *HostedGateway) LookupSession(
	c context.Context,
	sessionID string,
) (SessionStatus, error) {
	c, span := otel.Tracer.Start(c, "HostedGateway LookupSession")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "HostedGateway LookupSession").
		Str(log.KeyGatewaySessionID, sessionID).
		Logger()

	httpReq, err := http.NewRequestWithContext(
		c,
		http.MethodGet,
		g.baseURL+"/v1/checkout/sessions/"+sessionID,
		nil,
	)
	if err != nil {
		err = fmt.Errorf("failed creating lookup request with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return SessionStatus{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.secretKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		err = fmt.Errorf("%w: lookup session: %w", inErrors.ErrPaymentGateway, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return SessionStatus{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("%w: reading lookup response: %w", inErrors.ErrPaymentGateway, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return SessionStatus{}, err
	}
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf(
			"%w: lookup session returned http=%d body=%s",
			inErrors.ErrPaymentGateway,
			resp.StatusCode,
			string(raw),
		)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return SessionStatus{}, err
	}

	status := SessionStatus{}
	if err := json.Unmarshal(raw, &status); err != nil {
		err = fmt.Errorf("%w: decoding lookup response: %w", inErrors.ErrPaymentGateway, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return SessionStatus{}, err
	}

	logger.Info().Str("state", status.State).Msg("looked up gateway checkout session")
	return status, nil
}
