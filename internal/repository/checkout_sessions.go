package repository

import (
	"context"

	"github.com/google/uuid"
)

const insertCheckoutSession = `
INSERT INTO checkout_sessions (id, user_id, status, items, total_minor, currency)
VALUES ($1, $2, 'initiated', $3, $4, $5)
RETURNING id, user_id, gateway_session_id, status, items, total_minor, currency, created_at, updated_at
`

type InsertCheckoutSessionParams struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Items      []byte
	TotalMinor int64
	Currency   string
}

func (q *Queries) InsertCheckoutSession(
	c context.Context,
	arg InsertCheckoutSessionParams,
) (CheckoutSession, error) {
	row := q.db.QueryRow(c, insertCheckoutSession,
		arg.ID,
		arg.UserID,
		arg.Items,
		arg.TotalMinor,
		arg.Currency,
	)
	return scanCheckoutSession(row)
}

const findCheckoutSessionById = `
SELECT id, user_id, gateway_session_id, status, items, total_minor, currency, created_at, updated_at
FROM checkout_sessions
WHERE id = $1 AND user_id = $2
`

type FindCheckoutSessionByIdParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) FindCheckoutSessionById(
	c context.Context,
	arg FindCheckoutSessionByIdParams,
) (CheckoutSession, error) {
	row := q.db.QueryRow(c, findCheckoutSessionById, arg.ID, arg.UserID)
	return scanCheckoutSession(row)
}

const setCheckoutGatewaySession = `
UPDATE checkout_sessions
SET gateway_session_id = $2, updated_at = now()
WHERE id = $1
RETURNING id, user_id, gateway_session_id, status, items, total_minor, currency, created_at, updated_at
`

type SetCheckoutGatewaySessionParams struct {
	ID               uuid.UUID
	GatewaySessionID string
}

func (q *Queries) SetCheckoutGatewaySession(
	c context.Context,
	arg SetCheckoutGatewaySessionParams,
) (CheckoutSession, error) {
	row := q.db.QueryRow(c, setCheckoutGatewaySession, arg.ID, arg.GatewaySessionID)
	return scanCheckoutSession(row)
}

// Conditional status flip. Returns pgx.ErrNoRows when the session has
// already left the initiated state, which makes a duplicate confirmation
// observable to the caller.
const finalizeCheckoutSession = `
UPDATE checkout_sessions
SET status = $2, updated_at = now()
WHERE id = $1 AND status = 'initiated'
RETURNING id, user_id, gateway_session_id, status, items, total_minor, currency, created_at, updated_at
`

type FinalizeCheckoutSessionParams struct {
	ID     uuid.UUID
	Status CheckoutStatus
}

func (q *Queries) FinalizeCheckoutSession(
	c context.Context,
	arg FinalizeCheckoutSessionParams,
) (CheckoutSession, error) {
	row := q.db.QueryRow(c, finalizeCheckoutSession, arg.ID, arg.Status)
	return scanCheckoutSession(row)
}

type row interface {
	Scan(dest ...interface{}) error
}

func scanCheckoutSession(r row) (CheckoutSession, error) {
	var s CheckoutSession
	err := r.Scan(
		&s.ID,
		&s.UserID,
		&s.GatewaySessionID,
		&s.Status,
		&s.Items,
		&s.TotalMinor,
		&s.Currency,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}
