package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// OrderDetail is an order joined with its product, the FK guarantees the
// product row exists.
type OrderDetail struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Price       pgtype.Numeric
	Quantity    int32
	Status      OrderStatus
	OrderedAt   pgtype.Timestamptz
}

const findOrderDetailsByUserId = `
SELECT o.id, o.user_id, o.product_id, p.name, p.price, o.quantity, o.status, o.ordered_at
FROM orders o
JOIN products p ON p.id = o.product_id
WHERE o.user_id = $1
ORDER BY o.ordered_at DESC
`

func (q *Queries) FindOrderDetailsByUserId(
	c context.Context,
	userID uuid.UUID,
) ([]OrderDetail, error) {
	rows, err := q.db.Query(c, findOrderDetailsByUserId, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := []OrderDetail{}
	for rows.Next() {
		var d OrderDetail
		err := rows.Scan(
			&d.ID,
			&d.UserID,
			&d.ProductID,
			&d.ProductName,
			&d.Price,
			&d.Quantity,
			&d.Status,
			&d.OrderedAt,
		)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

const findOrderDetailById = `
SELECT o.id, o.user_id, o.product_id, p.name, p.price, o.quantity, o.status, o.ordered_at
FROM orders o
JOIN products p ON p.id = o.product_id
WHERE o.id = $1 AND o.user_id = $2
`

type FindOrderDetailByIdParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) FindOrderDetailById(
	c context.Context,
	arg FindOrderDetailByIdParams,
) (OrderDetail, error) {
	row := q.db.QueryRow(c, findOrderDetailById, arg.ID, arg.UserID)
	var d OrderDetail
	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.ProductID,
		&d.ProductName,
		&d.Price,
		&d.Quantity,
		&d.Status,
		&d.OrderedAt,
	)
	return d, err
}

const findOrderDetails = `
SELECT o.id, o.user_id, o.product_id, p.name, p.price, o.quantity, o.status, o.ordered_at
FROM orders o
JOIN products p ON p.id = o.product_id
ORDER BY o.ordered_at DESC
`

func (q *Queries) FindOrderDetails(c context.Context) ([]OrderDetail, error) {
	rows, err := q.db.Query(c, findOrderDetails)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := []OrderDetail{}
	for rows.Next() {
		var d OrderDetail
		err := rows.Scan(
			&d.ID,
			&d.UserID,
			&d.ProductID,
			&d.ProductName,
			&d.Price,
			&d.Quantity,
			&d.Status,
			&d.OrderedAt,
		)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
