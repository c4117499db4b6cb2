package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const findProductById = `
SELECT id, name, description, price, category, image_url, created_at
FROM products
WHERE id = $1
`

func (q *Queries) FindProductById(c context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(c, findProductById, id)
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Category,
		&p.ImageUrl,
		&p.CreatedAt,
	)
	return p, err
}

const findProducts = `
SELECT id, name, description, price, category, image_url, created_at
FROM products
ORDER BY created_at DESC
`

func (q *Queries) FindProducts(c context.Context) ([]Product, error) {
	rows, err := q.db.Query(c, findProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := []Product{}
	for rows.Next() {
		var p Product
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.Category,
			&p.ImageUrl,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

const insertProduct = `
INSERT INTO products (id, name, description, price, category, image_url)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, name, description, price, category, image_url, created_at
`

type InsertProductParams struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       pgtype.Numeric
	Category    ProductCategory
	ImageUrl    string
}

func (q *Queries) InsertProduct(c context.Context, arg InsertProductParams) (Product, error) {
	row := q.db.QueryRow(c, insertProduct,
		arg.ID,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.Category,
		arg.ImageUrl,
	)
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Category,
		&p.ImageUrl,
		&p.CreatedAt,
	)
	return p, err
}
