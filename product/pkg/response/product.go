package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/internal/repository"
)

type Product struct {
	Id          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageUrl    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
}

func FromProduct(p repository.Product) Product {
	return Product{
		Id:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       decimal.NewFromBigInt(p.Price.Int, p.Price.Exp),
		Category:    string(p.Category),
		ImageUrl:    p.ImageUrl,
		CreatedAt:   p.CreatedAt.Time,
	}
}
