package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/internal/manifest"
	"github.com/Alturino/storefront/internal/repository"
)

type Order struct {
	Id          uuid.UUID       `json:"id"`
	UserId      uuid.UUID       `json:"user_id"`
	ProductId   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int32           `json:"quantity"`
	TotalMinor  int64           `json:"total_minor"`
	Status      string          `json:"status"`
	OrderedAt   time.Time       `json:"ordered_at"`
}

func FromOrderDetail(d repository.OrderDetail) Order {
	unitPrice := decimal.NewFromBigInt(d.Price.Int, d.Price.Exp)
	return Order{
		Id:          d.ID,
		UserId:      d.UserID,
		ProductId:   d.ProductID,
		ProductName: d.ProductName,
		UnitPrice:   unitPrice,
		Quantity:    d.Quantity,
		TotalMinor:  manifest.MinorUnits(unitPrice) * int64(d.Quantity),
		Status:      string(d.Status),
		OrderedAt:   d.OrderedAt.Time,
	}
}
