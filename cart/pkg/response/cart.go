package response

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/internal/manifest"
)

type CartItem struct {
	ProductId       uuid.UUID       `json:"product_id"`
	Name            string          `json:"name"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	UnitAmountMinor int64           `json:"unit_amount_minor"`
	Quantity        int32           `json:"quantity"`
	SubtotalMinor   int64           `json:"subtotal_minor"`
}

type Cart struct {
	UserId      uuid.UUID   `json:"user_id"`
	CartItems   []CartItem  `json:"cart_items"`
	TotalMinor  int64       `json:"total_minor"`
	Currency    string      `json:"currency"`
	Unavailable []uuid.UUID `json:"unavailable,omitempty"`
}

func FromManifest(userId uuid.UUID, m manifest.Manifest) Cart {
	items := make([]CartItem, len(m.Lines))
	for i, line := range m.Lines {
		items[i] = CartItem{
			ProductId:       line.ProductID,
			Name:            line.Name,
			UnitPrice:       line.UnitPrice,
			UnitAmountMinor: line.UnitAmountMinor,
			Quantity:        line.Quantity,
			SubtotalMinor:   line.SubtotalMinor,
		}
	}
	return Cart{
		UserId:      userId,
		CartItems:   items,
		TotalMinor:  m.TotalMinor,
		Currency:    m.Currency,
		Unavailable: m.Unavailable,
	}
}
