package repository

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Transitions are not restricted, any status can be set by a privileged
// actor. Valid only guards against unknown values.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type CheckoutStatus string

const (
	CheckoutStatusInitiated CheckoutStatus = "initiated"
	CheckoutStatusCompleted CheckoutStatus = "completed"
	CheckoutStatusCancelled CheckoutStatus = "cancelled"
)

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusCompleted || s == CheckoutStatusCancelled
}

type ProductCategory string

const (
	ProductCategoryElectronics ProductCategory = "electronics"
	ProductCategoryClothing    ProductCategory = "clothing"
	ProductCategoryBooks       ProductCategory = "books"
	ProductCategoryGrocery     ProductCategory = "grocery"
)

func (c ProductCategory) Valid() bool {
	switch c {
	case ProductCategoryElectronics, ProductCategoryClothing, ProductCategoryBooks, ProductCategoryGrocery:
		return true
	}
	return false
}

type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       pgtype.Numeric
	Category    ProductCategory
	ImageUrl    string
	CreatedAt   pgtype.Timestamptz
}

type Order struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	Status    OrderStatus
	OrderedAt pgtype.Timestamptz
}

type CheckoutSession struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	GatewaySessionID pgtype.Text
	Status           CheckoutStatus
	Items            []byte
	TotalMinor       int64
	Currency         string
	CreatedAt        pgtype.Timestamptz
	UpdatedAt        pgtype.Timestamptz
}
