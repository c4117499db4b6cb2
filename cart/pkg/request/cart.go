package request

import (
	"github.com/google/uuid"
)

type AddCartItem struct {
	ProductId uuid.UUID `validate:"required" json:"product_id"`
}

type SetCartItemQuantity struct {
	ProductId uuid.UUID `validate:"required"                json:"product_id"`
	Quantity  int32     `validate:"required,gte=1,lte=99" json:"quantity"`
}

type RemoveCartItem struct {
	ProductId uuid.UUID `validate:"required" json:"product_id"`
}
