package request

import "github.com/shopspring/decimal"

type InsertProduct struct {
	Name        string          `validate:"required,min=1,max=255"                              json:"name"`
	Description string          `validate:"required"                                            json:"description"`
	Price       decimal.Decimal `validate:"required"                                            json:"price"`
	Category    string          `validate:"required,oneof=electronics clothing books grocery"   json:"category"`
	ImageUrl    string          `validate:"required,url"                                        json:"image_url"`
}
