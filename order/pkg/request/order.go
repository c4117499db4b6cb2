package request

type UpdateOrderStatus struct {
	Status string `validate:"required,oneof=processing shipped delivered cancelled" json:"status"`
}
