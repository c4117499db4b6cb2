package request

type CreateCheckoutSession struct {
	Email string `validate:"omitempty,email" json:"email"`
}

type ConfirmCheckoutSession struct {
	Email string `validate:"omitempty,email" json:"email"`
}
