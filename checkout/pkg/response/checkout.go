package response

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Alturino/storefront/internal/manifest"
	"github.com/Alturino/storefront/internal/repository"
)

type CheckoutSession struct {
	Id               uuid.UUID           `json:"id"`
	UserId           uuid.UUID           `json:"user_id"`
	GatewaySessionId string              `json:"gateway_session_id,omitempty"`
	PaymentURL       string              `json:"payment_url,omitempty"`
	Status           string              `json:"status"`
	Lines            []manifest.LineItem `json:"lines"`
	TotalMinor       int64               `json:"total_minor"`
	Currency         string              `json:"currency"`
	Unavailable      []uuid.UUID         `json:"unavailable,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

type Order struct {
	Id        uuid.UUID `json:"id"`
	UserId    uuid.UUID `json:"user_id"`
	ProductId uuid.UUID `json:"product_id"`
	Quantity  int32     `json:"quantity"`
	Status    string    `json:"status"`
	OrderedAt time.Time `json:"ordered_at"`
}

func FromCheckoutSession(s repository.CheckoutSession) (CheckoutSession, error) {
	m := manifest.Manifest{}
	if err := json.Unmarshal(s.Items, &m); err != nil {
		return CheckoutSession{}, err
	}
	return CheckoutSession{
		Id:               s.ID,
		UserId:           s.UserID,
		GatewaySessionId: s.GatewaySessionID.String,
		Status:           string(s.Status),
		Lines:            m.Lines,
		TotalMinor:       s.TotalMinor,
		Currency:         s.Currency,
		Unavailable:      m.Unavailable,
		CreatedAt:        s.CreatedAt.Time,
		UpdatedAt:        s.UpdatedAt.Time,
	}, nil
}

func FromOrder(o repository.Order) Order {
	return Order{
		Id:        o.ID,
		UserId:    o.UserID,
		ProductId: o.ProductID,
		Quantity:  o.Quantity,
		Status:    string(o.Status),
		OrderedAt: o.OrderedAt.Time,
	}
}
