package manifest

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/repository"
)

// LineItem is derived from the cart and the catalog at view or checkout
// time. It is never cached, so a catalog price change is reflected on the
// next build.
type LineItem struct {
	ProductID       uuid.UUID       `json:"product_id"`
	Name            string          `json:"name"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	UnitAmountMinor int64           `json:"unit_amount_minor"`
	Quantity        int32           `json:"quantity"`
	SubtotalMinor   int64           `json:"subtotal_minor"`
}

type Manifest struct {
	Lines       []LineItem  `json:"lines"`
	TotalMinor  int64       `json:"total_minor"`
	Currency    string      `json:"currency"`
	Unavailable []uuid.UUID `json:"unavailable,omitempty"`
}

func (m Manifest) IsEmpty() bool {
	return len(m.Lines) == 0
}

// MinorUnits converts a decimal price into integer minor currency units
// with explicit rounding, e.g. 100.00 becomes 10000.
func MinorUnits(price decimal.Decimal) int64 {
	return price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

type Catalog interface {
	FindProductById(c context.Context, id uuid.UUID) (repository.Product, error)
}

type Builder struct {
	catalog  Catalog
	currency string
}

func NewBuilder(catalog Catalog, currency string) Builder {
	return Builder{catalog: catalog, currency: currency}
}

// Build prices every cart entry against the catalog. Products that no
// longer exist are dropped from the manifest and reported through
// Unavailable instead of failing the whole build. Line order is
// deterministic so repeated builds of an unchanged cart are identical.
func (b Builder) Build(
	c context.Context,
	cart map[uuid.UUID]int32,
) (Manifest, error) {
	c, span := otel.Tracer.Start(c, "manifest Build")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "manifest Build").
		Int(log.KeyCartItems, len(cart)).
		Logger()

	productIds := make([]uuid.UUID, 0, len(cart))
	for productId := range cart {
		productIds = append(productIds, productId)
	}
	sort.Slice(productIds, func(i, j int) bool {
		return productIds[i].String() < productIds[j].String()
	})

	m := Manifest{Lines: []LineItem{}, Currency: b.currency}
	for _, productId := range productIds {
		quantity := cart[productId]

		product, err := b.catalog.FindProductById(c, productId)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				logger.Warn().
					Str(log.KeyProductID, productId.String()).
					Msg("product no longer in catalog, dropping cart line")
				m.Unavailable = append(m.Unavailable, productId)
				continue
			}
			err = fmt.Errorf("failed finding productId=%s with error=%w", productId.String(), err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return Manifest{}, err
		}

		unitPrice := decimal.NewFromBigInt(product.Price.Int, product.Price.Exp)
		unitMinor := MinorUnits(unitPrice)
		line := LineItem{
			ProductID:       product.ID,
			Name:            product.Name,
			UnitPrice:       unitPrice,
			UnitAmountMinor: unitMinor,
			Quantity:        quantity,
			SubtotalMinor:   unitMinor * int64(quantity),
		}
		m.Lines = append(m.Lines, line)
		m.TotalMinor += line.SubtotalMinor
	}

	logger.Info().
		Int64(log.KeyTotalMinor, m.TotalMinor).
		Int("lineCount", len(m.Lines)).
		Msg("built manifest")
	return m, nil
}
