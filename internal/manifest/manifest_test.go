package manifest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/internal/repository"
)

type fakeCatalog map[uuid.UUID]repository.Product

func (f fakeCatalog) FindProductById(
	_ context.Context,
	id uuid.UUID,
) (repository.Product, error) {
	product, ok := f[id]
	if !ok {
		return repository.Product{}, pgx.ErrNoRows
	}
	return product, nil
}

func newProduct(t *testing.T, name, price string) repository.Product {
	t.Helper()
	d, err := decimal.NewFromString(price)
	require.NoError(t, err)
	return repository.Product{
		ID:   uuid.New(),
		Name: name,
		Price: pgtype.Numeric{
			Int:   d.Coefficient(),
			Exp:   d.Exponent(),
			Valid: true,
		},
	}
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		expected int64
	}{
		{name: "exact rupees", price: "100.00", expected: 10000},
		{name: "exact paise", price: "250.50", expected: 25050},
		{name: "rounds up", price: "19.999", expected: 2000},
		{name: "rounds half up", price: "0.005", expected: 1},
		{name: "zero", price: "0", expected: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := decimal.NewFromString(tt.price)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, MinorUnits(d))
		})
	}
}

func TestBuildTotalsAndLines(t *testing.T) {
	p1 := newProduct(t, "keyboard", "100.00")
	p2 := newProduct(t, "novel", "250.00")
	catalog := fakeCatalog{p1.ID: p1, p2.ID: p2}
	builder := NewBuilder(catalog, "inr")

	cart := map[uuid.UUID]int32{p1.ID: 2, p2.ID: 1}
	m, err := builder.Build(context.Background(), cart)
	require.NoError(t, err)

	assert.Len(t, m.Lines, 2)
	assert.Equal(t, int64(45000), m.TotalMinor)
	assert.Equal(t, "inr", m.Currency)
	assert.Empty(t, m.Unavailable)

	var sum int64
	for _, line := range m.Lines {
		assert.Equal(t, line.UnitAmountMinor*int64(line.Quantity), line.SubtotalMinor)
		sum += line.SubtotalMinor
	}
	assert.Equal(t, m.TotalMinor, sum)
}

func TestBuildIsIdempotent(t *testing.T) {
	p1 := newProduct(t, "keyboard", "99.99")
	p2 := newProduct(t, "mug", "12.50")
	catalog := fakeCatalog{p1.ID: p1, p2.ID: p2}
	builder := NewBuilder(catalog, "inr")

	cart := map[uuid.UUID]int32{p1.ID: 3, p2.ID: 7}
	first, err := builder.Build(context.Background(), cart)
	require.NoError(t, err)
	second, err := builder.Build(context.Background(), cart)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildDropsUnavailableProducts(t *testing.T) {
	p1 := newProduct(t, "keyboard", "100.00")
	deleted := uuid.New()
	catalog := fakeCatalog{p1.ID: p1}
	builder := NewBuilder(catalog, "inr")

	cart := map[uuid.UUID]int32{p1.ID: 1, deleted: 4}
	m, err := builder.Build(context.Background(), cart)
	require.NoError(t, err)

	assert.Len(t, m.Lines, 1)
	assert.Equal(t, p1.ID, m.Lines[0].ProductID)
	assert.Equal(t, int64(10000), m.TotalMinor)
	assert.Equal(t, []uuid.UUID{deleted}, m.Unavailable)
}

func TestBuildEmptyCart(t *testing.T) {
	builder := NewBuilder(fakeCatalog{}, "inr")

	m, err := builder.Build(context.Background(), map[uuid.UUID]int32{})
	require.NoError(t, err)

	assert.True(t, m.IsEmpty())
	assert.Zero(t, m.TotalMinor)
}
