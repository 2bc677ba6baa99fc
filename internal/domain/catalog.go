package domain

import (
	"github.com/shopspring/decimal"
)

type Category struct {
	ID   int64
	Name string
}

// Product mirrors a catalog row. Stock is nil for categories that do not
// track stock (prepared dishes), which is different from zero units left.
type Product struct {
	ID         int64
	Name       string
	Price      decimal.Decimal
	Stock      *int
	CategoryID int64
}

// HasStock reports whether stock is tracked and at least one unit is left.
func (p Product) HasStock() bool {
	return p.Stock != nil && *p.Stock > 0
}

// ProductSales is a product together with the sum of ordered units.
type ProductSales struct {
	Product       Product
	TotalQuantity int64
}
