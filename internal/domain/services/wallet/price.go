package wallet

import (
	"context"

	"github.com/shopspring/decimal"
)

// DefaultNativeUSD is the fallback BNB price used when no feed is configured.
var DefaultNativeUSD = decimal.NewFromInt(300)

// PriceOracle quotes the native coin in USD.
type PriceOracle interface {
	NativeUSD(ctx context.Context) (decimal.Decimal, error)
}

// StaticPriceOracle always returns the same quote.
type StaticPriceOracle struct {
	Price decimal.Decimal
}

func NewStaticPriceOracle(price decimal.Decimal) *StaticPriceOracle {
	if !price.IsPositive() {
		price = DefaultNativeUSD
	}
	return &StaticPriceOracle{Price: price}
}

func (o *StaticPriceOracle) NativeUSD(context.Context) (decimal.Decimal, error) {
	return o.Price, nil
}
