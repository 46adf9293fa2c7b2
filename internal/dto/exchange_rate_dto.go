package dto

import (
	"github.com/shopspring/decimal"
)

// MaxBulkConversions caps the size of one bulk conversion request.
const MaxBulkConversions = 50

// ConvertRequest asks for a single currency conversion.
type ConvertRequest struct {
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	FromCurrency string          `json:"from_currency" binding:"required,len=3"`
	ToCurrency   string          `json:"to_currency" binding:"required,len=3"`
}

// BulkConvertRequest asks for several conversions in one call.
type BulkConvertRequest struct {
	Conversions []ConvertRequest `json:"conversions" binding:"required,min=1,max=50,dive"`
}

// LatestRatesParams defines query parameters for the latest-rates endpoint.
type LatestRatesParams struct {
	Base string `form:"base,default=USD"`
}
