// Package fee computes grade-based fee discounts. Discount is a pure
// function of its inputs, safe to call concurrently.
package fee

import (
	"github.com/shopspring/decimal"

	"github.com/joonsp/bankcore/internal/domain"
)

var vipRate = decimal.NewFromFloat(0.99)

// Discount returns the fee after applying the member's grade discount. Only
// VIP members receive a reduction (1%); every other grade pays the fee
// unchanged. The discount is informational: it reduces the recorded fee,
// never a balance.
func Discount(grade domain.Grade, feeAmount int64) int64 {
	if feeAmount <= 0 {
		return 0
	}
	if grade != domain.GradeVIP {
		return feeAmount
	}
	return decimal.NewFromInt(feeAmount).Mul(vipRate).Round(0).IntPart()
}
