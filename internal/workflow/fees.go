package workflow

import (
	"fmt"
	"math"
	"strings"
)

// Fee tiers are fixed amounts in pesewas (GHS cents). A region named
// exactly "local" (case-insensitive) pays the low tier; every other
// region pays the high tier. The payment gateway settles in USD at a
// fixed exchange rate.
const (
	LocalFeePesewas    uint32 = 10_000  // GHS 100.00
	StandardFeePesewas uint32 = 100_000 // GHS 1000.00

	cedisPerDollar = 5.50
)

// FeeForRegion returns the visit fee in pesewas for the named region.
func FeeForRegion(regionName string) uint32 {
	if strings.EqualFold(strings.TrimSpace(regionName), "local") {
		return LocalFeePesewas
	}
	return StandardFeePesewas
}

// USDValue converts a pesewa fee into the gateway's settlement amount:
// fee divided by the fixed exchange rate, rounded to two decimals and
// formatted the way the order API expects ("18.18").
func USDValue(feePesewas uint32) string {
	cents := int64(math.Round(float64(feePesewas) / cedisPerDollar))
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
