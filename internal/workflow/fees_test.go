package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeeForRegion(t *testing.T) {
	assert.Equal(t, LocalFeePesewas, FeeForRegion("local"))
	assert.Equal(t, LocalFeePesewas, FeeForRegion("Local"))
	assert.Equal(t, LocalFeePesewas, FeeForRegion("  LOCAL "))
	assert.Equal(t, StandardFeePesewas, FeeForRegion("Ashanti"))
	assert.Equal(t, StandardFeePesewas, FeeForRegion(""))
	assert.Equal(t, StandardFeePesewas, FeeForRegion("localish"))
}

func TestUSDValue(t *testing.T) {
	// 10000 pesewas = GHS 100 -> 100/5.50 = 18.18 USD
	assert.Equal(t, "18.18", USDValue(LocalFeePesewas))
	// 100000 pesewas = GHS 1000 -> 1000/5.50 = 181.82 USD
	assert.Equal(t, "181.82", USDValue(StandardFeePesewas))
	assert.Equal(t, "0.00", USDValue(0))
	// 550 pesewas = GHS 5.50 -> exactly 1 USD
	assert.Equal(t, "1.00", USDValue(550))
}
