package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstrument_WithDefaults(t *testing.T) {
	inst := Instrument{Symbol: "VTI", Sector: "Broad Market"}.WithDefaults()

	assert.Equal(t, "VTI", inst.Name)
	assert.Equal(t, "Unknown", inst.AssetClass)
	assert.Equal(t, "Broad Market", inst.Sector)
	assert.Equal(t, "US", inst.Country)
	assert.Equal(t, CurrencyUSD, inst.Currency)
}

func TestInstrument_Attribute(t *testing.T) {
	inst := Instrument{Symbol: "EWJ", AssetClass: "Equity", Country: "JP"}

	assert.Equal(t, "Equity", inst.Attribute("asset_class"))
	assert.Equal(t, "Unknown", inst.Attribute("sector"))
	assert.Equal(t, "JP", inst.Attribute("country"))
	assert.Equal(t, "Unknown", inst.Attribute("currency"))
}

func TestValidatePositions(t *testing.T) {
	assert.NoError(t, ValidatePositions(nil))
	assert.NoError(t, ValidatePositions([]Position{{Symbol: "AAA", Quantity: 0}}))

	err := ValidatePositions([]Position{{Symbol: "AAA", Quantity: 1}, {Quantity: 2}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = ValidatePositions([]Position{{Symbol: "AAA", Quantity: math.NaN()}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
