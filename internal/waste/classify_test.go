package waste

import (
	"testing"

	"github.com/Vihanga-02/EcoLife/internal/models"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		wasteType models.WasteType
		quantity  float64
		bio       bool
		recyc     bool
		carbon    float64
	}{
		{models.WastePlastic, 10, false, true, 20.0},
		{models.WasteOrganic, 5, true, false, 1.5},
		{models.WastePaper, 3, true, true, 3.0},
		{models.WasteGlass, 2, false, true, 1.0},
		{models.WasteEwaste, 0.5, false, true, 10.0},
	}
	for _, tc := range cases {
		c := Classify(tc.wasteType, tc.quantity)
		require.Equal(t, tc.bio, c.IsBiodegradable, "biodegradable for %s", tc.wasteType)
		require.Equal(t, tc.recyc, c.IsRecyclable, "recyclable for %s", tc.wasteType)
		require.Equal(t, tc.carbon, c.CarbonEquivalent, "carbon for %s", tc.wasteType)
	}
}

func TestClassifyRoundsCarbon(t *testing.T) {
	// 1.2345 kg organic at 0.3 => 0.37035, rounded to 3 decimals.
	c := Classify(models.WasteOrganic, 1.2345)
	require.Equal(t, 0.37, c.CarbonEquivalent)

	c = Classify(models.WastePlastic, 1.23456)
	require.Equal(t, 2.469, c.CarbonEquivalent)
}

func TestApply(t *testing.T) {
	log := models.WasteLog{WasteType: models.WastePaper, Quantity: 4}
	Apply(&log)
	require.True(t, log.IsBiodegradable)
	require.True(t, log.IsRecyclable)
	require.Equal(t, 4.0, log.CarbonEquivalent)
}
