// Package waste derives the environmental metrics of a logged waste entry.
package waste

import (
	"math"

	"github.com/Vihanga-02/EcoLife/internal/models"
)

// kg CO2-equivalent per unit of waste.
var carbonFactors = map[models.WasteType]float64{
	models.WastePlastic: 2.0,
	models.WastePaper:   1.0,
	models.WasteGlass:   0.5,
	models.WasteOrganic: 0.3,
	models.WasteEwaste:  20.0,
}

// Classification holds the derived fields of a waste log. They are always
// recomputed from wasteType and quantity, never stored authoritatively.
type Classification struct {
	IsBiodegradable  bool
	IsRecyclable     bool
	CarbonEquivalent float64
}

// Classify derives biodegradability, recyclability and carbon equivalent
// (rounded to 3 decimals) for a waste type and quantity. Waste types are
// validated at the boundary, so every type has a carbon factor.
func Classify(t models.WasteType, quantity float64) Classification {
	carbon := quantity * carbonFactors[t]
	return Classification{
		IsBiodegradable:  t == models.WasteOrganic || t == models.WastePaper,
		IsRecyclable:     t == models.WastePlastic || t == models.WastePaper || t == models.WasteGlass || t == models.WasteEwaste,
		CarbonEquivalent: math.Round(carbon*1000) / 1000,
	}
}

// Apply stamps the derived fields onto a log entry.
func Apply(log *models.WasteLog) {
	c := Classify(log.WasteType, log.Quantity)
	log.IsBiodegradable = c.IsBiodegradable
	log.IsRecyclable = c.IsRecyclable
	log.CarbonEquivalent = c.CarbonEquivalent
}
