// Package billing holds the energy accounting math: usage-session kWh
// accrual, tariff-block matching and the two bill estimation modes.
package billing

import (
	"math"
	"time"
)

// NoMatchingTariff is reported when no active block covers the usage.
// It is a valid outcome, not an error.
const NoMatchingTariff = "No matching tariff"

// Block is one tariff rate block. A nil MaxUnits means unbounded.
type Block struct {
	Name        string
	MinUnits    float64
	MaxUnits    *float64
	UnitRate    float64
	FixedCharge float64
}

// Round rounds v to the given number of decimal places.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// SessionKwh computes the energy drawn by an appliance of the given wattage
// between start and end, rounded to 4 decimal places. Never negative.
func SessionKwh(wattage float64, start, end time.Time) float64 {
	hours := end.Sub(start).Hours()
	if hours < 0 {
		hours = 0
	}
	return Round(wattage/1000*hours, 4)
}

// Match returns the first block, in ascending MinUnits order, whose range
// contains totalKwh. Callers pass blocks already filtered to active and
// sorted ascending.
func Match(blocks []Block, totalKwh float64) (Block, bool) {
	for _, b := range blocks {
		max := math.Inf(1)
		if b.MaxUnits != nil {
			max = *b.MaxUnits
		}
		if totalKwh >= b.MinUnits && totalKwh <= max {
			return b, true
		}
	}
	return Block{}, false
}

// UsageEstimate is the realized-usage bill estimate.
type UsageEstimate struct {
	TotalKwh      float64 `json:"totalKwh"`
	EstimatedBill float64 `json:"estimatedBill"`
	TariffApplied string  `json:"tariffApplied"`
}

// EstimateUsageBill bills the summed realized kWh against the tariff table.
// No matching block yields a zero bill and the NoMatchingTariff reason.
func EstimateUsageBill(blocks []Block, totalKwh float64) UsageEstimate {
	est := UsageEstimate{
		TotalKwh:      Round(totalKwh, 3),
		TariffApplied: NoMatchingTariff,
	}
	if b, ok := Match(blocks, totalKwh); ok {
		est.EstimatedBill = Round(b.FixedCharge+totalKwh*b.UnitRate, 2)
		est.TariffApplied = b.Name
	}
	return est
}

// ApplianceLoad is the configured running schedule of one appliance.
type ApplianceLoad struct {
	ID           uint
	Name         string
	Wattage      float64
	HoursPerDay  float64
	DaysPerMonth float64
}

// ApplianceEstimate is the per-appliance share of a schedule-based estimate.
type ApplianceEstimate struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	EstimatedKwh  float64 `json:"estimatedKwh"`
	EstimatedCost float64 `json:"estimatedCost"`
}

// ScheduleEstimate is the configured-schedule bill estimate.
type ScheduleEstimate struct {
	TotalEstimatedKwh float64             `json:"totalEstimatedKwh"`
	EstimatedBill     float64             `json:"estimatedBill"`
	TariffApplied     string              `json:"tariffApplied"`
	EffectiveRate     float64             `json:"effectiveRate"`
	Appliances        []ApplianceEstimate `json:"appliances"`
}

// EstimateScheduleBill projects each appliance's monthly kWh from its
// configured schedule, bills the total against the tariff table and
// attributes a proportional cost back to each appliance through the
// effective unit rate (bill / total kWh, zero when total is zero).
func EstimateScheduleBill(blocks []Block, loads []ApplianceLoad) ScheduleEstimate {
	est := ScheduleEstimate{
		TariffApplied: NoMatchingTariff,
		Appliances:    make([]ApplianceEstimate, 0, len(loads)),
	}

	var totalKwh float64
	for _, l := range loads {
		kwh := Round(l.Wattage/1000*l.HoursPerDay*l.DaysPerMonth, 3)
		totalKwh += kwh
		est.Appliances = append(est.Appliances, ApplianceEstimate{
			ID:           l.ID,
			Name:         l.Name,
			EstimatedKwh: kwh,
		})
	}
	est.TotalEstimatedKwh = Round(totalKwh, 3)

	if b, ok := Match(blocks, totalKwh); ok {
		est.EstimatedBill = Round(b.FixedCharge+totalKwh*b.UnitRate, 2)
		est.TariffApplied = b.Name
	}

	if totalKwh > 0 {
		est.EffectiveRate = est.EstimatedBill / totalKwh
	}
	for i := range est.Appliances {
		est.Appliances[i].EstimatedCost = Round(est.Appliances[i].EstimatedKwh*est.EffectiveRate, 2)
	}
	return est
}
