// Package pricing turns a base price and adjustment multipliers into a quote.
package pricing

import "math"

// DefaultValidityDays is how long a quote stays valid unless overridden.
const DefaultValidityDays = 30

// Input carries the pricing parameters for one quote. Nil factors default
// to 1.0 (no adjustment).
type Input struct {
	BasePrice        float64  `json:"basePrice"`
	ComplexityFactor *float64 `json:"complexityFactor"`
	MaterialsFactor  *float64 `json:"materialsFactor"`
	TimelineFactor   *float64 `json:"timelineFactor"`
	LocationFactor   *float64 `json:"locationFactor"`
	ValidityDays     int      `json:"validityDays"`
	Notes            string   `json:"notes"`
}

// Breakdown attributes the price delta of each factor for transparency:
// (multiplier − 1) × basePrice.
type Breakdown struct {
	BasePrice  float64 `json:"basePrice"`
	Complexity float64 `json:"complexity"`
	Materials  float64 `json:"materials"`
	Timeline   float64 `json:"timeline"`
	Location   float64 `json:"location"`
	Total      float64 `json:"total"`
}

// Calculation is the deterministic pricing outcome for one input.
type Calculation struct {
	Complexity float64
	Materials  float64
	Timeline   float64
	Location   float64
	Total      float64
	Breakdown  Breakdown
}

// Calculate computes total = basePrice × complexity × materials × timeline ×
// location, rounded to the nearest cent.
func Calculate(input Input) Calculation {
	complexity := factorOrDefault(input.ComplexityFactor)
	materials := factorOrDefault(input.MaterialsFactor)
	timeline := factorOrDefault(input.TimelineFactor)
	location := factorOrDefault(input.LocationFactor)

	total := round2(input.BasePrice * complexity * materials * timeline * location)

	return Calculation{
		Complexity: complexity,
		Materials:  materials,
		Timeline:   timeline,
		Location:   location,
		Total:      total,
		Breakdown: Breakdown{
			BasePrice:  input.BasePrice,
			Complexity: round2((complexity - 1) * input.BasePrice),
			Materials:  round2((materials - 1) * input.BasePrice),
			Timeline:   round2((timeline - 1) * input.BasePrice),
			Location:   round2((location - 1) * input.BasePrice),
			Total:      total,
		},
	}
}

func factorOrDefault(f *float64) float64 {
	if f == nil {
		return 1.0
	}
	return *f
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
