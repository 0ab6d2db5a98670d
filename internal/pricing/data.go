package pricing

// ElectricityRates maps a grid region to the retail electricity price in USD per kWh.
// Figures are 2025 averages for commercial tariffs.
var ElectricityRates = map[string]float64{
	"us":      0.13,
	"eu":      0.21,
	"nl":      0.24,
	"de":      0.27,
	"uk":      0.29,
	"fr":      0.20,
	"default": 0.15,
}

// CarbonIntensity maps a grid region to its average emissions in gCO2eq per kWh.
var CarbonIntensity = map[string]float64{
	"us":      369,
	"eu":      244,
	"nl":      268,
	"de":      363,
	"uk":      182,
	"fr":      56,
	"default": 400,
}
