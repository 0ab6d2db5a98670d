package pricing

// JoulesPerKWh is the number of joules in one kilowatt-hour.
const JoulesPerKWh = 3.6e6

// EnergyCost returns the electricity cost in USD of consuming joules in a region.
func EnergyCost(region string, joules float64) float64 {
	return joules / JoulesPerKWh * lookup(ElectricityRates, region)
}

// Emissions returns the grams of CO2eq attributable to consuming joules in a region.
func Emissions(region string, joules float64) float64 {
	return joules / JoulesPerKWh * lookup(CarbonIntensity, region)
}

// lookup returns the region's entry, falling back to "default" for unknown regions.
func lookup(table map[string]float64, region string) float64 {
	v, ok := table[region]
	if !ok {
		return table["default"]
	}
	return v
}
