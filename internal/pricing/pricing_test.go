package pricing

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.0001
}

func TestEnergyCostOneKWh(t *testing.T) {
	cost := EnergyCost("us", JoulesPerKWh)
	if !almostEqual(cost, 0.13) {
		t.Errorf("1 kWh US cost = %f, want 0.13", cost)
	}
}

func TestEnergyCostLargeSession(t *testing.T) {
	// 10 kWh
	cost := EnergyCost("nl", 10*JoulesPerKWh)
	if !almostEqual(cost, 2.40) {
		t.Errorf("10 kWh NL cost = %f, want 2.40", cost)
	}
}

func TestEnergyCostUnknownRegion(t *testing.T) {
	cost := EnergyCost("mars", JoulesPerKWh)
	if !almostEqual(cost, 0.15) {
		t.Errorf("1 kWh unknown region cost = %f, want 0.15 (fallback)", cost)
	}
}

func TestEnergyCostZeroJoules(t *testing.T) {
	if cost := EnergyCost("eu", 0); cost != 0 {
		t.Errorf("0 J cost = %f, want 0", cost)
	}
}

func TestEmissions(t *testing.T) {
	tests := []struct {
		region string
		joules float64
		want   float64
	}{
		{"fr", JoulesPerKWh, 56},
		{"uk", JoulesPerKWh / 2, 91},
		{"default", JoulesPerKWh, 400},
		{"unknown", JoulesPerKWh, 400},
		{"de", 0, 0},
	}
	for _, tt := range tests {
		got := Emissions(tt.region, tt.joules)
		if !almostEqual(got, tt.want) {
			t.Errorf("Emissions(%q, %f) = %f, want %f", tt.region, tt.joules, got, tt.want)
		}
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		region string
		want   float64
	}{
		{"us", 0.13},
		{"default", 0.15},
		{"", 0.15},
	}
	for _, tt := range tests {
		got := lookup(ElectricityRates, tt.region)
		if !almostEqual(got, tt.want) {
			t.Errorf("lookup(%q) = %f, want %f", tt.region, got, tt.want)
		}
	}
}
