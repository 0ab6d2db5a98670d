package analyzer

import "math"

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return finite(sum / float64(len(xs)))
}

// stdDev is the sample (n-1) standard deviation; fewer than two values yield 0.
func stdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	ss := 0.0
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return finite(math.Sqrt(ss / float64(len(xs)-1)))
}

func spread(xs []float64) Spread {
	return Spread{Mean: mean(xs), StdDev: stdDev(xs)}
}

func distribution(xs []float64) Distribution {
	if len(xs) == 0 {
		return Distribution{}
	}
	d := Distribution{Mean: mean(xs), StdDev: stdDev(xs), Min: xs[0], Max: xs[0]}
	for _, x := range xs[1:] {
		d.Min = min(d.Min, x)
		d.Max = max(d.Max, x)
	}
	return d
}

// efficiency computes the yield ratios of a group of n runs. A non-positive or
// overflowed energy sum leaves the ratios at zero and marks the stat undefined.
func efficiency(bugs int, energyJ float64, n int) EfficiencyStat {
	if n == 0 {
		return EfficiencyStat{}
	}
	e := EfficiencyStat{
		AvgBugs:    float64(bugs) / float64(n),
		AvgEnergyJ: finite(energyJ / float64(n)),
	}
	if energyJ <= 0 || !isFinite(energyJ) {
		return e
	}
	e.BugsPerJoule = float64(bugs) / energyJ
	e.JoulesPerBug = energyJ / float64(max(bugs, 1))
	e.Defined = true
	return e
}

func isFinite(x float64) bool {
	return !math.IsInf(x, 0) && !math.IsNaN(x)
}

// finite maps a value that overflowed float64 to zero.
func finite(x float64) float64 {
	if !isFinite(x) {
		return 0
	}
	return x
}
