package core

import (
	"math"
	"strconv"
)

// energyDecimals is the rounding applied to received energy before it is
// compared with the reception threshold.
const energyDecimals = 3

// RoundTo rounds x to the given number of decimal places. Rounding is done
// on the exact binary value of x, with exact ties going to even, so it
// agrees with a correctly rounded decimal conversion.
func RoundTo(x float64, places int) float64 {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return x
	}
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil {
		return x
	}
	return v
}

// IsForbidden reports whether the stations at locations cannot all transmit
// at once: some member w receives, from the rest of the set, energy that
// (rounded to three decimals) meets or exceeds threshold.
//
// Sets with fewer than two members are never forbidden.
func IsForbidden(locations []Point, exponent, threshold float64) bool {
	if len(locations) < 2 {
		return false
	}
	for i := range locations {
		if RoundTo(energyAt(locations, i, exponent), energyDecimals) >= threshold {
			return true
		}
	}
	return false
}

// WorstCaseReceiver returns the member receiving the most energy from the
// others, and that energy. It returns -1 when there is no receiver with a
// sender, i.e. fewer than two locations.
func WorstCaseReceiver(locations []Point, exponent float64) (int, float64) {
	if len(locations) < 2 {
		return -1, 0
	}
	worst, worstEnergy := -1, math.Inf(-1)
	for i := range locations {
		if e := energyAt(locations, i, exponent); e > worstEnergy {
			worst, worstEnergy = i, e
		}
	}
	return worst, worstEnergy
}

// energyAt is the total energy at locations[receiver] from every other member.
func energyAt(locations []Point, receiver int, exponent float64) float64 {
	var total float64
	for j, s := range locations {
		if j == receiver {
			continue
		}
		total += Interference(s, locations[receiver], exponent)
	}
	return total
}
