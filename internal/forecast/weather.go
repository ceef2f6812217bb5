package forecast

import (
	"math"
	"math/rand"
)

const (
	meanOutdoorTempC  = 21.0
	dailyTempSwingC   = 9.0
	tempJitterC       = 1.0
	warmestHourOfDay  = 14
	comfortTempC      = 22.0
	weatherPerDegreeC = 0.005
)

// syntheticTemperature models an outdoor temperature for an hour of day: a
// cosine day curve warmest mid-afternoon, coldest before dawn, plus a small
// perturbation from the caller's rng. Values land roughly in [10, 32] C.
func syntheticTemperature(hour int, rng *rand.Rand) float64 {
	phase := 2 * math.Pi * float64(hour-warmestHourOfDay) / 24
	base := meanOutdoorTempC + dailyTempSwingC*math.Cos(phase)
	return base + (rng.Float64()*2-1)*tempJitterC
}

// weatherFactor converts an outdoor temperature into a load multiplier:
// consumption rises the further the day drifts from the comfort band.
func weatherFactor(tempC float64) float64 {
	return 1 + weatherPerDegreeC*math.Abs(tempC-comfortTempC)
}
