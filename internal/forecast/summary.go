package forecast

import "strings"

const (
	disabledFactorDamping = 0.2
	mapeBase              = 4.0
	rmseBase              = 12.0
	maeBase               = 9.0
	horizonRefHours       = 24 * 30
)

// Summarize derives the reported accuracy metrics and influencing-factor
// weights for a profile and generation configuration. The numbers are
// informational stand-ins, not measured against outcomes: error grows with
// the model's noise/uncertainty scales and with horizon length, and factors
// tied to a disabled input are damped.
func Summarize(profile ModelProfile, includeWeather, includeCalendar bool, horizonHours int) (AccuracyMetrics, []InfluencingFactor) {
	if horizonHours < 0 {
		horizonHours = 0
	}
	stretch := 1 + float64(horizonHours)/horizonRefHours*0.5

	acc := AccuracyMetrics{
		MAPE: mapeBase * profile.NoiseScale * stretch,
		RMSE: rmseBase * profile.UncertaintyScale * stretch,
		MAE:  maeBase * profile.NoiseScale * stretch,
	}

	factors := make([]InfluencingFactor, len(profile.Factors))
	for i, f := range profile.Factors {
		impact := f.Impact
		if !includeWeather && isWeatherFactor(f.Name) {
			impact *= disabledFactorDamping
		}
		if !includeCalendar && isCalendarFactor(f.Name) {
			impact *= disabledFactorDamping
		}
		factors[i] = InfluencingFactor{Name: f.Name, Impact: impact}
	}
	return acc, factors
}

func isWeatherFactor(name string) bool {
	return strings.Contains(name, "temperature") ||
		strings.Contains(name, "humidity") ||
		strings.Contains(name, "weather")
}

func isCalendarFactor(name string) bool {
	return strings.Contains(name, "day") ||
		strings.Contains(name, "calendar")
}
