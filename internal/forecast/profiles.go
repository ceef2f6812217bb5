package forecast

import "fmt"

// DefaultModelID is the profile callers fall back to when no model is
// requested. The registry itself never falls back: an unknown id is an error.
const DefaultModelID = "simple"

// ModelProfile stands in for a forecasting technique: how noisy its point
// predictions are, how fast its confidence interval widens and which named
// factors it attributes its output to (impacts sum to 1.0).
type ModelProfile struct {
	ID               string              `json:"id"`
	NoiseScale       float64             `json:"noise_scale"`
	UncertaintyScale float64             `json:"uncertainty_scale"`
	Factors          []InfluencingFactor `json:"influencing_factors"`
}

var profileTable = map[string]ModelProfile{
	"tft": {
		ID:               "tft",
		NoiseScale:       0.4,
		UncertaintyScale: 0.7,
		Factors: []InfluencingFactor{
			{Name: "outdoor_temperature", Impact: 0.30},
			{Name: "occupancy", Impact: 0.25},
			{Name: "time_of_day", Impact: 0.20},
			{Name: "day_of_week", Impact: 0.15},
			{Name: "humidity", Impact: 0.10},
		},
	},
	"prophet": {
		ID:               "prophet",
		NoiseScale:       0.6,
		UncertaintyScale: 1.0,
		Factors: []InfluencingFactor{
			{Name: "outdoor_temperature", Impact: 0.25},
			{Name: "day_of_week", Impact: 0.25},
			{Name: "time_of_day", Impact: 0.25},
			{Name: "occupancy", Impact: 0.15},
			{Name: "holiday_calendar", Impact: 0.10},
		},
	},
	"simple": {
		ID:               "simple",
		NoiseScale:       0.8,
		UncertaintyScale: 1.2,
		Factors: []InfluencingFactor{
			{Name: "time_of_day", Impact: 0.40},
			{Name: "outdoor_temperature", Impact: 0.30},
			{Name: "day_of_week", Impact: 0.30},
		},
	},
	"very_simple": {
		ID:               "very_simple",
		NoiseScale:       1.0,
		UncertaintyScale: 1.5,
		Factors: []InfluencingFactor{
			{Name: "time_of_day", Impact: 0.60},
			{Name: "day_of_week", Impact: 0.40},
		},
	},
}

// LookupProfile returns the profile for a model id, or ErrUnknownModel. The
// factor slice is copied so callers cannot reach into the registry.
func LookupProfile(modelID string) (ModelProfile, error) {
	profile, ok := profileTable[modelID]
	if !ok {
		return ModelProfile{}, fmt.Errorf("%w: %q", ErrUnknownModel, modelID)
	}
	factors := make([]InfluencingFactor, len(profile.Factors))
	copy(factors, profile.Factors)
	profile.Factors = factors
	return profile, nil
}

// ModelIDs lists the registered profiles in a stable order.
func ModelIDs() []string {
	return []string{"tft", "prophet", "simple", "very_simple"}
}
