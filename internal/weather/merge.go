package weather

import "sort"

// mergeField describes one physical attribute that participates in the
// per-field merge. Keeping the accessor table explicit makes the set of
// merged attributes, and their shared priority order, auditable in one place.
type mergeField struct {
	name string
	get  func(*Observation) *float64
	set  func(*Observation, *float64)
}

var mergeFields = []mergeField{
	{"temperature", func(o *Observation) *float64 { return o.Temperature }, func(o *Observation, v *float64) { o.Temperature = v }},
	{"tempMin", func(o *Observation) *float64 { return o.TempMin }, func(o *Observation, v *float64) { o.TempMin = v }},
	{"tempMax", func(o *Observation) *float64 { return o.TempMax }, func(o *Observation, v *float64) { o.TempMax = v }},
	{"humidity", func(o *Observation) *float64 { return o.Humidity }, func(o *Observation, v *float64) { o.Humidity = v }},
	{"pressure", func(o *Observation) *float64 { return o.Pressure }, func(o *Observation, v *float64) { o.Pressure = v }},
	{"windSpeed", func(o *Observation) *float64 { return o.WindSpeed }, func(o *Observation, v *float64) { o.WindSpeed = v }},
	{"windGust", func(o *Observation) *float64 { return o.WindGust }, func(o *Observation, v *float64) { o.WindGust = v }},
	{"uvIndex", func(o *Observation) *float64 { return o.UVIndex }, func(o *Observation, v *float64) { o.UVIndex = v }},
	{"solarRadiation", func(o *Observation) *float64 { return o.SolarRadiation }, func(o *Observation, v *float64) { o.SolarRadiation = v }},
	{"feelsLike", func(o *Observation) *float64 { return o.FeelsLike }, func(o *Observation, v *float64) { o.FeelsLike = v }},
}

// MergeReadings combines up to one reading per provider into a single sparse
// observation. The merge is per-field, not per-provider: for each attribute
// independently, the highest-priority reading that populates it wins, so
// temperature may come from one provider and humidity from another in the
// same cycle. Priority is encoded in providerPriority, not in the order the
// readings arrived, which keeps the result independent of call completion
// order.
func MergeReadings(readings []Reading) (Observation, []string) {
	ordered := make([]Reading, len(readings))
	copy(ordered, readings)
	sort.SliceStable(ordered, func(i, j int) bool {
		return priorityRank(ordered[i].Provider) < priorityRank(ordered[j].Provider)
	})

	var merged Observation
	contributed := make(map[string]bool)

	for _, f := range mergeFields {
		for i := range ordered {
			if v := f.get(&ordered[i].Observation); v != nil {
				val := *v
				f.set(&merged, &val)
				contributed[ordered[i].Provider] = true
				break
			}
		}
	}

	var providers []string
	for i := range ordered {
		if contributed[ordered[i].Provider] {
			providers = append(providers, ordered[i].Provider)
		}
	}
	return merged, providers
}
