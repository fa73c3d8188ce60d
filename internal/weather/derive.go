package weather

import (
	"math"
	"time"
)

// Magnus-Tetens coefficients for the dew point approximation.
const (
	magnusA = 17.27
	magnusB = 237.7
)

// Linear unit conversion factors. The km/h<->mph pair is intentionally the
// commonly published pair of rounded constants; round-tripping through both
// is exact only to floating-point tolerance.
const (
	kmhPerMph  = 1.60934
	mphPerKmh  = 0.621371
	inHgPerHpa = 0.02953
	hpaPerInHg = 33.8639
)

// DewPointC computes the dew point in Celsius from temperature (Celsius) and
// relative humidity (percent) using the Magnus-Tetens approximation.
func DewPointC(tempC, humidityPct float64) float64 {
	alpha := (magnusA*tempC)/(magnusB+tempC) + math.Log(humidityPct/100)
	return (magnusB * alpha) / (magnusA - alpha)
}

// vaporPressureHpa returns the actual vapor pressure in hPa at the given
// temperature (Celsius) and relative humidity (percent).
func vaporPressureHpa(tempC, humidityPct float64) float64 {
	svp := 6.11 * math.Pow(10, (7.5*tempC)/(237.3+tempC))
	return svp * (humidityPct / 100)
}

// ApparentTempC computes the apparent ("feels like") temperature in Celsius.
// Wind is taken in km/h and converted to m/s for the formula.
func ApparentTempC(tempC, humidityPct, windKmh float64) float64 {
	e := vaporPressureHpa(tempC, humidityPct)
	windMs := windKmh / 3.6
	return tempC + 0.33*e - 0.70*windMs - 4.00
}

// Classify assigns the coarse condition label. Branches are evaluated in a
// fixed priority order; a missing input counts as 0 and so never trips its
// branch. The thresholds are empirical constants, not a match against any
// provider's condition codes.
func Classify(o Observation) Condition {
	switch {
	case deref(o.Temperature) > 30 || deref(o.UVIndex) > 5:
		return ConditionSunny
	case o.Temperature != nil && *o.Temperature < 0:
		return ConditionSnowy
	case deref(o.WindSpeed) > 20:
		return ConditionWindy
	case deref(o.Humidity) > 80:
		return ConditionRainy
	default:
		return ConditionDefault
	}
}

// Derive completes a merged metric observation with the derived metrics and
// converts the result to the requested unit system. The input observation is
// not modified.
func Derive(merged Observation, providers []string, units UnitSystem, now time.Time) AggregatedObservation {
	agg := AggregatedObservation{
		Observation: merged,
		Condition:   Classify(merged),
		Units:       UnitsMetric,
		CreatedAt:   now,
		Providers:   providers,
	}

	if merged.Temperature != nil && merged.Humidity != nil {
		agg.DewPoint = ptr(DewPointC(*merged.Temperature, *merged.Humidity))
	}

	// Our own apparent temperature needs all three inputs; otherwise the
	// merged provider-supplied value, if any, stands.
	if merged.Temperature != nil && merged.Humidity != nil && merged.WindSpeed != nil {
		agg.FeelsLike = ptr(ApparentTempC(*merged.Temperature, *merged.Humidity, *merged.WindSpeed))
	}

	return Convert(agg, units)
}

// Convert returns a copy of the observation expressed in the target unit
// system. Every physical field converts linearly; feels-like is instead
// recomputed from the converted temperature, humidity and wind (normalized
// back to Celsius and m/s for the formula), so a Metric->Imperial->Metric
// round trip reproduces it only within recomputation tolerance, not
// bit-for-bit.
func Convert(o AggregatedObservation, to UnitSystem) AggregatedObservation {
	if o.Units.imperial() == to.imperial() {
		out := o
		out.Units = to
		return out
	}

	out := o
	out.Units = to

	if to.imperial() {
		out.Temperature = applyConv(o.Temperature, cToF)
		out.TempMin = applyConv(o.TempMin, cToF)
		out.TempMax = applyConv(o.TempMax, cToF)
		out.DewPoint = applyConv(o.DewPoint, cToF)
		out.WindSpeed = applyConv(o.WindSpeed, func(v float64) float64 { return v * mphPerKmh })
		out.WindGust = applyConv(o.WindGust, func(v float64) float64 { return v * mphPerKmh })
		out.Pressure = applyConv(o.Pressure, func(v float64) float64 { return v * inHgPerHpa })
	} else {
		out.Temperature = applyConv(o.Temperature, fToC)
		out.TempMin = applyConv(o.TempMin, fToC)
		out.TempMax = applyConv(o.TempMax, fToC)
		out.DewPoint = applyConv(o.DewPoint, fToC)
		out.WindSpeed = applyConv(o.WindSpeed, func(v float64) float64 { return v * kmhPerMph })
		out.WindGust = applyConv(o.WindGust, func(v float64) float64 { return v * kmhPerMph })
		out.Pressure = applyConv(o.Pressure, func(v float64) float64 { return v * hpaPerInHg })
	}

	out.FeelsLike = recomputeFeelsLike(out, o.FeelsLike, to)
	return out
}

// recomputeFeelsLike derives feels-like from the converted fields when the
// inputs are complete, falling back to a linear conversion of the carried
// value otherwise.
func recomputeFeelsLike(converted AggregatedObservation, prior *float64, to UnitSystem) *float64 {
	if converted.Temperature != nil && converted.Humidity != nil && converted.WindSpeed != nil {
		tempC := *converted.Temperature
		windKmh := *converted.WindSpeed
		if to.imperial() {
			tempC = fToC(tempC)
			windKmh = windKmh * kmhPerMph
		}
		at := ApparentTempC(tempC, *converted.Humidity, windKmh)
		if to.imperial() {
			at = cToF(at)
		}
		return ptr(at)
	}
	if prior == nil {
		return nil
	}
	if to.imperial() {
		return ptr(cToF(*prior))
	}
	return ptr(fToC(*prior))
}

func applyConv(v *float64, f func(float64) float64) *float64 {
	if v == nil {
		return nil
	}
	return ptr(f(*v))
}

func cToF(c float64) float64 { return c*9/5 + 32 }
func fToC(f float64) float64 { return (f - 32) * 5 / 9 }
