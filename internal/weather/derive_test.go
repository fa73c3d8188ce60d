package weather

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDewPointReference(t *testing.T) {
	// Magnus-Tetens at 25 C / 60 % gives about 16.7 C.
	assert.InDelta(t, 16.7, DewPointC(25, 60), 0.1)
}

func TestApparentTempReference(t *testing.T) {
	// 30 C, 70 % humidity, 10 km/h wind. The expected value is the
	// reference formula evaluated directly.
	e := 6.11 * math.Pow(10, (7.5*30)/(237.3+30)) * 0.70
	want := 30 + 0.33*e - 0.70*(10.0/3.6) - 4.00
	assert.InDelta(t, want, ApparentTempC(30, 70, 10), 0.2)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		obs  Observation
		want Condition
	}{
		{"hot temperature wins over low uv", Observation{Temperature: ptr(32.0), UVIndex: ptr(2.0)}, ConditionSunny},
		{"high uv alone", Observation{Temperature: ptr(10.0), UVIndex: ptr(6.0)}, ConditionSunny},
		{"below freezing", Observation{Temperature: ptr(-1.0)}, ConditionSnowy},
		{"strong wind", Observation{Temperature: ptr(10.0), WindSpeed: ptr(25.0)}, ConditionWindy},
		{"humid", Observation{Temperature: ptr(10.0), WindSpeed: ptr(5.0), Humidity: ptr(85.0)}, ConditionRainy},
		{"mild", Observation{Temperature: ptr(10.0), WindSpeed: ptr(5.0), Humidity: ptr(50.0)}, ConditionDefault},
		{"all inputs missing", Observation{}, ConditionDefault},
		{"missing temperature never reads as freezing", Observation{Humidity: ptr(50.0)}, ConditionDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.obs))
		})
	}
}

func TestDeriveRequiresInputs(t *testing.T) {
	now := time.Now()

	// Temperature only: no dew point, no feels-like.
	agg := Derive(Observation{Temperature: ptr(20.0)}, nil, UnitsMetric, now)
	assert.Nil(t, agg.DewPoint)
	assert.Nil(t, agg.FeelsLike)

	// Temperature and humidity: dew point but no feels-like; the provider
	// fallback stands in when one was merged.
	agg = Derive(Observation{Temperature: ptr(20.0), Humidity: ptr(50.0), FeelsLike: ptr(18.5)}, nil, UnitsMetric, now)
	require.NotNil(t, agg.DewPoint)
	require.NotNil(t, agg.FeelsLike)
	assert.Equal(t, 18.5, *agg.FeelsLike)

	// All three inputs: our own derivation replaces the provider value.
	agg = Derive(Observation{Temperature: ptr(20.0), Humidity: ptr(50.0), WindSpeed: ptr(10.0), FeelsLike: ptr(18.5)}, nil, UnitsMetric, now)
	require.NotNil(t, agg.FeelsLike)
	assert.InDelta(t, ApparentTempC(20, 50, 10), *agg.FeelsLike, 1e-9)
}

func TestHasData(t *testing.T) {
	empty := AggregatedObservation{}
	assert.False(t, empty.HasData())

	one := AggregatedObservation{Observation: Observation{Pressure: ptr(990.0)}}
	assert.True(t, one.HasData())
}

func TestConvertRoundTrip(t *testing.T) {
	metric := Derive(Observation{
		Temperature: ptr(25.0),
		TempMin:     ptr(18.0),
		TempMax:     ptr(28.0),
		Humidity:    ptr(60.0),
		Pressure:    ptr(1013.25),
		WindSpeed:   ptr(15.0),
		WindGust:    ptr(30.0),
		UVIndex:     ptr(4.0),
	}, nil, UnitsMetric, time.Now())

	imperial := Convert(metric, UnitsImperial)
	assert.Equal(t, UnitsImperial, imperial.Units)
	assert.InDelta(t, 77.0, *imperial.Temperature, 1e-9)
	assert.InDelta(t, 15.0*0.621371, *imperial.WindSpeed, 1e-9)
	assert.InDelta(t, 1013.25*0.02953, *imperial.Pressure, 1e-6)
	// Humidity and UV are unitless and pass through.
	assert.Equal(t, *metric.Humidity, *imperial.Humidity)
	assert.Equal(t, *metric.UVIndex, *imperial.UVIndex)

	back := Convert(imperial, UnitsMetric)
	assert.InDelta(t, *metric.Temperature, *back.Temperature, 1e-6)
	assert.InDelta(t, *metric.TempMin, *back.TempMin, 1e-6)
	assert.InDelta(t, *metric.TempMax, *back.TempMax, 1e-6)
	assert.InDelta(t, *metric.WindSpeed, *back.WindSpeed, 1e-3)
	assert.InDelta(t, *metric.WindGust, *back.WindGust, 1e-3)
	assert.InDelta(t, *metric.Pressure, *back.Pressure, 1e-2)
	assert.InDelta(t, *metric.DewPoint, *back.DewPoint, 1e-6)

	// Feels-like is recomputed after each conversion, not linearly
	// inverted, so assert tolerance only, never bit-identity.
	assert.InDelta(t, *metric.FeelsLike, *back.FeelsLike, 0.5)
}

func TestConvertUKBehavesAsImperial(t *testing.T) {
	metric := Derive(Observation{Temperature: ptr(10.0)}, nil, UnitsMetric, time.Now())

	uk := Convert(metric, UnitsUK)
	assert.Equal(t, UnitsUK, uk.Units)
	assert.InDelta(t, 50.0, *uk.Temperature, 1e-9)

	// UK to imperial is a relabel, not a second conversion.
	imp := Convert(uk, UnitsImperial)
	assert.InDelta(t, 50.0, *imp.Temperature, 1e-9)
}

func TestParseUnitSystem(t *testing.T) {
	u, err := ParseUnitSystem("")
	require.NoError(t, err)
	assert.Equal(t, UnitsMetric, u)

	_, err = ParseUnitSystem("nautical")
	assert.Error(t, err)
}
