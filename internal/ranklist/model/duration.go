package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// TimeUnit is a time duration unit used across the srk schema.
type TimeUnit string

const (
	UnitMillisecond TimeUnit = "ms"
	UnitSecond      TimeUnit = "s"
	UnitMinute      TimeUnit = "min"
	UnitHour        TimeUnit = "h"
	UnitDay         TimeUnit = "d"
)

// unitMillis returns the millisecond factor for a unit, or -1 for an
// unrecognized unit.
func unitMillis(u TimeUnit) float64 {
	switch u {
	case UnitMillisecond:
		return 1
	case UnitSecond:
		return 1000
	case UnitMinute:
		return 1000 * 60
	case UnitHour:
		return 1000 * 60 * 60
	case UnitDay:
		return 1000 * 60 * 60 * 24
	}
	return -1
}

// Valid reports whether the unit is one of the known srk time units.
func (u TimeUnit) Valid() bool {
	return unitMillis(u) > 0
}

// Rounding selects how fractional values are rounded after a unit conversion.
type Rounding string

const (
	RoundFloor Rounding = "floor"
	RoundRound Rounding = "round"
	RoundCeil  Rounding = "ceil"
)

// Apply rounds v according to the mode. Unrecognized modes floor, which is
// the srk default for time rounding.
func (r Rounding) Apply(v float64) float64 {
	switch r {
	case RoundCeil:
		return math.Ceil(v)
	case RoundRound:
		return math.Round(v)
	default:
		return math.Floor(v)
	}
}

// TimeDuration is an srk duration tuple, serialized as [value, "unit"].
type TimeDuration struct {
	Value float64
	Unit  TimeUnit
}

// Millis converts the duration to milliseconds.
// A duration with an unrecognized unit yields -1; callers must treat
// negative results as invalid.
func (d TimeDuration) Millis() float64 {
	factor := unitMillis(d.Unit)
	if factor < 0 {
		return -1
	}
	return d.Value * factor
}

// In converts the duration to the target unit, applying round to the result.
// Returns -1 if either unit is unrecognized.
func (d TimeDuration) In(target TimeUnit, round Rounding) float64 {
	ms := d.Millis()
	if ms < 0 {
		return -1
	}
	factor := unitMillis(target)
	if factor < 0 {
		return -1
	}
	if target == UnitMillisecond {
		return ms
	}
	return round.Apply(ms / factor)
}

// Milliseconds builds a millisecond duration.
func Milliseconds(v float64) TimeDuration {
	return TimeDuration{Value: v, Unit: UnitMillisecond}
}

// MarshalJSON encodes the duration as the srk [value, "unit"] tuple.
func (d TimeDuration) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{d.Value, d.Unit})
}

// UnmarshalJSON decodes the srk [value, "unit"] tuple.
func (d *TimeDuration) UnmarshalJSON(data []byte) error {
	var tuple [2]json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return fmt.Errorf("time duration must be a [value, unit] tuple: %w", err)
	}
	if err := json.Unmarshal(tuple[0], &d.Value); err != nil {
		return fmt.Errorf("time duration value: %w", err)
	}
	if err := json.Unmarshal(tuple[1], &d.Unit); err != nil {
		return fmt.Errorf("time duration unit: %w", err)
	}
	return nil
}
