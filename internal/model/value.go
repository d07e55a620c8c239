package model

import (
	"encoding/json"
	"time"
)

// Value is an indicator value that may be undefined.
type Value struct {
	Float float64
	Valid bool
}

// Defined wraps f as a defined Value.
func Defined(f float64) Value { return Value{Float: f, Valid: true} }

// Undefined is the zero Value.
var Undefined = Value{}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Undefined
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Defined(f)
	return nil
}

// SeriesPoint is a (date, value) pair for charting.
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value Value     `json:"value"`
}
