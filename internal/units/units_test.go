package units

import (
	"math"
	"testing"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		unit string
		want bool
	}{
		{MPS, true},
		{MPH, true},
		{KMPH, true},
		{KPH, true},
		{"MPS", false}, // case-sensitive
		{"", false},
		{"knots", false},
	}
	for _, tt := range tests {
		if got := IsValid(tt.unit); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.unit, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(MPH); err != nil {
		t.Errorf("Validate(mph) = %v", err)
	}
	if err := Validate("furlongs"); err == nil {
		t.Error("Validate(furlongs) succeeded")
	}
	if got := GetValidUnitsString(); got != "mps, mph, kmph, kph" {
		t.Errorf("GetValidUnitsString() = %q", got)
	}
}

func TestConvertSpeed(t *testing.T) {
	tests := []struct {
		unit string
		in   float64
		want float64
	}{
		{MPS, 2, 2},
		{MPH, 1, 2.2369362920544},
		{KMPH, 2, 7.2},
		{KPH, 2, 7.2},
		{"unknown", 3, 3},
	}
	for _, tt := range tests {
		if got := ConvertSpeed(tt.in, tt.unit); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ConvertSpeed(%v, %q) = %v, want %v", tt.in, tt.unit, got, tt.want)
		}
	}
	if got := ConvertAcceleration(1, KPH); math.Abs(got-3.6) > 1e-12 {
		t.Errorf("ConvertAcceleration = %v", got)
	}
}

func TestLabel(t *testing.T) {
	for unit, want := range map[string]string{MPS: "m/s", MPH: "mph", KPH: "km/h", KMPH: "km/h"} {
		if got := Label(unit); got != want {
			t.Errorf("Label(%q) = %q, want %q", unit, got, want)
		}
	}
}
