// ABOUTME: BodyMeasurement model for anthropometric tracking.
// ABOUTME: Every measurement field is independently optional.
package models

import "time"

// BodyMeasurementColumns lists the measurement columns in storage order.
var BodyMeasurementColumns = []string{
	"weight", "height", "neck", "shoulder",
	"arm_left", "arm_right", "forearm_left", "forearm_right",
	"chest", "waist", "thigh_left", "thigh_right",
	"calf_left", "calf_right",
}

// BodyMeasurement is one dated set of body measurements.
type BodyMeasurement struct {
	ID           int64    `json:"id" yaml:"id"`
	Date         string   `json:"date" yaml:"date"`
	Weight       *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
	Height       *float64 `json:"height,omitempty" yaml:"height,omitempty"`
	Neck         *float64 `json:"neck,omitempty" yaml:"neck,omitempty"`
	Shoulder     *float64 `json:"shoulder,omitempty" yaml:"shoulder,omitempty"`
	ArmLeft      *float64 `json:"arm_left,omitempty" yaml:"arm_left,omitempty"`
	ArmRight     *float64 `json:"arm_right,omitempty" yaml:"arm_right,omitempty"`
	ForearmLeft  *float64 `json:"forearm_left,omitempty" yaml:"forearm_left,omitempty"`
	ForearmRight *float64 `json:"forearm_right,omitempty" yaml:"forearm_right,omitempty"`
	Chest        *float64 `json:"chest,omitempty" yaml:"chest,omitempty"`
	Waist        *float64 `json:"waist,omitempty" yaml:"waist,omitempty"`
	ThighLeft    *float64 `json:"thigh_left,omitempty" yaml:"thigh_left,omitempty"`
	ThighRight   *float64 `json:"thigh_right,omitempty" yaml:"thigh_right,omitempty"`
	CalfLeft     *float64 `json:"calf_left,omitempty" yaml:"calf_left,omitempty"`
	CalfRight    *float64 `json:"calf_right,omitempty" yaml:"calf_right,omitempty"`
}

// NewBodyMeasurement creates an empty measurement dated on the given day.
func NewBodyMeasurement(day time.Time) *BodyMeasurement {
	return &BodyMeasurement{Date: day.Format(DateLayout)}
}

// Fields returns pointers to the measurement fields in BodyMeasurementColumns order.
// Scanning into the returned pointers fills the struct.
func (b *BodyMeasurement) Fields() []**float64 {
	return []**float64{
		&b.Weight, &b.Height, &b.Neck, &b.Shoulder,
		&b.ArmLeft, &b.ArmRight, &b.ForearmLeft, &b.ForearmRight,
		&b.Chest, &b.Waist, &b.ThighLeft, &b.ThighRight,
		&b.CalfLeft, &b.CalfRight,
	}
}

// Set assigns a measurement by column name. It reports false for unknown columns.
func (b *BodyMeasurement) Set(column string, value float64) bool {
	fields := b.Fields()
	for i, c := range BodyMeasurementColumns {
		if c == column {
			*fields[i] = &value
			return true
		}
	}
	return false
}
