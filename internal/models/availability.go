package models

import (
	"encoding/json"

	"github.com/xeipuuv/gojsonschema"
)

const availabilitySchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["day", "start", "end"],
		"properties": {
			"day": {"type": "string"},
			"start": {"type": "string"},
			"end": {"type": "string"}
		}
	}
}`

var availabilityValidator = mustCompileSchema(availabilitySchema)

func mustCompileSchema(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(err)
	}
	return schema
}

// AvailabilitySlot is a weekly window. Start and End are "HH:MM" strings and compare
// lexically.
type AvailabilitySlot struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Overlaps reports whether both slots fall on the same day and intersect. Touching
// endpoints do not overlap.
func (s AvailabilitySlot) Overlaps(other AvailabilitySlot) bool {
	return s.Day == other.Day && s.Start < other.End && s.End > other.Start
}

// Availability is a classified slot list. When WellFormed is false the source was
// absent or did not match the slot shape and Slots is nil.
type Availability struct {
	Slots      []AvailabilitySlot
	WellFormed bool
}

// WellFormedAvailability wraps already-typed slots.
func WellFormedAvailability(slots ...AvailabilitySlot) Availability {
	if slots == nil {
		slots = []AvailabilitySlot{}
	}
	return Availability{Slots: slots, WellFormed: true}
}

// MalformedAvailability is the classification for unusable input.
func MalformedAvailability() Availability {
	return Availability{}
}

// ParseAvailability classifies raw JSON as a well-formed slot list or malformed.
func ParseAvailability(raw []byte) Availability {
	if len(raw) == 0 {
		return MalformedAvailability()
	}
	result, err := availabilityValidator.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil || !result.Valid() {
		return MalformedAvailability()
	}
	var slots []AvailabilitySlot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return MalformedAvailability()
	}
	return WellFormedAvailability(slots...)
}
