package models

import (
	"testing"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
)

func TestParseAvailability(t *testing.T) {
	cases := []struct {
		name       string
		raw        string
		wellFormed bool
		slots      int
	}{
		{name: "slot list", raw: `[{"day":"Mon","start":"10:00","end":"12:00"},{"day":"Tue","start":"09:00","end":"10:00"}]`, wellFormed: true, slots: 2},
		{name: "empty list", raw: `[]`, wellFormed: true, slots: 0},
		{name: "extra fields allowed", raw: `[{"day":"Mon","start":"10:00","end":"12:00","note":"online"}]`, wellFormed: true, slots: 1},
		{name: "missing end", raw: `[{"day":"Mon","start":"10:00"}]`, wellFormed: false},
		{name: "non string start", raw: `[{"day":"Mon","start":10,"end":"12:00"}]`, wellFormed: false},
		{name: "null end", raw: `[{"day":"Mon","start":"10:00","end":null}]`, wellFormed: false},
		{name: "object day", raw: `[{"day":{"name":"Mon"},"start":"10:00","end":"12:00"}]`, wellFormed: false},
		{name: "object not array", raw: `{}`, wellFormed: false},
		{name: "null", raw: `null`, wellFormed: false},
		{name: "element not object", raw: `["Mon 10-12"]`, wellFormed: false},
		{name: "invalid json", raw: `[{`, wellFormed: false},
		{name: "absent", raw: ``, wellFormed: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseAvailability(types.JSONText(tc.raw))
			assert.Equal(t, tc.wellFormed, got.WellFormed)
			assert.Len(t, got.Slots, tc.slots)
		})
	}
}

func TestAvailabilitySlotOverlaps(t *testing.T) {
	base := AvailabilitySlot{Day: "Mon", Start: "10:00", End: "12:00"}

	assert.True(t, base.Overlaps(AvailabilitySlot{Day: "Mon", Start: "09:00", End: "11:00"}))
	assert.True(t, base.Overlaps(AvailabilitySlot{Day: "Mon", Start: "10:30", End: "11:00"}))
	assert.False(t, base.Overlaps(AvailabilitySlot{Day: "Mon", Start: "12:00", End: "13:00"}), "touching end")
	assert.False(t, base.Overlaps(AvailabilitySlot{Day: "Mon", Start: "08:00", End: "10:00"}), "touching start")
	assert.False(t, base.Overlaps(AvailabilitySlot{Day: "Tue", Start: "10:00", End: "12:00"}), "other day")
}
