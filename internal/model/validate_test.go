package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlot_Validate(t *testing.T) {
	valid := func() *Slot {
		return &Slot{
			ProviderID: 3,
			Group:      GroupExpert,
			Day:        time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
			StartTime:  MustClock(9, 0),
			EndTime:    MustClock(9, 50),
		}
	}

	assert.NoError(t, valid().Validate())

	tests := map[string]func(s *Slot){
		"missing provider": func(s *Slot) { s.ProviderID = 0 },
		"unknown group":    func(s *Slot) { s.Group = "STUDENT" },
		"empty group":      func(s *Slot) { s.Group = "" },
		"zero day":         func(s *Slot) { s.Day = time.Time{} },
		"inverted":         func(s *Slot) { s.EndTime = MustClock(8, 0) },
		"equal":            func(s *Slot) { s.EndTime = s.StartTime },
		"out of day":       func(s *Slot) { s.EndTime = Clock(MinutesPerDay) },
		"negative":         func(s *Slot) { s.StartTime = -5 },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			s := valid()
			mutate(s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidSlot)
		})
	}
}
