package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/calm_scheduler/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

func clock(t *testing.T, s string) model.Clock {
	t.Helper()
	c, err := model.ParseClock(s)
	require.NoError(t, err)
	return c
}

func slot(t *testing.T, id int64, start, end string) *model.Slot {
	t.Helper()
	return &model.Slot{
		ID:         id,
		ProviderID: 7,
		Group:      model.GroupExpert,
		Day:        testDay,
		StartTime:  clock(t, start),
		EndTime:    clock(t, end),
	}
}

func TestProposeSlot_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		existing []*model.Slot
		start    string
		end      string
		wantErr  error
		conflict *model.Window
	}{
		{name: "empty day", start: "09:00", end: "09:50"},
		{
			name:     "touching boundary",
			existing: []*model.Slot{slot(t, 1, "09:00", "09:50")},
			start:    "09:50",
			end:      "10:40",
		},
		{
			name:     "overlap",
			existing: []*model.Slot{slot(t, 1, "09:00", "09:50")},
			start:    "09:30",
			end:      "10:00",
			conflict: &model.Window{Start: clock(t, "09:00"), End: clock(t, "09:50")},
		},
		{name: "equal bounds", start: "10:00", end: "10:00", wantErr: ErrEqualBounds},
		{name: "inverted", start: "11:00", end: "10:00", wantErr: ErrInvertedRange},
		{
			name:     "contains existing",
			existing: []*model.Slot{slot(t, 1, "10:15", "10:30")},
			start:    "10:00",
			end:      "11:00",
			conflict: &model.Window{Start: clock(t, "10:15"), End: clock(t, "10:30")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProposeSlot(7, testDay, clock(t, tt.start), clock(t, tt.end), tt.existing)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.conflict != nil:
				var conflict *ConflictError
				require.ErrorAs(t, err, &conflict)
				assert.Equal(t, *tt.conflict, conflict.Window())
			default:
				require.NoError(t, err)
				assert.Equal(t, int64(7), got.ProviderID)
				assert.Equal(t, testDay, got.Day)
				assert.Equal(t, clock(t, tt.start), got.Window.Start)
				assert.Equal(t, clock(t, tt.end), got.Window.End)
			}
		})
	}
}

func TestProposeSlot_BoundaryExactness(t *testing.T) {
	existing := []*model.Slot{slot(t, 1, "11:00", "12:00")}

	_, err := ProposeSlot(7, testDay, clock(t, "10:00"), clock(t, "11:00"), existing)
	assert.NoError(t, err)

	_, err = ProposeSlot(7, testDay, clock(t, "10:30"), clock(t, "11:30"), existing)
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestProposeSlot_BoundsCheckedBeforeOverlap(t *testing.T) {
	existing := []*model.Slot{slot(t, 1, "09:00", "18:00")}

	_, err := ProposeSlot(7, testDay, clock(t, "10:00"), clock(t, "10:00"), existing)
	assert.ErrorIs(t, err, ErrEqualBounds)

	_, err = ProposeSlot(7, testDay, clock(t, "12:00"), clock(t, "10:00"), existing)
	assert.ErrorIs(t, err, ErrInvertedRange)

	_, err = ProposeSlot(7, testDay, clock(t, "10:00"), clock(t, "10:00"), nil)
	assert.ErrorIs(t, err, ErrEqualBounds)
}

func TestProposeSlot_ReportsFirstConflictInOrder(t *testing.T) {
	existing := []*model.Slot{
		slot(t, 2, "10:30", "11:30"),
		slot(t, 1, "09:30", "10:30"),
	}

	_, err := ProposeSlot(7, testDay, clock(t, "10:00"), clock(t, "11:00"), existing)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(2), conflict.SlotID)
}

func TestProposeSlot_IsStable(t *testing.T) {
	existing := []*model.Slot{slot(t, 1, "09:00", "09:50")}

	_, first := ProposeSlot(7, testDay, clock(t, "09:30"), clock(t, "10:00"), existing)
	_, second := ProposeSlot(7, testDay, clock(t, "09:30"), clock(t, "10:00"), existing)
	assert.Equal(t, first, second)

	a1, err1 := ProposeSlot(7, testDay, clock(t, "12:00"), clock(t, "13:00"), existing)
	a2, err2 := ProposeSlot(7, testDay, clock(t, "12:00"), clock(t, "13:00"), existing)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, a1, a2)
}

func TestProposeSlot_IgnoresOtherDaysAndProviders(t *testing.T) {
	otherDay := slot(t, 1, "09:00", "10:00")
	otherDay.Day = testDay.AddDate(0, 0, 1)

	otherProvider := slot(t, 2, "09:00", "10:00")
	otherProvider.ProviderID = 8

	_, err := ProposeSlot(7, testDay, clock(t, "09:00"), clock(t, "10:00"), []*model.Slot{otherDay, otherProvider, nil})
	assert.NoError(t, err)
}

func TestProposeSlot_NormalizesDay(t *testing.T) {
	existing := []*model.Slot{slot(t, 1, "09:00", "10:00")}
	afternoon := testDay.Add(15*time.Hour + 42*time.Minute)

	got, err := ProposeSlot(7, afternoon, clock(t, "10:00"), clock(t, "11:00"), existing)
	require.NoError(t, err)
	assert.Equal(t, testDay, got.Day)

	_, err = ProposeSlot(7, afternoon, clock(t, "09:30"), clock(t, "10:30"), existing)
	assert.True(t, IsValidation(err))
}

func TestPolicy_DisallowTouching(t *testing.T) {
	strict := Policy{AllowTouching: false}
	existing := []*model.Slot{slot(t, 1, "09:00", "09:50")}

	_, err := strict.ProposeSlot(7, testDay, clock(t, "09:50"), clock(t, "10:40"), existing)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(1), conflict.SlotID)

	_, err = strict.ProposeSlot(7, testDay, clock(t, "10:00"), clock(t, "10:40"), existing)
	assert.NoError(t, err)
}

func TestPolicy_OverlapsIsSymmetric(t *testing.T) {
	windows := []model.Window{
		{Start: clock(t, "09:00"), End: clock(t, "10:00")},
		{Start: clock(t, "09:30"), End: clock(t, "09:45")},
		{Start: clock(t, "10:00"), End: clock(t, "11:00")},
		{Start: clock(t, "08:00"), End: clock(t, "09:01")},
		{Start: clock(t, "12:00"), End: clock(t, "13:00")},
	}

	for _, p := range []Policy{DefaultPolicy, {AllowTouching: false}} {
		for _, a := range windows {
			for _, b := range windows {
				assert.Equal(t, p.Overlaps(a, b), p.Overlaps(b, a), "%s vs %s", a, b)
			}
		}
	}
}

func TestProposeSlot_AcceptedSetNeverOverlaps(t *testing.T) {
	var accepted []*model.Slot
	candidates := [][2]string{
		{"09:00", "10:00"}, {"09:30", "10:30"}, {"10:00", "11:00"},
		{"08:00", "12:00"}, {"11:00", "11:15"}, {"10:59", "11:01"},
		{"13:00", "12:00"}, {"14:00", "14:00"}, {"07:00", "09:00"},
	}

	for i, c := range candidates {
		a, err := ProposeSlot(7, testDay, clock(t, c[0]), clock(t, c[1]), accepted)
		if err != nil {
			continue
		}
		s := a.Slot(model.GroupPeer)
		s.ID = int64(i + 1)
		accepted = append(accepted, s)
	}

	require.Len(t, accepted, 4)
	for i := range accepted {
		for j := range accepted {
			if i != j {
				assert.False(t, accepted[i].Window().Overlaps(accepted[j].Window()))
			}
		}
	}
}

func TestStoreError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(&StoreError{Op: "insert slot", Err: cause})

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "insert slot")
	assert.False(t, IsValidation(err))
}
