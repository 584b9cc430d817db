package medication

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{"08:30", Clock{8, 30}, false},
		{"8:30 am", Clock{8, 30}, false},
		{"8:30 pm", Clock{20, 30}, false},
		{"12:00 am", Clock{0, 0}, false},
		{"12:00 pm", Clock{12, 0}, false},
		{"7pm", Clock{19, 0}, false},
		{"23:59", Clock{23, 59}, false},
		{"  9:05AM ", Clock{9, 5}, false},
		{"", Clock{}, true},
		{"25:00", Clock{}, true},
		{"10:75", Clock{}, true},
		{"13 pm", Clock{}, true},
		{"noonish", Clock{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClock_String(t *testing.T) {
	assert.Equal(t, "08:05", Clock{8, 5}.String())
	assert.Equal(t, "00:00", Clock{0, 0}.String())
	assert.Equal(t, "23:59", Clock{23, 59}.String())
}

func TestClock_At(t *testing.T) {
	ref := time.Date(2025, 3, 10, 15, 30, 45, 0, time.UTC)
	got := Clock{8, 15}.At(ref)
	assert.Equal(t, time.Date(2025, 3, 10, 8, 15, 0, 0, time.UTC), got)
}

func TestNormalizeTimes(t *testing.T) {
	got := normalizeTimes([]string{"6:00 pm", "8:00 am", "08:00", "", "  "})
	assert.Equal(t, []string{"08:00", "18:00"}, got)

	assert.Nil(t, normalizeTimes(nil))
	assert.Nil(t, normalizeTimes([]string{}))
}

func TestMedication_NextDue(t *testing.T) {
	m, err := NewMedication(uuid.New(), "Metformin", "500mg", "", "", []string{"08:00", "18:00"})
	require.NoError(t, err)

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC), m.NextDue(now))

	// After the last dose of the day the schedule rolls over.
	late := time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC), m.NextDue(late))
}

func TestMedication_NextDue_NoSchedule(t *testing.T) {
	m, err := NewMedication(uuid.New(), "Vitamin D", "", "", "", nil)
	require.NoError(t, err)
	assert.True(t, m.NextDue(time.Now()).IsZero())
}

func TestDueWithin(t *testing.T) {
	userID := uuid.New()
	metformin, err := NewMedication(userID, "Metformin", "", "", "", []string{"08:00", "18:00"})
	require.NoError(t, err)
	lisinopril, err := NewMedication(userID, "Lisinopril", "", "", "", []string{"08:00"})
	require.NoError(t, err)
	archived, err := NewMedication(userID, "Old Med", "", "", "", []string{"08:00"})
	require.NoError(t, err)
	archived.Deactivate()

	now := time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)
	due := DueWithin([]*Medication{metformin, lisinopril, archived, nil}, now, 2*time.Hour)

	require.Len(t, due, 2)
	// Same instant sorts by name.
	assert.Equal(t, "Lisinopril", due[0].Medication.Name)
	assert.Equal(t, "Metformin", due[1].Medication.Name)
	assert.Equal(t, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC), due[0].At)
}

func TestDueWithin_RollsOverMidnight(t *testing.T) {
	m, err := NewMedication(uuid.New(), "Metformin", "", "", "", []string{"08:00"})
	require.NoError(t, err)

	now := time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)
	due := DueWithin([]*Medication{m}, now, 12*time.Hour)

	require.Len(t, due, 1)
	assert.Equal(t, time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC), due[0].At)
}
