package worklog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecondsToHoursMinutes(t *testing.T) {
	tests := []struct {
		secs    int
		want    HoursMinutes
		display string
	}{
		{0, HoursMinutes{0, 0}, "0"},
		{59, HoursMinutes{0, 0}, "0"},
		{1800, HoursMinutes{0, 30}, "0,5"},
		{3600, HoursMinutes{1, 0}, "1"},
		{5400, HoursMinutes{1, 30}, "1,5"},
		{4500, HoursMinutes{1, 15}, "1,25"},
		{4800, HoursMinutes{1, 20}, "1,3333333333333333"},
		{7260, HoursMinutes{2, 1}, "2,016666666666666666"},
		{36000, HoursMinutes{10, 0}, "10"},
	}
	for _, tt := range tests {
		t.Run(tt.display, func(t *testing.T) {
			hm := SecondsToHoursMinutes(tt.secs)
			assert.Equal(t, tt.want, hm)
			assert.Equal(t, tt.display, hm.Display(","))
		})
	}
}

func TestDisplay_Separator(t *testing.T) {
	assert.Equal(t, "1.5", SecondsToHoursMinutes(5400).Display("."))
}

func TestSecondsToMinutes(t *testing.T) {
	assert.Equal(t, 90, SecondsToMinutes(5400))
	assert.Equal(t, 0, SecondsToMinutes(59))
	assert.Equal(t, 1, SecondsToMinutes(119))
}
