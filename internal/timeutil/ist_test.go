package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNowIsIST(t *testing.T) {
	Clock = func() time.Time { return time.Date(2026, 3, 31, 20, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { Clock = time.Now })

	assert.Equal(t, "2026-04-01", Today())
	assert.Equal(t, "2026-04-01 01:30:00", Stamp())
}

func TestDayRange(t *testing.T) {
	from, to := DayRange("2026-04-01", "")
	assert.Equal(t, "2026-04-01 00:00:00", from)
	assert.Empty(t, to)

	_, to = DayRange("", "2026-04-30")
	assert.Equal(t, "2026-04-30 23:59:59", to)
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "01 Apr 2026, 01:30 AM", Display("2026-04-01 01:30:00"))
	assert.Equal(t, "garbage", Display("garbage"))
}
