package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTodayUsesLocation(t *testing.T) {
	c := NewFakeClock(time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), Today(c, nil))

	jakarta := time.FixedZone("WIB", 7*3600)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), Today(c, jakarta))

	c.Advance(time.Hour)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), Today(c, nil))
}
