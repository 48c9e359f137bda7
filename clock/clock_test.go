package clock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/clock"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/config"
)

func TestClock(t *testing.T) {
	c := clock.New(config.ControlStep{Start: 100, Total: 200, Interval: 0.5})
	assert.Equal(t, int32(100), c.START_STEP)
	assert.Equal(t, int32(300), c.END_STEP)
	assert.Equal(t, int32(100), c.InternalStep)
	assert.Equal(t, 50.0, c.T)

	c.InternalStep = 7300
	c.T = float64(c.InternalStep) * c.DT
	assert.Equal(t, "01:00:50", c.String())
	hour, minute, second := c.GetHourMinuteSecond()
	assert.Equal(t, 1, hour)
	assert.Equal(t, 0, minute)
	assert.Equal(t, 50.0, second)

	c.Init()
	assert.Equal(t, int32(100), c.InternalStep)
}
