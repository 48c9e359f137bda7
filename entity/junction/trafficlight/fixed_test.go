package trafficlight

import (
	"math"
	"testing"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity"
)

func newFixedFixture(t *testing.T) (*fixedTrafficLight, []*fakeJunctionLane) {
	lanes := make([]*fakeJunctionLane, len(testAxes))
	for i := range lanes {
		lanes[i] = &fakeJunctionLane{}
	}
	setters := lo.Map(lanes, func(l *fakeJunctionLane, _ int) entity.ILaneTrafficLightSetter { return l })
	tl := NewFixedTrafficLight(nil, 1, setters)
	require.NoError(t, tl.Set(BuildCrossProgram(1, testAxes, 20, 3)))
	return tl, lanes
}

func runFixed(tl *fixedTrafficLight, seconds float64) {
	steps := int(math.Round(seconds / testDT))
	for i := 0; i < steps; i++ {
		tl.Prepare()
		tl.Update(testDT)
	}
}

func TestFixedRotation(t *testing.T) {
	tl, lanes := newFixedFixture(t)
	runFixed(tl, 1)
	tl.Prepare()
	assert.Equal(t, PhaseNSGreen, tl.Step())
	// 南北车道绿灯，东西车道红灯
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_GREEN, lanes[0].state)
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_GREEN, lanes[1].state)
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_RED, lanes[2].state)
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_RED, lanes[3].state)

	runFixed(tl, 19.3)
	tl.Prepare()
	assert.Equal(t, PhaseNSYellow, tl.Step())
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_YELLOW, lanes[0].state)
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_RED, lanes[2].state)

	runFixed(tl, 3)
	tl.Prepare()
	assert.Equal(t, PhaseEWGreen, tl.Step())
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_RED, lanes[0].state)
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_GREEN, lanes[2].state)

	runFixed(tl, 20)
	tl.Prepare()
	assert.Equal(t, PhaseEWYellow, tl.Step())

	runFixed(tl, 3)
	tl.Prepare()
	assert.Equal(t, PhaseNSGreen, tl.Step())
}

func TestFixedLaneRemainingTimeCoversUnchangedPhases(t *testing.T) {
	tl, lanes := newFixedFixture(t)
	// 东西绿灯相位中，南北车道保持红灯到下个南北绿灯，写入车道的
	// 剩余时间要加上东西黄灯相位的时长
	runFixed(tl, 23.2)
	tl.Prepare()
	require.Equal(t, PhaseEWGreen, tl.Step())
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_RED, lanes[0].state)
	assert.InDelta(t, tl.RemainingTime()+3, lanes[0].remaining, 0.01)
	assert.InDelta(t, tl.RemainingTime(), lanes[2].remaining, 0.01)
}

func TestFixedUnsetAllGreen(t *testing.T) {
	tl, lanes := newFixedFixture(t)
	runFixed(tl, 1)
	tl.Unset()
	runFixed(tl, testDT)
	tl.Prepare()
	for _, l := range lanes {
		assert.Equal(t, mapv2.LightState_LIGHT_STATE_GREEN, l.state)
	}
	assert.Nil(t, tl.Get())
}

func TestFixedSetRejectsBadProgram(t *testing.T) {
	tl, _ := newFixedFixture(t)
	err := tl.Set(BuildCrossProgram(2, testAxes, 20, 3))
	assert.Error(t, err)
	err = tl.Set(BuildCrossProgram(1, []entity.Axis{entity.AxisNS}, 20, 3))
	assert.Error(t, err)
}

func TestBuildCrossProgram(t *testing.T) {
	tl := BuildCrossProgram(1, testAxes, 20, 3)
	require.Len(t, tl.Phases, NumPhases)
	assert.Equal(t, 20.0, tl.Phases[PhaseNSGreen].Duration)
	assert.Equal(t, 3.0, tl.Phases[PhaseNSYellow].Duration)
	assert.Equal(t, []mapv2.LightState{
		mapv2.LightState_LIGHT_STATE_GREEN,
		mapv2.LightState_LIGHT_STATE_GREEN,
		mapv2.LightState_LIGHT_STATE_RED,
		mapv2.LightState_LIGHT_STATE_RED,
	}, tl.Phases[PhaseNSGreen].States)
	assert.Equal(t, []mapv2.LightState{
		mapv2.LightState_LIGHT_STATE_RED,
		mapv2.LightState_LIGHT_STATE_RED,
		mapv2.LightState_LIGHT_STATE_YELLOW,
		mapv2.LightState_LIGHT_STATE_YELLOW,
	}, tl.Phases[PhaseEWYellow].States)
}
