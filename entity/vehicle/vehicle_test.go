package vehicle

import (
	"testing"

	"git.fiblab.net/general/common/v2/mathutil"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity/lane"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/config"
)

const testDT = 0.1

func testLaneManager() *lane.Manager {
	m := lane.NewManager(nil)
	m.Init(&config.Network{
		Junction: config.JunctionSpec{ID: 1, Name: "cross"},
		Approaches: []config.ApproachSpec{
			{Direction: "north", Lanes: 1, Length: 200, ExitLength: 200, MaxSpeed: 16.67, EmergencyLane: -1},
		},
	})
	return m
}

// step 按真实主循环的节奏推进一步
func step(lm *lane.Manager, vehicles []*Vehicle) {
	for _, v := range vehicles {
		v.prepare()
	}
	lm.Prepare()
	lm.Prepare2()
	for _, v := range vehicles {
		v.update(testDT)
	}
}

func run(lm *lane.Manager, vehicles []*Vehicle, seconds float64) {
	steps := int(seconds / testDT)
	for i := 0; i < steps; i++ {
		step(lm, vehicles)
	}
}

func TestVehicleCrossesOnGreen(t *testing.T) {
	lm := testLaneManager()
	in, err := lm.FindApproachLane(entity.ApproachNorth, 0)
	require.NoError(t, err)

	// 车道信号灯初始为常绿
	v := newVehicle(nil, 1, entity.VehicleClassCar, defaultAttribute(entity.VehicleClassCar), in)
	run(lm, []*Vehicle{v}, 60)
	assert.True(t, v.Done())
}

func TestVehicleStopsAtRed(t *testing.T) {
	lm := testLaneManager()
	in, err := lm.FindApproachLane(entity.ApproachNorth, 0)
	require.NoError(t, err)
	in.Successor().SetLight(mapv2.LightState_LIGHT_STATE_RED, mathutil.INF, mathutil.INF)

	v := newVehicle(nil, 1, entity.VehicleClassCar, defaultAttribute(entity.VehicleClassCar), in)
	run(lm, []*Vehicle{v}, 60)
	assert.False(t, v.Done())
	assert.LessOrEqual(t, v.runtime.s, in.Length())
	// 在停车线附近刹停
	assert.Greater(t, v.runtime.s, in.Length()-20)
	assert.Less(t, v.runtime.v, 0.5)
}

func TestVehicleYellowClearance(t *testing.T) {
	lm := testLaneManager()
	in, err := lm.FindApproachLane(entity.ApproachNorth, 0)
	require.NoError(t, err)

	// 黄灯剩余时间足够通过时继续行驶
	in.Successor().SetLight(mapv2.LightState_LIGHT_STATE_YELLOW, 1000, 1000)
	v := newVehicle(nil, 1, entity.VehicleClassCar, defaultAttribute(entity.VehicleClassCar), in)
	run(lm, []*Vehicle{v}, 60)
	assert.True(t, v.Done())

	// 黄灯即将结束时减速停车
	lm2 := testLaneManager()
	in2, err := lm2.FindApproachLane(entity.ApproachNorth, 0)
	require.NoError(t, err)
	in2.Successor().SetLight(mapv2.LightState_LIGHT_STATE_YELLOW, 0.5, 0.5)
	v2 := newVehicle(nil, 1, entity.VehicleClassCar, defaultAttribute(entity.VehicleClassCar), in2)
	run(lm2, []*Vehicle{v2}, 60)
	assert.False(t, v2.Done())
	assert.Less(t, v2.runtime.v, 0.5)
}

func TestCarFollowingKeepsGap(t *testing.T) {
	lm := testLaneManager()
	in, err := lm.FindApproachLane(entity.ApproachNorth, 0)
	require.NoError(t, err)
	in.Successor().SetLight(mapv2.LightState_LIGHT_STATE_RED, mathutil.INF, mathutil.INF)

	attr := defaultAttribute(entity.VehicleClassCar)
	lead := newVehicle(nil, 1, entity.VehicleClassCar, attr, in)
	vehicles := []*Vehicle{lead}
	run(lm, vehicles, 5)

	follower := newVehicle(nil, 2, entity.VehicleClassCar, attr, in)
	vehicles = append(vehicles, follower)
	run(lm, vehicles, 60)

	// 两车都排队停在红灯前且保持间距
	assert.False(t, lead.Done())
	assert.False(t, follower.Done())
	gap := lead.runtime.s - attr.Length - follower.runtime.s
	assert.Greater(t, gap, 0.0)
	assert.Less(t, follower.runtime.v, 0.5)
}

func TestVehicleMotionRecorded(t *testing.T) {
	lm := testLaneManager()
	in, err := lm.FindApproachLane(entity.ApproachNorth, 0)
	require.NoError(t, err)

	v := newVehicle(nil, 1, entity.VehicleClassCar, defaultAttribute(entity.VehicleClassCar), in)
	step(lm, []*Vehicle{v})
	motionLane, from, to := v.MotionThisStep()
	assert.Equal(t, in, motionLane)
	assert.Equal(t, 0.0, from)
	assert.Greater(t, to, from)
}
