package vehicle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/clock"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity/lane"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/config"
)

type fakeCtx struct {
	clock       *clock.Clock
	laneManager entity.ILaneManager
}

func (c *fakeCtx) Clock() *clock.Clock                    { return c.clock }
func (c *fakeCtx) LaneManager() entity.ILaneManager       { return c.laneManager }
func (c *fakeCtx) JunctionManager() entity.IJunctionManager { return nil }
func (c *fakeCtx) VehicleManager() entity.IVehicleManager { return nil }
func (c *fakeCtx) DetectorManager() entity.IDetectorManager { return nil }
func (c *fakeCtx) RuntimeConfig() *config.RuntimeConfig   { return nil }
func (c *fakeCtx) RunID() string                          { return "test" }

func TestManagerSpawnsFlows(t *testing.T) {
	lm := lane.NewManager(nil)
	lm.Init(&config.Network{
		Junction: config.JunctionSpec{ID: 1, Name: "cross"},
		Approaches: []config.ApproachSpec{
			{Direction: "north", Lanes: 2, Length: 200, ExitLength: 200, MaxSpeed: 16.67, EmergencyLane: -1},
		},
	})
	ctx := &fakeCtx{
		clock:       clock.New(config.ControlStep{Start: 0, Total: 100, Interval: 0.1}),
		laneManager: lm,
	}
	m := NewManager(ctx)
	m.Init([]config.FlowSpec{
		{Name: "bg", VehicleType: "car", Approach: "north", Lane: 1, Begin: 0, End: 100, Period: 5},
		{Name: "ambulance", VehicleType: "emergency", Approach: "north", Lane: 0, Begin: 1, End: 1, Period: 0},
	}, lm)

	advance := func(seconds float64) {
		steps := int(seconds / 0.1)
		for i := 0; i < steps; i++ {
			ctx.clock.InternalStep++
			ctx.clock.T = float64(ctx.clock.InternalStep) * ctx.clock.DT
			m.Prepare()
			lm.Prepare()
			lm.Prepare2()
			m.Update(ctx.clock.DT)
		}
	}

	advance(2)
	assert.Equal(t, int32(2), m.Count())

	car, err := m.GetOrError(1)
	require.NoError(t, err)
	assert.Equal(t, entity.VehicleClassCar, car.Class())
	ambulance, err := m.GetOrError(2)
	require.NoError(t, err)
	assert.True(t, ambulance.IsEmergency())

	carLane, err := lm.FindApproachLane(entity.ApproachNorth, 1)
	require.NoError(t, err)
	assert.True(t, carLane.ContainsVehicle(car.ID()))

	// period为0的车流只发一辆，周期车流按period持续发车
	advance(5)
	assert.Equal(t, int32(3), m.Count())
}

func TestManagerRejectsBadFlow(t *testing.T) {
	lm := lane.NewManager(nil)
	lm.Init(&config.Network{
		Junction: config.JunctionSpec{ID: 1, Name: "cross"},
		Approaches: []config.ApproachSpec{
			{Direction: "north", Lanes: 1, Length: 200, ExitLength: 200, MaxSpeed: 16.67, EmergencyLane: -1},
		},
	})
	m := NewManager(&fakeCtx{laneManager: lm})
	assert.Panics(t, func() {
		m.Init([]config.FlowSpec{
			{Name: "bad", VehicleType: "truck", Approach: "north", Lane: 0},
		}, lm)
	})
	assert.Panics(t, func() {
		m.Init([]config.FlowSpec{
			{Name: "bad", VehicleType: "car", Approach: "north", Lane: 5},
		}, lm)
	})
}
