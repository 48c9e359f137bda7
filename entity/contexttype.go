package entity

import (
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/clock"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/config"
)

type ITaskContext interface {
	Clock() *clock.Clock
	LaneManager() ILaneManager
	JunctionManager() IJunctionManager
	VehicleManager() IVehicleManager
	DetectorManager() IDetectorManager
	RuntimeConfig() *config.RuntimeConfig
	RunID() string // 本次运行的唯一标识，用于输出数据打标
}

// Lane管理器接口
type ILaneManager interface {
	Init(network *config.Network)
	Get(id int32) ILane
	GetOrError(id int32) (ILane, error)
	// 按方向与偏移量查找进口道车道
	FindApproachLane(approach Approach, offset int) (ILane, error)
	ApproachLanes() []ILane // 所有进口道车道
	JunctionLanes() []ILane // 所有路口内车道（顺序固定，与信控相位的状态数组对应）
	Prepare()
	Prepare2()
	Update()
}

// Junction管理器接口
type IJunctionManager interface {
	Init(network *config.Network, laneManager ILaneManager)
	Get(id int32) IJunction
	Prepare()
	Update(dt float64)
}

// Vehicle管理器接口
type IVehicleManager interface {
	Init(flows []config.FlowSpec, laneManager ILaneManager)
	GetOrError(id int32) (IVehicle, error)
	Count() int32 // 当前在网车辆数
	Prepare()
	Update(dt float64)
}

// Detector管理器接口
type IDetectorManager interface {
	Init(network *config.Network, laneManager ILaneManager)
	Update(dt float64)
	Close() error // 冲刷并关闭输出
}
