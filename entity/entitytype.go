package entity

import (
	"fmt"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/container"
)

// Approach 进口道方向
type Approach int32

const (
	ApproachNorth Approach = iota // 北进口
	ApproachSouth                 // 南进口
	ApproachEast                  // 东进口
	ApproachWest                  // 西进口
)

// ApproachFromString 解析配置中的方向字符串
func ApproachFromString(s string) (Approach, error) {
	switch s {
	case "north":
		return ApproachNorth, nil
	case "south":
		return ApproachSouth, nil
	case "east":
		return ApproachEast, nil
	case "west":
		return ApproachWest, nil
	default:
		return 0, fmt.Errorf("unknown approach direction %q", s)
	}
}

func (a Approach) String() string {
	switch a {
	case ApproachNorth:
		return "north"
	case ApproachSouth:
		return "south"
	case ApproachEast:
		return "east"
	case ApproachWest:
		return "west"
	default:
		return fmt.Sprintf("approach(%d)", int32(a))
	}
}

// Axis 获取进口道所属的通行轴
func (a Approach) Axis() Axis {
	if a == ApproachNorth || a == ApproachSouth {
		return AxisNS
	}
	return AxisEW
}

// Opposite 获取对向进口道
func (a Approach) Opposite() Approach {
	switch a {
	case ApproachNorth:
		return ApproachSouth
	case ApproachSouth:
		return ApproachNorth
	case ApproachEast:
		return ApproachWest
	default:
		return ApproachEast
	}
}

// Axis 通行轴，南北向或东西向
type Axis int32

const (
	AxisNS Axis = iota // 南北向
	AxisEW             // 东西向
)

func (a Axis) String() string {
	if a == AxisNS {
		return "NS"
	}
	return "EW"
}

// Other 获取另一条通行轴
func (a Axis) Other() Axis {
	if a == AxisNS {
		return AxisEW
	}
	return AxisNS
}

// VehicleClass 车辆类型
type VehicleClass int32

const (
	VehicleClassCar       VehicleClass = iota // 普通车辆
	VehicleClassEmergency                     // 应急车辆
)

// VehicleClassFromString 解析配置中的车辆类型字符串
func VehicleClassFromString(s string) (VehicleClass, error) {
	switch s {
	case "car":
		return VehicleClassCar, nil
	case "emergency":
		return VehicleClassEmergency, nil
	default:
		return 0, fmt.Errorf("unknown vehicle type %q", s)
	}
}

func (c VehicleClass) String() string {
	if c == VehicleClassEmergency {
		return "emergency"
	}
	return "car"
}

// VehicleObservation 进口道上的车辆观测
// 功能：信控模块每步从进口道读取的车辆快照
// 说明：瞬态数据，每步重新读取，不做持久化
type VehicleObservation struct {
	ID        int32    // 车辆ID
	Distance  float64  // 距停车线的剩余距离（米）
	V         float64  // 速度（米/秒）
	Approach  Approach // 所在进口道方向
	Emergency bool     // 是否按应急车辆处理（类型标记或专用车道）
}

// 车辆链表节点类型
type VehicleNode = container.ListNode[IVehicle, struct{}]

// 车辆链表类型
type VehicleList = container.List[IVehicle, struct{}]

// entity/vehicle/vehicle.go的依赖倒置
type IVehicle interface {
	ID() int32            // 获取车辆ID
	Class() VehicleClass  // 获取车辆类型
	IsEmergency() bool    // 是否为应急车辆（按类型标记）
	V() float64           // 获取速度（快照）
	Length() float64      // 获取车长
	S() float64           // 获取车道上的位置（快照）
	Lane() ILane          // 获取所在车道（快照）
	Done() bool           // 是否已离开路网
	// 本步运动区间：所在车道、起点S、终点S（终点可超过车道长度，表示越过车道末端）
	MotionThisStep() (lane ILane, from, to float64)

	String() string
}

// 车道的信控写入接口
type ILaneTrafficLightSetter interface {
	SetLight(state mapv2.LightState, totalTime float64, remainingTime float64) // 设置信号灯状态
}

// 进口道的信控读取接口，供优先信控扫描车辆
type ILaneApproachReader interface {
	ID() int32                                  // 车道ID
	Approach() Approach                         // 进口道方向
	ApproachingVehicles() []VehicleObservation  // 当前车道上车辆的观测列表
	ContainsVehicle(id int32) bool              // 指定车辆是否仍在本车道上
}

// entity/lane/lane.go的依赖倒置
type ILane interface {
	ILaneTrafficLightSetter

	String() string

	// getter

	ID() int32              // 获取Lane ID
	Length() float64        // 获取Lane长度
	MaxV() float64          // 获取车道限速
	Approach() Approach     // 获取所属进口道方向
	Offset() int            // 车道在道路中的偏移量，最左侧为0
	InJunction() bool       // 检查Lane是否为路口内车道
	IsEmergencyLane() bool  // 检查是否为应急专用车道
	IsExit() bool           // 检查是否为出口道
	Successor() ILane       // 获取后继车道，没有则返回nil

	// 初始化

	SetSuccessorWhenInit(next ILane) // 设置后继车道

	// 信号灯

	Light() (state mapv2.LightState, totalTime float64, remainingTime float64) // 获取信号灯状态
	IsNoEntry() bool                                                           // 检查车道是否不能通行（不是绿灯）

	// 车辆链表

	FirstVehicle() *VehicleNode      // 获取第一辆车（S最小）
	LastVehicle() *VehicleNode       // 获取最后一辆车（S最大）
	Vehicles() *VehicleList          // 获取车道上的车辆
	VehicleCount() int32             // 统计车辆数
	AddVehicle(node *VehicleNode)    // 向Lane链表中添加车辆（Prepare后生效）
	RemoveVehicle(node *VehicleNode) // 从Lane链表中移除车辆（Prepare后生效）

	// 信控观测

	ApproachingVehicles() []VehicleObservation // 当前车道上车辆的观测列表
	ContainsVehicle(id int32) bool             // 指定车辆是否仍在本车道上
}

// entity/junction/junction.go的依赖倒置
type IJunction interface {
	ID() int32
	HasTrafficLight() bool        // 是否有可用的信号灯
	LightStep() int32             // 当前相位索引
	LightRemainingTime() float64  // 当前相位剩余时间
	Preempting() bool             // 是否处于应急优先抢占状态
	ProcessedCount() int32        // 本次运行已处理的应急车辆数
}
