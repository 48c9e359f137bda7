package lane

import (
	"fmt"

	"git.fiblab.net/general/common/v2/mathutil"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity"
)

// Lane 车道实体
// 功能：表示进口道、路口内车道或出口道，维护车辆链表与信号灯状态
type Lane struct {
	ctx entity.ITaskContext

	id         int32
	approach   entity.Approach // 所属进口道方向（路口内车道与出口道取来源进口道的方向）
	offset     int             // 在道路中的偏移量，最左侧为0
	length     float64         // 车道长度
	maxV       float64         // 车道限速
	inJunction bool            // 是否为路口内车道
	isExit     bool            // 是否为出口道
	emergency  bool            // 是否为应急专用车道

	successor entity.ILane // 后继车道，出口道为nil

	vehicles laneList[entity.IVehicle, struct{}]

	lightState              mapv2.LightState // 车道信号灯状态
	lightStateTotalTime     float64          // 车道信号灯本相位总时长
	lightStateRemainingTime float64          // 车道信号灯下一次切换时间
}

// laneInit Lane的初始化参数
type laneInit struct {
	id         int32
	approach   entity.Approach
	offset     int
	length     float64
	maxV       float64
	inJunction bool
	isExit     bool
	emergency  bool
}

// newLane 创建并初始化一个新的Lane实例
// 说明：信号灯初始为常绿，由信控模块在Prepare阶段写入实际状态
func newLane(ctx entity.ITaskContext, init laneInit) *Lane {
	l := &Lane{
		ctx:                     ctx,
		id:                      init.id,
		approach:                init.approach,
		offset:                  init.offset,
		length:                  init.length,
		maxV:                    init.maxV,
		inJunction:              init.inJunction,
		isExit:                  init.isExit,
		emergency:               init.emergency,
		lightState:              mapv2.LightState_LIGHT_STATE_GREEN,
		lightStateTotalTime:     mathutil.INF,
		lightStateRemainingTime: mathutil.INF,
	}
	l.vehicles = newLaneList[entity.IVehicle, struct{}](
		fmt.Sprintf("lane %d vehicles", l.id),
	)
	return l
}

// prepare 准备阶段第一步，应用车辆链表的移除缓冲
func (l *Lane) prepare() {
	l.vehicles.applyRemoves()
}

// prepare2 准备阶段第二步，应用车辆链表的插入缓冲并恢复有序
// 说明：跨车道移动的车辆先在prepare中从原车道移除，再在本步插入新车道，
// 两步之间所有车道的移除都已完成，避免节点同时属于两个链表
func (l *Lane) prepare2() {
	l.vehicles.applyAdds()
}

// update 更新阶段，车道本身没有需要推进的状态
func (l *Lane) update() {
}

// SetSuccessorWhenInit 设置后继车道
func (l *Lane) SetSuccessorWhenInit(next entity.ILane) {
	l.successor = next
}

func (l *Lane) String() string {
	return fmt.Sprintf("Lane{id=%d, approach=%v, offset=%d}", l.id, l.approach, l.offset)
}

// ID 获取Lane ID
func (l *Lane) ID() int32 {
	return l.id
}

// Length 获取Lane长度
func (l *Lane) Length() float64 {
	return l.length
}

// MaxV 获取车道限速
func (l *Lane) MaxV() float64 {
	return l.maxV
}

// Approach 获取所属进口道方向
func (l *Lane) Approach() entity.Approach {
	return l.approach
}

// Offset 获取车道在道路中的偏移量
func (l *Lane) Offset() int {
	return l.offset
}

// InJunction 检查Lane是否为路口内车道
func (l *Lane) InJunction() bool {
	return l.inJunction
}

// IsEmergencyLane 检查是否为应急专用车道
func (l *Lane) IsEmergencyLane() bool {
	return l.emergency
}

// IsExit 检查是否为出口道
func (l *Lane) IsExit() bool {
	return l.isExit
}

// Successor 获取后继车道，出口道返回nil
func (l *Lane) Successor() entity.ILane {
	return l.successor
}

// Light 获取信号灯状态
func (l *Lane) Light() (mapv2.LightState, float64, float64) {
	return l.lightState, l.lightStateTotalTime, l.lightStateRemainingTime
}

// SetLight 设置信号灯状态
func (l *Lane) SetLight(state mapv2.LightState, totalTime float64, remainingTime float64) {
	l.lightState = state
	l.lightStateTotalTime = totalTime
	l.lightStateRemainingTime = remainingTime
}

// IsNoEntry 检查车道是否不能通行（不是绿灯）
func (l *Lane) IsNoEntry() bool {
	return l.inJunction && l.lightState != mapv2.LightState_LIGHT_STATE_GREEN
}

// FirstVehicle 获取第一辆车（S最小，距路口最远）
func (l *Lane) FirstVehicle() *entity.VehicleNode {
	return l.vehicles.list.First()
}

// LastVehicle 获取最后一辆车（S最大，距路口最近）
func (l *Lane) LastVehicle() *entity.VehicleNode {
	return l.vehicles.list.Last()
}

// Vehicles 获取车道上的车辆链表
func (l *Lane) Vehicles() *entity.VehicleList {
	return l.vehicles.list
}

// VehicleCount 统计车辆数
func (l *Lane) VehicleCount() int32 {
	return int32(l.vehicles.list.Len())
}

// AddVehicle 向Lane链表中添加车辆（Prepare后生效）
func (l *Lane) AddVehicle(node *entity.VehicleNode) {
	l.vehicles.add(node)
}

// RemoveVehicle 从Lane链表中移除车辆（Prepare后生效）
func (l *Lane) RemoveVehicle(node *entity.VehicleNode) {
	l.vehicles.remove(node)
}

// ApproachingVehicles 获取车道上车辆的观测列表
// 功能：为信控模块提供每步的车辆快照
// 说明：Distance为距停车线（车道末端）的剩余距离；应急专用车道上的
// 车辆一律按应急车辆处理
func (l *Lane) ApproachingVehicles() []entity.VehicleObservation {
	out := make([]entity.VehicleObservation, 0, l.vehicles.list.Len())
	for node := l.vehicles.list.First(); node != nil; node = node.Next() {
		v := node.Value
		out = append(out, entity.VehicleObservation{
			ID:        v.ID(),
			Distance:  l.length - node.S,
			V:         v.V(),
			Approach:  l.approach,
			Emergency: v.IsEmergency() || l.emergency,
		})
	}
	return out
}

// ContainsVehicle 检查指定车辆是否仍在本车道上
func (l *Lane) ContainsVehicle(id int32) bool {
	for node := l.vehicles.list.First(); node != nil; node = node.Next() {
		if node.Value.ID() == id {
			return true
		}
	}
	return false
}
