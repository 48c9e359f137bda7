package vehicle

import (
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/mathutil"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/container"
)

// IDM模型中速度比的指数
const idmTheta = 4

// vehicleRuntime 车辆运行时数据
type vehicleRuntime struct {
	lane entity.ILane // 所在车道
	s    float64      // 车头在车道上的位置
	v    float64      // 速度
}

// Vehicle 车辆实体
// 功能：跟驰前车、响应信号灯并沿进口道-路口-出口道行驶
type Vehicle struct {
	container.IncrementalItemBase
	ctx entity.ITaskContext

	id    int32
	class entity.VehicleClass
	attr  Attribute
	node  *entity.VehicleNode

	snapshot vehicleRuntime // snapshot，本步其他实体读取的数据
	runtime  vehicleRuntime // 运行时数据
	done     bool           // 是否已驶出路网
	removed  bool           // 是否已提交从管理器移除

	// 本步运动区间，供检测器判断过线
	motionLane entity.ILane
	motionFrom float64
	motionTo   float64
}

// newVehicle 创建车辆并投放到车道起点
// 说明：初速度取车辆最大速度与车道限速的较小值，投放延迟到下个
// 准备阶段生效
func newVehicle(ctx entity.ITaskContext, id int32, class entity.VehicleClass, attr Attribute, lane entity.ILane) *Vehicle {
	v := &Vehicle{
		ctx:   ctx,
		id:    id,
		class: class,
		attr:  attr,
	}
	r := vehicleRuntime{lane: lane, s: 0, v: math.Min(attr.MaxV, lane.MaxV())}
	v.runtime = r
	v.snapshot = r
	v.node = &entity.VehicleNode{S: 0, Value: v}
	lane.AddVehicle(v.node)
	return v
}

// prepare 准备阶段，写入snapshot并同步链表节点位置
func (v *Vehicle) prepare() {
	if v.done {
		return
	}
	v.snapshot = v.runtime
	v.node.S = v.runtime.s
}

// update 更新阶段，执行车辆运动学计算
// 参数：dt-时间步长
// 算法说明：
// 1. IDM跟驰：前车在本车道链表的后继节点，本车道无前车时看后继车道的首车
// 2. 信号灯约束：进口道上红灯减速停车，黄灯在倒计时内无法过线时停车
// 3. 推进位置并记录本步运动区间，越过车道末端时迁移到后继车道，
//    没有后继车道则驶出路网
func (v *Vehicle) update(dt float64) {
	if v.done {
		return
	}
	lane := v.snapshot.lane
	s := v.snapshot.s
	speed := v.snapshot.v
	maxV := math.Min(v.attr.MaxV, lane.MaxV())

	// 跟驰
	var a float64
	if ahead := v.node.Next(); ahead != nil {
		a = v.follow(speed, maxV, ahead.V(), ahead.S-ahead.L()-s, v.attr.MinGap, v.attr.Headway)
	} else if next := lane.Successor(); next != nil && next.FirstVehicle() != nil {
		fn := next.FirstVehicle()
		a = v.follow(speed, maxV, fn.V(), lane.Length()-s+fn.S-fn.L(), v.attr.MinGap, v.attr.Headway)
	} else {
		a = v.follow(speed, maxV, 0, mathutil.INF, v.attr.MinGap, v.attr.Headway)
	}

	// 信号灯
	if next := lane.Successor(); next != nil && next.InJunction() {
		distance := lane.Length() - s
		// ATTENTION: 停车位置与停车线之间留2米空间
		stopA := v.follow(speed, maxV, 0, distance, v.attr.MinGap+2, dt)
		switch state, _, remainingTime := next.Light(); state {
		case mapv2.LightState_LIGHT_STATE_RED:
			a = math.Min(a, stopA)
		case mapv2.LightState_LIGHT_STATE_YELLOW:
			// 黄灯，倒计时结束前过不了线，减速停车
			if remainingTime*speed <= distance {
				a = math.Min(a, stopA)
			}
		}
	}

	a = lo.Clamp(a, v.attr.MaxBrakingA, v.attr.MaxA)
	newV := lo.Clamp(speed+a*dt, 0, maxV)
	ds := (speed + newV) / 2 * dt
	newS := s + ds
	v.motionLane, v.motionFrom, v.motionTo = lane, s, newS

	// 红灯时不得越过停车线（黄灯允许按剩余时间规则清空路口）
	if next := lane.Successor(); next != nil && newS > lane.Length() {
		if state, _, _ := next.Light(); state == mapv2.LightState_LIGHT_STATE_RED {
			newS = lane.Length()
			newV = 0
			v.motionTo = newS
		}
	}

	// 跨车道推进
	curLane := lane
	for newS > curLane.Length() {
		next := curLane.Successor()
		if next == nil {
			v.done = true
			break
		}
		newS -= curLane.Length()
		curLane = next
	}
	if v.done {
		lane.RemoveVehicle(v.node)
	} else if curLane != lane {
		lane.RemoveVehicle(v.node)
		curLane.AddVehicle(v.node)
	}
	v.runtime = vehicleRuntime{lane: curLane, s: newS, v: newV}
}

// follow IDM跟车模型
// 参数：selfV-本车速度，targetV-目标速度，aheadV-前车速度，
// distance-车距，minGap-最小车距，headway-安全车头时距
// 算法说明：
// 1. 距离小于等于0视为碰撞，紧急制动
// 2. 期望车距 s_star = minGap + max(0, v*headway + v*(v-v_ahead)/(2*sqrt(a*b)))
// 3. 加速度 a = maxA * (1 - (v/targetV)^4 - (s_star/distance)^2)
func (v *Vehicle) follow(selfV, targetV, aheadV, distance, minGap, headway float64) float64 {
	var acc float64
	if distance <= 0 {
		acc = -mathutil.INF
	} else {
		// https://en.wikipedia.org/wiki/Intelligent_driver_model
		sStar := minGap + math.Max(
			0,
			selfV*headway+selfV*(selfV-aheadV)/2/math.Sqrt(-v.attr.UsualBrakingA*v.attr.MaxA),
		)
		acc = v.attr.MaxA * (1 - math.Pow(selfV/targetV, idmTheta) - math.Pow(sStar/distance, 2))
	}
	return lo.Clamp(acc, v.attr.MaxBrakingA, v.attr.MaxA)
}

func (v *Vehicle) String() string {
	return fmt.Sprintf("Vehicle{id=%d, class=%v}", v.id, v.class)
}

// ID 获取车辆ID
func (v *Vehicle) ID() int32 {
	return v.id
}

// Class 获取车辆类型
func (v *Vehicle) Class() entity.VehicleClass {
	return v.class
}

// IsEmergency 是否为应急车辆
func (v *Vehicle) IsEmergency() bool {
	return v.class == entity.VehicleClassEmergency
}

// V 获取速度
func (v *Vehicle) V() float64 {
	return v.snapshot.v
}

// Length 获取车长
func (v *Vehicle) Length() float64 {
	return v.attr.Length
}

// S 获取车头在车道上的位置
func (v *Vehicle) S() float64 {
	return v.snapshot.s
}

// Lane 获取所在车道
func (v *Vehicle) Lane() entity.ILane {
	return v.snapshot.lane
}

// Done 是否已驶出路网
func (v *Vehicle) Done() bool {
	return v.done
}

// MotionThisStep 获取本步运动区间
// 返回：本步起点所在车道、起点位置、终点位置（终点可超过车道长度）
func (v *Vehicle) MotionThisStep() (entity.ILane, float64, float64) {
	return v.motionLane, v.motionFrom, v.motionTo
}
