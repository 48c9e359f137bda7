package junction

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity/junction/trafficlight"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/config"
)

// Junction 路口实体
// 功能：维护路口内车道与信号灯控制器
type Junction struct {
	ctx entity.ITaskContext

	id    int32
	name  string
	lanes []entity.ILane // 路口内车道
	tl    ITrafficLight
}

// newJunction 创建并初始化一个新的Junction实例
// 功能：根据路口内车道的放行轴构造四相位信号灯程序，并按配置选择
// 优先通行控制器或固定相位控制器
func newJunction(
	ctx entity.ITaskContext,
	spec config.JunctionSpec,
	lanes []entity.ILane,
	approaches []entity.ILane,
) (*Junction, error) {
	j := &Junction{
		ctx:   ctx,
		id:    spec.ID,
		name:  spec.Name,
		lanes: lanes,
	}
	setters := lo.Map(lanes, func(l entity.ILane, _ int) entity.ILaneTrafficLightSetter { return l })
	c := ctx.RuntimeConfig()
	if c.PriorityEnabled {
		readers := lo.Map(approaches, func(l entity.ILane, _ int) entity.ILaneApproachReader { return l })
		j.tl = trafficlight.NewPriorityTrafficLight(ctx, j.id, setters, readers, c.P)
	} else {
		j.tl = trafficlight.NewFixedTrafficLight(ctx, j.id, setters)
	}
	axes := lo.Map(lanes, func(l entity.ILane, _ int) entity.Axis { return l.Approach().Axis() })
	program := trafficlight.BuildCrossProgram(j.id, axes, c.P.NormalGreen, c.P.Yellow)
	if err := j.tl.Set(program); err != nil {
		return nil, fmt.Errorf("junction %d: %w", j.id, err)
	}
	return j, nil
}

// prepare 准备阶段，更新信号灯输出
func (j *Junction) prepare() {
	j.tl.Prepare()
}

// update 更新阶段，推进信号灯
func (j *Junction) update(dt float64) {
	j.tl.Update(dt)
}

func (j *Junction) String() string {
	return fmt.Sprintf("Junction{id=%d, name=%s}", j.id, j.name)
}

// ID 获取Junction ID
func (j *Junction) ID() int32 {
	return j.id
}

// HasTrafficLight 检查路口是否有信号灯程序
func (j *Junction) HasTrafficLight() bool {
	return j.tl.Get() != nil && j.tl.Ok()
}

// LightStep 获取当前相位索引
func (j *Junction) LightStep() int32 {
	return j.tl.Step()
}

// LightRemainingTime 获取当前相位剩余时间
func (j *Junction) LightRemainingTime() float64 {
	return j.tl.RemainingTime()
}

// Preempting 获取是否处于优先通行抢占状态
func (j *Junction) Preempting() bool {
	return j.tl.Preempting()
}

// ProcessedCount 获取已服务过的应急车辆数量
func (j *Junction) ProcessedCount() int32 {
	return int32(j.tl.ProcessedCount())
}

// TrafficLight 获取信号灯控制器
func (j *Junction) TrafficLight() ITrafficLight {
	return j.tl
}
