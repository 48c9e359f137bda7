package junction

import (
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
)

// ITrafficLight 信号灯控制器接口
// 功能：统一固定相位控制器与优先通行控制器的行为
type ITrafficLight interface {
	// Get 获取当前信号灯程序，没有程序则返回nil
	Get() *mapv2.TrafficLight
	// Step 获取当前相位索引
	Step() int32
	// RemainingTime 获取当前相位剩余时间
	RemainingTime() float64
	// Ok 获取信号灯是否正常工作
	Ok() bool
	// Preempting 获取是否处于优先通行抢占状态
	Preempting() bool
	// ProcessedCount 获取已服务过的应急车辆数量
	ProcessedCount() int

	// Prepare 准备阶段，把当前相位写入车道
	Prepare()
	// Update 更新阶段，推进相位
	Update(dt float64)

	// Set 设置信号灯程序，下个更新周期生效
	Set(tl *mapv2.TrafficLight) error
	// Unset 取消信号灯程序，恢复全绿
	Unset()
	// SetPhase 设置当前相位索引和剩余时间
	SetPhase(offset int32, remainingT float64)
	// SetOk 设置信号灯开关状态
	SetOk(ok bool)
}
