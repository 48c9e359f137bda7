package task

import (
	"flag"
	"fmt"
	"math"

	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity/junction/trafficlight"
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// 运行状态输出的时间间隔（仿真秒）
const statusInterval = 3.0

// prepare 准备阶段，每步执行一次
// 算法说明：
// 1. 更新时钟：增加内部步数并计算当前时间
// 2. 心跳日志与运行状态输出
// 3. 按固定顺序执行各管理器的准备操作：车辆先写入位置快照，
//    车道再应用链表的移除与插入缓冲，最后路口把信号灯写入车道
func (ctx *Context) prepare() {
	ctx.clock.InternalStep++
	ctx.clock.T = float64(ctx.clock.InternalStep) * ctx.clock.DT

	if ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		hour, minute, second := ctx.clock.GetHourMinuteSecond()
		log.Infof(
			"STEP: %d(%d:%d:%.2f)",
			ctx.clock.InternalStep,
			hour, minute, second,
		)
	}
	if ctx.gui && ctx.clock.InternalStep%int32(math.Round(statusInterval/ctx.clock.DT)) == 0 {
		fmt.Println(ctx.statusLine())
	}

	ctx.vehicleManager.Prepare()
	ctx.laneManager.Prepare()
	ctx.laneManager.Prepare2()
	ctx.junctionManager.Prepare()
}

// update 更新阶段，每步执行一次
// 算法说明：
// 1. 车辆管理器：推进车辆运动并按车流配置发车
// 2. 路口管理器：推进信号灯（含应急车辆优先逻辑）
// 3. 车道管理器：更新车道状态
// 4. 检测器管理器：扫描本步的过线记录，必须在车辆更新之后
func (ctx *Context) update() {
	dt := ctx.clock.DT
	ctx.vehicleManager.Update(dt)
	ctx.junctionManager.Update(dt)
	ctx.laneManager.Update()
	ctx.detectorManager.Update(dt)
}

// Run 运行仿真主循环
// 说明：模拟区间为[START_STEP, END_STEP)，结束后输出运行摘要
func (ctx *Context) Run() {
	ctx.Init()
	for ctx.clock.InternalStep+1 < ctx.clock.END_STEP {
		ctx.prepare()
		ctx.update()
	}
	ctx.logSummary()
}

// statusLine 生成一行运行状态文本
func (ctx *Context) statusLine() string {
	j := ctx.mainJunction()
	line := fmt.Sprintf(
		"Step %d (%s): %d vehicles, phase %s, remaining %.1fs",
		ctx.clock.InternalStep,
		ctx.clock,
		ctx.vehicleManager.Count(),
		trafficlight.PhaseName(j.LightStep()),
		j.LightRemainingTime(),
	)
	if j.Preempting() {
		line += " [PRIORITY]"
	}
	return line
}

// logSummary 输出运行摘要
func (ctx *Context) logSummary() {
	j := ctx.mainJunction()
	log.Infof("job %s finished at step %d (%s)", ctx.job, ctx.clock.InternalStep, ctx.clock)
	log.Infof("emergency vehicles served: %d", j.ProcessedCount())
}

// mainJunction 获取被控路口
func (ctx *Context) mainJunction() entity.IJunction {
	j := ctx.junctionManager.Get(ctx.initRes.Network.Junction.ID)
	if j == nil {
		log.Panicf("junction %d not found", ctx.initRes.Network.Junction.ID)
	}
	return j
}
