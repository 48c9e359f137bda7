package task

import (
	"github.com/google/uuid"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/clock"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity/detector"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity/junction"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity/lane"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity/vehicle"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/input"
)

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态
// 说明：管理仿真系统的所有组件，包括时钟、管理器、配置、输出等
type Context struct {

	// 任务名
	job string
	// 本次运行的唯一标识，用于输出数据打标
	runID string
	// 是否在控制台输出运行状态
	gui bool

	// 时钟
	clock *clock.Clock

	// Lane管理器
	laneManager entity.ILaneManager
	// Junction管理器
	junctionManager entity.IJunctionManager
	// Vehicle管理器
	vehicleManager entity.IVehicleManager
	// Detector管理器
	detectorManager entity.IDetectorManager

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig

	// 用于初始化的输入
	initRes *input.Input
}

// NewContext 创建新的仿真任务上下文
// 功能：加载输入数据并初始化仿真系统的所有组件
// 参数：job-任务名称，gui-是否输出运行状态，c-配置对象
// 返回：初始化完成的Context实例
func NewContext(job string, gui bool, c config.Config) *Context {
	ctx := &Context{
		job:   job,
		runID: uuid.NewString(),
		gui:   gui,
	}
	ctx.runtimeConfig = config.NewRuntimeConfig(c)
	ctx.clock = clock.New(ctx.runtimeConfig.C.Step)

	// 加载模拟器启动所需的数据
	ctx.initRes = input.Init(c)

	// 新建各类模拟对象
	ctx.laneManager = lane.NewManager(ctx)
	ctx.junctionManager = junction.NewManager(ctx)
	ctx.vehicleManager = vehicle.NewManager(ctx)
	ctx.detectorManager = detector.NewManager(ctx)

	return ctx
}

func (ctx *Context) GetInput() *input.Input {
	return ctx.initRes
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) LaneManager() entity.ILaneManager {
	return ctx.laneManager
}

func (ctx *Context) JunctionManager() entity.IJunctionManager {
	return ctx.junctionManager
}

func (ctx *Context) VehicleManager() entity.IVehicleManager {
	return ctx.vehicleManager
}

func (ctx *Context) DetectorManager() entity.IDetectorManager {
	return ctx.detectorManager
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) RunID() string {
	return ctx.runID
}

// Init 初始化仿真状态
// 说明：初始化顺序是固定的，路口与车流都依赖车道管理器生成的车道
func (ctx *Context) Init() {
	ctx.clock.Init()
	ctx.laneManager.Init(ctx.initRes.Network)
	ctx.junctionManager.Init(ctx.initRes.Network, ctx.laneManager)
	ctx.vehicleManager.Init(ctx.initRes.Flows, ctx.laneManager)
	ctx.detectorManager.Init(ctx.initRes.Network, ctx.laneManager)
	log.Infof("job %s (run %s) initialized", ctx.job, ctx.runID)
}

// Close 关闭仿真任务，冲刷所有输出
func (ctx *Context) Close() error {
	return ctx.detectorManager.Close()
}
