// 提供应急车辆优先通行信号灯控制算法
// 平时按固定四相位程序运行，检测到进口道上的应急车辆后抢占信号，
// 为其所在放行轴提供加长绿灯，车辆通过或离开后恢复正常配时
package trafficlight

import (
	"git.fiblab.net/general/common/v2/mathutil"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/container"
	"google.golang.org/protobuf/proto"
)

// priorityTlRuntime 优先通行信号灯运行时数据结构
// 功能：在固定相位状态之外记录抢占状态，包括被服务车辆、目标放行轴
// 与是否在等待切入目标绿灯
type priorityTlRuntime struct {
	tl           *mapv2.TrafficLight
	tlStep       int32
	tlTotalTime  float64
	tlRemainingT float64

	active       bool        // 是否处于抢占状态
	vehicleID    int32       // 正在服务的应急车辆ID
	axis         entity.Axis // 目标放行轴
	pendingGreen bool        // 黄灯过渡中，到期后切入目标绿灯
}

// priorityTrafficLight 应急车辆优先通行信号灯控制器
// 功能：在固定相位程序的基础上响应进口道上的应急车辆，
// 通过延长当前绿灯或插入黄灯过渡提前切换到目标绿灯实现优先通行
type priorityTrafficLight struct {
	ctx entity.ITaskContext

	JunctionID int32
	lanes      []entity.ILaneTrafficLightSetter // 受控的路口内车道
	approaches []entity.ILaneApproachReader     // 进口道，用于检测应急车辆
	cfg        config.Priority

	timeBeforeChange [][]float64
	snapshot         priorityTlRuntime
	runtime          priorityTlRuntime
	buffer           *priorityTlRuntime
	ok               bool
	okBuffer         bool

	processed map[int32]struct{} // 已服务过的应急车辆，不重复触发
}

// NewPriorityTrafficLight 创建应急车辆优先通行信号灯控制器
// 参数：ctx-任务上下文，junctionID-路口ID，lanes-路口内车道，
// approaches-进口道，cfg-优先通行参数
func NewPriorityTrafficLight(
	ctx entity.ITaskContext,
	junctionID int32,
	lanes []entity.ILaneTrafficLightSetter,
	approaches []entity.ILaneApproachReader,
	cfg config.Priority,
) *priorityTrafficLight {
	return &priorityTrafficLight{
		ctx:        ctx,
		JunctionID: junctionID,
		lanes:      lanes,
		approaches: approaches,
		cfg:        cfg,
		ok:         true,
		okBuffer:   true,
		processed:  make(map[int32]struct{}),
	}
}

// Prepare 准备阶段，写入snapshot并把当前相位的灯色写入车道
func (l *priorityTrafficLight) Prepare() {
	l.ok = l.okBuffer
	l.snapshot = l.runtime
	if l.snapshot.tl == nil || !l.ok {
		for _, lane := range l.lanes {
			lane.SetLight(mapv2.LightState_LIGHT_STATE_GREEN, mathutil.INF, mathutil.INF)
		}
	} else {
		p := l.snapshot.tl.Phases[l.snapshot.tlStep]
		for i, lane := range l.lanes {
			lane.SetLight(
				p.States[i],
				l.snapshot.tlTotalTime+l.timeBeforeChange[i][l.snapshot.tlStep],
				l.snapshot.tlRemainingT+l.timeBeforeChange[i][l.snapshot.tlStep],
			)
		}
	}
}

// Update 更新阶段，执行优先通行算法的核心逻辑
// 参数：dt-时间步长
// 算法说明：
// 1. 处理buffer中的新程序设置
// 2. 抢占状态下检查被服务车辆是否已通过或离开，是则提前恢复
// 3. 非抢占状态下扫描进口道检测范围内未服务过的应急车辆，
//    取距停车线最近者触发抢占
// 4. 相位到期时：过渡黄灯结束切入目标绿灯（加长时长）；
//    加长绿灯结束恢复正常相位循环
func (l *priorityTrafficLight) Update(dt float64) {
	if l.buffer != nil {
		l.runtime = *l.buffer
		l.buffer = nil
		if l.runtime.tl != nil {
			l.timeBeforeChange = timeBeforeChangeTable(l.runtime.tl, len(l.lanes))
		}
	}
	if l.runtime.tl == nil || !l.ok {
		return
	}

	l.runtime.tlRemainingT -= dt

	if l.runtime.active {
		if !l.stillApproaching(l.runtime.vehicleID) {
			l.releaseEarly()
		}
	} else if obs, found := l.bestCandidate(); found {
		l.activate(obs)
	}

	if l.runtime.tlRemainingT <= 0 {
		if l.runtime.pendingGreen {
			// 黄灯过渡结束，切入目标轴的加长绿灯
			l.runtime.pendingGreen = false
			l.runtime.tlStep = GreenPhaseOf(l.runtime.axis)
			l.runtime.tlTotalTime = l.cfg.EmergencyGreen
			l.runtime.tlRemainingT = l.cfg.EmergencyGreen
			log.Debugf("junction %d: enter priority green %s for vehicle %d",
				l.JunctionID, PhaseName(l.runtime.tlStep), l.runtime.vehicleID)
		} else {
			if l.runtime.active {
				// 加长绿灯走完，车辆仍未通过也恢复正常循环
				log.Infof("junction %d: priority green expired, vehicle %d, resume program",
					l.JunctionID, l.runtime.vehicleID)
				l.runtime.active = false
				l.runtime.vehicleID = 0
			}
			l.runtime.tlRemainingT = 0
			l.runtime.tlTotalTime = 0
			for {
				l.runtime.tlStep = (l.runtime.tlStep + 1) % int32(len(l.runtime.tl.Phases))
				l.runtime.tlRemainingT += l.runtime.tl.Phases[l.runtime.tlStep].Duration
				if l.runtime.tlRemainingT > 0 {
					l.runtime.tlTotalTime = l.runtime.tlRemainingT
					break
				}
			}
		}
	}
}

// bestCandidate 扫描进口道，选出检测范围内距停车线最近的未服务应急车辆
// 说明：多个方向同时出现应急车辆时距离最近者优先，保证结果确定
func (l *priorityTrafficLight) bestCandidate() (entity.VehicleObservation, bool) {
	heap := container.NewPriorityQueue[entity.VehicleObservation]()
	for _, approach := range l.approaches {
		for _, obs := range approach.ApproachingVehicles() {
			if !obs.Emergency || obs.Distance > l.cfg.DetectionDistance {
				continue
			}
			if _, done := l.processed[obs.ID]; done {
				continue
			}
			heap.Push(obs, obs.Distance)
		}
	}
	if heap.Len() == 0 {
		return entity.VehicleObservation{}, false
	}
	heap.Heapify()
	obs, _ := heap.HeapPop()
	return obs, true
}

// activate 触发抢占
// 算法说明：
//   - 目标轴绿灯正在放行：原地延长为加长绿灯
//   - 对向轴绿灯正在放行：立即切入对向黄灯，到期后进入目标绿灯
//   - 黄灯过渡中：不打断黄灯，到期后直接进入目标绿灯
func (l *priorityTrafficLight) activate(obs entity.VehicleObservation) {
	l.processed[obs.ID] = struct{}{}
	l.runtime.active = true
	l.runtime.vehicleID = obs.ID
	l.runtime.axis = obs.Approach.Axis()
	log.Infof("junction %d: emergency vehicle %d detected on %v at %.1fm, priority for %v axis",
		l.JunctionID, obs.ID, obs.Approach, obs.Distance, l.runtime.axis)

	switch l.runtime.tlStep {
	case GreenPhaseOf(l.runtime.axis):
		l.runtime.tlTotalTime = l.cfg.EmergencyGreen
		l.runtime.tlRemainingT = l.cfg.EmergencyGreen
	case GreenPhaseOf(l.runtime.axis.Other()):
		l.runtime.tlStep = YellowPhaseOf(l.runtime.axis.Other())
		l.runtime.tlTotalTime = l.cfg.Yellow
		l.runtime.tlRemainingT = l.cfg.Yellow
		l.runtime.pendingGreen = true
	default:
		l.runtime.pendingGreen = true
	}
}

// releaseEarly 被服务车辆已通过路口或离开进口道，提前恢复正常配时
// 说明：当前相位继续走完，但剩余时间不超过程序中该相位的配时
func (l *priorityTrafficLight) releaseEarly() {
	log.Infof("junction %d: vehicle %d passed, release priority",
		l.JunctionID, l.runtime.vehicleID)
	l.runtime.active = false
	l.runtime.vehicleID = 0
	l.runtime.pendingGreen = false
	duration := l.runtime.tl.Phases[l.runtime.tlStep].Duration
	if l.runtime.tlRemainingT > duration {
		l.runtime.tlRemainingT = duration
		l.runtime.tlTotalTime = duration
	}
}

// stillApproaching 检查被服务车辆是否仍在目标轴的进口道上
func (l *priorityTrafficLight) stillApproaching(id int32) bool {
	for _, approach := range l.approaches {
		if approach.Approach().Axis() != l.runtime.axis {
			continue
		}
		if approach.ContainsVehicle(id) {
			return true
		}
	}
	return false
}

// Get 获取当前信号灯程序
func (l *priorityTrafficLight) Get() *mapv2.TrafficLight {
	return l.snapshot.tl
}

// Set 设置信号灯程序
// 说明：程序设置延迟到下一个更新周期生效，并清空抢占状态
func (l *priorityTrafficLight) Set(tl *mapv2.TrafficLight) error {
	if err := checkProgram(l.JunctionID, len(l.lanes), tl); err != nil {
		return err
	}
	tl = proto.Clone(tl).(*mapv2.TrafficLight)
	l.buffer = &priorityTlRuntime{
		tl: tl, tlStep: 0, tlTotalTime: tl.Phases[0].Duration, tlRemainingT: tl.Phases[0].Duration,
	}
	return nil
}

// Unset 取消信号灯程序，使信号灯变为全绿灯状态
func (l *priorityTrafficLight) Unset() {
	l.buffer = &priorityTlRuntime{}
}

// SetPhase 设置当前相位索引和剩余时间
func (l *priorityTrafficLight) SetPhase(offset int32, remainingT float64) {
	if l.runtime.tl == nil {
		return
	}
	if l.buffer != nil {
		l.buffer.tlStep = offset
		l.buffer.tlRemainingT = remainingT
	} else {
		l.buffer = &priorityTlRuntime{
			tl: l.runtime.tl, tlStep: offset, tlTotalTime: remainingT, tlRemainingT: remainingT,
		}
	}
}

// SetOk 设置信号灯的开关状态，false表示失效（全绿灯）
func (l *priorityTrafficLight) SetOk(ok bool) {
	l.okBuffer = ok
}

// Step 获取当前相位索引
func (l *priorityTrafficLight) Step() int32 {
	return l.snapshot.tlStep
}

// RemainingTime 获取当前相位剩余时间
func (l *priorityTrafficLight) RemainingTime() float64 {
	return l.snapshot.tlRemainingT
}

// Ok 获取信号灯是否正常工作
func (l *priorityTrafficLight) Ok() bool {
	return l.ok
}

// Preempting 获取是否处于抢占状态
func (l *priorityTrafficLight) Preempting() bool {
	return l.snapshot.active
}

// ProcessedCount 获取已服务过的应急车辆数量
func (l *priorityTrafficLight) ProcessedCount() int {
	return len(l.processed)
}
