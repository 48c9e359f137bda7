package trafficlight

import (
	"fmt"

	"git.fiblab.net/general/common/v2/mathutil"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity"
	"google.golang.org/protobuf/proto"
)

// fixedTlRuntime 固定相位信号灯运行时数据结构
type fixedTlRuntime struct {
	tl           *mapv2.TrafficLight
	tlStep       int32
	tlTotalTime  float64
	tlRemainingT float64
}

// fixedTrafficLight 固定相位信号灯控制器
// 功能：按照预设的相位顺序与时长循环切换，不响应路况
type fixedTrafficLight struct {
	ctx entity.ITaskContext

	JunctionID int32                            // 所属junction ID
	lanes      []entity.ILaneTrafficLightSetter // 受控的路口内车道

	timeBeforeChange [][]float64     // 每条车道下一次灯色变化的附加时间
	snapshot         fixedTlRuntime  // snapshot，用于保存输出的数据
	runtime          fixedTlRuntime  // 运行时数据
	buffer           *fixedTlRuntime // 数据buffer，程序写入延迟到下个更新周期生效
	ok               bool            // 信号灯状态，true为开启，false为关闭
	okBuffer         bool
}

// NewFixedTrafficLight 创建固定相位信号灯控制器
func NewFixedTrafficLight(ctx entity.ITaskContext, junctionID int32, lanes []entity.ILaneTrafficLightSetter) *fixedTrafficLight {
	return &fixedTrafficLight{
		ctx:        ctx,
		JunctionID: junctionID,
		lanes:      lanes,
		ok:         true,
		okBuffer:   true,
	}
}

// Prepare 准备阶段
// 功能：写入snapshot并把当前相位的灯色与切换时间写入车道
// 说明：没有信号灯程序或信号灯关闭时保持全绿
func (l *fixedTrafficLight) Prepare() {
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

// Update 更新阶段
// 功能：推进相位剩余时间，到期后按程序顺序切换到下一相位
// 参数：dt-时间步长
func (l *fixedTrafficLight) Update(dt float64) {
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
	if l.runtime.tlRemainingT <= 0 {
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

// Get 获取当前信号灯程序，没有程序则返回nil
func (l *fixedTrafficLight) Get() *mapv2.TrafficLight {
	return l.snapshot.tl
}

// Set 设置信号灯程序
// 说明：程序设置延迟到下一个更新周期生效，从首相位开始执行；
// 保存程序的副本，调用方后续修改不影响运行中的程序
func (l *fixedTrafficLight) Set(tl *mapv2.TrafficLight) error {
	if err := checkProgram(l.JunctionID, len(l.lanes), tl); err != nil {
		return err
	}
	tl = proto.Clone(tl).(*mapv2.TrafficLight)
	l.buffer = &fixedTlRuntime{
		tl: tl, tlStep: 0, tlTotalTime: tl.Phases[0].Duration, tlRemainingT: tl.Phases[0].Duration,
	}
	return nil
}

// Unset 取消信号灯程序，使信号灯变为全绿灯状态
func (l *fixedTrafficLight) Unset() {
	l.buffer = &fixedTlRuntime{}
}

// SetPhase 设置当前相位索引和剩余时间
// 说明：相位设置延迟到下一个更新周期生效
func (l *fixedTrafficLight) SetPhase(offset int32, remainingT float64) {
	if l.runtime.tl == nil {
		return
	}
	if l.buffer != nil {
		l.buffer.tlStep = offset
		l.buffer.tlRemainingT = remainingT
	} else {
		l.buffer = &fixedTlRuntime{
			tl: l.runtime.tl, tlStep: offset, tlTotalTime: remainingT, tlRemainingT: remainingT,
		}
	}
}

// SetOk 设置信号灯的开关状态，false表示失效（全绿灯）
func (l *fixedTrafficLight) SetOk(ok bool) {
	l.okBuffer = ok
}

// Step 获取当前相位索引
func (l *fixedTrafficLight) Step() int32 {
	return l.snapshot.tlStep
}

// RemainingTime 获取当前相位剩余时间
func (l *fixedTrafficLight) RemainingTime() float64 {
	return l.snapshot.tlRemainingT
}

// Ok 获取信号灯是否正常工作
func (l *fixedTrafficLight) Ok() bool {
	return l.ok
}

// Preempting 固定相位控制器不支持优先通行，始终返回false
func (l *fixedTrafficLight) Preempting() bool {
	return false
}

// ProcessedCount 固定相位控制器不支持优先通行，始终返回0
func (l *fixedTrafficLight) ProcessedCount() int {
	return 0
}

// checkProgram 校验信号灯程序与路口车道的匹配性
func checkProgram(junctionID int32, numLanes int, tl *mapv2.TrafficLight) error {
	if tl.JunctionId != junctionID {
		return fmt.Errorf("set junction %d with wrong traffic light id %d", junctionID, tl.JunctionId)
	}
	if len(tl.Phases) == 0 {
		return fmt.Errorf("set with empty traffic light")
	}
	for _, p := range tl.Phases {
		if len(p.States) != numLanes {
			return fmt.Errorf("number of lanes %d and traffic light states %d does not match", numLanes, len(p.States))
		}
	}
	return nil
}
