// 提供单点十字路口的信号灯程序与相位工具
package trafficlight

import (
	"git.fiblab.net/general/common/v2/mathutil"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity"
)

// 十字路口四相位程序的相位索引
const (
	PhaseNSGreen  int32 = 0 // 南北直行绿灯
	PhaseNSYellow int32 = 1 // 南北黄灯
	PhaseEWGreen  int32 = 2 // 东西直行绿灯
	PhaseEWYellow int32 = 3 // 东西黄灯

	NumPhases = 4
)

// PhaseName 获取相位的可读名称
func PhaseName(step int32) string {
	switch step {
	case PhaseNSGreen:
		return "NS_GREEN"
	case PhaseNSYellow:
		return "NS_YELLOW"
	case PhaseEWGreen:
		return "EW_GREEN"
	case PhaseEWYellow:
		return "EW_YELLOW"
	default:
		return "UNKNOWN"
	}
}

// GreenPhaseOf 获取指定放行轴的绿灯相位索引
func GreenPhaseOf(axis entity.Axis) int32 {
	if axis == entity.AxisNS {
		return PhaseNSGreen
	}
	return PhaseEWGreen
}

// YellowPhaseOf 获取指定放行轴的黄灯相位索引
func YellowPhaseOf(axis entity.Axis) int32 {
	if axis == entity.AxisNS {
		return PhaseNSYellow
	}
	return PhaseEWYellow
}

// AxisOfGreenPhase 获取绿灯相位对应的放行轴，非绿灯相位返回false
func AxisOfGreenPhase(step int32) (entity.Axis, bool) {
	switch step {
	case PhaseNSGreen:
		return entity.AxisNS, true
	case PhaseEWGreen:
		return entity.AxisEW, true
	default:
		return entity.AxisNS, false
	}
}

// BuildCrossProgram 构造十字路口的四相位信号灯程序
// 功能：按NS绿-NS黄-EW绿-EW黄的顺序为每条路口内车道生成相位状态
// 参数：junctionID-路口ID，axes-各车道的放行轴（与lanes顺序一致），
// green-绿灯时长，yellow-黄灯时长
// 返回：可直接交给信控模块执行的信号灯程序
func BuildCrossProgram(junctionID int32, axes []entity.Axis, green, yellow float64) *mapv2.TrafficLight {
	numLanes := len(axes)
	states := func(greenAxis entity.Axis, isYellow bool) []mapv2.LightState {
		out := make([]mapv2.LightState, numLanes)
		for i, axis := range axes {
			if axis != greenAxis {
				out[i] = mapv2.LightState_LIGHT_STATE_RED
			} else if isYellow {
				out[i] = mapv2.LightState_LIGHT_STATE_YELLOW
			} else {
				out[i] = mapv2.LightState_LIGHT_STATE_GREEN
			}
		}
		return out
	}
	return &mapv2.TrafficLight{
		JunctionId: junctionID,
		Phases: []*mapv2.TrafficLightPhase{
			{Duration: green, States: states(entity.AxisNS, false)},
			{Duration: yellow, States: states(entity.AxisNS, true)},
			{Duration: green, States: states(entity.AxisEW, false)},
			{Duration: yellow, States: states(entity.AxisEW, true)},
		},
	}
}

// timeBeforeChangeTable 计算每条车道在每个相位下距下一次灯色变化的附加时间
// 功能：相位切换时不一定所有车道的灯色都变，写入车道的总时长与剩余时间
// 需要加上后续灯色不变的相位时长
// 算法说明：对每条车道从后往前累加灯色相同的相邻相位时长，并处理首尾
// 相位灯色相同时的环回；所有相位灯色都相同的车道记为无穷大
func timeBeforeChangeTable(tl *mapv2.TrafficLight, numLanes int) [][]float64 {
	numPhases := len(tl.Phases)
	table := make([][]float64, 0, numLanes)
	for laneIndex := 0; laneIndex < numLanes; laneIndex++ {
		time := make([]float64, numPhases)
		allTheSame := true
		lastState := tl.Phases[numPhases-1].States[laneIndex]
		for phaseIndex := numPhases - 2; phaseIndex >= 0; phaseIndex-- {
			state := tl.Phases[phaseIndex+1].States[laneIndex]
			if state == lastState {
				time[phaseIndex] = time[phaseIndex+1] + tl.Phases[phaseIndex+1].Duration
			} else {
				allTheSame = false
			}
			lastState = state
		}
		if allTheSame {
			for idx := range time {
				time[idx] = mathutil.INF
			}
		} else {
			// 首相位与末相位灯色相同时，末尾的时间要环回加上首相位的时间
			t0 := time[0] + tl.Phases[0].Duration
			lastState = tl.Phases[numPhases-1].States[laneIndex]
			if lastState == tl.Phases[0].States[laneIndex] {
				for phaseIndex := numPhases - 1; phaseIndex >= 0; phaseIndex-- {
					if lastState != tl.Phases[phaseIndex].States[laneIndex] {
						break
					}
					time[phaseIndex] += t0
				}
			}
		}
		table = append(table, time)
	}
	return table
}
