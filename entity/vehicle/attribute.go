package vehicle

import (
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity"
)

// Attribute 车辆的动力学属性
type Attribute struct {
	Length        float64 // 车长（米）
	MaxV          float64 // 最大速度（米/秒）
	MaxA          float64 // 最大加速度（米/秒²）
	UsualBrakingA float64 // 常用制动加速度（米/秒²，负值）
	MaxBrakingA   float64 // 最大制动加速度（米/秒²，负值）
	MinGap        float64 // 最小车距（米）
	Headway       float64 // 安全车头时距（秒）
}

// defaultAttribute 按车辆类型获取默认动力学属性
func defaultAttribute(class entity.VehicleClass) Attribute {
	switch class {
	case entity.VehicleClassEmergency:
		return Attribute{
			Length:        6.5,
			MaxV:          22.22,
			MaxA:          3.5,
			UsualBrakingA: -5.0,
			MaxBrakingA:   -9.0,
			MinGap:        2.0,
			Headway:       1.0,
		}
	default:
		return Attribute{
			Length:        5.0,
			MaxV:          16.67,
			MaxA:          2.6,
			UsualBrakingA: -4.5,
			MaxBrakingA:   -9.0,
			MinGap:        2.5,
			Headway:       1.5,
		}
	}
}
