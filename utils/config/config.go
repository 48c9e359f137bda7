package config

// 优先信控与时间步的默认参数
const (
	DefaultStepInterval      = 0.1  // 默认时间步长（秒）
	DefaultDetectionDistance = 50   // 默认检测距离（米）
	DefaultNormalGreen       = 20   // 默认普通绿灯时长（秒）
	DefaultEmergencyGreen    = 25   // 默认应急绿灯时长（秒）
	DefaultYellow            = 3    // 默认黄灯时长（秒）
)

// RuntimeConfig 运行时配置
// 功能：存储仿真运行时的配置信息，包含填充默认值后的优先信控参数
// 说明：将YAML配置转换为运行时可用的配置对象
type RuntimeConfig struct {
	All Config   // 全部配置
	C   Control  // 全局控制配置
	P   Priority // 优先信控配置（已填默认值）

	PriorityEnabled bool // 是否启用应急车辆优先信控
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：创建运行时配置对象，进行配置验证并填充默认值
// 参数：config-原始配置对象
// 返回：初始化的运行时配置指针
// 算法说明：
// 1. 填充时间步长默认值
// 2. 如存在priority段则启用优先信控，并为缺省项填入默认值
func NewRuntimeConfig(config Config) *RuntimeConfig {
	rc := &RuntimeConfig{}

	rc.All = config
	rc.C = config.Control
	if rc.C.Step.Interval <= 0 {
		rc.C.Step.Interval = DefaultStepInterval
	}

	rc.P = Priority{
		DetectionDistance: DefaultDetectionDistance,
		NormalGreen:       DefaultNormalGreen,
		EmergencyGreen:    DefaultEmergencyGreen,
		Yellow:            DefaultYellow,
	}
	if p := config.Control.Priority; p != nil {
		rc.PriorityEnabled = true
		if p.DetectionDistance > 0 {
			rc.P.DetectionDistance = p.DetectionDistance
		}
		if p.NormalGreen > 0 {
			rc.P.NormalGreen = p.NormalGreen
		}
		if p.EmergencyGreen > 0 {
			rc.P.EmergencyGreen = p.EmergencyGreen
		}
		if p.Yellow > 0 {
			rc.P.Yellow = p.Yellow
		}
	}

	return rc
}
