package config

// InputPath 指定输入数据来源的配置（MongoDB、文件系统）
// 功能：定义数据输入路径的配置结构，支持多种数据源
// 说明：文件路径优先级高于MongoDB
type InputPath struct {
	DB   string `yaml:"db"`             // 数据库名
	Col  string `yaml:"col"`            // 集合名
	File string `yaml:"file,omitempty"` // 文件路径（优先级高于MongoDB）
}

// GetDb 获取数据库名
func (p InputPath) GetDb() string {
	return p.DB
}

// GetColl 获取集合名
func (p InputPath) GetColl() string {
	return p.Col
}

// Input 指定模拟器所有输入数据的配置项
// 功能：定义仿真系统的所有输入数据配置
// 说明：包含路网与车流两类输入数据的配置
type Input struct {
	URI     string    `yaml:"uri"`             // MongoDB连接字符串
	Network InputPath `yaml:"network"`         // 路网
	Flows   InputPath `yaml:"flows,omitempty"` // 车流
}

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
// 功能：定义仿真时间控制参数
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔
}

// Priority 应急车辆优先信控配置
// 功能：定义应急车辆优先控制的检测与相位时长参数
// 说明：配置项缺省时在RuntimeConfig中填入默认值；整个段缺省则仅运行固定周期信控
type Priority struct {
	DetectionDistance float64 `yaml:"detection_distance,omitempty"` // 检测距离（米）
	NormalGreen       float64 `yaml:"normal_green,omitempty"`       // 普通绿灯时长（秒）
	EmergencyGreen    float64 `yaml:"emergency_green,omitempty"`    // 应急绿灯时长（秒）
	Yellow            float64 `yaml:"yellow,omitempty"`             // 黄灯时长（秒）
}

// Control 模拟器控制配置
// 功能：定义仿真系统的核心控制参数
type Control struct {
	Step     ControlStep `yaml:"step"`
	Priority *Priority   `yaml:"priority,omitempty"` // 应急车辆优先信控，缺省则只按固定周期运行
}

// DetectorOutput 检测器日志输出配置
// 功能：定义线圈检测器过车记录的输出目标
// 说明：文件输出与MongoDB输出可同时开启
type DetectorOutput struct {
	File string `yaml:"file,omitempty"` // CSV文件路径
	URI  string `yaml:"uri,omitempty"`  // MongoDB连接字符串
	DB   string `yaml:"db,omitempty"`   // 数据库名
	Col  string `yaml:"col,omitempty"`  // 集合名
}

// Output 模拟器输出配置
type Output struct {
	Detector *DetectorOutput `yaml:"detector,omitempty"` // 检测器日志
}

// Config YAML配置文件的根结构
// 功能：定义整个仿真系统的配置结构
type Config struct {
	Input   Input   `yaml:"input"`            // 输入
	Control Control `yaml:"control"`          // 模拟过程控制
	Output  *Output `yaml:"output,omitempty"` // 输出
}
