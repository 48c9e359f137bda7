package config

// 路网与车流的描述结构，作为仿真输入数据的schema
// 同时带有yaml与bson标签，以便从文件或MongoDB加载

// JunctionSpec 路口描述
type JunctionSpec struct {
	ID   int32  `yaml:"id" bson:"id"`     // 路口ID
	Name string `yaml:"name" bson:"name"` // 路口名称
}

// ApproachSpec 进口道描述
// 功能：定义一个方向的进口道路，包括车道数、长度与应急专用车道
// 说明：direction取north/south/east/west之一；emergency_lane为专用车道
// 在道路中的偏移量（最左侧为0），为负表示没有专用车道
type ApproachSpec struct {
	Direction     string  `yaml:"direction" bson:"direction"`           // 方向
	Lanes         int     `yaml:"lanes" bson:"lanes"`                   // 车道数
	Length        float64 `yaml:"length" bson:"length"`                 // 进口道长度（米）
	ExitLength    float64 `yaml:"exit_length" bson:"exit_length"`       // 出口道长度（米）
	MaxSpeed      float64 `yaml:"max_speed" bson:"max_speed"`           // 限速（米/秒）
	EmergencyLane int     `yaml:"emergency_lane" bson:"emergency_lane"` // 应急专用车道偏移量，-1表示无
}

// DetectorSpec 线圈检测器描述
// 说明：position为距车道起点的距离（米）
type DetectorSpec struct {
	Name     string  `yaml:"name" bson:"name"`         // 检测器名称
	Approach string  `yaml:"approach" bson:"approach"` // 所在进口道方向
	Lane     int     `yaml:"lane" bson:"lane"`         // 所在车道偏移量
	Position float64 `yaml:"position" bson:"position"` // 安装位置
}

// Network 路网描述的根结构
// 功能：定义单路口路网，四个方向的进口道经路口内车道连接到对向出口道
type Network struct {
	Junction   JunctionSpec   `yaml:"junction" bson:"junction"`
	Approaches []ApproachSpec `yaml:"approaches" bson:"approaches"`
	Detectors  []DetectorSpec `yaml:"detectors,omitempty" bson:"detectors,omitempty"`
}

// FlowSpec 车流描述
// 功能：定义一条发车车流：车辆类型、进口道、车道、时间范围与发车间隔
// 说明：vehicle_type取car/emergency之一；jitter为发车间隔的随机扰动
// 幅度（秒），用于打散固定间隔发车
type FlowSpec struct {
	Name        string  `yaml:"name" bson:"name"`                             // 车流名称
	VehicleType string  `yaml:"vehicle_type" bson:"vehicle_type"`             // 车辆类型
	Approach    string  `yaml:"approach" bson:"approach"`                     // 进口道方向
	Lane        int     `yaml:"lane" bson:"lane"`                             // 车道偏移量
	Begin       float64 `yaml:"begin" bson:"begin"`                           // 开始时间（秒）
	End         float64 `yaml:"end" bson:"end"`                               // 结束时间（秒）
	Period      float64 `yaml:"period" bson:"period"`                         // 发车间隔（秒）
	Jitter      float64 `yaml:"jitter,omitempty" bson:"jitter,omitempty"`     // 间隔扰动比例
	MaxSpeed    float64 `yaml:"max_speed,omitempty" bson:"max_speed,omitempty"` // 车辆期望速度（缺省取车道限速）
}

// Flows 车流描述的根结构
type Flows struct {
	Flows []FlowSpec `yaml:"flows" bson:"flows"`
}
