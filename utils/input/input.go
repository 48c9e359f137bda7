package input

import (
	"context"
	"os"

	"git.fiblab.net/general/common/v2/mongoutil"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/yaml.v2"
)

// Input 输入数据
// 功能：存储仿真所需的路网与车流数据
// 说明：支持从YAML文件或MongoDB加载，文件路径优先级高于MongoDB
type Input struct {
	Network *config.Network
	Flows   []config.FlowSpec
}

// Init 加载输入数据
// 功能：根据配置加载路网与车流并校验
// 算法说明：
// 1. 如果配置了MongoDB连接则建立连接
// 2. 路网加载：文件优先，否则从MongoDB的单文档加载
// 3. 车流加载：文件优先，否则从MongoDB按文档逐条加载；车流配置
//    整体缺省时允许没有车流（空路网运行）
// 4. 数据校验：路网与车流的取值非法时直接报错退出
func Init(cfg config.Config) *Input {
	var client *mongo.Client
	if cfg.Input.URI != "" {
		client = mongoutil.NewClient(cfg.Input.URI)
		defer client.Disconnect(context.Background())
	}

	res := &Input{}

	// 路网
	if cfg.Input.Network.File != "" {
		var network config.Network
		loadYamlFile(cfg.Input.Network.File, &network)
		res.Network = &network
	} else if client != nil {
		var network config.Network
		coll := mongoutil.GetMongoColl(client, cfg.Input.Network)
		if err := coll.FindOne(context.Background(), bson.M{}).Decode(&network); err != nil {
			log.Panicf("failed to load network from mongodb: %v", err)
		}
		res.Network = &network
	} else {
		log.Panicf("no network input: set input.network.file or input.uri")
	}

	// 车流
	if cfg.Input.Flows.File != "" {
		var flows config.Flows
		loadYamlFile(cfg.Input.Flows.File, &flows)
		res.Flows = flows.Flows
	} else if client != nil && cfg.Input.Flows.Col != "" {
		coll := mongoutil.GetMongoColl(client, cfg.Input.Flows)
		cursor, err := coll.Find(context.Background(), bson.M{})
		if err != nil {
			log.Panicf("failed to load flows from mongodb: %v", err)
		}
		if err := cursor.All(context.Background(), &res.Flows); err != nil {
			log.Panicf("failed to decode flows from mongodb: %v", err)
		}
	} else {
		log.Warnf("no flow input, simulation runs with an empty network")
	}

	validate(res)
	log.Infof("input: %d approaches, %d detectors, %d flows",
		len(res.Network.Approaches), len(res.Network.Detectors), len(res.Flows))
	return res
}

// loadYamlFile 从YAML文件加载并严格校验字段
func loadYamlFile(path string, out any) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Panicf("failed to read %s: %v", path, err)
	}
	if err := yaml.UnmarshalStrict(data, out); err != nil {
		log.Panicf("failed to parse %s: %v", path, err)
	}
}

// validate 校验输入数据
func validate(in *Input) {
	if len(in.Network.Approaches) == 0 {
		log.Panicf("network has no approaches")
	}
	directions := lo.Map(in.Network.Approaches, func(a config.ApproachSpec, _ int) string { return a.Direction })
	if len(lo.Uniq(directions)) != len(directions) {
		log.Panicf("network has duplicate approach directions %v", directions)
	}
	for _, a := range in.Network.Approaches {
		if a.Length <= 0 || a.ExitLength <= 0 {
			log.Panicf("approach %s has non-positive lane length", a.Direction)
		}
		if a.MaxSpeed <= 0 {
			log.Panicf("approach %s has non-positive max speed", a.Direction)
		}
		if a.EmergencyLane >= a.Lanes {
			log.Panicf("approach %s emergency lane %d out of range [0, %d)", a.Direction, a.EmergencyLane, a.Lanes)
		}
	}
	for _, f := range in.Flows {
		if f.Begin < 0 || (f.End > 0 && f.End < f.Begin) {
			log.Panicf("flow %s has bad time range [%f, %f]", f.Name, f.Begin, f.End)
		}
		if f.Period < 0 || f.Jitter < 0 {
			log.Panicf("flow %s has negative period or jitter", f.Name)
		}
	}
}
