package detector

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var csvHeader = []string{"run_id", "step", "t", "detector", "vehicle_id", "class", "v"}

// Manager 检测器管理器
// 功能：维护所有断面检测器，把过线记录写入CSV文件与MongoDB
type Manager struct {
	ctx entity.ITaskContext

	detectors []*Detector

	csvFile   *os.File
	csvWriter *csv.Writer

	mongoClient *mongo.Client
	mongoColl   *mongo.Collection
	mongoBuffer []any
}

// NewManager 创建检测器管理器
func NewManager(ctx entity.ITaskContext) *Manager {
	return &Manager{ctx: ctx}
}

// Init 根据路网配置初始化检测器与输出
// 说明：输出配置缺失时检测器只检测不落盘；MongoDB连接失败按
// 启动错误处理
func (m *Manager) Init(network *config.Network, laneManager entity.ILaneManager) {
	for _, spec := range network.Detectors {
		approach, err := entity.ApproachFromString(spec.Approach)
		if err != nil {
			log.Panicf("detector %s: %v", spec.Name, err)
		}
		lane, err := laneManager.FindApproachLane(approach, spec.Lane)
		if err != nil {
			log.Panicf("detector %s: %v", spec.Name, err)
		}
		position := spec.Position
		if position < 0 {
			// 负值表示从停车线回退的距离
			position += lane.Length()
		}
		if position < 0 || position > lane.Length() {
			log.Panicf("detector %s: position %.1f out of lane [0, %.1f]", spec.Name, spec.Position, lane.Length())
		}
		m.detectors = append(m.detectors, &Detector{
			name:     spec.Name,
			lane:     lane,
			position: position,
		})
	}
	out := m.ctx.RuntimeConfig().All.Output
	if out == nil || out.Detector == nil {
		log.Debugf("detector: init %d detectors without output", len(m.detectors))
		return
	}
	if out.Detector.File != "" {
		f, err := os.Create(out.Detector.File)
		if err != nil {
			log.Panicf("detector: create output file: %v", err)
		}
		m.csvFile = f
		m.csvWriter = csv.NewWriter(f)
		if err := m.csvWriter.Write(csvHeader); err != nil {
			log.Panicf("detector: write output file: %v", err)
		}
	}
	if out.Detector.URI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(out.Detector.URI))
		if err != nil {
			log.Panicf("detector: connect mongodb: %v", err)
		}
		m.mongoClient = client
		m.mongoColl = client.Database(out.Detector.DB).Collection(out.Detector.Col)
	}
	log.Debugf("detector: init %d detectors", len(m.detectors))
}

// Update 更新阶段，扫描所有检测器并写出过线记录
// 说明：必须在车辆更新之后调用，读取的是本步的运动区间
func (m *Manager) Update(dt float64) {
	clock := m.ctx.Clock()
	for _, d := range m.detectors {
		records := d.scan(m.ctx.RunID(), clock.InternalStep, clock.T)
		for _, r := range records {
			log.Debugf("detector %s: vehicle %d (%s) passes at %.1fm/s", r.Detector, r.VehicleID, r.Class, r.V)
			if m.csvWriter != nil {
				if err := m.csvWriter.Write(recordToRow(r)); err != nil {
					log.Errorf("detector: write output file: %v", err)
				}
			}
			if m.mongoColl != nil {
				m.mongoBuffer = append(m.mongoBuffer, r)
			}
		}
	}
}

// Close 冲刷并关闭所有输出
func (m *Manager) Close() error {
	if m.csvWriter != nil {
		m.csvWriter.Flush()
		if err := m.csvWriter.Error(); err != nil {
			return fmt.Errorf("detector: flush output file: %w", err)
		}
		if err := m.csvFile.Close(); err != nil {
			return fmt.Errorf("detector: close output file: %w", err)
		}
	}
	if m.mongoColl != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if len(m.mongoBuffer) > 0 {
			if _, err := m.mongoColl.InsertMany(ctx, m.mongoBuffer); err != nil {
				return fmt.Errorf("detector: insert records: %w", err)
			}
			log.Infof("detector: %d records written to mongodb", len(m.mongoBuffer))
		}
		if err := m.mongoClient.Disconnect(ctx); err != nil {
			return fmt.Errorf("detector: disconnect mongodb: %w", err)
		}
	}
	return nil
}

// recordToRow 把过线记录转换为CSV行
func recordToRow(r Record) []string {
	return []string{
		r.RunID,
		strconv.Itoa(int(r.Step)),
		strconv.FormatFloat(r.T, 'f', 1, 64),
		r.Detector,
		strconv.Itoa(int(r.VehicleID)),
		r.Class,
		strconv.FormatFloat(r.V, 'f', 2, 64),
	}
}
