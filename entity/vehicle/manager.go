package vehicle

import (
	"fmt"
	"sync"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/container"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/randengine"
)

// flowSpawner 车流发车器
// 功能：按配置的时段与车头时距向进口道投放车辆
type flowSpawner struct {
	spec      config.FlowSpec
	class     entity.VehicleClass
	attr      Attribute
	lane      entity.ILane
	engine    *randengine.Engine
	nextT     float64 // 下一次发车时间
	exhausted bool    // 发车时段已结束
}

// Manager 车辆管理器
type Manager struct {
	ctx entity.ITaskContext

	vehicles *container.IncrementalArray[*Vehicle]
	data     map[int32]*Vehicle
	dataMtx  sync.RWMutex
	spawners []*flowSpawner
	nextID   int32
}

// NewManager 创建车辆管理器
func NewManager(ctx entity.ITaskContext) *Manager {
	return &Manager{
		ctx:      ctx,
		vehicles: container.NewIncrementalArray[*Vehicle](),
		data:     make(map[int32]*Vehicle),
		nextID:   1,
	}
}

// Init 根据车流配置初始化发车器
// 说明：发车间隔扰动使用以车流序号为种子的独立随机数引擎，
// 同一配置下发车序列可复现
func (m *Manager) Init(flows []config.FlowSpec, laneManager entity.ILaneManager) {
	for i, spec := range flows {
		class, err := entity.VehicleClassFromString(spec.VehicleType)
		if err != nil {
			log.Panicf("vehicle: flow %s: %v", spec.Name, err)
		}
		approach, err := entity.ApproachFromString(spec.Approach)
		if err != nil {
			log.Panicf("vehicle: flow %s: %v", spec.Name, err)
		}
		lane, err := laneManager.FindApproachLane(approach, spec.Lane)
		if err != nil {
			log.Panicf("vehicle: flow %s: %v", spec.Name, err)
		}
		attr := defaultAttribute(class)
		if spec.MaxSpeed > 0 {
			attr.MaxV = spec.MaxSpeed
		}
		m.spawners = append(m.spawners, &flowSpawner{
			spec:   spec,
			class:  class,
			attr:   attr,
			lane:   lane,
			engine: randengine.New(uint64(i)),
			nextT:  spec.Begin,
		})
	}
	log.Debugf("vehicle: init %d flows", len(m.spawners))
}

// GetOrError 获取指定ID的车辆，无效ID返回错误
func (m *Manager) GetOrError(id int32) (entity.IVehicle, error) {
	m.dataMtx.RLock()
	defer m.dataMtx.RUnlock()
	if v, ok := m.data[id]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("vehicle: no vehicle with id %d", id)
}

// Count 获取当前在网车辆数
func (m *Manager) Count() int32 {
	return int32(m.vehicles.Len())
}

// Prepare 准备阶段
// 功能：应用车辆数组的增删缓冲，写入所有车辆的snapshot
func (m *Manager) Prepare() {
	m.vehicles.Prepare()
	parallel.GoFor(m.vehicles.Data(), func(v *Vehicle) { v.prepare() })
}

// Update 更新阶段
// 功能：推进所有车辆的运动，移除已驶出路网的车辆，并按车流配置发车
// 参数：dt-时间步长
func (m *Manager) Update(dt float64) {
	parallel.GoFor(m.vehicles.Data(), func(v *Vehicle) { v.update(dt) })
	for _, v := range m.vehicles.Data() {
		if v.done && !v.removed {
			v.removed = true
			m.vehicles.Remove(v)
			m.dataMtx.Lock()
			delete(m.data, v.id)
			m.dataMtx.Unlock()
			log.Debugf("vehicle %d (%v) leaves the network", v.id, v.class)
		}
	}
	m.spawn()
}

// spawn 按车流配置投放车辆
// 算法说明：
// 1. 到达发车时间且进口道入口有空位时投放，入口被占用则推迟到下一步
// 2. 发车间隔为period加上[-jitter, jitter)内的随机扰动
// 3. period为0的车流只发一辆车（用于投放单个应急车辆）
func (m *Manager) spawn() {
	t := m.ctx.Clock().T
	for _, f := range m.spawners {
		if f.exhausted || t < f.nextT {
			continue
		}
		if f.spec.End > 0 && f.nextT > f.spec.End {
			f.exhausted = true
			continue
		}
		if !entryClear(f.lane, f.attr) {
			continue
		}
		v := newVehicle(m.ctx, m.nextID, f.class, f.attr, f.lane)
		m.nextID++
		m.vehicles.Add(v)
		m.dataMtx.Lock()
		m.data[v.id] = v
		m.dataMtx.Unlock()
		if v.IsEmergency() {
			log.Infof("vehicle: emergency vehicle %d enters on %v lane %d (flow %s)",
				v.id, f.lane.Approach(), f.lane.Offset(), f.spec.Name)
		}
		if f.spec.Period <= 0 {
			f.exhausted = true
			continue
		}
		f.nextT += f.spec.Period
		if f.spec.Jitter > 0 {
			f.nextT += f.engine.Uniform(-f.spec.Jitter, f.spec.Jitter)
		}
	}
}

// entryClear 检查进口道入口是否有投放空间
func entryClear(lane entity.ILane, attr Attribute) bool {
	first := lane.FirstVehicle()
	if first == nil {
		return true
	}
	return first.S-first.L() > attr.MinGap
}
