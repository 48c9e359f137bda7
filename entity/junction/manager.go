package junction

import (
	"fmt"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/config"
)

// Manager 路口管理器
type Manager struct {
	ctx entity.ITaskContext

	data      map[int32]*Junction
	junctions []*Junction
}

// NewManager 创建路口管理器
func NewManager(ctx entity.ITaskContext) *Manager {
	return &Manager{
		ctx:  ctx,
		data: make(map[int32]*Junction),
	}
}

// Init 根据路网配置初始化路口
// 说明：路口内车道与进口道由车道管理器预先生成
func (m *Manager) Init(network *config.Network, laneManager entity.ILaneManager) {
	j, err := newJunction(m.ctx, network.Junction, laneManager.JunctionLanes(), laneManager.ApproachLanes())
	if err != nil {
		log.Panicf("junction: init failed: %v", err)
	}
	m.data[j.id] = j
	m.junctions = append(m.junctions, j)
	log.Debugf("junction: init junction %d with %d controlled lanes", j.id, len(j.lanes))
}

// Get 获取指定ID的Junction，无效ID返回nil
func (m *Manager) Get(id int32) entity.IJunction {
	if j, ok := m.data[id]; ok {
		return j
	}
	return nil
}

// GetOrError 获取指定ID的Junction，无效ID返回错误
func (m *Manager) GetOrError(id int32) (entity.IJunction, error) {
	if j, ok := m.data[id]; ok {
		return j, nil
	}
	return nil, fmt.Errorf("junction: no junction with id %d", id)
}

// Prepare 准备阶段，更新所有路口的信号灯输出
func (m *Manager) Prepare() {
	parallel.GoFor(m.junctions, func(j *Junction) { j.prepare() })
}

// Update 更新阶段，推进所有路口的信号灯
func (m *Manager) Update(dt float64) {
	parallel.GoFor(m.junctions, func(j *Junction) { j.update(dt) })
}
