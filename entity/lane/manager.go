package lane

import (
	"fmt"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/entity"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/config"
)

// 路口内车道长度，对应单点十字路口的冲突区尺寸
const junctionLaneLength = 30.0

// Manager 车道管理器
// 功能：根据路网配置生成车道并串联进口道-路口内车道-出口道
type Manager struct {
	ctx entity.ITaskContext

	data          map[int32]*Lane
	lanes         []*Lane
	approachLanes []*Lane // 进口道
	junctionLanes []*Lane // 路口内车道
}

// NewManager 创建车道管理器
func NewManager(ctx entity.ITaskContext) *Manager {
	return &Manager{
		ctx:  ctx,
		data: make(map[int32]*Lane),
	}
}

// Init 根据路网配置构造全部车道
// 算法说明：
//  1. 每个进口道方向生成Lanes条进口道；
//  2. 为每条进口道生成一条直行的路口内车道和对向出口道；
//  3. 按进口道→路口内车道→出口道设置后继关系
func (m *Manager) Init(network *config.Network) {
	nextID := int32(1)
	newLaneAndRegister := func(init laneInit) *Lane {
		init.id = nextID
		nextID++
		l := newLane(m.ctx, init)
		m.data[l.id] = l
		m.lanes = append(m.lanes, l)
		return l
	}
	for _, spec := range network.Approaches {
		approach, err := entity.ApproachFromString(spec.Direction)
		if err != nil {
			log.Panicf("lane: bad approach in network config: %v", err)
		}
		if spec.Lanes <= 0 {
			log.Panicf("lane: approach %s has no lanes", spec.Direction)
		}
		for offset := 0; offset < spec.Lanes; offset++ {
			in := newLaneAndRegister(laneInit{
				approach:  approach,
				offset:    offset,
				length:    spec.Length,
				maxV:      spec.MaxSpeed,
				emergency: offset == spec.EmergencyLane,
			})
			mid := newLaneAndRegister(laneInit{
				approach:   approach,
				offset:     offset,
				length:     junctionLaneLength,
				maxV:       spec.MaxSpeed,
				inJunction: true,
			})
			out := newLaneAndRegister(laneInit{
				approach: approach,
				offset:   offset,
				length:   spec.ExitLength,
				maxV:     spec.MaxSpeed,
				isExit:   true,
			})
			in.SetSuccessorWhenInit(mid)
			mid.SetSuccessorWhenInit(out)
			m.approachLanes = append(m.approachLanes, in)
			m.junctionLanes = append(m.junctionLanes, mid)
		}
	}
	log.Debugf("lane: init %d lanes (%d approach, %d junction)",
		len(m.lanes), len(m.approachLanes), len(m.junctionLanes))
}

// Get 获取指定ID的Lane，无效ID返回nil
func (m *Manager) Get(id int32) entity.ILane {
	if l, ok := m.data[id]; ok {
		return l
	}
	return nil
}

// GetOrError 获取指定ID的Lane，无效ID返回错误
func (m *Manager) GetOrError(id int32) (entity.ILane, error) {
	if l, ok := m.data[id]; ok {
		return l, nil
	}
	return nil, fmt.Errorf("lane: no lane with id %d", id)
}

// FindApproachLane 按方向和偏移量查找进口道
func (m *Manager) FindApproachLane(approach entity.Approach, offset int) (entity.ILane, error) {
	for _, l := range m.approachLanes {
		if l.approach == approach && l.offset == offset {
			return l, nil
		}
	}
	return nil, fmt.Errorf("lane: no approach lane at %v offset %d", approach, offset)
}

// ApproachLanes 获取全部进口道
func (m *Manager) ApproachLanes() []entity.ILane {
	return lo.Map(m.approachLanes, func(l *Lane, _ int) entity.ILane { return l })
}

// JunctionLanes 获取全部路口内车道
func (m *Manager) JunctionLanes() []entity.ILane {
	return lo.Map(m.junctionLanes, func(l *Lane, _ int) entity.ILane { return l })
}

// Prepare 准备阶段第一步，应用所有车道的移除缓冲
func (m *Manager) Prepare() {
	parallel.GoFor(m.lanes, func(l *Lane) { l.prepare() })
}

// Prepare2 准备阶段第二步，应用所有车道的插入缓冲
// 说明：必须在Prepare之后调用，保证跨车道移动的节点已脱离原链表
func (m *Manager) Prepare2() {
	parallel.GoFor(m.lanes, func(l *Lane) { l.prepare2() })
}

// Update 更新阶段
func (m *Manager) Update() {
	parallel.GoFor(m.lanes, func(l *Lane) { l.update() })
}
