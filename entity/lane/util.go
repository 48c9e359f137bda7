package lane

import (
	"sync"

	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/container"
)

// laneList 带缓冲的车道链表
// 功能：车辆Update阶段并发产生的增删请求先入缓冲，Prepare阶段统一生效，
// 保证Update阶段链表只读
type laneList[T container.IHasVAndLength, E any] struct {
	list *container.List[T, E]

	mtx          sync.Mutex
	addBuffer    []*container.ListNode[T, E]
	removeBuffer []*container.ListNode[T, E]
}

func newLaneList[T container.IHasVAndLength, E any](id string) laneList[T, E] {
	return laneList[T, E]{
		list: container.NewList[T, E](id),
	}
}

// add 将节点加入插入缓冲
func (l *laneList[T, E]) add(node *container.ListNode[T, E]) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.addBuffer = append(l.addBuffer, node)
}

// remove 将节点加入移除缓冲
func (l *laneList[T, E]) remove(node *container.ListNode[T, E]) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.removeBuffer = append(l.removeBuffer, node)
}

// applyRemoves 应用移除缓冲
func (l *laneList[T, E]) applyRemoves() {
	for _, node := range l.removeBuffer {
		l.list.Remove(node)
	}
	l.removeBuffer = l.removeBuffer[:0]
}

// applyAdds 应用插入缓冲并按位置重新排序
func (l *laneList[T, E]) applyAdds() {
	for _, node := range l.addBuffer {
		l.list.PushBack(node)
	}
	l.addBuffer = l.addBuffer[:0]
	l.list.Merge(l.list.PopUnsorted())
}
