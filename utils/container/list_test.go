package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/container"
)

type testData struct {
	v, length float64
}

func (t testData) V() float64 {
	return t.v
}

func (t testData) Length() float64 {
	return t.length
}

func newNode(s float64) *container.ListNode[testData, struct{}] {
	return &container.ListNode[testData, struct{}]{
		S:     s,
		Value: testData{v: 1, length: 5},
	}
}

func TestListInit(t *testing.T) {
	l := container.NewList[testData, struct{}]("test")
	assert.Nil(t, l.First())
	assert.Nil(t, l.Last())
	assert.Equal(t, 0, l.Len())
}

func TestListInsertAndTraverse(t *testing.T) {
	l := container.NewList[testData, struct{}]("test")

	// ^, 1, ^
	n1 := newNode(1)
	l.PushBack(n1)
	// ^, 2, 1, ^
	n2 := newNode(2)
	l.PushFront(n2)
	// ^, 3, 2, 1, ^
	n3 := newNode(3)
	n2.InsertBefore(n3)
	// ^, 3, 2, 1, 4, ^
	n4 := newNode(4)
	n1.InsertAfter(n4)
	assert.Equal(t, 4, l.Len())
	assert.Equal(t, []float64{3, 2, 1, 4}, l.Keys())

	n := l.First()
	assert.Equal(t, n3, n)
	assert.Equal(t, n2, n.Next())
	assert.Equal(t, n2, n2.Next().Prev())
	assert.Equal(t, n4, l.Last())
	assert.Equal(t, l, n1.Parent())
}

func TestListRemove(t *testing.T) {
	l := container.NewList[testData, struct{}]("test")
	n1, n2, n3 := newNode(1), newNode(2), newNode(3)
	l.PushBack(n1)
	l.PushBack(n2)
	l.PushBack(n3)

	l.Remove(n2)
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, []float64{1, 3}, l.Keys())
	assert.Nil(t, n2.Parent())

	l.Remove(n1)
	l.Remove(n3)
	assert.Equal(t, 0, l.Len())
	assert.Nil(t, l.First())
	assert.Nil(t, l.Last())
}

func TestListPopUnsortedAndMerge(t *testing.T) {
	l := container.NewList[testData, struct{}]("test")
	n1, n2, n3, n4 := newNode(10), newNode(20), newNode(30), newNode(40)
	l.PushBack(n1)
	l.PushBack(n2)
	l.PushBack(n3)
	l.PushBack(n4)

	// 模拟车辆移动后链表局部失序
	n2.S = 35
	n4.S = 5
	unsorted := l.PopUnsorted()
	assert.Len(t, unsorted, 2)
	l.Merge(unsorted)
	assert.Equal(t, []float64{5, 10, 30, 35}, l.Keys())
	assert.Equal(t, 4, l.Len())
}

func TestListDoubleInsertPanics(t *testing.T) {
	l := container.NewList[testData, struct{}]("test")
	n1 := newNode(1)
	l.PushBack(n1)
	assert.Panics(t, func() { l.PushBack(n1) })
	assert.Panics(t, func() { l.PushFront(n1) })

	other := container.NewList[testData, struct{}]("other")
	assert.Panics(t, func() { other.Remove(n1) })
}
