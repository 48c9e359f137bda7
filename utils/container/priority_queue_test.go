package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/container"
)

func TestPriorityQueue(t *testing.T) {
	q := container.NewPriorityQueue[string]()
	assert.Equal(t, 0, q.Len())

	q.Push("far", 50)
	q.Push("near", 10)
	q.Push("middle", 30)
	q.Heapify()
	assert.Equal(t, 3, q.Len())

	v, p := q.HeapPop()
	assert.Equal(t, "near", v)
	assert.Equal(t, 10.0, p)

	q.HeapPush("nearest", 5)
	v, _ = q.HeapPop()
	assert.Equal(t, "nearest", v)
	v, _ = q.HeapPop()
	assert.Equal(t, "middle", v)
	v, _ = q.HeapPop()
	assert.Equal(t, "far", v)
	assert.Equal(t, 0, q.Len())
}
