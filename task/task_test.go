package task

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/config"
)

const testNetworkYaml = `
junction:
  id: 1
  name: cross
approaches:
  - direction: north
    lanes: 2
    length: 200
    exit_length: 200
    max_speed: 16.67
    emergency_lane: -1
  - direction: south
    lanes: 2
    length: 200
    exit_length: 200
    max_speed: 16.67
    emergency_lane: -1
  - direction: east
    lanes: 2
    length: 200
    exit_length: 200
    max_speed: 16.67
    emergency_lane: -1
  - direction: west
    lanes: 2
    length: 200
    exit_length: 200
    max_speed: 16.67
    emergency_lane: -1
detectors:
  - name: north_in
    approach: north
    lane: 0
    position: -50
`

const testFlowsYaml = `
flows:
  - name: bg_east
    vehicle_type: car
    approach: east
    lane: 1
    begin: 0
    end: 300
    period: 10
  - name: ambulance
    vehicle_type: emergency
    approach: north
    lane: 0
    begin: 30
    end: 30
    period: 0
    max_speed: 22.22
`

func writeTestInput(t *testing.T) (string, string, string) {
	dir := t.TempDir()
	network := filepath.Join(dir, "cross.yml")
	flows := filepath.Join(dir, "flows.yml")
	require.NoError(t, os.WriteFile(network, []byte(testNetworkYaml), 0o644))
	require.NoError(t, os.WriteFile(flows, []byte(testFlowsYaml), 0o644))
	return dir, network, flows
}

func TestRunWithPriorityControl(t *testing.T) {
	dir, network, flows := writeTestInput(t)
	detectorOut := filepath.Join(dir, "detector.csv")
	c := config.Config{
		Input: config.Input{
			Network: config.InputPath{File: network},
			Flows:   config.InputPath{File: flows},
		},
		Control: config.Control{
			Step:     config.ControlStep{Start: 0, Total: 3000, Interval: 0.1},
			Priority: &config.Priority{},
		},
		Output: &config.Output{
			Detector: &config.DetectorOutput{File: detectorOut},
		},
	}
	ctx := NewContext("test", false, c)
	ctx.Run()
	require.NoError(t, ctx.Close())

	// 救护车被服务并通过路口
	j := ctx.mainJunction()
	assert.Equal(t, int32(1), j.ProcessedCount())
	assert.False(t, j.Preempting())

	// 检测器记录了救护车过线
	data, err := os.ReadFile(detectorOut)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Greater(t, len(lines), 1)
	assert.Contains(t, lines[0], "vehicle_id")
	assert.Contains(t, string(data), "emergency")
}

func TestRunWithFixedControl(t *testing.T) {
	_, network, flows := writeTestInput(t)
	c := config.Config{
		Input: config.Input{
			Network: config.InputPath{File: network},
			Flows:   config.InputPath{File: flows},
		},
		Control: config.Control{
			Step: config.ControlStep{Start: 0, Total: 600, Interval: 0.1},
		},
	}
	ctx := NewContext("test", false, c)
	ctx.Run()
	require.NoError(t, ctx.Close())

	// 没有priority配置段时按固定周期运行，不服务应急车辆
	j := ctx.mainJunction()
	require.True(t, j.HasTrafficLight())
	assert.Equal(t, int32(0), j.ProcessedCount())
}
