package input_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/input"
)

const networkYaml = `
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
    emergency_lane: 0
detectors:
  - name: north_in
    approach: north
    lane: 0
    position: 150
`

const flowsYaml = `
flows:
  - name: bg_north
    vehicle_type: car
    approach: north
    lane: 1
    begin: 0
    end: 3600
    period: 8
    jitter: 2
  - name: ambulance
    vehicle_type: emergency
    approach: north
    lane: 0
    begin: 120
    end: 120
    period: 0
`

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestInitFromFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{
		Input: config.Input{
			Network: config.InputPath{File: writeFile(t, dir, "cross.yml", networkYaml)},
			Flows:   config.InputPath{File: writeFile(t, dir, "flows.yml", flowsYaml)},
		},
	}
	res := input.Init(cfg)
	require.NotNil(t, res.Network)
	assert.Equal(t, int32(1), res.Network.Junction.ID)
	assert.Len(t, res.Network.Approaches, 2)
	assert.Equal(t, 0, res.Network.Approaches[1].EmergencyLane)
	assert.Len(t, res.Network.Detectors, 1)
	require.Len(t, res.Flows, 2)
	assert.Equal(t, "emergency", res.Flows[1].VehicleType)
	assert.Equal(t, 0.0, res.Flows[1].Period)
}

func TestInitMissingNetwork(t *testing.T) {
	assert.Panics(t, func() {
		input.Init(config.Config{})
	})
}

func TestInitBadNetwork(t *testing.T) {
	dir := t.TempDir()
	bad := `
junction:
  id: 1
  name: cross
approaches:
  - direction: north
    lanes: 2
    length: -1
    exit_length: 200
    max_speed: 16.67
    emergency_lane: -1
`
	cfg := config.Config{
		Input: config.Input{
			Network: config.InputPath{File: writeFile(t, dir, "cross.yml", bad)},
		},
	}
	assert.Panics(t, func() { input.Init(cfg) })
}

func TestInitUnknownFieldRejected(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{
		Input: config.Input{
			Network: config.InputPath{File: writeFile(t, dir, "cross.yml", networkYaml + "\nunknown_field: 1\n")},
		},
	}
	assert.Panics(t, func() { input.Init(cfg) })
}
