package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/evpriority-sim-oss/utils/config"
	"gopkg.in/yaml.v2"
)

func TestNewRuntimeConfigDefaults(t *testing.T) {
	rc := config.NewRuntimeConfig(config.Config{})
	assert.Equal(t, config.DefaultStepInterval, rc.C.Step.Interval)
	assert.False(t, rc.PriorityEnabled)
	// 优先信控未启用时参数仍然填默认值，固定相位程序的配时也从这里取
	assert.Equal(t, float64(config.DefaultNormalGreen), rc.P.NormalGreen)
	assert.Equal(t, float64(config.DefaultYellow), rc.P.Yellow)
}

func TestNewRuntimeConfigPriority(t *testing.T) {
	rc := config.NewRuntimeConfig(config.Config{
		Control: config.Control{
			Priority: &config.Priority{EmergencyGreen: 30},
		},
	})
	assert.True(t, rc.PriorityEnabled)
	assert.Equal(t, 30.0, rc.P.EmergencyGreen)
	assert.Equal(t, float64(config.DefaultDetectionDistance), rc.P.DetectionDistance)
}

func TestConfigYaml(t *testing.T) {
	data := `
input:
  uri: ""
  network:
    file: cross.yml
  flows:
    file: flows.yml
control:
  step:
    start: 0
    total: 1000
    interval: 0.1
  priority:
    detection_distance: 50
output:
  detector:
    file: out.csv
`
	var c config.Config
	require.NoError(t, yaml.UnmarshalStrict([]byte(data), &c))
	assert.Equal(t, "cross.yml", c.Input.Network.File)
	assert.Equal(t, int32(1000), c.Control.Step.Total)
	require.NotNil(t, c.Control.Priority)
	assert.Equal(t, 50.0, c.Control.Priority.DetectionDistance)
	require.NotNil(t, c.Output)
	assert.Equal(t, "out.csv", c.Output.Detector.File)

	// 未知字段在严格模式下报错
	assert.Error(t, yaml.UnmarshalStrict([]byte("unknown: 1"), &c))
}
