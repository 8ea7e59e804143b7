package tcfr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		NumBuckets: []int{3, 3, 3, 3},
		RegretCap:  2_000_000_000,
		NumThreads: 1,
		BatchSize:  1,
		Explore:    0.05,
	}
}

func TestConfigValidateAcceptsDefaults(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestConfigValidateRejectsBadFields(t *testing.T) {
	c := validConfig()
	c.NumThreads = 0
	require.Error(t, c.Validate())

	c = validConfig()
	c.BatchSize = 0
	require.Error(t, c.Validate())

	c = validConfig()
	c.RegretCap = 0
	require.Error(t, c.Validate())

	c = validConfig()
	c.NumBuckets = []int{-1}
	require.Error(t, c.Validate())

	c = validConfig()
	c.Explore = 1.5
	require.Error(t, c.Validate())
}

func TestRegretWidthSelection(t *testing.T) {
	c := &Config{
		QuantizedStreets:      []bool{true, false, false},
		ShortQuantizedStreets: []bool{false, true, false},
	}
	require.Equal(t, 1, c.regretWidth(0))
	require.Equal(t, 2, c.regretWidth(1))
	require.Equal(t, 4, c.regretWidth(2))
}

func TestPoolSizeDefaultsWhenUnset(t *testing.T) {
	c := &Config{}
	require.Equal(t, DefaultPoolSize, c.poolSize())
	c.PoolSize = 42
	require.Equal(t, 42, c.poolSize())
}
