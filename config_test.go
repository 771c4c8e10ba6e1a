package sqle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-sqlexpr.v0/sql/analyzer"
)

func TestParseConfig(t *testing.T) {
	require := require.New(t)

	cfg, err := ParseConfig("test", []byte(`
debug: true
use_calc: true
max_iterations: 10
`))
	require.NoError(err)
	require.Equal(&Config{
		Debug:         true,
		Validate:      true,
		UseCalc:       true,
		MaxIterations: 10,
		PlanCacheSize: DefaultConfig().PlanCacheSize,
	}, cfg)

	require.Equal(analyzer.Config{
		Debug:         true,
		Validate:      true,
		UseCalc:       true,
		MaxIterations: 10,
	}, cfg.analyzerConfig())
}

func TestParseConfigErrors(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{"unknown field", "use_calcs: true"},
		{"wrong type", "max_iterations: many"},
		{"not a map", "- debug"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig("test", []byte(tt.data))
			require.Error(t, err)
			require.True(t, ErrInvalidConfig.Is(err))
		})
	}
}

func TestLoadConfig(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(os.WriteFile(path, []byte("validate: false\nplan_cache_size: 2\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(err)
	require.False(cfg.Validate)
	require.Equal(2, cfg.PlanCacheSize)
	require.Equal(analyzer.DefaultMaxIterations, cfg.MaxIterations)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.True(os.IsNotExist(err))
}
