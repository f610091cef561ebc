package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePort(t *testing.T) {
	assert.NoError(t, ValidatePort(49152))
	assert.NoError(t, ValidatePort(65535))
	assert.NoError(t, ValidatePort(50051))

	assert.Error(t, ValidatePort(49151))
	assert.Error(t, ValidatePort(65536))
	assert.Error(t, ValidatePort(0))
}

func TestLoadAppliesDefaultsWithNoConfigFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path")
	assert.NoError(t, err)
	assert.Equal(t, 100, cfg.MaxDepth)
	assert.Equal(t, 4, cfg.BookWorkers)
	assert.Equal(t, 4, cfg.MatchWorkers)
	assert.Equal(t, ":50051", cfg.GRPCAddr)
}
