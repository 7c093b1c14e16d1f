package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_CollectsErrors(t *testing.T) {
	v := NewValidator().
		Field("brief", "", Required).
		Field("code", "X9", CriterionCode)

	require.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 2)
	assert.ErrorContains(t, v.Error(), "brief")
	assert.ErrorContains(t, v.Error(), "criterion code")
}

func TestValidator_CleanInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brief.pdf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	v := NewValidator().
		Field("brief", path, Required, FileExists).
		Field("code", "m3", CriterionCode)

	assert.False(t, v.HasErrors())
	assert.NoError(t, v.Error())
}

func TestFileExists_RejectsDirectory(t *testing.T) {
	err := FileExists("brief", t.TempDir())
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "existing file")
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("OPENAI_TEMPERATURE", "0.2")
	t.Setenv("OPENAI_TIMEOUT", "90s")

	cfg := LoadConfig()

	assert.Equal(t, "gpt-4o", cfg.Grader.Model)
	assert.InDelta(t, 0.2, float64(cfg.Grader.Temperature), 1e-6)
	assert.Equal(t, "90s", cfg.Grader.Timeout.String())
}

func TestConfigValidate_RequiresAPIKey(t *testing.T) {
	cfg := &Config{Grader: GraderConfig{Model: "gpt-4o"}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
