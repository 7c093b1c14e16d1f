package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenEmpty(t *testing.T) {
	s := NewMemoryStore()
	p, err := Load(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	p := Default()
	p.Readiness.MinExtractedChars = 500
	p.Scoring.ModalityMissingCap = 0.5
	p.Equations.FallbackEnabled = false
	require.NoError(t, Save(ctx, s, p))

	got, err := Load(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 500, got.Readiness.MinExtractedChars)
	assert.Equal(t, 0.5, got.Scoring.ModalityMissingCap)
	assert.False(t, got.Equations.FallbackEnabled)
	// untouched fields keep defaults
	assert.Equal(t, Default().Automation.AutoConfidenceThreshold, got.Automation.AutoConfidenceThreshold)
}

func TestLoad_CorruptDocumentFallsBack(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "policy", "{not json"))

	p, err := Load(ctx, s)
	assert.Error(t, err)
	assert.Equal(t, Default(), p)
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "policy.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", "v1"))
	require.NoError(t, s.Set(ctx, "k", "v2")) // upsert

	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestLoadFile_Overlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	content := "readiness:\n  min_extracted_chars: 350\nscoring:\n  modality_missing_cap: 0.6\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	p, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 350, p.Readiness.MinExtractedChars)
	assert.Equal(t, 0.6, p.Scoring.ModalityMissingCap)
	assert.Equal(t, Default().Equations.MaxFallbackCandidates, p.Equations.MaxFallbackCandidates)
}
