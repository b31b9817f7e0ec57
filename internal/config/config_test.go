package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SOURCES", "")
	t.Setenv("PG_HOST", "")

	cfg, err := Load()
	require.NoError(t, err)

	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, "source_2", cfg.Sources[0].ID)
	assert.Equal(t, "real_estate_db_source_3", cfg.Sources[1].Database)
	assert.Equal(t, "file", cfg.Mapping.Store)
	assert.Equal(t, 0.8, cfg.Mapping.MatchThreshold)
	assert.Equal(t, 0.85, cfg.Dedup.FieldThreshold)
	assert.Equal(t, 2, cfg.Dedup.MinMatchingFields)
	assert.False(t, cfg.Dedup.SkipUnknownKeys)
	assert.Equal(t, 100, cfg.Search.PerSourceLimit)
}

func TestLoad_PerSourceOverrides(t *testing.T) {
	t.Setenv("SOURCES", "source_2, magicbricks ,")
	t.Setenv("SOURCE_2_DSN", "postgres://u:p@db:5432/s2?sslmode=disable")
	t.Setenv("MAGICBRICKS_PG_HOST", "mb-host")
	t.Setenv("MAGICBRICKS_PG_PORT", "6543")

	cfg, err := Load()
	require.NoError(t, err)
	require.Len(t, cfg.Sources, 2)

	s2, ok := cfg.Source("source_2")
	require.True(t, ok)
	assert.Equal(t, "postgres://u:p@db:5432/s2?sslmode=disable", s2.GetDSN())

	mb, ok := cfg.Source("magicbricks")
	require.True(t, ok)
	assert.Equal(t,
		"host=mb-host port=6543 user=postgres password= dbname=real_estate_db_magicbricks sslmode=disable",
		mb.GetDSN())

	_, ok = cfg.Source("missing")
	assert.False(t, ok)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("bad numbers fall back to defaults", func(t *testing.T) {
		t.Setenv("DEDUP_MIN_MATCHING_FIELDS", "two")
		t.Setenv("DEDUP_SKIP_UNKNOWN_KEYS", "maybe")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 2, cfg.Dedup.MinMatchingFields)
		assert.False(t, cfg.Dedup.SkipUnknownKeys)
	})

	t.Run("unknown mapping store", func(t *testing.T) {
		t.Setenv("MAPPING_STORE", "redis")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("threshold out of range", func(t *testing.T) {
		t.Setenv("COLUMN_MATCH_THRESHOLD", "1.5")
		_, err := Load()
		assert.Error(t, err)
	})
}
