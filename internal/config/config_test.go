package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weasel/internal/evo"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "METHINKS IT IS LIKE A WEASEL", cfg.Target)
	assert.Equal(t, 100, cfg.Offspring)
	assert.Equal(t, 0.05, cfg.MutationRate)
	assert.Len(t, cfg.Alphabet, 53)
	require.NoError(t, cfg.Validate())
}

func TestLoadYAMLOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weasel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
target: CAT
offspring: 200
mutation_rate: 0.3
store:
  kind: sqlite
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "CAT", cfg.Target)
	assert.Equal(t, 200, cfg.Offspring)
	assert.Equal(t, 0.3, cfg.MutationRate)
	assert.Equal(t, "sqlite", cfg.Store.Kind)
	assert.Equal(t, "weasel.db", cfg.Store.DBPath)
	assert.Equal(t, DefaultAlphabet, cfg.Alphabet)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weasel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("offspring: [nope"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestLoadDistinguishesMissingAndZeroGenerationCap(t *testing.T) {
	dir := t.TempDir()
	uncapped := filepath.Join(dir, "uncapped.yaml")
	require.NoError(t, os.WriteFile(uncapped, []byte("target: CAT\n"), 0o644))
	capped := filepath.Join(dir, "capped.yaml")
	require.NoError(t, os.WriteFile(capped, []byte("max_generations: 0\n"), 0o644))

	cfg, err := Load(uncapped)
	require.NoError(t, err)
	assert.Nil(t, cfg.MaxGenerations)

	cfg, err = Load(capped)
	require.NoError(t, err)
	require.NotNil(t, cfg.MaxGenerations)
	assert.Equal(t, 0, *cfg.MaxGenerations)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "weasel.yaml")
	cfg := DefaultConfig()
	cfg.Target = "HELLO"
	limit := 10
	cfg.MaxGenerations = &limit
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("valid values", func(t *testing.T) {
		t.Setenv("WEASEL_TARGET", "DOG")
		t.Setenv("WEASEL_OFFSPRING", "7")
		t.Setenv("WEASEL_MUTATION_RATE", "0.5")
		t.Setenv("WEASEL_LOG_LEVEL", "debug")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "DOG", cfg.Target)
		assert.Equal(t, 7, cfg.Offspring)
		assert.Equal(t, 0.5, cfg.MutationRate)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("out of range mutation rate", func(t *testing.T) {
		t.Setenv("WEASEL_MUTATION_RATE", "1.5")

		_, err := Load("")
		var rangeErr *evo.RangeError
		assert.ErrorAs(t, err, &rangeErr)
	})

	t.Run("zero generation cap is kept", func(t *testing.T) {
		t.Setenv("WEASEL_MAX_GENERATIONS", "0")

		cfg, err := Load("")
		require.NoError(t, err)
		require.NotNil(t, cfg.MaxGenerations)
		assert.Equal(t, 0, *cfg.MaxGenerations)
	})

	t.Run("bad offspring", func(t *testing.T) {
		t.Setenv("WEASEL_OFFSPRING", "many")

		_, err := Load("")
		assert.ErrorContains(t, err, "WEASEL_OFFSPRING")
	})
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MutationRate = -0.1
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Offspring = 0
	assert.ErrorContains(t, cfg.Validate(), "offspring")

	cfg = DefaultConfig()
	negative := -1
	cfg.MaxGenerations = &negative
	assert.ErrorContains(t, cfg.Validate(), "max generations")

	cfg = DefaultConfig()
	cfg.Alphabet = ""
	assert.ErrorIs(t, cfg.Validate(), evo.ErrEmptyAlphabet)
}
