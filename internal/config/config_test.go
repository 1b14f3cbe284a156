package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerem-kaynak/authorname/pkg/authorname"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, "truncate", cfg.Parser.ParticleMode)
	assert.Equal(t, "likelihood", cfg.Parser.Scoring)
	assert.Equal(t, authorname.CacheSize, cfg.Parser.CacheSize)
	assert.True(t, cfg.Parser.CommaSplit)
	assert.True(t, cfg.Parser.StripFamilySuffixes)
	assert.Equal(t, "names.db", cfg.Store.Path)
	assert.Equal(t, 4, cfg.Train.Workers)
	assert.False(t, cfg.Log.JSON)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "namesplit.yaml")
	content := `
parser:
  particle_mode: lenient
  scoring: share
  cache_size: 0
store:
  path: /tmp/other.db
train:
  workers: 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "lenient", cfg.Parser.ParticleMode)
	assert.Equal(t, "share", cfg.Parser.Scoring)
	assert.Equal(t, 0, cfg.Parser.CacheSize)
	assert.Equal(t, "/tmp/other.db", cfg.Store.Path)
	assert.Equal(t, 8, cfg.Train.Workers)
	assert.True(t, cfg.Parser.CommaSplit, "unset keys keep their defaults")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("NAMESPLIT_STORE_PATH", "env.db")
	t.Setenv("NAMESPLIT_PARSER_PARTICLE_MODE", "reject")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.Store.Path)
	assert.Equal(t, "reject", cfg.Parser.ParticleMode)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Parser: ParserConfig{ParticleMode: "truncate", Scoring: "likelihood"},
			Train:  TrainConfig{Workers: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"bad particle mode", func(c *Config) { c.Parser.ParticleMode = "loose" }, true},
		{"bad scoring", func(c *Config) { c.Parser.Scoring = "bayes" }, true},
		{"negative cache", func(c *Config) { c.Parser.CacheSize = -1 }, true},
		{"zero workers", func(c *Config) { c.Train.Workers = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParserOptions(t *testing.T) {
	cfg := Config{
		Parser: ParserConfig{
			ParticleMode:    "lenient",
			Scoring:         "share",
			CacheSize:       10,
			CommaSplit:      false,
			FirstTokenGiven: true,
		},
	}

	opts, err := cfg.ParserOptions()
	require.NoError(t, err)
	assert.Equal(t, authorname.ParticleLenient, opts.ParticleMode)
	assert.Equal(t, authorname.ScoreShare, opts.Scoring)
	assert.True(t, opts.Cache)
	assert.Equal(t, 10, opts.CacheSize)
	assert.False(t, opts.CommaSplit)
	assert.False(t, opts.StripFamilySuffixes)
	assert.NotNil(t, opts.Fallback)

	cfg.Parser.CacheSize = 0
	opts, err = cfg.ParserOptions()
	require.NoError(t, err)
	assert.False(t, opts.Cache)
}
