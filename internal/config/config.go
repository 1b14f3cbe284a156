// Package config loads namesplit settings from defaults, an optional YAML
// file and NAMESPLIT_* environment variables, in increasing precedence.
package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/kerem-kaynak/authorname/pkg/authorname"
)

// EnvPrefix prefixes every environment override, e.g. NAMESPLIT_STORE_PATH.
const EnvPrefix = "NAMESPLIT"

// Config is the full set of namesplit settings.
type Config struct {
	Parser ParserConfig `mapstructure:"parser"`
	Rules  RulesConfig  `mapstructure:"rules"`
	Store  StoreConfig  `mapstructure:"store"`
	Train  TrainConfig  `mapstructure:"train"`
	Log    LogConfig    `mapstructure:"log"`
}

// ParserConfig holds the parser settings under "parser".
type ParserConfig struct {
	ParticleMode        string `mapstructure:"particle_mode"`
	Scoring             string `mapstructure:"scoring"`
	CacheSize           int    `mapstructure:"cache_size"`
	CommaSplit          bool   `mapstructure:"comma_split"`
	StripFamilySuffixes bool   `mapstructure:"strip_family_suffixes"`
	FirstTokenGiven     bool   `mapstructure:"first_token_given"`
}

// RulesConfig locates an extra rule table.
type RulesConfig struct {
	// Path names a YAML rule table merged over the built-in one.
	Path string `mapstructure:"path"`
}

// StoreConfig locates the frequency store.
type StoreConfig struct {
	// Path is the SQLite frequency database.
	Path string `mapstructure:"path"`
	// Snapshot, when set, serves queries from a read-only FST file instead.
	Snapshot string `mapstructure:"snapshot"`
}

// TrainConfig tunes corpus training.
type TrainConfig struct {
	Workers int `mapstructure:"workers"`
}

// LogConfig selects log format and level.
type LogConfig struct {
	JSON  bool   `mapstructure:"json"`
	Level string `mapstructure:"level"`
}

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("parser.particle_mode", "truncate")
	v.SetDefault("parser.scoring", "likelihood")
	v.SetDefault("parser.cache_size", authorname.CacheSize) // 0 disables the cache
	v.SetDefault("parser.comma_split", true)
	v.SetDefault("parser.strip_family_suffixes", true)
	v.SetDefault("parser.first_token_given", false)

	v.SetDefault("rules.path", "")

	v.SetDefault("store.path", "names.db")
	v.SetDefault("store.snapshot", "")

	v.SetDefault("train.workers", 4)

	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")
}

// New returns a viper instance with defaults and environment binding.
// path, if not empty, is read as a YAML config file.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
	}
	return v, nil
}

// Load reads the configuration, with path as an optional YAML file.
func Load(path string) (*Config, error) {
	v, err := New(path)
	if err != nil {
		return nil, err
	}
	return LoadWithViper(v)
}

// LoadWithViper decodes and validates the settings held by v.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if _, err := authorname.ParseParticleMode(c.Parser.ParticleMode); err != nil {
		return errors.Wrap(err, "parser.particle_mode")
	}
	if _, err := authorname.ParseScoring(c.Parser.Scoring); err != nil {
		return errors.Wrap(err, "parser.scoring")
	}
	if c.Parser.CacheSize < 0 {
		return errors.Newf("parser.cache_size must be >= 0, got %d", c.Parser.CacheSize)
	}
	if c.Train.Workers < 1 {
		return errors.WithHint(
			errors.Newf("train.workers must be >= 1, got %d", c.Train.Workers),
			"set NAMESPLIT_TRAIN_WORKERS or train.workers in the config file")
	}
	return nil
}

// ParserOptions converts the parser settings to an authorname.Config.
// Rules, Store and Logger are left for the caller.
func (c *Config) ParserOptions() (authorname.Config, error) {
	mode, err := authorname.ParseParticleMode(c.Parser.ParticleMode)
	if err != nil {
		return authorname.Config{}, err
	}
	scoring, err := authorname.ParseScoring(c.Parser.Scoring)
	if err != nil {
		return authorname.Config{}, err
	}

	out := authorname.DefaultConfig()
	out.ParticleMode = mode
	out.Scoring = scoring
	out.Cache = c.Parser.CacheSize > 0
	out.CacheSize = c.Parser.CacheSize
	out.CommaSplit = c.Parser.CommaSplit
	out.StripFamilySuffixes = c.Parser.StripFamilySuffixes
	if c.Parser.FirstTokenGiven {
		out.Fallback = authorname.FirstTokenGiven
	}
	return out, nil
}
