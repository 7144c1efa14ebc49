package config

import (
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/spf13/viper"

	"github.com/mptyl/thoth-sqlgen/pkg/llm"
)

// Server holds the HTTP surface settings.
type Server struct {
	Mode string `mapstructure:"mode" default:"dev"`
	Port int    `mapstructure:"port" default:"8080"`
}

// Concurrency holds the fan-out bounds applied to parallel SQL
// generation, test execution and comment-generation jobs.
type Concurrency struct {
	MaxParallelSQLs  int `mapstructure:"max_parallel_sqls" default:"12"`
	MaxParallelTests int `mapstructure:"max_parallel_tests" default:"3"`
	CommentChunkSize int `mapstructure:"comment_chunk_size" default:"10"`
	NumWorkers       int `mapstructure:"num_workers" default:"4"`
}

// Model is one provider-routed model slot, normalized into an
// llm.ModelSpec by ToModelSpec.
type Model struct {
	Provider    string   `mapstructure:"provider"`
	ModelID     string   `mapstructure:"model_id"`
	APIKey      string   `mapstructure:"api_key"`
	BaseURL     string   `mapstructure:"base_url"`
	Temperature *float64 `mapstructure:"temperature"`
}

// Models names every model slot a Workspace may bind an agent to,
// plus the dedicated comment-generation model.
type Models struct {
	Default Model `mapstructure:"default"`
	Comment Model `mapstructure:"comment"`
}

// ToModelSpec normalizes a Model into the llm facade's provider-agnostic
// ModelSpec.
func (m Model) ToModelSpec() llm.ModelSpec {
	return llm.ModelSpec{
		Provider:    m.Provider,
		ModelID:     m.ModelID,
		APIKey:      m.APIKey,
		BaseURL:     m.BaseURL,
		Temperature: m.Temperature,
	}
}

// VectorStore holds the default vector-backend connection coordinates
// used when a Workspace doesn't declare its own VectorDb.
type VectorStore struct {
	Backend string `mapstructure:"backend" default:"SQLiteVec"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	APIKey  string `mapstructure:"api_key"`
	Tenant  string `mapstructure:"tenant"`
	DSN     string `mapstructure:"dsn"`
}

// Database holds the root path convention the SQLite DB adapter uses.
type Database struct {
	RootPath string `mapstructure:"root_path" default:"data"`
}

// Config is the single top-level configuration struct every
// `cmd/sqlgenctl` subcommand loads.
type Config struct {
	Server      Server      `mapstructure:"server"`
	Concurrency Concurrency `mapstructure:"concurrency"`
	Models      Models      `mapstructure:"models"`
	VectorStore VectorStore `mapstructure:"vector_store"`
	Database    Database    `mapstructure:"database"`

	LogLevel  string `mapstructure:"log_level" default:"info"`
	LogFormat string `mapstructure:"log_format" default:"console"`

	StorePath string `mapstructure:"store_path" default:"data/thoth.db"`

	SessionTTL time.Duration `mapstructure:"session_ttl" default:"30m"`
}

// Load reads configuration from an optional YAML file at path (may be
// empty), environment variables prefixed THOTH_, and finally applies
// creasty/defaults for any field left unset by either source, using a
// single mapstructure-tagged struct that viper populates directly.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("THOTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var bindEnv func(t reflect.Type, prefix string)
	bindEnv = func(t reflect.Type, prefix string) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			key := prefix + f.Tag.Get("mapstructure")
			if f.Type.Kind() == reflect.Struct {
				bindEnv(f.Type, key+".")
			} else {
				_ = v.BindEnv(key)
			}
		}
	}
	bindEnv(reflect.TypeOf(Config{}), "")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := defaults.Set(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
