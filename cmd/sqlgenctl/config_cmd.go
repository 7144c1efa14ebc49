package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configOutPath string

// yamlConfig mirrors internal/config.Config's shape with yaml tags instead
// of mapstructure ones: viper's Unmarshal reads mapstructure tags, but a
// human editing a scaffolded file expects plain YAML keys, so configInitCmd
// keeps its own tagged mirror rather than reusing config.Config directly.
type yamlConfig struct {
	Server struct {
		Mode string `yaml:"mode"`
		Port int    `yaml:"port"`
	} `yaml:"server"`
	Concurrency struct {
		MaxParallelSQLs  int `yaml:"max_parallel_sqls"`
		MaxParallelTests int `yaml:"max_parallel_tests"`
		CommentChunkSize int `yaml:"comment_chunk_size"`
		NumWorkers       int `yaml:"num_workers"`
	} `yaml:"concurrency"`
	Models struct {
		Default yamlModel `yaml:"default"`
		Comment yamlModel `yaml:"comment"`
	} `yaml:"models"`
	VectorStore struct {
		Backend string `yaml:"backend"`
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
		APIKey  string `yaml:"api_key"`
		Tenant  string `yaml:"tenant"`
		DSN     string `yaml:"dsn"`
	} `yaml:"vector_store"`
	Database struct {
		RootPath string `yaml:"root_path"`
	} `yaml:"database"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`
	StorePath  string `yaml:"store_path"`
	SessionTTL string `yaml:"session_ttl"`
}

type yamlModel struct {
	Provider string `yaml:"provider"`
	ModelID  string `yaml:"model_id"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url,omitempty"`
}

// configInitCmd scaffolds a YAML file with the same defaults
// internal/config.Load applies when a field is absent, so `sqlgenctl
// serve --config` has something editable to start from.
var configInitCmd = &cobra.Command{
	Use:   "config-init",
	Short: "Write a default configuration file to disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := configOutPath
		if out == "" {
			out = "sqlgenctl.yaml"
		}
		if _, err := os.Stat(out); err == nil {
			return fmt.Errorf("%s already exists, refusing to overwrite", out)
		}

		def := yamlConfig{}
		def.Server.Mode = "dev"
		def.Server.Port = 8080
		def.Concurrency.MaxParallelSQLs = 12
		def.Concurrency.MaxParallelTests = 3
		def.Concurrency.CommentChunkSize = 10
		def.Concurrency.NumWorkers = 4
		def.Models.Default = yamlModel{Provider: "openai", ModelID: "gpt-4o-mini"}
		def.Models.Comment = yamlModel{Provider: "openai", ModelID: "gpt-4o-mini"}
		def.VectorStore.Backend = "SQLiteVec"
		def.Database.RootPath = "data"
		def.LogLevel = "info"
		def.LogFormat = "console"
		def.StorePath = "data/thoth.db"
		def.SessionTTL = "30m"

		body, err := yaml.Marshal(def)
		if err != nil {
			return fmt.Errorf("marshal default config: %w", err)
		}
		if err := os.WriteFile(out, body, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
		return nil
	},
}

func init() {
	configInitCmd.Flags().StringVar(&configOutPath, "out", "", "Output path (default sqlgenctl.yaml)")
}
