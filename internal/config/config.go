// Package config loads ldsgql configuration from files, env vars, and flags, and validates it.
package config

import "time"

// Config holds the application configuration.
type Config struct {
	Compiler CompilerConfig `mapstructure:"compiler"`
	Store    StoreConfig    `mapstructure:"store"`
	Request  RequestConfig  `mapstructure:"request"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// CompilerConfig controls query compilation.
type CompilerConfig struct {
	// ObjectInfoFile is a JSON or YAML object info map; "@-" reads stdin.
	ObjectInfoFile string `mapstructure:"object_info_file"`
	// ViewerID is the user id scopes such as MINE compare against.
	ViewerID string `mapstructure:"viewer_id"`
	// Zero disables a limit.
	MaxDepth       int `mapstructure:"max_depth"`
	MaxConnections int `mapstructure:"max_connections"`
	MaxJoins       int `mapstructure:"max_joins"`
}

// StoreConfig describes the SQLite durable store compiled SQL runs against.
type StoreConfig struct {
	// Execute runs the compiled statement and prints the result document
	// instead of printing the statement.
	Execute    bool   `mapstructure:"execute"`
	Path       string `mapstructure:"path"`
	JSONTable  string `mapstructure:"json_table"`
	JSONColumn string `mapstructure:"json_column"`
	KeyColumn  string `mapstructure:"key_column"`
	KeyPrefix  string `mapstructure:"key_prefix"`
	// RecordsFiles are JSON or YAML files of durable entries loaded before executing.
	RecordsFiles []string `mapstructure:"records_files"`
}

// RequestConfig locates the GraphQL request to compile.
type RequestConfig struct {
	// File holds raw GraphQL or a JSON {query, operationName} envelope; "@-" reads stdin.
	File          string `mapstructure:"file"`
	OperationName string `mapstructure:"operation_name"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// File additionally receives every log record when set.
	File string `mapstructure:"file"`
}

// MetricsConfig controls the Prometheus text-file export written on exit.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// TracingConfig holds OTLP/HTTP trace export configuration.
type TracingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ServiceName string        `mapstructure:"service_name"`
	Endpoint    string        `mapstructure:"endpoint"`
	Insecure    bool          `mapstructure:"insecure"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SampleRatio float64       `mapstructure:"sample_ratio"`
}
