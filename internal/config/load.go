package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// StdinPath is the file setting value that reads from standard input.
const StdinPath = "@-"

// Flags not copied into the configuration.
var controlFlags = map[string]bool{
	"config":  true,
	"version": true,
	"help":    true,
}

// Load loads configuration from multiple sources with the following precedence:
// 1. Command line flags (only those explicitly set)
// 2. Environment variables (LDSGQL_COMPILER_VIEWER_ID, ...)
// 3. Config file
// 4. Default values
//
// Flags are defined on fs and parsed from args; callers may define extra
// control flags such as --version on fs beforehand.
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	v := viper.New()

	// Defaults (lowest priority)
	setDefaults(v)

	// --- Flags ---
	DefineFlags(fs)
	if !fs.Parsed() {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
	}

	// --- Config file ---
	cfgPath, _ := fs.GetString("config")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.SetConfigName("ldsgql")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.ldsgql")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgPath != "" {
			return nil, fmt.Errorf("failed to read config file %q: %w", cfgPath, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// --- Environment variables ---
	// Canonical keys: dot + snake_case
	// Env vars: LDSGQL_STORE_JSON_TABLE
	v.SetEnvPrefix("LDSGQL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// --- Flags binding (highest priority) ---
	bindChangedFlagsToViper(fs, v)
	if err := validateSingleStdinFileSource(v); err != nil {
		return nil, err
	}

	// --- Unmarshal (strict) ---
	var cfg Config
	if err := v.UnmarshalExact(
		&cfg,
		viper.DecodeHook(
			mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				stringToStringSliceHookFunc(","),
			),
		),
	); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// bindChangedFlagsToViper copies only explicitly-set flags into Viper,
// preserving precedence: flags > env > file > defaults.
func bindChangedFlagsToViper(fs *pflag.FlagSet, v *viper.Viper) {
	fs.Visit(func(f *pflag.Flag) {
		if controlFlags[f.Name] {
			return
		}

		switch f.Value.Type() {
		case "string":
			val, _ := fs.GetString(f.Name)
			v.Set(f.Name, val)
		case "int":
			val, _ := fs.GetInt(f.Name)
			v.Set(f.Name, val)
		case "bool":
			val, _ := fs.GetBool(f.Name)
			v.Set(f.Name, val)
		case "float64":
			val, _ := fs.GetFloat64(f.Name)
			v.Set(f.Name, val)
		case "duration":
			val, _ := fs.GetDuration(f.Name)
			v.Set(f.Name, val)
		case "stringSlice":
			val, _ := fs.GetStringSlice(f.Name)
			v.Set(f.Name, val)
		default:
			v.Set(f.Name, f.Value.String())
		}
	})
}

// DefineFlags defines all configuration flags on fs using canonical snake_case
// keys. It is safe to call more than once on the same set.
func DefineFlags(fs *pflag.FlagSet) {
	if fs.Lookup("compiler.object_info_file") != nil {
		return
	}

	// Compiler flags
	fs.String("compiler.object_info_file", "", "Object info map file, JSON or YAML (use @- for stdin)")
	fs.String("compiler.viewer_id", "", "User id that scopes such as MINE resolve against")
	fs.Int("compiler.max_depth", 0, "Maximum child connection depth (0 = unlimited)")
	fs.Int("compiler.max_connections", 0, "Maximum connections per query (0 = unlimited)")
	fs.Int("compiler.max_joins", 0, "Maximum joins per connection (0 = unlimited)")

	// Store flags
	fs.Bool("store.execute", false, "Execute the compiled statement against the store and print the result")
	fs.String("store.path", "", "SQLite database file (default: in-memory)")
	fs.String("store.json_table", "", "Key/value table name")
	fs.String("store.json_column", "", "JSON document column name")
	fs.String("store.key_column", "", "Key column name")
	fs.String("store.key_prefix", "", "Key prefix selecting record entries")
	fs.StringSlice("store.records_files", nil, "JSON or YAML files of durable entries to load before executing (use @- for stdin)")

	// Request flags
	fs.String("request.file", "", "GraphQL request file, raw or JSON envelope (use @- for stdin)")
	fs.String("request.operation_name", "", "Operation to compile when the request has several")

	// Logging flags
	fs.String("logging.level", "", "Log level (debug, info, warn, error)")
	fs.String("logging.format", "", "Log format (json, text)")
	fs.String("logging.file", "", "Also append logs to this file")

	// Metrics flags
	fs.String("metrics.textfile", "", "Write Prometheus metrics in text format to this file on exit")

	// Tracing flags
	fs.Bool("tracing.enabled", false, "Export traces over OTLP/HTTP")
	fs.String("tracing.service_name", "", "Service name reported with traces")
	fs.String("tracing.endpoint", "", "OTLP/HTTP endpoint (host:port or URL)")
	fs.Bool("tracing.insecure", false, "Use plain HTTP for trace export")
	fs.Duration("tracing.timeout", 0, "Trace export timeout")
	fs.Float64("tracing.sample_ratio", 0, "Trace sampling ratio from 0.0 to 1.0")

	// Config file flag
	fs.StringP("config", "c", "", "Config file path")
}

// setDefaults sets default values (lowest precedence).
func setDefaults(v *viper.Viper) {
	v.SetDefault("compiler.object_info_file", "")
	v.SetDefault("compiler.viewer_id", "")
	v.SetDefault("compiler.max_depth", 0)
	v.SetDefault("compiler.max_connections", 0)
	v.SetDefault("compiler.max_joins", 0)

	v.SetDefault("store.execute", false)
	v.SetDefault("store.path", ":memory:")
	v.SetDefault("store.json_table", "lds_data")
	v.SetDefault("store.json_column", "data")
	v.SetDefault("store.key_column", "key")
	v.SetDefault("store.key_prefix", "UiApi::RecordRepresentation:")
	v.SetDefault("store.records_files", []string{})

	v.SetDefault("request.file", StdinPath)
	v.SetDefault("request.operation_name", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")

	v.SetDefault("metrics.textfile", "")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "ldsgql")
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.insecure", false)
	v.SetDefault("tracing.timeout", 10*time.Second)
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// validateSingleStdinFileSource rejects configurations where more than one
// input would be read from stdin.
func validateSingleStdinFileSource(v *viper.Viper) error {
	var configured []string
	for _, key := range []string{"compiler.object_info_file", "request.file"} {
		if strings.TrimSpace(v.GetString(key)) == StdinPath {
			configured = append(configured, key)
		}
	}
	for _, path := range v.GetStringSlice("store.records_files") {
		if strings.TrimSpace(path) == StdinPath {
			configured = append(configured, "store.records_files")
			break
		}
	}

	if len(configured) > 1 {
		return fmt.Errorf(
			"multiple stdin-backed file settings use @- (%s); only one @- source is allowed",
			strings.Join(configured, ", "),
		)
	}

	return nil
}

func stringToStringSliceHookFunc(sep string) mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf([]string{}) {
			return data, nil
		}

		raw := strings.TrimSpace(data.(string))
		if raw == "" {
			return []string{}, nil
		}

		parts := strings.Split(raw, sep)
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	}
}
