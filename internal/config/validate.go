package config

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError represents a configuration validation error with context.
type ValidationError struct {
	Field   string
	Message string
	Hint    string
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (hint: %s)", e.Field, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
	Hint    string
}

// ValidationResult contains the results of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error returns a combined error message if there are validation errors.
func (r *ValidationResult) Error() string {
	if !r.HasErrors() {
		return ""
	}
	var msgs []string
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func (r *ValidationResult) addError(field, message, hint string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message, Hint: hint})
}

func (r *ValidationResult) addWarning(field, message, hint string) {
	r.Warnings = append(r.Warnings, ValidationWarning{Field: field, Message: message, Hint: hint})
}

// Validate checks the configuration for errors and returns validation results.
// It returns both errors (fatal) and warnings (non-fatal issues).
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}

	c.Compiler.validate(result)
	c.Store.validate(result)
	c.Request.validate(result)
	c.Logging.validate(result)
	c.Tracing.validate(result)

	return result
}

func (c *CompilerConfig) validate(result *ValidationResult) {
	if strings.TrimSpace(c.ObjectInfoFile) == "" {
		result.addError("compiler.object_info_file", "object info file is required",
			"pass --compiler.object_info_file or set LDSGQL_COMPILER_OBJECT_INFO_FILE")
	}
	if strings.TrimSpace(c.ViewerID) == "" {
		result.addWarning("compiler.viewer_id", "viewer id is empty",
			"queries using scope MINE or ASSIGNEDTOME will match no records")
	}
	for field, value := range map[string]int{
		"compiler.max_depth":       c.MaxDepth,
		"compiler.max_connections": c.MaxConnections,
		"compiler.max_joins":       c.MaxJoins,
	} {
		if value < 0 {
			result.addError(field, fmt.Sprintf("must be >= 0, got %d", value), "use 0 to disable the limit")
		}
	}
}

// sqlIdentifierPattern keeps table and column names free of characters that
// would need more than double-quote escaping.
var sqlIdentifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (s *StoreConfig) validate(result *ValidationResult) {
	for field, value := range map[string]string{
		"store.json_table":  s.JSONTable,
		"store.json_column": s.JSONColumn,
		"store.key_column":  s.KeyColumn,
	} {
		if !sqlIdentifierPattern.MatchString(value) {
			result.addError(field, fmt.Sprintf("invalid SQL identifier %q", value),
				"use letters, digits and underscores, not starting with a digit")
		}
	}
	if s.JSONColumn != "" && s.JSONColumn == s.KeyColumn {
		result.addError("store.key_column", "key column must differ from json column", "")
	}
	if s.KeyPrefix == "" {
		result.addWarning("store.key_prefix", "key prefix is empty", "every row of the table will be treated as a record")
	}
	if s.Execute && strings.TrimSpace(s.Path) == "" {
		result.addError("store.path", "store path is required when store.execute is true", "use :memory: for an in-memory store")
	}
	if !s.Execute && len(s.RecordsFiles) > 0 {
		result.addWarning("store.records_files", "records are only loaded when store.execute is true", "")
	}
	if s.Execute && s.Path == ":memory:" && len(s.RecordsFiles) == 0 {
		result.addWarning("store.records_files", "in-memory store has no records files", "every connection will return no edges")
	}
}

func (r *RequestConfig) validate(result *ValidationResult) {
	if strings.TrimSpace(r.File) == "" {
		result.addError("request.file", "request file is required", "use @- to read the request from stdin")
	}
}

func (l *LoggingConfig) validate(result *ValidationResult) {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		result.addError("logging.level", fmt.Sprintf("unknown log level %q", l.Level), "use debug, info, warn or error")
	}
	switch l.Format {
	case "json", "text":
	default:
		result.addError("logging.format", fmt.Sprintf("unknown log format %q", l.Format), "use json or text")
	}
}

func (t *TracingConfig) validate(result *ValidationResult) {
	if t.SampleRatio < 0 || t.SampleRatio > 1 {
		result.addError("tracing.sample_ratio", fmt.Sprintf("must be between 0.0 and 1.0, got %v", t.SampleRatio), "")
	}
	if !t.Enabled {
		return
	}
	if strings.TrimSpace(t.Endpoint) == "" {
		result.addError("tracing.endpoint", "endpoint is required when tracing is enabled", "")
	}
	if t.Timeout < 0 {
		result.addError("tracing.timeout", "must not be negative", "")
	}
	if strings.TrimSpace(t.ServiceName) == "" {
		result.addWarning("tracing.service_name", "service name is empty", "spans will be reported as unknown_service")
	}
}
