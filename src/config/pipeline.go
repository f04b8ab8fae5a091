package config

// PipelineConfig tunes stage scheduling.
type PipelineConfig struct {
	// Workers bounds concurrently running stages at a join point.
	Workers int `yaml:"workers" toml:"workers"`
	// FailFast cancels sibling stages when one fails. The join still waits
	// for every stage.
	FailFast bool `yaml:"fail_fast" toml:"fail_fast"`
}

// DefaultPipelineConfig matches the widest fan-out, server and ui.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{Workers: 2}
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format" toml:"format"` // text, json
}

// DefaultLogConfig returns info-level text logs.
func DefaultLogConfig() LogConfig {
	return LogConfig{Level: "info", Format: "text"}
}
