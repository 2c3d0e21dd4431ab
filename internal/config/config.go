package config

// Config holds the application configuration.
type Config struct {
	Theme      string `yaml:"theme"`
	Capacity   int    `yaml:"capacity"`
	Mode       string `yaml:"mode"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`
	ShowTiming bool   `yaml:"show_timing"`
	WrapBodies bool   `yaml:"wrap_bodies"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Theme:      "catppuccin-mocha",
		Capacity:   50,
		Mode:       "silent",
		LogLevel:   "info",
		LogFormat:  "text",
		ShowTiming: true,
		WrapBodies: false,
	}
}
