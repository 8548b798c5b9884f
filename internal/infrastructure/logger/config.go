package logger

import "os"

type Config struct {
	Level      string `json:"level"       yaml:"level"`  // debug, info, warn, error
	Format     string `json:"format"      yaml:"format"` // json, text, console
	Output     string `json:"output"      yaml:"output"` // stdout, stderr, file
	FilePath   string `json:"file_path"   yaml:"file_path"`
	MaxSize    int    `json:"max_size"    yaml:"max_size"` // MB
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`
	MaxAge     int    `json:"max_age"     yaml:"max_age"` // days
	Compress   bool   `json:"compress"    yaml:"compress"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
}

// baseFields are static fields attached to every log line.
func baseFields() Fields {
	hostname, _ := os.Hostname()
	return Fields{
		"hostname": hostname,
		"pid":      os.Getpid(),
	}
}
