package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Bootstrap holds process-wide settings that sit outside any single
// pipeline descriptor — the log level and output format the CLI
// front-end applies before loading pipelines.
type Bootstrap struct {
	LogLevel   string
	JSONLogs   bool
	ConfigDirs []string
}

// LoadBootstrap reads process-wide settings from the environment,
// loading a .env file first if present (teacher's convention).
func LoadBootstrap() Bootstrap {
	_ = godotenv.Load()

	level := strings.ToLower(os.Getenv("LOGFLOW_LOG_LEVEL"))
	if level == "" {
		level = "info"
	}

	return Bootstrap{
		LogLevel: level,
		JSONLogs: strings.EqualFold(os.Getenv("LOGFLOW_LOG_FORMAT"), "json"),
	}
}
