package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv   = "AI4NEWS_CONFIG"
	databasePathEnv = "AI4NEWS_DB_PATH"
	outputDirEnv    = "AI4NEWS_OUTPUT_DIR"
	targetsPathEnv  = "AI4NEWS_TARGETS_PATH"
	spoolDirEnv     = "AI4NEWS_SPOOL_DIR"
	logLevelEnv     = "AI4NEWS_LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Output    OutputConfig    `yaml:"output"`
	Targets   TargetsConfig   `yaml:"targets"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DatabaseConfig locates the SQLite database file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// OutputConfig describes where rendered digests are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// TargetsConfig locates the human-editable targets.yaml mirror.
type TargetsConfig struct {
	Path string `yaml:"path"`
}

// IngestConfig locates the spool directory the extraction agent drops
// scrape bundles into.
type IngestConfig struct {
	SpoolDir string `yaml:"spoolDir"`
}

// SchedulerConfig defines when the recurring ingest job runs.
type SchedulerConfig struct {
	CronExpression string `yaml:"cronExpression"`
}

// LoggingConfig carries the slog level string.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(outputDirEnv); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv(targetsPathEnv); v != "" {
		c.Targets.Path = v
	}
	if v := os.Getenv(spoolDirEnv); v != "" {
		c.Ingest.SpoolDir = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Database.Path != "" {
		base.Database = override.Database
	}
	if override.Output.Dir != "" {
		base.Output = override.Output
	}
	if override.Targets.Path != "" {
		base.Targets = override.Targets
	}
	if override.Ingest.SpoolDir != "" {
		base.Ingest = override.Ingest
	}
	if override.Scheduler.CronExpression != "" {
		base.Scheduler = override.Scheduler
	}
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}
	return base
}

func defaultConfig() Config {
	return Config{
		Database:  DatabaseConfig{Path: "data/ai4news.db"},
		Output:    OutputConfig{Dir: "data/newsletters"},
		Targets:   TargetsConfig{Path: "config/targets.yaml"},
		Ingest:    IngestConfig{SpoolDir: "data/spool"},
		Scheduler: SchedulerConfig{CronExpression: "0 8 * * 1"},
		Logging:   LoggingConfig{Level: "info"},
	}
}
