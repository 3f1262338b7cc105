package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"ozzus/printq-probe/internal/domain"
)

type Config struct {
	Env        string           `mapstructure:"env"`
	Host       string           `mapstructure:"host"`
	Commands   CommandsConfig   `mapstructure:"commands"`
	Spool      SpoolConfig      `mapstructure:"spool"`
	Thresholds ThresholdsConfig `mapstructure:"thresholds"`
	Inspect    InspectConfig    `mapstructure:"inspect"`
	Report     ReportConfig     `mapstructure:"report"`
}

type CommandsConfig struct {
	List    CommandConfig `mapstructure:"list"`
	Status  CommandConfig `mapstructure:"status"`
	Restart CommandConfig `mapstructure:"restart"`
	Elevate CommandConfig `mapstructure:"elevate"`
}

// CommandConfig is an executable path plus an argument template.
// "{queue}" in Args is replaced with the queue name.
type CommandConfig struct {
	Path string   `mapstructure:"path"`
	Args []string `mapstructure:"args"`
}

type SpoolConfig struct {
	Dir string `mapstructure:"dir"`
}

type ThresholdsConfig struct {
	QueuedJobs int `mapstructure:"queued_jobs"`
}

type InspectConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

type ReportConfig struct {
	Timeout int           `mapstructure:"timeout"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Backend BackendConfig `mapstructure:"backend"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type BackendConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Name    string `mapstructure:"name"`
	Token   string `mapstructure:"token"`
}

const envPrefix = "PRINTQ"

// Load reads configuration from defaults, an optional yaml file and PRINTQ_* env.
// An empty path searches /etc/printq, ./config and . for printq.yaml.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("printq")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/printq")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	hostname, _ := os.Hostname()

	v.SetDefault("env", "local")
	v.SetDefault("host", hostname)

	// AIX qdaemon tooling
	v.SetDefault("commands.list.path", "/usr/bin/lsallq")
	v.SetDefault("commands.list.args", []string{})
	v.SetDefault("commands.status.path", "/usr/bin/enq")
	v.SetDefault("commands.status.args", []string{"-q", "-P", "{queue}"})
	v.SetDefault("commands.restart.path", "/usr/bin/enable")
	v.SetDefault("commands.restart.args", []string{"{queue}"})
	v.SetDefault("commands.elevate.path", "/usr/bin/sudo")
	v.SetDefault("commands.elevate.args", []string{"-n"})

	v.SetDefault("spool.dir", "/var/spool/lpd/qdir")
	v.SetDefault("thresholds.queued_jobs", 50)
	v.SetDefault("inspect.concurrency", 1)

	// Report defaults
	v.SetDefault("report.timeout", 5)
	v.SetDefault("report.kafka.enabled", false)
	v.SetDefault("report.kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("report.kafka.topic", "printq-reports")
	v.SetDefault("report.backend.enabled", false)
	v.SetDefault("report.backend.url", "")
	v.SetDefault("report.backend.name", hostname)
	v.SetDefault("report.backend.token", "")
}

func (c *Config) Validate() error {
	commands := []struct {
		name string
		cmd  CommandConfig
	}{
		{"list", c.Commands.List},
		{"status", c.Commands.Status},
		{"restart", c.Commands.Restart},
		{"elevate", c.Commands.Elevate},
	}
	for _, entry := range commands {
		if strings.TrimSpace(entry.cmd.Path) == "" {
			return fmt.Errorf("commands.%s.path is required", entry.name)
		}
	}

	if c.Spool.Dir == "" {
		return errors.New("spool.dir is required")
	}
	if c.Thresholds.QueuedJobs < 0 {
		return fmt.Errorf("thresholds.queued_jobs must not be negative, got %d", c.Thresholds.QueuedJobs)
	}
	if c.Inspect.Concurrency <= 0 {
		c.Inspect.Concurrency = 1
	}

	if c.Report.Kafka.Enabled {
		if len(c.Report.Kafka.Brokers) == 0 {
			return errors.New("report.kafka.brokers is required when kafka reporting is enabled")
		}
		if c.Report.Kafka.Topic == "" {
			return errors.New("report.kafka.topic is required when kafka reporting is enabled")
		}
	}
	if c.Report.Backend.Enabled && c.Report.Backend.URL == "" {
		return errors.New("report.backend.url is required when backend reporting is enabled")
	}

	return nil
}

// RequiredTools returns the executables that must be runnable before the probe
// starts. The restart command runs under the elevation wrapper.
func (c *Config) RequiredTools() []domain.Tool {
	return []domain.Tool{
		{Path: c.Commands.List.Path},
		{Path: c.Commands.Status.Path},
		{Path: c.Commands.Restart.Path, Elevated: true},
		{Path: c.Commands.Elevate.Path},
	}
}

func (c *Config) GetReportTimeout() time.Duration {
	if c.Report.Timeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Report.Timeout) * time.Second
}
