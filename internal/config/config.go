package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultInputDriver       = "file"
	defaultKafkaGroupID      = "deliverylens-default-group"
	defaultKafkaMaxMessages  = 100000
	defaultKafkaIdleTimeout  = 5 * time.Second
	defaultReportDirectory   = "reports"
	defaultReportStdout      = true
	defaultInfluxMeasurement = "translation_delivery_time"
	defaultMetricsJobName    = "deliverylens"
	defaultLogLevel          = "info"
	defaultLogFormat         = "console"
	defaultLogFileEnabled    = false
	defaultLogDirectory      = "log"
	defaultLogFilename       = "app.log"
	defaultLogMaxSizeMB      = 100
	defaultLogMaxBackups     = 3
	defaultLogMaxAgeDays     = 7
	defaultLogCompress       = false

	// Environment variable prefix
	envPrefix = "DELIVERYLENS"
)

type Config struct {
	Job     JobConfig     `mapstructure:"job"`
	Input   InputConfig   `mapstructure:"input"`
	Report  ReportConfig  `mapstructure:"report"`
	Sinks   SinksConfig   `mapstructure:"sinks"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Log     LogConfig     `mapstructure:"log"`
}

// JobConfig describes a single report run. InputPath and WindowMinutes may be
// left unset here and supplied later by flags or the interactive prompt.
type JobConfig struct {
	InputPath     string `mapstructure:"inputPath"`
	WindowMinutes *int   `mapstructure:"windowMinutes" validate:"omitempty,min=0"`
}

type InputConfig struct {
	Driver string      `mapstructure:"driver" validate:"oneof=file kafka"`
	Kafka  KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Brokers     []string      `mapstructure:"brokers"`
	Topic       string        `mapstructure:"topic"`
	GroupID     string        `mapstructure:"groupID"`
	MaxMessages int           `mapstructure:"maxMessages" validate:"gte=0"`
	IdleTimeout time.Duration `mapstructure:"idleTimeout" validate:"gte=0"`
}

type ReportConfig struct {
	Directory     string `mapstructure:"directory" validate:"required"`
	Filename      string `mapstructure:"filename"`      // Empty means a per-run timestamped name
	Stdout        bool   `mapstructure:"stdout"`        // Print report lines to stdout
	Chronological bool   `mapstructure:"chronological"` // Oldest bucket first instead of newest first
}

type SinksConfig struct {
	Kafka    KafkaSinkConfig  `mapstructure:"kafka"`
	InfluxDB InfluxSinkConfig `mapstructure:"influxdb"`
}

type KafkaSinkConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type InfluxSinkConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	URL         string `mapstructure:"url" validate:"omitempty,url"`
	Token       string `mapstructure:"token"`
	Org         string `mapstructure:"org"`
	Bucket      string `mapstructure:"bucket"`
	Measurement string `mapstructure:"measurement"`
}

type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgatewayURL" validate:"omitempty,url"`
	JobName        string `mapstructure:"jobName" validate:"required"`
}

type LogConfig struct {
	Level              string `mapstructure:"level"`
	Format             string `mapstructure:"format"`
	FileLoggingEnabled bool   `mapstructure:"fileLoggingEnabled"`
	Directory          string `mapstructure:"directory"`
	Filename           string `mapstructure:"filename"`
	MaxSize            int    `mapstructure:"maxSize"`    // Max size in MB
	MaxBackups         int    `mapstructure:"maxBackups"` // Max backup files
	MaxAge             int    `mapstructure:"maxAge"`     // Max days to retain
	Compress           bool   `mapstructure:"compress"`   // Compress rotated files?
}

// Load initializes viper, reads the optional config file, applies defaults,
// unmarshals and validates. An empty configPath skips the file entirely.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	configureViper(v, configPath)

	// Set default values before reading config source .yaml
	setDefaults(v)

	if configPath != "" {
		if err := readConfigFile(v); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshallingConfig, err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// configureViper sets up viper instance for file and environment variables.
func configureViper(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// Keys without a default are invisible to Unmarshal unless bound explicitly.
	_ = v.BindEnv("job.inputPath")
	_ = v.BindEnv("job.windowMinutes")
	_ = v.BindEnv("metrics.pushgatewayURL")
}

// setDefaults applies default configuration values using Viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("input.driver", defaultInputDriver)
	v.SetDefault("input.kafka.groupID", defaultKafkaGroupID)
	v.SetDefault("input.kafka.maxMessages", defaultKafkaMaxMessages)
	v.SetDefault("input.kafka.idleTimeout", defaultKafkaIdleTimeout)
	v.SetDefault("report.directory", defaultReportDirectory)
	v.SetDefault("report.filename", "")
	v.SetDefault("report.stdout", defaultReportStdout)
	v.SetDefault("report.chronological", false)
	v.SetDefault("sinks.kafka.enabled", false)
	v.SetDefault("sinks.influxdb.enabled", false)
	v.SetDefault("sinks.influxdb.measurement", defaultInfluxMeasurement)
	v.SetDefault("metrics.jobName", defaultMetricsJobName)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
	v.SetDefault("log.fileLoggingEnabled", defaultLogFileEnabled)
	v.SetDefault("log.directory", defaultLogDirectory)
	v.SetDefault("log.filename", defaultLogFilename)
	v.SetDefault("log.maxSize", defaultLogMaxSizeMB)
	v.SetDefault("log.maxBackups", defaultLogMaxBackups)
	v.SetDefault("log.maxAge", defaultLogMaxAgeDays)
	v.SetDefault("log.compress", defaultLogCompress)
}

// readConfigFile attempts to read the configuration file specified in viper.
func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) || errors.Is(err, fs.ErrNotExist) {
			return ErrConfigFileMissing
		}
		return fmt.Errorf("%w: %w", ErrReadingConfigFile, err)
	}
	return nil
}

// ApplyFlags overrides configuration values with flags explicitly set on the
// command line. Flags left at their defaults never override the config.
func ApplyFlags(cfg *Config, flags *pflag.FlagSet) error {
	if flags.Changed("input") {
		path, err := flags.GetString("input")
		if err != nil {
			return err
		}
		cfg.Job.InputPath = path
	}
	if flags.Changed("window") {
		window, err := flags.GetInt("window")
		if err != nil {
			return err
		}
		cfg.Job.WindowMinutes = &window
	}
	if flags.Changed("output-dir") {
		dir, err := flags.GetString("output-dir")
		if err != nil {
			return err
		}
		cfg.Report.Directory = dir
	}
	return Validate(cfg)
}

// Validate runs struct tag validation followed by the cross-field checks
// that tags cannot express.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if cfg.Input.Driver == "kafka" {
		if len(cfg.Input.Kafka.Brokers) == 0 {
			return ErrEmptyKafkaBrokers
		}
		if cfg.Input.Kafka.Topic == "" {
			return ErrEmptyKafkaTopic
		}
		if cfg.Input.Kafka.GroupID == "" {
			return ErrEmptyKafkaGroupID
		}
	}
	if cfg.Sinks.Kafka.Enabled {
		if len(cfg.Sinks.Kafka.Brokers) == 0 {
			return ErrEmptyKafkaBrokers
		}
		if cfg.Sinks.Kafka.Topic == "" {
			return ErrEmptyKafkaTopic
		}
	}
	if cfg.Sinks.InfluxDB.Enabled {
		influx := cfg.Sinks.InfluxDB
		if influx.URL == "" || influx.Org == "" || influx.Bucket == "" {
			return ErrIncompleteInfluxConfig
		}
	}
	return nil
}
