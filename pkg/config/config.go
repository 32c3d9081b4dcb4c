package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Kafka struct {
		Brokers       []string `yaml:"brokers"`
		DecisionTopic string   `yaml:"decision_topic"`
		AlertTopic    string   `yaml:"alert_topic"`
		TradeTopic    string   `yaml:"trade_topic"`
		RequiredAcks  int      `yaml:"required_acks"`
		Compression   string   `yaml:"compression"`
		Producer      struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Oanda struct {
		APIToken       string        `yaml:"api_token"`
		AccountID      string        `yaml:"account_id"`
		RestURL        string        `yaml:"rest_url"`
		WebSocketURL   string        `yaml:"websocket_url"`
		Pairs          []string      `yaml:"pairs"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
		RestTimeout    time.Duration `yaml:"rest_timeout"`
	} `yaml:"oanda"`
	Direction struct {
		ServiceURL string        `yaml:"service_url"`
		Timeout    time.Duration `yaml:"timeout"`
		Retries    int           `yaml:"retries"`
	} `yaml:"direction"`
	Governance struct {
		ApproveThreshold   float64       `yaml:"approve_threshold"`
		ThrottleThreshold  float64       `yaml:"throttle_threshold"`
		MaxFrictionShare   float64       `yaml:"max_friction_share"`
		MaxTradesPerWindow int           `yaml:"max_trades_per_window"`
		SequencingWindow   time.Duration `yaml:"sequencing_window"`
		LossStreakLimit    int           `yaml:"loss_streak_limit"`
	} `yaml:"governance"`
	Risk struct {
		Enabled                     bool    `yaml:"enabled"`
		EdgeBoostMultiplier         float64 `yaml:"edge_boost_multiplier"`
		BaselineReductionMultiplier float64 `yaml:"baseline_reduction_multiplier"`
		SpreadBlockThreshold        float64 `yaml:"spread_block_threshold"`
		IgnitionMinComposite        float64 `yaml:"ignition_min_composite"`
	} `yaml:"risk"`
	Drift struct {
		ScanInterval             time.Duration `yaml:"scan_interval"`
		MinTrades                int           `yaml:"min_trades"`
		SlopeWindow              int           `yaml:"slope_window"`
		ExpectancySlopeThreshold float64       `yaml:"expectancy_slope_threshold"`
		SessionEntropyThreshold  float64       `yaml:"session_entropy_threshold"`
		MinConfidenceForEntropy  float64       `yaml:"min_confidence_for_entropy"`
		DrawdownMultiple         float64       `yaml:"drawdown_multiple"`
		DecayFraction            float64       `yaml:"decay_fraction"`
	} `yaml:"drift"`
	Queue struct {
		Enabled   bool   `yaml:"enabled"`
		StreamKey string `yaml:"stream_key"`
		Group     string `yaml:"group"`
		Workers   int    `yaml:"workers"`
	} `yaml:"queue"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("OANDA_API_TOKEN"); v != "" {
		c.Oanda.APIToken = v
	}
	if v := os.Getenv("OANDA_ACCOUNT_ID"); v != "" {
		c.Oanda.AccountID = v
	}
	if v := os.Getenv("PAIRS"); v != "" {
		c.Oanda.Pairs = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("DIRECTION_SERVICE_URL"); v != "" {
		c.Direction.ServiceURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Oanda.Pairs) == 0 {
		return fmt.Errorf("oanda.pairs cannot be empty")
	}
	if c.Oanda.APIToken == "" {
		return fmt.Errorf("oanda.api_token is required")
	}
	if c.Governance.ApproveThreshold != 0 && c.Governance.ThrottleThreshold >= c.Governance.ApproveThreshold {
		return fmt.Errorf("governance.throttle_threshold must be below approve_threshold")
	}
	if c.Risk.SpreadBlockThreshold < 0 {
		return fmt.Errorf("risk.spread_block_threshold cannot be negative")
	}
	return nil
}
