package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"

	"github.com/orderprocessing/order-system/shared/saga"
)

type Config struct {
	ServiceName string    `mapstructure:"service_name"`
	Env         string    `mapstructure:"env"`
	Port        string    `mapstructure:"port"`
	Database    Database  `mapstructure:"database"`
	Bus         Bus       `mapstructure:"bus"`
	Retention   Retention `mapstructure:"retention"`
	Telemetry   Telemetry `mapstructure:"telemetry"`
}

type Database struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// Bus selects and configures the event bus driver. "kafka" is the
// default; "sqs" switches to the SNS/SQS FIFO driver.
type Bus struct {
	Driver string           `mapstructure:"driver"`
	Kafka  Kafka            `mapstructure:"kafka"`
	AWS    AWS              `mapstructure:"aws"`
	Retry  saga.RetryPolicy `mapstructure:"retry"`
}

type Kafka struct {
	Brokers []string `mapstructure:"brokers"`
	GroupID string   `mapstructure:"group_id"`
}

type AWS struct {
	Region        string `mapstructure:"region"`
	SNSTopicArn   string `mapstructure:"sns_topic_arn"`
	SQSQueueURL   string `mapstructure:"sqs_queue_url"`
	DeadLetterURL string `mapstructure:"dead_letter_url"`
}

// Retention controls pruning of processed-event records. The window must
// exceed the bus's maximum redelivery delay.
type Retention struct {
	Window   time.Duration `mapstructure:"window"`
	Interval time.Duration `mapstructure:"interval"`
}

type Telemetry struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

func ReadConfig() (*Config, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return nil, fmt.Errorf("unable to get current file")
	}

	configDir := filepath.Join(filepath.Dir(filename))
	viper.SetConfigName(getConfigName())
	viper.SetConfigType("json")
	viper.AddConfigPath(configDir)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("ORDER")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Defaults and env vars are enough when no config file exists
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

func getConfigName() string {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		return "local"
	}
	return env
}

func setDefaults() {
	viper.SetDefault("service_name", "order-service")
	viper.SetDefault("env", getEnv("ENV", "local"))
	viper.SetDefault("port", getEnv("PORT", "8081"))

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "order_system")
	viper.SetDefault("database.ssl_mode", "disable")

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		viper.Set("database.url", dbURL)
	}

	viper.SetDefault("bus.driver", getEnv("BUS_DRIVER", "kafka"))
	viper.SetDefault("bus.kafka.brokers", []string{getEnv("KAFKA_BROKERS", "localhost:9092")})
	viper.SetDefault("bus.kafka.group_id", "order-service")
	viper.SetDefault("bus.aws.region", getEnv("AWS_DEFAULT_REGION", "us-east-1"))
	viper.SetDefault("bus.aws.sns_topic_arn", getEnv("SNS_TOPIC_ARN", "arn:aws:sns:us-east-1:000000000000:order-events.fifo"))
	viper.SetDefault("bus.aws.sqs_queue_url", getEnv("SQS_QUEUE_URL", "http://localhost:4566/000000000000/order-service-events.fifo"))
	viper.SetDefault("bus.aws.dead_letter_url", getEnv("SQS_DEAD_LETTER_URL", "http://localhost:4566/000000000000/order-service-dead-letter"))

	defaultRetry := saga.DefaultRetryPolicy()
	viper.SetDefault("bus.retry.max_retries", defaultRetry.MaxRetries)
	viper.SetDefault("bus.retry.initial_backoff", defaultRetry.InitialBackoff)
	viper.SetDefault("bus.retry.max_backoff", defaultRetry.MaxBackoff)
	viper.SetDefault("bus.retry.dead_letter_topic", defaultRetry.DeadLetterTopic)

	viper.SetDefault("retention.window", 30*24*time.Hour)
	viper.SetDefault("retention.interval", time.Hour)

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.otlp_endpoint", getEnv("OTLP_ENDPOINT", "localhost:4318"))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetDatabaseURL constructs database URL from config
func (c *Config) GetDatabaseURL() string {
	if url := viper.GetString("database.url"); url != "" {
		return url
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}
