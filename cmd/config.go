package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	GuardBackendLocal = "local"
	GuardBackendRedis = "redis"
)

type Config struct {
	HTTPPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	KafkaBrokers               []string
	KafkaConsumerGroup         string
	KafkaValidateOrderTopic    string
	KafkaAllocateOrderTopic    string
	KafkaAllocationFailedTopic string
	KafkaDeallocateOrderTopic  string
	KafkaValidationResultTopic string
	KafkaAllocationResultTopic string
	ConsumerConcurrency        int

	GuardBackend string
	RedisAddr    string
	RedisLockTTL time.Duration

	WaitInterval time.Duration
	WaitAttempts uint

	OutboxRelayInterval time.Duration
	OutboxRelayDelay    time.Duration
	StaleSweepInterval  time.Duration
	RedriveAfter        time.Duration
	PendingTimeout      time.Duration
	JobBatchSize        int

	JaegerEndpoint   string
	TraceSampleRatio float64
	ShutdownTimeout  time.Duration
	LogLevel         string
}

// LoadConfig reads .env when present, then the process environment. Unset
// keys fall back to the defaults below.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		HTTPPort:                   v.GetString("HTTP_PORT"),
		DBHost:                     v.GetString("DB_HOST"),
		DBPort:                     v.GetString("DB_PORT"),
		DBUser:                     v.GetString("DB_USER"),
		DBPassword:                 v.GetString("DB_PASSWORD"),
		DBName:                     v.GetString("DB_NAME"),
		DBSslMode:                  v.GetString("DB_SSLMODE"),
		KafkaBrokers:               splitList(v.GetString("KAFKA_BROKERS")),
		KafkaConsumerGroup:         v.GetString("KAFKA_CONSUMER_GROUP"),
		KafkaValidateOrderTopic:    v.GetString("KAFKA_VALIDATE_ORDER_TOPIC"),
		KafkaAllocateOrderTopic:    v.GetString("KAFKA_ALLOCATE_ORDER_TOPIC"),
		KafkaAllocationFailedTopic: v.GetString("KAFKA_ALLOCATION_FAILURE_TOPIC"),
		KafkaDeallocateOrderTopic:  v.GetString("KAFKA_DEALLOCATE_ORDER_TOPIC"),
		KafkaValidationResultTopic: v.GetString("KAFKA_VALIDATE_ORDER_RESULT_TOPIC"),
		KafkaAllocationResultTopic: v.GetString("KAFKA_ALLOCATE_ORDER_RESULT_TOPIC"),
		ConsumerConcurrency:        v.GetInt("CONSUMER_CONCURRENCY"),
		GuardBackend:               strings.ToLower(v.GetString("GUARD_BACKEND")),
		RedisAddr:                  v.GetString("REDIS_ADDR"),
		RedisLockTTL:               v.GetDuration("REDIS_LOCK_TTL"),
		WaitInterval:               v.GetDuration("CONSISTENCY_WAIT_INTERVAL"),
		WaitAttempts:               v.GetUint("CONSISTENCY_WAIT_ATTEMPTS"),
		OutboxRelayInterval:        v.GetDuration("OUTBOX_RELAY_INTERVAL"),
		OutboxRelayDelay:           v.GetDuration("OUTBOX_RELAY_DELAY"),
		StaleSweepInterval:         v.GetDuration("STALE_SWEEP_INTERVAL"),
		RedriveAfter:               v.GetDuration("REDRIVE_AFTER"),
		PendingTimeout:             v.GetDuration("PENDING_TIMEOUT"),
		JobBatchSize:               v.GetInt("JOB_BATCH_SIZE"),
		JaegerEndpoint:             v.GetString("JAEGER_ENDPOINT"),
		TraceSampleRatio:           v.GetFloat64("TRACE_SAMPLE_RATIO"),
		ShutdownTimeout:            v.GetDuration("SHUTDOWN_TIMEOUT"),
		LogLevel:                   v.GetString("LOG_LEVEL"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_CONSUMER_GROUP", "beer-order-service")
	v.SetDefault("KAFKA_VALIDATE_ORDER_TOPIC", "validate-order")
	v.SetDefault("KAFKA_ALLOCATE_ORDER_TOPIC", "allocate-order")
	v.SetDefault("KAFKA_ALLOCATION_FAILURE_TOPIC", "allocation-failure")
	v.SetDefault("KAFKA_DEALLOCATE_ORDER_TOPIC", "deallocate-order")
	v.SetDefault("KAFKA_VALIDATE_ORDER_RESULT_TOPIC", "validate-order-result")
	v.SetDefault("KAFKA_ALLOCATE_ORDER_RESULT_TOPIC", "allocate-order-result")
	v.SetDefault("CONSUMER_CONCURRENCY", 1)
	v.SetDefault("GUARD_BACKEND", GuardBackendLocal)
	v.SetDefault("REDIS_LOCK_TTL", "30s")
	v.SetDefault("CONSISTENCY_WAIT_INTERVAL", "100ms")
	v.SetDefault("CONSISTENCY_WAIT_ATTEMPTS", 10)
	v.SetDefault("OUTBOX_RELAY_INTERVAL", "5s")
	v.SetDefault("OUTBOX_RELAY_DELAY", "10s")
	v.SetDefault("STALE_SWEEP_INTERVAL", "1m")
	v.SetDefault("REDRIVE_AFTER", "1m")
	v.SetDefault("PENDING_TIMEOUT", "15m")
	v.SetDefault("JOB_BATCH_SIZE", 100)
	v.SetDefault("TRACE_SAMPLE_RATIO", 1.0)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("LOG_LEVEL", "info")
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.HTTPPort, validation.Required),
		validation.Field(&c.DBHost, validation.Required),
		validation.Field(&c.DBPort, validation.Required),
		validation.Field(&c.DBUser, validation.Required),
		validation.Field(&c.DBName, validation.Required),
		validation.Field(&c.KafkaBrokers, validation.Required),
		validation.Field(&c.KafkaConsumerGroup, validation.Required),
		validation.Field(&c.KafkaValidateOrderTopic, validation.Required),
		validation.Field(&c.KafkaAllocateOrderTopic, validation.Required),
		validation.Field(&c.KafkaAllocationFailedTopic, validation.Required),
		validation.Field(&c.KafkaDeallocateOrderTopic, validation.Required),
		validation.Field(&c.KafkaValidationResultTopic, validation.Required),
		validation.Field(&c.KafkaAllocationResultTopic, validation.Required),
		validation.Field(&c.ConsumerConcurrency, validation.Required, validation.Min(1)),
		validation.Field(&c.GuardBackend, validation.In(GuardBackendLocal, GuardBackendRedis)),
		validation.Field(&c.RedisAddr, validation.When(c.GuardBackend == GuardBackendRedis, validation.Required)),
		validation.Field(&c.RedisLockTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.WaitInterval, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.WaitAttempts, validation.Required, validation.Min(uint(1))),
		validation.Field(&c.OutboxRelayInterval, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.OutboxRelayDelay, validation.Min(time.Duration(0))),
		validation.Field(&c.StaleSweepInterval, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.RedriveAfter, validation.Min(time.Duration(0))),
		validation.Field(&c.PendingTimeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.JobBatchSize, validation.Required, validation.Min(1), validation.Max(1000)),
		validation.Field(&c.TraceSampleRatio, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	)
}

// DSN is the libpq connection string shared by gorm, goose and the
// notification listener.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
