package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Mail      MailConfig      `yaml:"mail"`
	Auth      AuthConfig      `yaml:"auth"`
	Booking   BookingConfig   `yaml:"booking"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Worker    WorkerConfig    `yaml:"worker"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers         []string `yaml:"brokers"`
	ReminderTopic   string   `yaml:"reminder_topic"`
	ReviewTopic     string   `yaml:"review_topic"`
	DeadLetterTopic string   `yaml:"dead_letter_topic"`
	GroupID         string   `yaml:"group_id"`
}

type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type BookingConfig struct {
	SlotHoldTTLSeconds     int `yaml:"slot_hold_ttl_seconds"`
	DoctorsCacheTTLSeconds int `yaml:"doctors_cache_ttl_seconds"`
}

type SchedulerConfig struct {
	ReminderPeriodHours int `yaml:"reminder_period_hours"`
	// MaxReminders caps how many reminders one pending appointment may
	// receive across sweeps. Zero keeps re-notifying on every run.
	MaxReminders int `yaml:"max_reminders"`
}

type WorkerConfig struct {
	MaxAttempts        int `yaml:"max_attempts"`
	SendTimeoutSeconds int `yaml:"send_timeout_seconds"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
