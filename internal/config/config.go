package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`

	ChatLimit          int           `mapstructure:"chat_limit"`
	ChatWindow         time.Duration `mapstructure:"chat_window"`
	SubstitutionLimit  int           `mapstructure:"substitution_limit"`
	SubstitutionWindow time.Duration `mapstructure:"substitution_window"`
	TimeoutLimit       int           `mapstructure:"timeout_limit"`
	TimeoutWindow      time.Duration `mapstructure:"timeout_window"`

	AuditCapacity        int `mapstructure:"audit_capacity"`
	MinAttendanceMinutes int `mapstructure:"min_attendance_minutes"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("chat_limit", 5)
	v.SetDefault("chat_window", "10s")
	v.SetDefault("substitution_limit", 3)
	v.SetDefault("substitution_window", "10s")
	v.SetDefault("timeout_limit", 3)
	v.SetDefault("timeout_window", "10s")
	v.SetDefault("audit_capacity", 1000)
	v.SetDefault("min_attendance_minutes", 10)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
