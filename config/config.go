// Package config loads server configuration with viper from PAYROLL_*
// environment variables and an optional payroll.yaml file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config groups every setting the server reads at startup.
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	DB        DBConfig
	Payroll   PayrollConfig
	Scheduler SchedulerConfig
}

// AppConfig is the environment and log level.
type AppConfig struct {
	Env      string // development, production
	Name     string
	LogLevel string
}

// HTTPConfig is where the API listens.
type HTTPConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

// Addr returns host:port.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DBConfig locates the SQLite database. ":memory:" keeps everything in RAM.
type DBConfig struct {
	Path string
}

// PayrollConfig selects the formula set and legal parameters.
type PayrollConfig struct {
	// RulesFile is an optional JSON rules document; when set it wins over
	// FormulaVersion and the legal fields below.
	RulesFile          string
	FormulaVersion     string
	UtilityDaysPerYear int
	// VacationBaseDays of 0 means the progressive schedule.
	VacationBaseDays int
}

// SchedulerConfig controls the suspension reinstatement job.
type SchedulerConfig struct {
	Enabled  bool
	Interval time.Duration
}

// Load reads the configuration. Environment variables win over the file.
func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith reads the configuration through a caller-supplied viper.
func LoadWith(v *viper.Viper) (*Config, error) {
	v.SetConfigName("payroll")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("PAYROLL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("app.env"),
			Name:     v.GetString("app.name"),
			LogLevel: v.GetString("app.log_level"),
		},
		HTTP: HTTPConfig{
			Host:            v.GetString("http.host"),
			Port:            v.GetInt("http.port"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
			CORSOrigins:     v.GetStringSlice("http.cors_origins"),
		},
		DB: DBConfig{
			Path: v.GetString("db.path"),
		},
		Payroll: PayrollConfig{
			RulesFile:          v.GetString("payroll.rules_file"),
			FormulaVersion:     v.GetString("payroll.formula_version"),
			UtilityDaysPerYear: v.GetInt("payroll.utility_days_per_year"),
			VacationBaseDays:   v.GetInt("payroll.vacation_base_days"),
		},
		Scheduler: SchedulerConfig{
			Enabled:  v.GetBool("scheduler.enabled"),
			Interval: v.GetDuration("scheduler.interval"),
		},
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return nil, fmt.Errorf("invalid http.port %d", cfg.HTTP.Port)
	}
	if cfg.Scheduler.Enabled && cfg.Scheduler.Interval <= 0 {
		return nil, fmt.Errorf("scheduler.interval must be positive, got %s", cfg.Scheduler.Interval)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.name", "payroll-engine")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("http.cors_origins", []string{"*"})
	v.SetDefault("db.path", "payroll.db")
	v.SetDefault("payroll.rules_file", "")
	v.SetDefault("payroll.formula_version", "v2")
	v.SetDefault("payroll.utility_days_per_year", 30)
	v.SetDefault("payroll.vacation_base_days", 0)
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.interval", time.Minute)
}
