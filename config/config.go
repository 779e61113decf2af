package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Default poll intervals, in milliseconds. Weather changes slowly; rooms and
// the heat pump carry the readings we actually graph, so they poll more often.
const (
	DefaultWeatherIntervalMs  = 3600000
	DefaultRoomsIntervalMs    = 600000
	DefaultHeatPumpIntervalMs = 600000
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig
	Tado      TadoConfig
	Influx    InfluxConfig
	Logging   LoggingConfig
	TokenFile string
	DryRun    bool
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string
	Port int
}

// TadoConfig contains tado OAuth client settings and poll intervals
type TadoConfig struct {
	ClientID  string
	Intervals IntervalConfig
}

// IntervalConfig holds per-category poll intervals in milliseconds
type IntervalConfig struct {
	Weather  int
	Rooms    int
	HeatPump int
}

// InfluxConfig contains InfluxDB connection settings
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// LoggingConfig contains log output settings
type LoggingConfig struct {
	Level  string
	Format string
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: invalid server port", ErrInvalidConfig)
	}

	if c.Tado.ClientID == "" {
		return fmt.Errorf("%w: TADO_CLIENT_ID is required", ErrInvalidConfig)
	}

	if c.Influx.URL == "" || c.Influx.Token == "" || c.Influx.Org == "" || c.Influx.Bucket == "" {
		return fmt.Errorf("%w: INFLUX_URL, INFLUX_TOKEN, INFLUX_ORG and INFLUX_BUCKET are required", ErrInvalidConfig)
	}

	if c.Tado.Intervals.Weather <= 0 || c.Tado.Intervals.Rooms <= 0 || c.Tado.Intervals.HeatPump <= 0 {
		return fmt.Errorf("%w: poll intervals must be positive", ErrInvalidConfig)
	}

	if c.TokenFile == "" {
		return fmt.Errorf("%w: token file path is required", ErrInvalidConfig)
	}

	return nil
}

// WeatherInterval returns the weather poll interval as a duration
func (i IntervalConfig) WeatherInterval() time.Duration {
	return time.Duration(i.Weather) * time.Millisecond
}

// RoomsInterval returns the rooms poll interval as a duration
func (i IntervalConfig) RoomsInterval() time.Duration {
	return time.Duration(i.Rooms) * time.Millisecond
}

// HeatPumpInterval returns the heat pump poll interval as a duration
func (i IntervalConfig) HeatPumpInterval() time.Duration {
	return time.Duration(i.HeatPump) * time.Millisecond
}

// Load loads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	// Missing .env is fine, the environment may already be populated.
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Host: getEnv("TADO_LOGIN_HOST", "0.0.0.0"),
			Port: getEnvInt("TADO_LOGIN_PORT", 3000),
		},
		Tado: TadoConfig{
			ClientID: getEnv("TADO_CLIENT_ID", ""),
			Intervals: IntervalConfig{
				Weather:  getEnvInt("TADO_POLL_INTERVAL_WEATHER", DefaultWeatherIntervalMs),
				Rooms:    getEnvInt("TADO_POLL_INTERVAL_ROOMS", DefaultRoomsIntervalMs),
				HeatPump: getEnvInt("TADO_POLL_INTERVAL_HEATPUMP", DefaultHeatPumpIntervalMs),
			},
		},
		Influx: InfluxConfig{
			URL:    getEnv("INFLUX_URL", ""),
			Token:  getEnv("INFLUX_TOKEN", ""),
			Org:    getEnv("INFLUX_ORG", ""),
			Bucket: getEnv("INFLUX_BUCKET", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("TADO_LOG_LEVEL", "info"),
			Format: getEnv("TADO_LOG_FORMAT", "json"),
		},
		TokenFile: getEnv("TADO_TOKEN_FILE", "data/token.json"),
		DryRun:    getEnvBool("TADO_DRY_RUN", false),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}
