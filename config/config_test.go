package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3000,
		},
		Tado: TadoConfig{
			ClientID: "client-id",
			Intervals: IntervalConfig{
				Weather:  DefaultWeatherIntervalMs,
				Rooms:    DefaultRoomsIntervalMs,
				HeatPump: DefaultHeatPumpIntervalMs,
			},
		},
		Influx: InfluxConfig{
			URL:    "http://localhost:8086",
			Token:  "influx-token",
			Org:    "home",
			Bucket: "tado",
		},
		TokenFile: "data/token.json",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "invalid port - zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: true,
		},
		{
			name:    "invalid port - too large",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "missing client ID",
			mutate:  func(c *Config) { c.Tado.ClientID = "" },
			wantErr: true,
		},
		{
			name:    "missing influx URL",
			mutate:  func(c *Config) { c.Influx.URL = "" },
			wantErr: true,
		},
		{
			name:    "missing influx bucket",
			mutate:  func(c *Config) { c.Influx.Bucket = "" },
			wantErr: true,
		},
		{
			name:    "non-positive interval",
			mutate:  func(c *Config) { c.Tado.Intervals.Rooms = 0 },
			wantErr: true,
		},
		{
			name:    "missing token file",
			mutate:  func(c *Config) { c.TokenFile = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(&config)

			err := config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("TADO_CLIENT_ID", "env-client-id")
	t.Setenv("INFLUX_URL", "http://influx:8086")
	t.Setenv("INFLUX_TOKEN", "env-token")
	t.Setenv("INFLUX_ORG", "env-org")
	t.Setenv("INFLUX_BUCKET", "env-bucket")
	t.Setenv("TADO_POLL_INTERVAL_ROOMS", "120000")
	t.Setenv("TADO_LOGIN_PORT", "8080")
	t.Setenv("TADO_DRY_RUN", "true")

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "env-client-id", config.Tado.ClientID)
	assert.Equal(t, "http://influx:8086", config.Influx.URL)
	assert.Equal(t, "env-bucket", config.Influx.Bucket)
	assert.Equal(t, 8080, config.Server.Port)
	assert.True(t, config.DryRun)

	// Overridden interval plus defaults for the rest.
	assert.Equal(t, 120000, config.Tado.Intervals.Rooms)
	assert.Equal(t, DefaultWeatherIntervalMs, config.Tado.Intervals.Weather)
	assert.Equal(t, DefaultHeatPumpIntervalMs, config.Tado.Intervals.HeatPump)
	assert.Equal(t, 2*time.Minute, config.Tado.Intervals.RoomsInterval())
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("TADO_CLIENT_ID", "")
	t.Setenv("INFLUX_URL", "http://influx:8086")
	t.Setenv("INFLUX_TOKEN", "env-token")
	t.Setenv("INFLUX_ORG", "env-org")
	t.Setenv("INFLUX_BUCKET", "env-bucket")

	_, err := Load()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
