package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	PuGoing  *PuGoingConfig
	Mqtt     *MqttConfig
	Debounce *DebounceConfig
	HTTPAddr string `env:"HTTP_ADDR" envDefault:"0.0.0.0:8000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"INFO"`
}

// PuGoingConfig covers the vendor cloud API. BaseURL, when set, overrides
// the environment-selected base (used by tests and on-prem deployments).
type PuGoingConfig struct {
	Username     string        `env:"PUGOING_USERNAME"`
	Password     string        `env:"PUGOING_PASSWORD"`
	Environment  string        `env:"PUGOING_ENVIRONMENT" envDefault:"domestic"`
	APIVersion   string        `env:"PUGOING_API_VERSION" envDefault:"old"`
	BaseURL      string        `env:"PUGOING_BASE_URL"`
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"1500ms"`
	MinKelvin    int           `env:"PUGOING_MIN_KELVIN" envDefault:"2000"`
	MaxKelvin    int           `env:"PUGOING_MAX_KELVIN" envDefault:"6500"`
}

type MqttConfig struct {
	Host     string `env:"MQTT_HOST"`
	Port     int    `env:"MQTT_PORT" envDefault:"1883"`
	Username string `env:"MQTT_USER"`
	Password string `env:"MQTT_PASS"`
	ClientID string `env:"MQTT_CLIENT_ID" envDefault:"pugoing-bridge"`
}

// DebounceConfig tunes the reconciliation windows per entity kind.
type DebounceConfig struct {
	Lamp           time.Duration `env:"DEBOUNCE_LAMP" envDefault:"5s"`
	RGBCW          time.Duration `env:"DEBOUNCE_RGBCW" envDefault:"10s"`
	Curtain        time.Duration `env:"DEBOUNCE_CURTAIN" envDefault:"5s"`
	Breaker        time.Duration `env:"DEBOUNCE_BREAKER" envDefault:"5s"`
	SceneButton    time.Duration `env:"DEBOUNCE_SCENE_BUTTON" envDefault:"10s"`
	ClimateConfirm time.Duration `env:"DEBOUNCE_CLIMATE_CONFIRM" envDefault:"10s"`
}

// FromEnv builds the full config from environment variables. Credentials
// and broker details may be overridden afterwards by CLI flags.
func FromEnv() (*Config, error) {
	cfg := &Config{
		PuGoing:  &PuGoingConfig{},
		Mqtt:     &MqttConfig{},
		Debounce: &DebounceConfig{},
	}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
