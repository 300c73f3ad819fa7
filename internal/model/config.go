package model

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root structure loaded from configs/config.yml. It is read
// once at startup; there is no dynamic reconfiguration.
type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Planner PlannerConfig `yaml:"planner"`
	Android AndroidConfig `yaml:"android"`
}

// SerialConfig describes the serial channel to the motor controller.
type SerialConfig struct {
	Device string `yaml:"device"` // e.g. /dev/ttyUSB0
	Baud   int    `yaml:"baud"`
}

// PlannerConfig locates the external path-planning/recognition service.
type PlannerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// BaseURL renders the planner service endpoint.
func (p PlannerConfig) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", p.Host, p.Port)
}

// AndroidConfig describes the listening side of the app link.
type AndroidConfig struct {
	Addr string `yaml:"addr"` // e.g. ":9004"
}

// LoadConfig reads and validates the YAML configuration at path. Unknown
// keys are rejected so a typo cannot silently disable an option.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Serial.Baud == 0 {
		c.Serial.Baud = 115200
	}
	if c.Planner.Host == "" {
		c.Planner.Host = "127.0.0.1"
	}
	if c.Planner.Port == 0 {
		c.Planner.Port = 5000
	}
	if c.Android.Addr == "" {
		c.Android.Addr = ":9004"
	}
}
