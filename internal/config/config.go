package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// FileName is the config file searched for in the working directory.
const FileName = "proxmox-swarm"

type Config struct {
	Host     string    `mapstructure:"host"`
	TokenID  string    `mapstructure:"token_id"`
	Token    string    `mapstructure:"token"`
	Node     string    `mapstructure:"node"`
	Insecure bool      `mapstructure:"insecure"`
	LogLevel string    `mapstructure:"log_level"`
	SDN      SDNConfig `mapstructure:"sdn"`
}

type SDNConfig struct {
	Network string `mapstructure:"network"`
	Zone    string `mapstructure:"zone"`
	VLAN    int    `mapstructure:"vlan"`
	Create  bool   `mapstructure:"create"`
}

// ValidationError reports a config problem with a suggested fix.
type ValidationError struct {
	Field      string // dotted path, e.g. "token_id"
	Message    string // what's wrong
	Suggestion string // how to fix it
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Load() (*Config, error) {
	cfg := &Config{
		LogLevel: "info",
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings needed to reach the Proxmox API.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError
	if c.Host == "" {
		errs = append(errs, ValidationError{
			Field:      "host",
			Message:    "host is required",
			Suggestion: "set the address of your Proxmox VE instance, e.g. https://pve.local:8006",
		})
	}
	if c.TokenID == "" || c.Token == "" {
		errs = append(errs, ValidationError{
			Field:      "token_id",
			Message:    "token_id and token are required for API authentication",
			Suggestion: "create an API token in Proxmox: Datacenter → Permissions → API Tokens",
		})
	}
	if c.SDN.VLAN < 0 || c.SDN.VLAN > 4094 {
		errs = append(errs, ValidationError{
			Field:      "sdn.vlan",
			Message:    fmt.Sprintf("VLAN %d is out of range", c.SDN.VLAN),
			Suggestion: "use a VLAN tag between 1 and 4094, or 0 for untagged",
		})
	}
	return errs
}

// VLANTag returns the SDN VLAN tag, or nil when untagged.
func (c *Config) VLANTag() *int {
	if c.SDN.VLAN == 0 {
		return nil
	}
	tag := c.SDN.VLAN
	return &tag
}
