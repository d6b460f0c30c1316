package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Environment variable names read by the Slack handler
const (
	TokenEnv   = "SLACK_TOKEN"
	ChannelEnv = "SLACK_CHANNEL"
	PrefixEnv  = "DECO_SLACK_PREFIX"
)

// Env holds process-level settings loaded from environment variables
type Env struct {
	// Prefix is applied to SLACK_TOKEN and SLACK_CHANNEL,
	// so JOB_A_ reads JOB_A_SLACK_TOKEN and JOB_A_SLACK_CHANNEL.
	Prefix string `envconfig:"DECO_SLACK_PREFIX"`

	// LogLevel sets the minimum diagnostic log level (debug, info, warn, error).
	LogLevel string `envconfig:"DECO_SLACK_LOG_LEVEL" default:"info"`

	// ConfigFile overrides the default job file location.
	ConfigFile string `envconfig:"DECO_SLACK_CONFIG"`
}

// Slack holds the connection parameters of a Slack handler
type Slack struct {
	Token   string `yaml:"token"`
	Channel string `yaml:"channel"`
	Prefix  string `yaml:"prefix"`
}

// LoadEnv reads Env from environment variables using envconfig.
func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return &env, nil
}

// ResolveSlack fills the fields missing from explicit with the
// (optionally prefixed) environment variables.
func ResolveSlack(explicit Slack) Slack {
	resolved := explicit
	if resolved.Prefix == "" {
		resolved.Prefix = os.Getenv(PrefixEnv)
	}
	if resolved.Token == "" {
		resolved.Token = os.Getenv(resolved.Prefix + TokenEnv)
	}
	if resolved.Channel == "" {
		resolved.Channel = os.Getenv(resolved.Prefix + ChannelEnv)
	}
	return resolved
}

// HasCredentials reports whether both token and channel are set
func (s Slack) HasCredentials() bool {
	return s.Token != "" && s.Channel != ""
}

func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".deco-slack"), nil
}

// DefaultJobFile returns ~/.deco-slack/job.yaml
func DefaultJobFile() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "job.yaml"), nil
}
