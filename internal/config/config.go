// Package config provides centralized configuration management for the application.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Environment variables read by Load.
const (
	EnvToken        = "ADO_TOKEN"
	EnvOrganization = "ADO_ORGANIZATION"
	EnvBaseURL      = "ADO_BASE_URL"
	EnvAuthScheme   = "ADO_AUTH_SCHEME"
	EnvLogLevel     = "LOG_LEVEL"
	EnvLogFile      = "LOG_FILE"
)

// DefaultBaseURL is the Azure DevOps Services host.
const DefaultBaseURL = "https://dev.azure.com"

// Supported values for AzureDevOpsConfig.AuthScheme.
const (
	// AuthSchemeBasic sends the token as a Basic auth password with an empty username.
	AuthSchemeBasic = "basic"
	// AuthSchemeBearer sends the token as an OAuth2 bearer token.
	AuthSchemeBearer = "bearer"
)

// Config holds all configuration parameters for the application.
type Config struct {
	AzureDevOps AzureDevOpsConfig
	Log         LogConfig
}

// AzureDevOpsConfig holds Azure DevOps specific configuration.
type AzureDevOpsConfig struct {
	// Token is the personal access token used when a call does not supply one.
	Token string

	// Organization is used when a call does not supply one.
	Organization string

	BaseURL    string
	AuthScheme string
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string
	File  string
}

// flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"organization": "ado.organization",
	"base-url":     "ado.base_url",
	"auth-scheme":  "ado.auth_scheme",
	"log-level":    "log.level",
	"log-file":     "log.file",
}

// Load reads configuration from environment variables, an optional config
// file and, when given, command line flags. Flags that were set explicitly
// take precedence over the environment, which takes precedence over the file.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("ado.base_url", DefaultBaseURL)
	v.SetDefault("ado.auth_scheme", AuthSchemeBasic)
	v.SetDefault("log.level", "info")

	// Map specific environment variables
	bindings := map[string]string{
		"ado.token":        EnvToken,
		"ado.organization": EnvOrganization,
		"ado.base_url":     EnvBaseURL,
		"ado.auth_scheme":  EnvAuthScheme,
		"log.level":        EnvLogLevel,
		"log.file":         EnvLogFile,
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
	}

	config := &Config{
		AzureDevOps: AzureDevOpsConfig{
			Token:        strings.TrimSpace(v.GetString("ado.token")),
			Organization: strings.TrimSpace(v.GetString("ado.organization")),
			BaseURL:      strings.TrimRight(strings.TrimSpace(v.GetString("ado.base_url")), "/"),
			AuthScheme:   strings.ToLower(strings.TrimSpace(v.GetString("ado.auth_scheme"))),
		},
		Log: LogConfig{
			Level: strings.ToLower(v.GetString("log.level")),
			File:  v.GetString("log.file"),
		},
	}

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate ensures that the configured values are usable. Credentials are not
// checked here because every call may supply its own.
func Validate(config *Config) error {
	if config.AzureDevOps.BaseURL == "" {
		return fmt.Errorf("%s must not be empty", EnvBaseURL)
	}

	u, err := url.Parse(config.AzureDevOps.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", EnvBaseURL, config.AzureDevOps.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s %q: scheme must be http or https", EnvBaseURL, config.AzureDevOps.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid %s %q: missing host", EnvBaseURL, config.AzureDevOps.BaseURL)
	}

	switch config.AzureDevOps.AuthScheme {
	case AuthSchemeBasic, AuthSchemeBearer:
	default:
		return fmt.Errorf("invalid %s %q: must be %q or %q",
			EnvAuthScheme, config.AzureDevOps.AuthScheme, AuthSchemeBasic, AuthSchemeBearer)
	}

	return nil
}

// MissingCredentials returns the environment variables of the default
// credentials that are not configured.
func MissingCredentials(config *Config) []string {
	var missingVars []string

	if config.AzureDevOps.Token == "" {
		missingVars = append(missingVars, EnvToken)
	}
	if config.AzureDevOps.Organization == "" {
		missingVars = append(missingVars, EnvOrganization)
	}

	return missingVars
}
