package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// flagKeys maps CLI flag names to configuration keys.
var flagKeys = map[string]string{
	"host":   "service.host",
	"port":   "service.port",
	"db-url": "service.database_url",
	"locale": "service.locale",
	"policy": "service.combinator_policy",
}

// LoadConfig loads configuration from file using viper.
// Environment > config file > defaults precedence.
func LoadConfig(configPath string) (*ServiceConfig, error) {
	return Load(configPath, nil)
}

// Load loads configuration with CLI flags taking precedence.
// CLI flags > environment > config file > defaults precedence.
// Only flags the user actually set override lower layers.
func Load(configPath string, flags *pflag.FlagSet) (*ServiceConfig, error) {
	v := viper.New()
	def := DefaultServiceConfig()

	// Set defaults matching DefaultServiceConfig
	v.SetDefault("service.host", def.Host)
	v.SetDefault("service.port", def.Port)
	v.SetDefault("service.max_connections", def.MaxConnections)
	v.SetDefault("service.request_timeout", def.RequestTimeout.String())
	v.SetDefault("service.database_url", def.DatabaseURL)
	v.SetDefault("service.locale", def.Locale)
	v.SetDefault("service.combinator_policy", def.CombinatorPolicy)
	v.SetDefault("service.record_evaluations", def.RecordEvaluations)

	// Bind environment variables with ADAPTIVE_ prefix
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets must be environment-only
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	cfg := &ServiceConfig{
		Host:              v.GetString("service.host"),
		Port:              v.GetInt("service.port"),
		MaxConnections:    v.GetInt("service.max_connections"),
		RequestTimeout:    v.GetDuration("service.request_timeout"),
		DatabaseURL:       v.GetString("service.database_url"),
		Locale:            v.GetString("service.locale"),
		CombinatorPolicy:  v.GetString("service.combinator_policy"),
		RecordEvaluations: v.GetBool("service.record_evaluations"),
	}
	if flags != nil {
		if f := flags.Lookup("no-audit"); f != nil && f.Changed {
			cfg.RecordEvaluations = false
		}
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks port range, positive limits, locale and policy.
func validateConfig(cfg *ServiceConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.MaxConnections <= 0 {
		return fmt.Errorf("max_connections must be positive, got %d", cfg.MaxConnections)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.RequestTimeout)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database_url must not be empty")
	}
	if _, err := language.Parse(cfg.Locale); err != nil {
		return fmt.Errorf("locale %q is not a valid BCP 47 tag", cfg.Locale)
	}
	switch cfg.CombinatorPolicy {
	case "collect-all", "short-circuit":
	default:
		return fmt.Errorf("combinator_policy must be collect-all or short-circuit, got %q", cfg.CombinatorPolicy)
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only secrets (12-factor principle).
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.IsSet("hmac_secret") || v.IsSet("service.hmac_secret") {
		return fmt.Errorf("HMAC secrets not allowed in config files (use %s_HMAC_SECRET environment variable)", EnvPrefix)
	}
	return nil
}
