package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// ProviderConfig holds per-provider overrides from the config file.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Config stores all configuration of the application.
type Config struct {
	DefaultProvider      string                    `mapstructure:"default_provider"`
	DefaultModel         string                    `mapstructure:"default_model"`
	TempDir              string                    `mapstructure:"temp_dir"`
	OutputDir            string                    `mapstructure:"output_dir"`
	ManimPath            string                    `mapstructure:"manim_path"`
	Quality              string                    `mapstructure:"quality"`
	Complexity           string                    `mapstructure:"complexity"`
	RenderTimeoutSeconds int                       `mapstructure:"render_timeout_seconds"`
	RequestsPerMinute    int                       `mapstructure:"requests_per_minute"`
	TellmURL             string                    `mapstructure:"tellm_url"`
	Server               ServerConfig              `mapstructure:"server"`
	Providers            map[string]ProviderConfig `mapstructure:"providers"`
}

// LoadConfig reads configuration from file or environment variables.
// An empty configPath falls back to manimation.yaml in the working
// directory or ~/.manimation, and silently uses defaults when neither
// exists.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	tempDir, outputDir := defaultDirs()

	// Set default values
	v.SetDefault("default_provider", "openai")
	v.SetDefault("default_model", "")
	v.SetDefault("temp_dir", tempDir)
	v.SetDefault("output_dir", outputDir)
	v.SetDefault("manim_path", "manim")
	v.SetDefault("quality", "medium")
	v.SetDefault("complexity", "medium")
	v.SetDefault("render_timeout_seconds", 300)
	v.SetDefault("requests_per_minute", 60)
	v.SetDefault("tellm_url", "")
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName("manimation")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.manimation")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	// Read from environment variables
	v.AutomaticEnv()

	// Set specific environment variable names
	v.BindEnv("default_provider", "MANIMATION_PROVIDER")
	v.BindEnv("default_model", "MANIMATION_MODEL")
	v.BindEnv("temp_dir", "MANIMATION_TEMP_DIR")
	v.BindEnv("output_dir", "MANIMATION_OUTPUT_DIR")
	v.BindEnv("manim_path", "MANIM_PATH")
	v.BindEnv("tellm_url", "TELLM_URL")

	var config Config
	err := v.Unmarshal(&config)
	if err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &config, nil
}

// defaultDirs picks the working roots. Constrained hosts (detected via
// SPACE_ID) only guarantee a writable /tmp, so both roots land there.
func defaultDirs() (tempDir, outputDir string) {
	if os.Getenv("SPACE_ID") != "" {
		return "/tmp/manimation", "/tmp/manimation/videos"
	}
	return "./tmp", "./videos"
}

// ProviderKey returns the configured API key for a provider, if any.
func (c *Config) ProviderKey(name string) string {
	if p, ok := c.Providers[name]; ok {
		return p.APIKey
	}
	return ""
}

// ProviderBaseURL returns the configured base URL override for a provider.
func (c *Config) ProviderBaseURL(name string) string {
	if p, ok := c.Providers[name]; ok {
		return p.BaseURL
	}
	return ""
}
