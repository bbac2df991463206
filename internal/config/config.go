package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Imgflip   ImgflipConfig   `mapstructure:"imgflip"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Log       LogConfig       `mapstructure:"log"`
}

// ImgflipConfig carries the provider credentials and HTTP settings.
// Username and password are required for rendering; search and
// per-template lookup additionally require a premium account.
type ImgflipConfig struct {
	Username      string        `mapstructure:"username"`
	Password      string        `mapstructure:"password"`
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	PremiumSearch bool          `mapstructure:"premium_search"`
	Font          string        `mapstructure:"font"`
	MaxFontSize   string        `mapstructure:"max_font_size"`
}

// GeneratorConfig selects how search terms and captions are produced.
// Provider "heuristic" needs no external service; "llm" calls an
// OpenAI-compatible chat completions endpoint.
type GeneratorConfig struct {
	Provider string        `mapstructure:"provider"`
	BaseURL  string        `mapstructure:"base_url"`
	Model    string        `mapstructure:"model"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
	MaxTerms int           `mapstructure:"max_terms"`
}

type LogConfig struct {
	Debug bool   `mapstructure:"debug"`
	File  string `mapstructure:"file"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("imgflip.base_url", "https://api.imgflip.com")
	v.SetDefault("imgflip.timeout", 30*time.Second)
	v.SetDefault("imgflip.premium_search", false)
	v.SetDefault("imgflip.font", "impact")
	v.SetDefault("imgflip.max_font_size", "50")
	v.SetDefault("generator.provider", "heuristic")
	v.SetDefault("generator.base_url", "https://api.openai.com/v1")
	v.SetDefault("generator.model", "gpt-4o-mini")
	v.SetDefault("generator.timeout", 30*time.Second)
	v.SetDefault("generator.max_terms", 3)
	v.SetDefault("log.debug", false)
	v.SetDefault("log.file", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("imgflip.username", "IMGFLIP_USERNAME")
	v.BindEnv("imgflip.password", "IMGFLIP_PASSWORD")
	v.BindEnv("imgflip.premium_search", "IMGFLIP_PREMIUM_SEARCH")
	v.BindEnv("generator.provider", "GENERATOR_PROVIDER")
	v.BindEnv("generator.api_key", "OPENAI_API_KEY")
	v.BindEnv("generator.base_url", "OPENAI_BASE_URL")
	v.BindEnv("generator.model", "GENERATOR_MODEL")
	v.BindEnv("log.debug", "MCP_DEBUG")
	v.BindEnv("log.file", "MCP_LOG_FILE")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// HasCredentials reports whether Imgflip credentials are present.
func (c *Config) HasCredentials() bool {
	return c.Imgflip.Username != "" && c.Imgflip.Password != ""
}
