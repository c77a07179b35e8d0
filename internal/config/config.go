package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Report    ReportConfig    `mapstructure:"report"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	// Env 为 "development" 时，错误响应会附带 details
	Env string `mapstructure:"env"`
}

// Development 表示是否处于开发环境
func (c AppConfig) Development() bool {
	return strings.EqualFold(c.Env, "development")
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

// LLMConfig 描述补全接口。APIKey 仅作为环境变量缺失时的兜底值。
type LLMConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	APIKeyEnv    string `mapstructure:"api_key_env"`
	BaseURL      string `mapstructure:"base_url"`
	Model        string `mapstructure:"model"`
	DebugRequest bool   `mapstructure:"debug_request"`
}

// Credential 在每次调用时重新读取凭证，环境变量优先于配置文件
func (c LLMConfig) Credential() string {
	if c.APIKeyEnv != "" {
		if key := strings.TrimSpace(os.Getenv(c.APIKeyEnv)); key != "" {
			return key
		}
	}
	return strings.TrimSpace(c.APIKey)
}

type ReportConfig struct {
	Title    string `mapstructure:"title"`
	Filename string `mapstructure:"filename"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type TelemetryConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ServiceName    string        `mapstructure:"service_name"`
	TraceFile      string        `mapstructure:"trace_file"`
	MetricsFile    string        `mapstructure:"metrics_file"`
	ExportInterval time.Duration `mapstructure:"export_interval"`
}

var cfg *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ResearchAI")
	v.SetDefault("app.env", "production")

	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.max_header_bytes", 1<<20)

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.api_key_env", "PERPLEXITY_API_KEY")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.debug_request", false)
	v.SetDefault("llm.model", "sonar-medium-online")

	v.SetDefault("report.title", "Chat History Report")
	v.SetDefault("report.filename", "chat-history-report.pdf")

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Accept", "X-Request-ID"})
	v.SetDefault("cors.exposed_headers", []string{"Content-Disposition", "X-Request-ID"})
	v.SetDefault("cors.max_age", 600)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "researchai")
	v.SetDefault("telemetry.trace_file", "logs/researchai_traces.log")
	v.SetDefault("telemetry.metrics_file", "logs/researchai_metrics.log")
	v.SetDefault("telemetry.export_interval", 10*time.Second)
}

// Load 读取配置文件（可选）并叠加 RESEARCHAI_ 前缀的环境变量
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RESEARCHAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", configPath, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config %s: %w", configPath, err)
		}
	}

	loaded := &Config{}
	if err := v.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := loaded.validate(); err != nil {
		return nil, err
	}

	cfg = loaded
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLM.Provider {
	case "openai", "ark", "qwen":
	default:
		return fmt.Errorf("unsupported llm provider %q", c.LLM.Provider)
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model must not be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

func Get() *Config {
	return cfg
}
