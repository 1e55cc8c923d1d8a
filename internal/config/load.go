package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/codementor-backend/internal/platform/envutil"
)

const (
	DefaultProviderTimeout = 60 * time.Second

	DefaultOpenAIModel     = "gpt-4o"
	DefaultAnthropicModel  = "claude-3-7-sonnet-20250219"
	DefaultPerplexityModel = "llama-3.1-sonar-small-128k-online"
)

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		d.Duration = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		u, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		return d.parse(u)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("duration must be a JSON string like \"5s\" or an int nanoseconds: %w", err)
	}
	d.Duration = time.Duration(n)
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar (line %d)", node.Line)
	}
	if node.Tag == "!!int" {
		n, err := strconv.ParseInt(node.Value, 10, 64)
		if err != nil {
			return err
		}
		d.Duration = time.Duration(n)
		return nil
	}
	return d.parse(node.Value)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

func (d *Duration) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		d.Duration = 0
		return nil
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = dd
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			IdleTimeout:       Duration{Duration: 2 * time.Minute},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
			MaxRequestBytes:   1 << 20,
		},
		Providers: ProvidersConfig{
			OpenAI: ProviderConfig{
				BaseURL:   "https://api.openai.com",
				Model:     DefaultOpenAIModel,
				APIKeyEnv: "OPENAI_API_KEY",
			},
			Anthropic: ProviderConfig{
				BaseURL:   "https://api.anthropic.com",
				Model:     DefaultAnthropicModel,
				APIKeyEnv: "ANTHROPIC_API_KEY",
				MaxTokens: 1500,
			},
			Perplexity: ProviderConfig{
				BaseURL:   "https://api.perplexity.ai",
				Model:     DefaultPerplexityModel,
				APIKeyEnv: "PERPLEXITY_API_KEY",
				MaxTokens: 2048,
			},
		},
		Database:  DatabaseConfig{Driver: "none"},
		Telemetry: TelemetryConfig{ServiceName: "codementor"},
	}
}

// Load builds the process config: .env, defaults, optional config file, then env overrides.
func Load() (*Config, error) {
	dotenv := envutil.String("MENTOR_DOTENV_PATH", ".env")
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", dotenv, err)
	}

	cfg := defaultConfig()

	cfgPath := strings.TrimSpace(os.Getenv("MENTOR_CONFIG_PATH"))
	if cfgPath == "" {
		cfgPath = findConfigFile()
	}
	if cfgPath != "" {
		if err := readFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgPath, err)
		}
	}

	applyEnv(cfg)

	if err := normalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for _, name := range []string{"config.json", "config.yaml", "config.yml"} {
		p := filepath.Join(wd, "config", name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// readFile decodes over cfg so keys absent from the file keep their defaults.
func readFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	default:
		return json.Unmarshal(b, cfg)
	}
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("LOG_MODE", cfg.Env)
	if port := envutil.String("PORT", ""); port != "" {
		cfg.HTTP.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	cfg.HTTP.Addr = envutil.String("MENTOR_HTTP_ADDR", cfg.HTTP.Addr)
	if origins := envutil.List("CORS_ALLOWED_ORIGINS"); len(origins) > 0 {
		cfg.HTTP.AllowedOrigins = origins
	}

	p := &cfg.Providers
	p.OpenAI.BaseURL = envutil.String("OPENAI_BASE_URL", p.OpenAI.BaseURL)
	p.OpenAI.Model = envutil.String("OPENAI_MODEL", p.OpenAI.Model)
	p.Anthropic.BaseURL = envutil.String("ANTHROPIC_BASE_URL", p.Anthropic.BaseURL)
	p.Anthropic.Model = envutil.String("ANTHROPIC_MODEL", p.Anthropic.Model)
	p.Perplexity.BaseURL = envutil.String("PERPLEXITY_BASE_URL", p.Perplexity.BaseURL)
	p.Perplexity.Model = envutil.String("PERPLEXITY_MODEL", p.Perplexity.Model)
	if d := envutil.Duration("PROVIDER_TIMEOUT", 0); d > 0 {
		for _, pc := range p.all() {
			pc.Timeout = Duration{Duration: d}
		}
	}

	cfg.Database.Driver = envutil.String("DATABASE_DRIVER", cfg.Database.Driver)
	cfg.Database.DSN = envutil.String("DATABASE_DSN", cfg.Database.DSN)
}

func normalize(cfg *Config) error {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "development"
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.MaxRequestBytes <= 0 {
		cfg.HTTP.MaxRequestBytes = 1 << 20
	}
	if cfg.HTTP.ShutdownTimeout.Duration <= 0 {
		cfg.HTTP.ShutdownTimeout = Duration{Duration: 15 * time.Second}
	}

	defaults := defaultConfig().Providers
	pairs := []struct {
		name string
		cur  *ProviderConfig
		def  ProviderConfig
	}{
		{"openai", &cfg.Providers.OpenAI, defaults.OpenAI},
		{"anthropic", &cfg.Providers.Anthropic, defaults.Anthropic},
		{"perplexity", &cfg.Providers.Perplexity, defaults.Perplexity},
	}
	for _, pr := range pairs {
		pc := pr.cur
		pc.BaseURL = strings.TrimRight(strings.TrimSpace(pc.BaseURL), "/")
		if pc.BaseURL == "" {
			pc.BaseURL = pr.def.BaseURL
		}
		if strings.TrimSpace(pc.Model) == "" {
			pc.Model = pr.def.Model
		}
		if strings.TrimSpace(pc.APIKeyEnv) == "" {
			pc.APIKeyEnv = pr.def.APIKeyEnv
		}
		if pc.Timeout.Duration < 0 {
			return fmt.Errorf("providers.%s.timeout must not be negative", pr.name)
		}
		if pc.Timeout.Duration == 0 {
			pc.Timeout = Duration{Duration: DefaultProviderTimeout}
		}
		if pc.MaxTokens < 0 {
			return fmt.Errorf("providers.%s.max_tokens must not be negative", pr.name)
		}
		if pc.MaxTokens == 0 {
			pc.MaxTokens = pr.def.MaxTokens
		}
		pc.APIKey = strings.TrimSpace(os.Getenv(pc.APIKeyEnv))
	}

	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	switch cfg.Database.Driver {
	case "", "none":
		cfg.Database.Driver = "none"
	case "sqlite":
		if strings.TrimSpace(cfg.Database.DSN) == "" {
			cfg.Database.DSN = "file:codementor.db?cache=shared"
		}
	case "postgres":
		if strings.TrimSpace(cfg.Database.DSN) == "" {
			return errors.New("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid database.driver=%q", cfg.Database.Driver)
	}

	if strings.TrimSpace(cfg.Telemetry.ServiceName) == "" {
		cfg.Telemetry.ServiceName = "codementor"
	}
	return nil
}

func (p *ProvidersConfig) all() []*ProviderConfig {
	return []*ProviderConfig{&p.OpenAI, &p.Anthropic, &p.Perplexity}
}
