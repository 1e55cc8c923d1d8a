package app

import (
	"github.com/yungbote/codementor-backend/internal/config"
	"github.com/yungbote/codementor-backend/internal/mentor"
	"github.com/yungbote/codementor-backend/internal/platform/logger"
	"github.com/yungbote/codementor-backend/internal/providers"
	"github.com/yungbote/codementor-backend/internal/providers/anthropic"
	"github.com/yungbote/codementor-backend/internal/providers/openai"
	"github.com/yungbote/codementor-backend/internal/providers/perplexity"
)

type Adapters struct {
	OpenAI     *openai.Adapter
	Anthropic  *anthropic.Adapter
	Perplexity *perplexity.Adapter
}

func clientConfig(p mentor.Provider, pc config.ProviderConfig) providers.ClientConfig {
	return providers.ClientConfig{
		ID:        string(p),
		Name:      p.DisplayName(),
		BaseURL:   pc.BaseURL,
		APIKey:    pc.APIKey,
		APIKeyEnv: pc.APIKeyEnv,
		Timeout:   pc.Timeout.Duration,
	}
}

// wireProviders builds every adapter, configured or not. A missing key only
// fails the requests routed to that provider.
func wireProviders(cfg config.ProvidersConfig, log *logger.Logger) Adapters {
	log.Info("Wiring providers...")
	for _, p := range []struct {
		id mentor.Provider
		pc config.ProviderConfig
	}{
		{mentor.ProviderOpenAI, cfg.OpenAI},
		{mentor.ProviderAnthropic, cfg.Anthropic},
		{mentor.ProviderLlama3, cfg.Perplexity},
	} {
		if p.pc.APIKey == "" {
			log.Warn("provider API key not set; requests to this provider will fail", "provider", p.id, "env", p.pc.APIKeyEnv)
		}
	}

	oaClient := providers.NewClient(clientConfig(mentor.ProviderOpenAI, cfg.OpenAI), log)
	anClient := providers.NewClient(anthropic.ClientConfig(clientConfig(mentor.ProviderAnthropic, cfg.Anthropic)), log)
	ppClient := providers.NewClient(clientConfig(mentor.ProviderLlama3, cfg.Perplexity), log)

	return Adapters{
		OpenAI: openai.New(oaClient, openai.Config{
			Model:       cfg.OpenAI.Model,
			MaxTokens:   cfg.OpenAI.MaxTokens,
			Temperature: cfg.OpenAI.Temperature,
		}, log),
		Anthropic: anthropic.New(anClient, anthropic.Config{
			Model:       cfg.Anthropic.Model,
			MaxTokens:   cfg.Anthropic.MaxTokens,
			Temperature: cfg.Anthropic.Temperature,
		}, log),
		Perplexity: perplexity.New(ppClient, perplexity.Config{
			Model:     cfg.Perplexity.Model,
			MaxTokens: cfg.Perplexity.MaxTokens,
		}, log),
	}
}
