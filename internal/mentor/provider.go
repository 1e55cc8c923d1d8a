package mentor

import "strings"

// Provider is the per-request model selection token.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderLlama3    Provider = "llama3"
)

// Providers lists every selectable provider in display order.
var Providers = []Provider{ProviderOpenAI, ProviderAnthropic, ProviderLlama3}

// ParseProvider maps a request "model" value onto a provider. Anything other than
// anthropic or llama3, including empty, selects OpenAI.
func ParseProvider(model string) Provider {
	switch Provider(strings.ToLower(strings.TrimSpace(model))) {
	case ProviderAnthropic:
		return ProviderAnthropic
	case ProviderLlama3:
		return ProviderLlama3
	default:
		return ProviderOpenAI
	}
}

// DisplayName is the operator-facing vendor name.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderAnthropic:
		return "Anthropic"
	case ProviderLlama3:
		return "Perplexity"
	default:
		return string(p)
	}
}

// CredentialEnv is the default environment variable holding the provider's API key.
func (p Provider) CredentialEnv() string {
	switch p {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderLlama3:
		return "PERPLEXITY_API_KEY"
	default:
		return ""
	}
}
