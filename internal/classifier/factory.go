package classifier

import (
	"fmt"

	"github.com/noah-isme/civic-triage-api/pkg/config"
)

// NewProvider selects a provider from configuration. It returns nil when
// classification is disabled.
func NewProvider(cfg config.ClassifierConfig) (Provider, error) {
	switch cfg.Provider {
	case "", config.ClassifierProviderNone:
		return nil, nil
	case config.ClassifierProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("classifier provider %q requires CLASSIFIER_API_KEY", cfg.Provider)
		}
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL, nil), nil
	case config.ClassifierProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("classifier provider %q requires CLASSIFIER_API_KEY", cfg.Provider)
		}
		return NewAnthropicProvider(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown classifier provider %q", cfg.Provider)
	}
}
