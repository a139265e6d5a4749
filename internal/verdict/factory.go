package verdict

import (
	"context"
	"errors"
	"fmt"

	"github.com/moolen/faultline/internal/config"
	"github.com/moolen/faultline/internal/logging"
)

// NewGenerator builds the generator for the configured transport. It returns
// nil, nil when verdicts are disabled or when an SDK transport has no API
// key; the adapter then always falls back.
func NewGenerator(ctx context.Context, cfg config.VerdictConfig) (Generator, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	logger := logging.GetLogger("verdict")

	var (
		gen Generator
		err error
	)
	switch cfg.Transport {
	case config.TransportREST, "":
		return NewRESTGenerator(cfg.Endpoint, cfg.APIKey, cfg.Timeout), nil
	case config.TransportGenAI:
		gen, err = NewGenAIGenerator(ctx, cfg.APIKey, cfg.BaseURL, cfg.Model)
	case config.TransportAnthropic:
		gen, err = NewAnthropicGenerator(cfg.APIKey, cfg.BaseURL, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported verdict transport %q", cfg.Transport)
	}

	if errors.Is(err, ErrMissingAPIKey) {
		logger.Warn("No API key in $%s, %s verdicts will use fallback reasons", cfg.APIKeyEnv, cfg.Transport)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return gen, nil
}
