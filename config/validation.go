package config

import (
	"net/url"
	"time"
)

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of config validation.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Validate checks the config for invalid values.
func (c *Config) Validate() ValidationResult {
	var errors []ValidationError

	errors = append(errors, validateURL("polymarket.data_api_url", c.Polymarket.DataAPIURL)...)
	errors = append(errors, validateURL("nansen.base_url", c.Nansen.BaseURL)...)
	errors = append(errors, validatePipeline(&c.Pipeline)...)
	errors = append(errors, validateThresholds(&c.Thresholds)...)
	errors = append(errors, validateServer(&c.Server)...)

	return ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

func validateURL(field, raw string) []ValidationError {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return []ValidationError{{
			Field:   field,
			Message: "must be an absolute http(s) URL",
		}}
	}
	return nil
}

func validatePipeline(p *PipelineConfig) []ValidationError {
	var errors []ValidationError

	if p.TradesLimit < 1 {
		errors = append(errors, ValidationError{
			Field:   "pipeline.trades_limit",
			Message: "must be at least 1",
		})
	}
	if p.Window < time.Minute {
		errors = append(errors, ValidationError{
			Field:   "pipeline.window",
			Message: "must be at least 1 minute",
		})
	}
	if p.MinBetUSD < 0 {
		errors = append(errors, ValidationError{
			Field:   "pipeline.min_bet_usd",
			Message: "must be non-negative",
		})
	}
	if p.Concurrency < 1 {
		errors = append(errors, ValidationError{
			Field:   "pipeline.concurrency",
			Message: "must be at least 1",
		})
	}
	if p.ResultCap < 1 {
		errors = append(errors, ValidationError{
			Field:   "pipeline.result_cap",
			Message: "must be at least 1",
		})
	}
	if p.StatsCacheTTL < time.Second {
		errors = append(errors, ValidationError{
			Field:   "pipeline.stats_cache_ttl",
			Message: "must be at least 1 second",
		})
	}

	return errors
}

func validateThresholds(t *ThresholdsConfig) []ValidationError {
	var errors []ValidationError

	if t.MinTotalTrades < 0 {
		errors = append(errors, ValidationError{
			Field:   "thresholds.min_total_trades",
			Message: "must be non-negative",
		})
	}
	if t.MinWinRate < 0 || t.MinWinRate > 1 {
		errors = append(errors, ValidationError{
			Field:   "thresholds.min_win_rate",
			Message: "must be between 0 and 1",
		})
	}

	return errors
}

func validateServer(s *ServerConfig) []ValidationError {
	if !s.Enabled {
		return nil
	}
	if s.Port < 1 || s.Port > 65535 {
		return []ValidationError{{
			Field:   "server.port",
			Message: "must be a valid TCP port",
		}}
	}
	return nil
}
