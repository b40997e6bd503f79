// Package gemini confirms that the configured model identifiers resolve
// against the Gemini API with the resolved key. It reads model metadata only
// and never runs inference.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"truthmate_probe/internal/config"
	"truthmate_probe/internal/errs"
)

// Options tunes the client. Zero values use the public Gemini API.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// ModelStatus is the lookup result for one configured model.
type ModelStatus struct {
	Role             string `yaml:"role" json:"role"`
	Model            string `yaml:"model" json:"model"`
	Available        bool   `yaml:"available" json:"available"`
	DisplayName      string `yaml:"display_name,omitempty" json:"display_name,omitempty"`
	InputTokenLimit  int32  `yaml:"input_token_limit,omitempty" json:"input_token_limit,omitempty"`
	OutputTokenLimit int32  `yaml:"output_token_limit,omitempty" json:"output_token_limit,omitempty"`
	Error            string `yaml:"error,omitempty" json:"error,omitempty"`
}

// CheckModels looks up the fast and reasoning models. A missing API key
// returns errs.ErrAPIKeyRequired before any request is made. Lookup failures
// for individual models are reported in the returned statuses.
func CheckModels(ctx context.Context, settings config.Settings, opts Options) ([]ModelStatus, error) {
	if !settings.HasAPIKey() {
		return nil, fmt.Errorf("set %s or %s: %w", config.EnvGoogleAPIKey, config.EnvGeminiAPIKey, errs.ErrAPIKeyRequired)
	}

	cc := &genai.ClientConfig{
		Backend:    genai.BackendGeminiAPI,
		APIKey:     settings.APIKey,
		HTTPClient: opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: opts.BaseURL,
			Headers: http.Header{"User-Agent": []string{settings.UserAgent}},
		},
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, errs.NewConfigError("gemini", "create client", err)
	}

	models := []struct{ role, name string }{
		{"fast", settings.ModelFast},
		{"reasoning", settings.ModelReasoning},
	}
	statuses := make([]ModelStatus, 0, len(models))
	for _, m := range models {
		status := ModelStatus{Role: m.role, Model: m.name}
		info, err := client.Models.Get(ctx, m.name, &genai.GetModelConfig{})
		if err != nil {
			status.Error = err.Error()
			opts.Logger.Warn().Err(err).Str("model", m.name).Msg("Model lookup failed")
		} else {
			status.Available = true
			status.DisplayName = info.DisplayName
			status.InputTokenLimit = info.InputTokenLimit
			status.OutputTokenLimit = info.OutputTokenLimit
			opts.Logger.Debug().Str("model", strings.TrimPrefix(info.Name, "models/")).Msg("Model available")
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
