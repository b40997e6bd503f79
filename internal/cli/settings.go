package cli

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"truthmate_probe/internal/config"
	"truthmate_probe/internal/gemini"
	"truthmate_probe/internal/logging"
)

type settingsView struct {
	APIKeyConfigured bool                 `yaml:"api_key_configured" json:"api_key_configured"`
	APIKey           string               `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	ModelFast        string               `yaml:"model_fast" json:"model_fast"`
	ModelReasoning   string               `yaml:"model_reasoning" json:"model_reasoning"`
	UserAgent        string               `yaml:"user_agent" json:"user_agent"`
	MLServiceURL     string               `yaml:"ml_service_url" json:"ml_service_url"`
	GatewayURL       string               `yaml:"gateway_url" json:"gateway_url"`
	ConfigFile       string               `yaml:"config_file,omitempty" json:"config_file,omitempty"`
	Models           []gemini.ModelStatus `yaml:"models,omitempty" json:"models,omitempty"`
}

func newSettingsCommand(a *app) *cobra.Command {
	var checkModels bool
	var apiBaseURL string
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show the resolved provider settings",
		Long: fmt.Sprintf(`Show the provider settings shared with the ML service.

The API key is read from %s, then %s. The key itself is never printed
in full. With --check-models, both configured model identifiers are looked
up through the Gemini API.`, config.EnvGoogleAPIKey, config.EnvGeminiAPIKey),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := logging.FromContext(cmd.Context())
			s := a.cfg.Settings
			view := settingsView{
				APIKeyConfigured: s.HasAPIKey(),
				APIKey:           s.MaskedAPIKey(),
				ModelFast:        s.ModelFast,
				ModelReasoning:   s.ModelReasoning,
				UserAgent:        s.UserAgent,
				MLServiceURL:     a.cfg.MLServiceURL,
				GatewayURL:       a.cfg.GatewayURL,
				ConfigFile:       a.cfg.ConfigFile,
			}
			if !s.HasAPIKey() {
				logger.Warn().Msgf("No API key found in %s or %s", config.EnvGoogleAPIKey, config.EnvGeminiAPIKey)
			}

			if checkModels {
				statuses, err := gemini.CheckModels(cmd.Context(), s, gemini.Options{
					BaseURL: apiBaseURL,
					Logger:  logger,
				})
				if err != nil {
					return err
				}
				view.Models = statuses
			}

			rep, err := a.reporter()
			if err != nil {
				return err
			}
			if rep.Structured() {
				return rep.Encode(view)
			}
			return a.printSettings(view)
		},
	}
	cmd.Flags().BoolVar(&checkModels, "check-models", false, "look up the configured models through the Gemini API")
	cmd.Flags().StringVar(&apiBaseURL, "api-base-url", "", "override the Gemini API base URL")
	return cmd
}

func (a *app) printSettings(v settingsView) error {
	key := "not set"
	if v.APIKeyConfigured {
		key = v.APIKey
	}

	table := tablewriter.NewTable(a.out)
	table.Header("Setting", "Value")
	rows := [][]string{
		{"API key", key},
		{"Fast model", v.ModelFast},
		{"Reasoning model", v.ModelReasoning},
		{"User-Agent", v.UserAgent},
		{"ML service", v.MLServiceURL},
		{"Gateway", v.GatewayURL},
	}
	if v.ConfigFile != "" {
		rows = append(rows, []string{"Config file", v.ConfigFile})
	}
	for _, row := range rows {
		if err := table.Append(row[0], row[1]); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(v.Models) == 0 {
		return nil
	}
	fmt.Fprintln(a.out)
	models := tablewriter.NewTable(a.out)
	models.Header("Role", "Model", "Available", "Input Tokens", "Output Tokens", "Error")
	for _, m := range v.Models {
		if err := models.Append(
			m.Role,
			m.Model,
			strconv.FormatBool(m.Available),
			strconv.Itoa(int(m.InputTokenLimit)),
			strconv.Itoa(int(m.OutputTokenLimit)),
			m.Error,
		); err != nil {
			return err
		}
	}
	return models.Render()
}
