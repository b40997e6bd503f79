package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"truthmate_probe/internal/errs"
)

// Provider settings.
const (
	EnvGoogleAPIKey = "GOOGLE_API_KEY"
	EnvGeminiAPIKey = "GEMINI_API_KEY"

	// ModelFast is used for quick analysis.
	ModelFast = "gemini-1.5-flash"
	// ModelReasoning is used for complex analysis.
	ModelReasoning = "gemini-1.5-flash-thinking-exp-1219"

	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Defaults.
const (
	DefaultMLServiceURL    = "http://127.0.0.1:5000"
	DefaultGatewayURL      = "http://localhost:3000"
	DefaultProbeTimeout    = 10 * time.Second
	DefaultPipelineTimeout = 15 * time.Second
	DefaultSheetName       = "Sheet1"
	DefaultOutput          = "table"

	DefaultSampleText = "BREAKING: Scientists discover miracle cure that eliminates all diseases!"
	DefaultClaim      = "The COVID-19 vaccine is effective at preventing severe illness"

	configName = ".truthprobe"
)

// APIKeyEnvVars lists the variables consulted for the provider key, in order.
var APIKeyEnvVars = []string{EnvGoogleAPIKey, EnvGeminiAPIKey}

// DefaultClaims is the batch used by the claims command.
var DefaultClaims = []string{
	"The Earth is flat",
	"Water boils at 100°C at sea level",
	"COVID-19 vaccines contain microchips",
	"Regular exercise improves cardiovascular health",
}

// Settings is the generative-AI provider configuration.
type Settings struct {
	APIKey         string
	ModelFast      string
	ModelReasoning string
	UserAgent      string
}

// HasAPIKey reports whether a key was resolved.
func (s Settings) HasAPIKey() bool {
	return s.APIKey != ""
}

// MaskedAPIKey returns the key with all but its last four characters hidden.
func (s Settings) MaskedAPIKey() string {
	if len(s.APIKey) <= 4 {
		return strings.Repeat("*", len(s.APIKey))
	}
	return strings.Repeat("*", len(s.APIKey)-4) + s.APIKey[len(s.APIKey)-4:]
}

// ResolveAPIKey returns the first non-empty value among APIKeyEnvVars.
// It returns "" when none is set.
func ResolveAPIKey(getenv func(string) string) string {
	for _, name := range APIKeyEnvVars {
		if value := strings.TrimSpace(getenv(name)); value != "" {
			return value
		}
	}
	return ""
}

// NewSettings builds provider settings from the environment.
func NewSettings(getenv func(string) string) Settings {
	return Settings{
		APIKey:         ResolveAPIKey(getenv),
		ModelFast:      ModelFast,
		ModelReasoning: ModelReasoning,
		UserAgent:      UserAgent,
	}
}

// Config holds everything a probe command needs. It is built once by Load
// and passed explicitly.
type Config struct {
	ConfigFile string

	MLServiceURL    string
	GatewayURL      string
	ProbeTimeout    time.Duration
	PipelineTimeout time.Duration
	StartDelay      time.Duration

	SampleText    string
	PipelineClaim string
	Claims        []string

	CasesFile string
	SheetName string
	HeaderRow int

	ReportPath  string
	MetricsFile string
	Output      string

	Verbose   bool
	Quiet     bool
	LogLevel  string
	LogFormat string
	LogOutput string

	Settings Settings
}

// Load reads configuration in order of precedence: environment variables,
// .env/.env.local files, the config file, then defaults. An explicit
// configFile must exist; the implicit ~/.truthprobe.yaml may be absent.
func Load(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errs.NewConfigError("config", fmt.Sprintf("read %s", configFile), err)
		}
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errs.NewConfigError("config", "read config file", err)
			}
		}
	}

	cfg := &Config{
		ConfigFile:      v.ConfigFileUsed(),
		MLServiceURL:    v.GetString("ml_service_url"),
		GatewayURL:      v.GetString("gateway_url"),
		ProbeTimeout:    v.GetDuration("probe_timeout"),
		PipelineTimeout: v.GetDuration("pipeline_timeout"),
		StartDelay:      v.GetDuration("start_delay"),
		SampleText:      v.GetString("sample_text"),
		PipelineClaim:   v.GetString("pipeline_claim"),
		Claims:          v.GetStringSlice("claims"),
		CasesFile:       v.GetString("cases_file"),
		SheetName:       v.GetString("sheet_name"),
		HeaderRow:       v.GetInt("header_row"),
		ReportPath:      v.GetString("report_path"),
		MetricsFile:     v.GetString("metrics_file"),
		Output:          v.GetString("output"),
		Verbose:         v.GetBool("verbose"),
		Quiet:           v.GetBool("quiet"),
		LogLevel:        v.GetString("log_level"),
		LogFormat:       v.GetString("log_format"),
		LogOutput:       v.GetString("log_output"),
		Settings:        NewSettings(os.Getenv),
	}

	// A key in the config file only applies when neither env var is set.
	if !cfg.Settings.HasAPIKey() {
		cfg.Settings.APIKey = strings.TrimSpace(v.GetString("api_key"))
	}

	// Unparseable durations come back as zero.
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.PipelineTimeout <= 0 {
		cfg.PipelineTimeout = DefaultPipelineTimeout
	}
	if cfg.HeaderRow <= 0 {
		cfg.HeaderRow = 1
	}
	if len(cfg.Claims) == 0 {
		cfg.Claims = append([]string(nil), DefaultClaims...)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ml_service_url", DefaultMLServiceURL)
	v.SetDefault("gateway_url", DefaultGatewayURL)
	v.SetDefault("probe_timeout", DefaultProbeTimeout)
	v.SetDefault("pipeline_timeout", DefaultPipelineTimeout)
	v.SetDefault("start_delay", time.Duration(0))
	v.SetDefault("sample_text", DefaultSampleText)
	v.SetDefault("pipeline_claim", DefaultClaim)
	v.SetDefault("sheet_name", DefaultSheetName)
	v.SetDefault("header_row", 1)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// loadEnvFiles loads .env then .env.local. Variables already present in the
// environment are never overridden.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}
