// Package suite declares the probe batteries run against the ML service and
// the gateway, and loads custom batteries from YAML or spreadsheet files.
package suite

import (
	"net/http"

	"truthmate_probe/internal/model"
)

// Suite is a named, ordered battery of cases.
type Suite struct {
	Name    string           `yaml:"name" json:"name"`
	BaseURL string           `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Cases   []model.TestCase `yaml:"cases" json:"cases"`
}

// Gateway paths.
const (
	GatewayHealthPath = "/api/health"
	GatewayVerifyPath = "/api/verify"
)

// ML service paths.
const (
	HealthPath              = "/health"
	VerifyPath              = "/verify"
	ExtractClaimPath        = "/extract-claim"
	StanceDetectionPath     = "/stance-detection"
	SourceCredibilityPath   = "/source-credibility"
	BiasSentimentPath       = "/bias-sentiment"
	GenerateExplanationPath = "/generate-explanation"
)

// MLServiceBattery is the eight-case battery covering every ML service endpoint.
func MLServiceBattery(text string) Suite {
	return Suite{
		Name: "ml-service",
		Cases: []model.TestCase{
			{Name: "Health Check", Method: http.MethodGet, Path: HealthPath},
			{Name: "Main Verify", Method: http.MethodPost, Path: VerifyPath, Payload: map[string]any{"text": text}},
			{Name: "Extract Claim", Method: http.MethodPost, Path: ExtractClaimPath, Payload: map[string]any{"text": text}},
			{
				Name:    "Stance Detection",
				Method:  http.MethodPost,
				Path:    StanceDetectionPath,
				Payload: map[string]any{"claim": text, "evidence_queries": []string{"cure diseases", "medical breakthrough"}},
			},
			{
				Name:    "Source Credibility (empty queries)",
				Method:  http.MethodPost,
				Path:    SourceCredibilityPath,
				Payload: map[string]any{"queries": []string{}},
			},
			{
				Name:    "Source Credibility (with queries)",
				Method:  http.MethodPost,
				Path:    SourceCredibilityPath,
				Payload: map[string]any{"queries": []string{"medical research", "health claims"}},
			},
			{Name: "Bias Sentiment", Method: http.MethodPost, Path: BiasSentimentPath, Payload: map[string]any{"text": text}},
			{
				Name:   "Generate Explanation",
				Method: http.MethodPost,
				Path:   GenerateExplanationPath,
				Payload: map[string]any{
					"claim":       text,
					"verdict":     "False",
					"confidence":  0.8,
					"evidence":    []any{},
					"credibility": 0.6,
					"bias":        "high",
				},
			},
		},
	}
}

// MLHealth probes only the ML service health endpoint.
func MLHealth() Suite {
	return Suite{
		Name:  "ml-health",
		Cases: []model.TestCase{{Name: "ML Service Health", Method: http.MethodGet, Path: HealthPath}},
	}
}

// GatewayHealth probes only the gateway health endpoint.
func GatewayHealth() Suite {
	return Suite{
		Name:  "gateway-health",
		Cases: []model.TestCase{{Name: "Gateway Health", Method: http.MethodGet, Path: GatewayHealthPath}},
	}
}

// GatewayVerify submits claim to the gateway's full pipeline.
func GatewayVerify(claim string) Suite {
	return Suite{
		Name: "gateway-pipeline",
		Cases: []model.TestCase{{
			Name:    "Verification Pipeline",
			Method:  http.MethodPost,
			Path:    GatewayVerifyPath,
			Payload: map[string]any{"text": claim, "public": true},
		}},
	}
}

// GatewayLiveness posts an empty body to the gateway verify endpoint. A 400
// means the API is up and validating input.
func GatewayLiveness() model.TestCase {
	return model.TestCase{
		Name:         "Gateway Responding",
		Method:       http.MethodPost,
		Path:         GatewayVerifyPath,
		Payload:      map[string]any{},
		ExpectStatus: http.StatusBadRequest,
	}
}

// ClaimBattery builds the batch run of claims: an ML /verify case and a
// gateway /api/verify case per claim, preceded by the gateway liveness probe.
// Gateway cases carry gatewayURL as their base URL override.
func ClaimBattery(claims []string, gatewayURL string) Suite {
	s := Suite{Name: "claims"}

	liveness := GatewayLiveness()
	liveness.BaseURL = gatewayURL
	s.Cases = append(s.Cases, liveness)

	for _, claim := range claims {
		s.Cases = append(s.Cases, model.TestCase{
			Name:    "ML Verify: " + claim,
			Method:  http.MethodPost,
			Path:    VerifyPath,
			Payload: map[string]any{"text": claim},
		})
	}
	for _, claim := range claims {
		s.Cases = append(s.Cases, model.TestCase{
			Name:    "Gateway Verify: " + claim,
			Method:  http.MethodPost,
			Path:    GatewayVerifyPath,
			Payload: map[string]any{"text": claim, "public": true},
			BaseURL: gatewayURL,
		})
	}
	return s
}
