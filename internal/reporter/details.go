package reporter

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"truthmate_probe/internal/model"
)

const (
	explanationPreview = 60
	errorBodyPreview   = 100

	truncatedNote = "📄 Response: body too large, not inspected"
)

// DetailFunc renders the endpoint-specific lines of a successful result.
type DetailFunc func(r model.TestResult) []string

// Details maps endpoint paths to their detail renderers. Paths without an
// entry fall back to listing the response keys.
type Details map[string]DetailFunc

// DefaultDetails covers the ML service and gateway endpoints.
func DefaultDetails() Details {
	return Details{
		"/health":               healthDetails,
		"/verify":               verifyDetails,
		"/source-credibility":   credibilityDetails,
		"/generate-explanation": explanationDetails,
		"/api/health":           gatewayHealthDetails,
		"/api/verify":           gatewayVerifyDetails,
	}
}

// Render returns the detail lines for r.
func (d Details) Render(r model.TestResult) []string {
	if fn, ok := d[r.Case.Path]; ok {
		return fn(r)
	}
	return keysDetails(r)
}

func healthDetails(r model.TestResult) []string {
	return []string{
		fmt.Sprintf("📊 Models: %s", text(r.Response["total_models"], "0")),
		fmt.Sprintf("🎯 Status: %s", text(r.Response["status"], "unknown")),
	}
}

func verifyDetails(r model.TestResult) []string {
	return []string{
		fmt.Sprintf("🎯 Verdict: %s", verdict(r.Response["verdict"])),
		fmt.Sprintf("📈 Confidence: %.2f", number(r.Response["confidence"])),
	}
}

func credibilityDetails(r model.TestResult) []string {
	sources, _ := r.Response["credible_sources"].([]any)
	return []string{
		fmt.Sprintf("📊 Sources: %d", len(sources)),
		fmt.Sprintf("🎯 Avg Credibility: %.2f", number(r.Response["avg_credibility"])),
	}
}

func explanationDetails(r model.TestResult) []string {
	explanation, _ := r.Response["explanation"].(string)
	return []string{fmt.Sprintf("📝 Explanation: %s...", Truncate(explanation, explanationPreview))}
}

func gatewayHealthDetails(r model.TestResult) []string {
	services, _ := r.Response["services"].(map[string]any)
	return []string{fmt.Sprintf("🧩 ML Service Status: %s", text(services["ml_service"], "unknown"))}
}

func gatewayVerifyDetails(r model.TestResult) []string {
	return []string{
		fmt.Sprintf("💬 Claim: %s", text(r.Response["claim"], "N/A")),
		fmt.Sprintf("🎯 Verdict: %s", verdict(r.Response["verdict"])),
		fmt.Sprintf("📈 Confidence: %s%%", text(r.Response["confidence"], "N/A")),
		fmt.Sprintf("🆔 Verification ID: %s", text(r.Response["verificationId"], "N/A")),
	}
}

func keysDetails(r model.TestResult) []string {
	if r.Response == nil {
		return nil
	}
	keys := make([]string, 0, len(r.Response))
	for k := range r.Response {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return []string{fmt.Sprintf("📋 Response keys: [%s]", strings.Join(keys, ", "))}
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func text(v any, fallback string) string {
	switch t := v.(type) {
	case nil:
		return fallback
	case string:
		if t == "" {
			return fallback
		}
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(t)
	}
}

func number(v any) float64 {
	f, _ := v.(float64)
	return f
}

// verdict normalizes labels such as "false" or "MISLEADING".
func verdict(v any) string {
	s := text(v, "unknown")
	if s == "unknown" {
		return s
	}
	return cases.Title(language.English).String(strings.ToLower(s))
}
