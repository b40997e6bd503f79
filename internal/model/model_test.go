package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func results(kinds ...Outcome) []TestResult {
	out := make([]TestResult, len(kinds))
	for i, o := range kinds {
		out[i] = TestResult{CaseNumber: i + 1, Outcome: o}
	}
	return out
}

func TestSummarize(t *testing.T) {
	ok := Outcome{Kind: OutcomeSuccess, StatusCode: 200}
	soft := Outcome{Kind: OutcomeSuccess, StatusCode: 200, AppError: "model not loaded"}
	httpErr := Outcome{Kind: OutcomeHTTPError, StatusCode: 500}
	transport := Outcome{Kind: OutcomeTransportError, Message: "connection refused"}

	tests := []struct {
		name     string
		results  []TestResult
		want     RunSummary
		rate     string
		fullPass bool
	}{
		{
			name:     "empty run",
			results:  nil,
			want:     RunSummary{},
			rate:     "0.0%",
			fullPass: true,
		},
		{
			name:     "seven of eight",
			results:  results(ok, ok, ok, ok, httpErr, ok, ok, ok),
			want:     RunSummary{Total: 8, Succeeded: 7, HTTPErrors: 1},
			rate:     "87.5%",
			fullPass: false,
		},
		{
			name:     "soft errors still count",
			results:  results(ok, soft),
			want:     RunSummary{Total: 2, Succeeded: 2, SoftErrors: 1},
			rate:     "100.0%",
			fullPass: true,
		},
		{
			name:     "all unreachable",
			results:  results(transport, transport, transport),
			want:     RunSummary{Total: 3, TransportErrors: 3},
			rate:     "0.0%",
			fullPass: false,
		},
		{
			name:    "one of three",
			results: results(ok, httpErr, transport),
			want:    RunSummary{Total: 3, Succeeded: 1, HTTPErrors: 1, TransportErrors: 1},
			rate:    "33.3%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.results)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.rate, got.RateString())
			assert.Equal(t, tt.fullPass, got.FullyPassing())
			assert.GreaterOrEqual(t, got.Succeeded, 0)
			assert.LessOrEqual(t, got.Succeeded, got.Total)
		})
	}
}

func TestOutcomeSoftError(t *testing.T) {
	assert.True(t, Outcome{Kind: OutcomeSuccess, AppError: "x"}.SoftError())
	assert.False(t, Outcome{Kind: OutcomeSuccess}.SoftError())
	assert.False(t, Outcome{Kind: OutcomeHTTPError, AppError: "x"}.SoftError())
}

func TestTestCaseExpectedStatus(t *testing.T) {
	assert.Equal(t, 200, TestCase{}.ExpectedStatus())
	assert.Equal(t, 400, TestCase{ExpectStatus: 400}.ExpectedStatus())
}

func TestServiceEndpointURL(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:5000/health", ServiceEndpoint{BaseURL: "http://127.0.0.1:5000"}.URL("/health"))
	assert.Equal(t, "http://localhost:3000/api/health", ServiceEndpoint{BaseURL: "http://localhost:3000/"}.URL("/api/health"))
}

func TestOutcomeKindJSON(t *testing.T) {
	data, err := json.Marshal(Outcome{Kind: OutcomeTransportError, Message: "timeout"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"transport_error","message":"timeout"}`, string(data))
}
