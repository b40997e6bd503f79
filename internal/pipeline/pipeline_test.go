package pipeline

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthmate_probe/internal/model"
	"truthmate_probe/internal/runner"
)

type services struct {
	ml          *httptest.Server
	gateway     *httptest.Server
	verifyCalls atomic.Int32
}

func newServices(t *testing.T, mlStatus int, gatewayMLState string) *services {
	t.Helper()
	s := &services{}

	ml := http.NewServeMux()
	ml.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(mlStatus)
		_, _ = io.WriteString(w, `{"status":"healthy","total_models":4}`)
	})
	s.ml = httptest.NewServer(ml)
	t.Cleanup(s.ml.Close)

	gw := http.NewServeMux()
	gw.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"ok","services":{"ml_service":"`+gatewayMLState+`"}}`)
	})
	gw.HandleFunc("/api/verify", func(w http.ResponseWriter, r *http.Request) {
		s.verifyCalls.Add(1)
		_, _ = io.WriteString(w, `{"claim":"c","verdict":"True","confidence":92,"verificationId":"ver_1"}`)
	})
	s.gateway = httptest.NewServer(gw)
	t.Cleanup(s.gateway.Close)
	return s
}

func (s *services) smokeTest() *SmokeTest {
	return New(runner.New(), Options{
		MLServiceURL:  s.ml.URL,
		GatewayURL:    s.gateway.URL,
		Claim:         "c",
		ProbeTimeout:  2 * time.Second,
		VerifyTimeout: 2 * time.Second,
	}, zerolog.Nop())
}

func TestSmokeTestHealthyInvokesVerify(t *testing.T) {
	for _, state := range []string{"healthy", "model_loaded"} {
		t.Run(state, func(t *testing.T) {
			s := newServices(t, http.StatusOK, state)

			res, err := s.smokeTest().Run(context.Background())
			require.NoError(t, err)

			assert.True(t, res.HealthPassed())
			assert.True(t, res.VerifyInvoked)
			assert.True(t, res.Passed())
			assert.Equal(t, int32(1), s.verifyCalls.Load())
			assert.Equal(t, "ver_1", res.Verify.Response["verificationId"])
			assert.Empty(t, res.Hints)
			assert.Len(t, res.NextSteps, 4)
		})
	}
}

func TestSmokeTestGatewayReportsOffline(t *testing.T) {
	s := newServices(t, http.StatusOK, "offline")

	res, err := s.smokeTest().Run(context.Background())
	require.NoError(t, err)

	assert.True(t, res.MLService.Passed)
	assert.False(t, res.Gateway.Passed)
	assert.Equal(t, "offline", res.GatewayMLStatus)
	assert.False(t, res.VerifyInvoked)
	assert.Nil(t, res.Verify)
	assert.Zero(t, s.verifyCalls.Load())
	assert.Equal(t, []string{hintStartGateway}, res.Hints)
}

func TestSmokeTestMLServiceDown(t *testing.T) {
	s := newServices(t, http.StatusServiceUnavailable, "healthy")

	res, err := s.smokeTest().Run(context.Background())
	require.NoError(t, err)

	assert.False(t, res.MLService.Passed)
	assert.Equal(t, model.OutcomeHTTPError, res.MLService.Result.Outcome.Kind)
	assert.True(t, res.Gateway.Passed)
	assert.False(t, res.VerifyInvoked)
	assert.Zero(t, s.verifyCalls.Load())
	assert.Equal(t, []string{hintStartMLService}, res.Hints)
}

func TestSmokeTestNothingRunning(t *testing.T) {
	st := New(runner.New(), Options{
		MLServiceURL:  "http://127.0.0.1:1",
		GatewayURL:    "http://127.0.0.1:1",
		Claim:         "c",
		ProbeTimeout:  time.Second,
		VerifyTimeout: time.Second,
	}, zerolog.Nop())

	res, err := st.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.VerifyInvoked)
	assert.Equal(t, model.OutcomeTransportError, res.Gateway.Result.Outcome.Kind)
	assert.Equal(t, []string{hintStartMLService, hintStartGateway}, res.Hints)
	assert.Contains(t, res.NextSteps, "Visit http://127.0.0.1:1/dashboard")
}

func TestMLServiceReady(t *testing.T) {
	tests := []struct {
		name     string
		response map[string]any
		status   string
		ready    bool
	}{
		{"healthy", map[string]any{"services": map[string]any{"ml_service": "healthy"}}, "healthy", true},
		{"model loaded", map[string]any{"services": map[string]any{"ml_service": "model_loaded"}}, "model_loaded", true},
		{"offline", map[string]any{"services": map[string]any{"ml_service": "offline"}}, "offline", false},
		{"missing services", map[string]any{"status": "ok"}, "", false},
		{"nil response", nil, "", false},
		{"non-string state", map[string]any{"services": map[string]any{"ml_service": true}}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, ready := MLServiceReady(tt.response)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.ready, ready)
		})
	}
}
