package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"truthmate_probe/internal/errs"
	"truthmate_probe/internal/model"
)

// maxBodyBytes caps how much of a response body is kept. A longer body is
// cut and flagged rather than decoded.
const maxBodyBytes = 1 << 20

// Verifier runs a battery of probes against one service, one at a time.
type Verifier struct {
	client    *http.Client
	userAgent string
	logger    zerolog.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithHTTPClient replaces the default client. Timeouts are applied per case
// through the request context, so the client needs none of its own.
func WithHTTPClient(c *http.Client) Option {
	return func(v *Verifier) { v.client = c }
}

// WithUserAgent sets the User-Agent header of every probe.
func WithUserAgent(ua string) Option {
	return func(v *Verifier) { v.userAgent = ua }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(v *Verifier) { v.logger = l }
}

// New creates a Verifier.
func New(opts ...Option) *Verifier {
	v := &Verifier{
		client: &http.Client{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run executes cases in declaration order against endpoint and returns every
// result plus the folded summary. Individual case failures never produce an
// error; only a malformed case table does.
func (v *Verifier) Run(ctx context.Context, suite string, endpoint model.ServiceEndpoint, cases []model.TestCase, timeout time.Duration) (*model.Run, error) {
	bodies, err := encodeCases(cases)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s: %w", timeout, errs.ErrInvalidInput)
	}

	run := &model.Run{
		ID:        uuid.NewString(),
		Suite:     suite,
		Endpoint:  endpoint,
		StartedAt: utc.Now(),
		Results:   make([]model.TestResult, 0, len(cases)),
	}
	logger := v.logger.With().Str("run_id", run.ID).Str("suite", suite).Logger()
	logger.Info().Str("base_url", endpoint.BaseURL).Int("cases", len(cases)).Msg("Starting run")

	start := time.Now()
	for i, tc := range cases {
		result := v.execute(ctx, logger, i+1, endpoint, tc, bodies[i], timeout)
		run.Results = append(run.Results, result)
	}
	run.Duration = time.Since(start)
	run.Summary = model.Summarize(run.Results)

	logger.Info().
		Int("total", run.Summary.Total).
		Int("succeeded", run.Summary.Succeeded).
		Str("rate", run.Summary.RateString()).
		Dur("duration", run.Duration).
		Msg("Run finished")
	return run, nil
}

// Validate checks a case table without executing it.
func Validate(cases []model.TestCase) error {
	_, err := encodeCases(cases)
	return err
}

// encodeCases validates every case and returns the encoded request bodies.
func encodeCases(cases []model.TestCase) ([][]byte, error) {
	bodies := make([][]byte, len(cases))
	for i, tc := range cases {
		if strings.TrimSpace(tc.Name) == "" {
			return nil, errs.NewValidationError(fmt.Sprintf("#%d", i+1), "name", "must not be empty")
		}
		switch tc.Method {
		case http.MethodGet:
			if tc.Payload != nil {
				return nil, errs.NewValidationError(tc.Name, "payload", "GET requests carry no payload")
			}
		case http.MethodPost:
			if tc.Payload != nil {
				data, err := json.Marshal(tc.Payload)
				if err != nil {
					return nil, errs.NewValidationError(tc.Name, "payload", err.Error())
				}
				bodies[i] = data
			}
		default:
			return nil, errs.NewValidationError(tc.Name, "method", fmt.Sprintf("unsupported method %q", tc.Method))
		}
		if !strings.HasPrefix(tc.Path, "/") {
			return nil, errs.NewValidationError(tc.Name, "path", "must start with /")
		}
		if tc.ExpectStatus != 0 && (tc.ExpectStatus < 100 || tc.ExpectStatus > 599) {
			return nil, errs.NewValidationError(tc.Name, "expect_status", fmt.Sprintf("invalid status %d", tc.ExpectStatus))
		}
	}
	return bodies, nil
}

func (v *Verifier) execute(ctx context.Context, logger zerolog.Logger, caseNumber int, endpoint model.ServiceEndpoint, tc model.TestCase, body []byte, timeout time.Duration) model.TestResult {
	if tc.BaseURL != "" {
		endpoint = model.ServiceEndpoint{BaseURL: tc.BaseURL}
	}
	url := endpoint.URL(tc.Path)

	result := model.TestResult{CaseNumber: caseNumber, Case: tc}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(reqCtx, tc.Method, url, reader)
	if err != nil {
		result.Outcome, _ = Classify(tc.ExpectedStatus(), 0, nil, fmt.Errorf("create request: %w", err))
		return result
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if v.userAgent != "" {
		req.Header.Set("User-Agent", v.userAgent)
	}

	result.Curl = toCurl(req, body)
	logger.Debug().Int("case_number", caseNumber).Str("case", tc.Name).Str("curl", result.Curl).Msg("Dispatching case")

	start := time.Now()
	status, respBody, truncated, err := v.roundTrip(req)
	result.Duration = time.Since(start)
	if err != nil {
		err = &errs.TransportError{Endpoint: tc.Path, Timeout: isTimeout(err), Err: err}
	}
	if truncated && err == nil && status == tc.ExpectedStatus() {
		result.Outcome = ClassifyTruncated(status)
	} else {
		result.Outcome, result.Response = Classify(tc.ExpectedStatus(), status, respBody, err)
	}

	event := logger.Info()
	switch result.Outcome.Kind {
	case model.OutcomeHTTPError:
		event = logger.Warn().Err(&errs.HTTPStatusError{Endpoint: tc.Path, StatusCode: status, Body: result.Outcome.Body})
	case model.OutcomeTransportError:
		event = logger.Warn().Bool("timeout", errs.IsTimeout(err)).Str("error", result.Outcome.Message)
	}
	event.Int("case_number", caseNumber).
		Str("case", tc.Name).
		Str("outcome", result.Outcome.Kind.String()).
		Int("status", result.Outcome.StatusCode).
		Bool("soft_error", result.Outcome.SoftError()).
		Bool("body_truncated", result.Outcome.BodyTruncated).
		Dur("duration", result.Duration).
		Msg("Case finished")
	return result
}

// roundTrip performs req and reads the body while the deadline still applies.
// truncated reports a body longer than maxBodyBytes; data then holds its
// first maxBodyBytes bytes.
func (v *Verifier) roundTrip(req *http.Request) (status int, data []byte, truncated bool, err error) {
	resp, err := v.client.Do(req)
	if err != nil {
		return 0, nil, false, err
	}
	defer resp.Body.Close()

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return resp.StatusCode, nil, false, fmt.Errorf("read response body: %w", err)
	}
	if len(data) > maxBodyBytes {
		return resp.StatusCode, data[:maxBodyBytes], true, nil
	}
	return resp.StatusCode, data, false, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// toCurl renders req as an equivalent curl command.
func toCurl(req *http.Request, body []byte) string {
	var b strings.Builder
	fmt.Fprintf(&b, "curl -X %s", req.Method)

	keys := make([]string, 0, len(req.Header))
	for key := range req.Header {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, " -H '%s: %s'", key, req.Header.Get(key))
	}

	if len(body) > 0 {
		fmt.Fprintf(&b, " -d '%s'", strings.ReplaceAll(string(body), "'", `'\''`))
	}
	fmt.Fprintf(&b, " '%s'", req.URL.String())
	return b.String()
}
