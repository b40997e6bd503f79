package suite

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"truthmate_probe/internal/errs"
	"truthmate_probe/internal/runner"
)

func TestMLServiceBattery(t *testing.T) {
	s := MLServiceBattery("some claim")
	require.Len(t, s.Cases, 8)
	require.NoError(t, runner.Validate(s.Cases))

	assert.Equal(t, http.MethodGet, s.Cases[0].Method)
	assert.Nil(t, s.Cases[0].Payload)

	paths := make([]string, len(s.Cases))
	for i, c := range s.Cases {
		paths[i] = c.Path
	}
	assert.Equal(t, []string{
		HealthPath, VerifyPath, ExtractClaimPath, StanceDetectionPath,
		SourceCredibilityPath, SourceCredibilityPath, BiasSentimentPath, GenerateExplanationPath,
	}, paths)

	explain := s.Cases[7].Payload.(map[string]any)
	assert.Equal(t, "some claim", explain["claim"])
	assert.Equal(t, 0.8, explain["confidence"])
}

func TestClaimBattery(t *testing.T) {
	s := ClaimBattery([]string{"a", "b"}, "http://gw:3000")
	require.NoError(t, runner.Validate(s.Cases))
	require.Len(t, s.Cases, 5)

	assert.Equal(t, http.StatusBadRequest, s.Cases[0].ExpectStatus)
	assert.Equal(t, "http://gw:3000", s.Cases[0].BaseURL)

	assert.Equal(t, VerifyPath, s.Cases[1].Path)
	assert.Empty(t, s.Cases[1].BaseURL)
	assert.Equal(t, GatewayVerifyPath, s.Cases[4].Path)
	assert.Equal(t, "http://gw:3000", s.Cases[4].BaseURL)
	assert.Equal(t, map[string]any{"text": "b", "public": true}, s.Cases[4].Payload)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smoke.yaml")
	content := `
cases:
  - name: Health Check
    method: get
    path: /health
  - name: Verify
    method: POST
    path: /verify
    payload:
      text: hello
  - name: Gateway up
    method: POST
    path: /api/verify
    base_url: http://localhost:3000
    expect_status: 400
    payload: {}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := LoadFile(path, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "smoke", s.Name)
	require.Len(t, s.Cases, 3)
	assert.Equal(t, http.MethodGet, s.Cases[0].Method)
	assert.Equal(t, map[string]any{"text": "hello"}, s.Cases[1].Payload)
	assert.Equal(t, 400, s.Cases[2].ExpectStatus)
	assert.Equal(t, "http://localhost:3000", s.Cases[2].BaseURL)
	require.NoError(t, runner.Validate(s.Cases))
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.xlsx")

	f := excelize.NewFile()
	rows := [][]any{
		{"name", "method", "path", "body", "base_url", "expect_status"},
		{"Health Check", "GET", "/health"},
		{},
		{"Verify", "post", "/verify", `{"text":"hello"}`},
		{"Gateway up", "POST", "/api/verify", `{}`, "http://localhost:3000", "400"},
	}
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellName, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	s, err := LoadFile(path, LoadOptions{})
	require.NoError(t, err)
	require.Len(t, s.Cases, 3)
	assert.Equal(t, "cases", s.Name)
	assert.Equal(t, http.MethodPost, s.Cases[1].Method)
	assert.Equal(t, map[string]any{"text": "hello"}, s.Cases[1].Payload)
	assert.Equal(t, 400, s.Cases[2].ExpectStatus)
	assert.Equal(t, "http://localhost:3000", s.Cases[2].BaseURL)
}

func TestLoadXLSXBadBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"name", "method", "path", "body"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Verify", "POST", "/verify", "{not json"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := LoadFile(path, LoadOptions{})
	require.Error(t, err)
	assert.True(t, errs.IsValidationError(err))
	assert.Contains(t, err.Error(), "row 2")
}

func TestLoadFileUnsupported(t *testing.T) {
	_, err := LoadFile("cases.csv", LoadOptions{})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}
