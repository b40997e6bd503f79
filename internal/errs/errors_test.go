package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"truthmate_probe/internal/errs"
)

func TestValidationError(t *testing.T) {
	t.Run("with case", func(t *testing.T) {
		err := errs.NewValidationError("Health Check", "method", "unsupported method PATCH")
		assert.Equal(t, `invalid case "Health Check": field method: unsupported method PATCH`, err.Error())
		assert.True(t, errors.Is(err, errs.ErrInvalidInput))
		assert.True(t, errs.IsValidationError(fmt.Errorf("load: %w", err)))
	})

	t.Run("without case", func(t *testing.T) {
		err := errs.NewValidationError("", "name", "must not be empty")
		assert.Equal(t, "invalid case: field name: must not be empty", err.Error())
	})
}

func TestConfigError(t *testing.T) {
	base := errors.New("file not found")
	err := errs.NewConfigError("config", "read config file", base)
	assert.Contains(t, err.Error(), "configuration error in config")
	assert.Contains(t, err.Error(), "file not found")
	assert.True(t, errors.Is(err, base))
}

func TestHTTPStatusError(t *testing.T) {
	err := &errs.HTTPStatusError{Endpoint: "/verify", StatusCode: 500, Body: "boom"}
	assert.Equal(t, "/verify returned status 500: boom", err.Error())
	assert.True(t, errors.Is(err, errs.ErrUnexpectedStatus))
	assert.False(t, errors.Is(err, errs.ErrTransport))
}

func TestTransportError(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		err := &errs.TransportError{Endpoint: "/health", Timeout: true, Err: errors.New("deadline exceeded")}
		assert.True(t, errors.Is(err, errs.ErrTransport))
		assert.True(t, errs.IsTimeout(err))
	})

	t.Run("connection refused", func(t *testing.T) {
		err := &errs.TransportError{Endpoint: "/health", Err: errors.New("connection refused")}
		assert.True(t, errors.Is(err, errs.ErrTransport))
		assert.False(t, errs.IsTimeout(err))
		assert.Equal(t, "/health: connection refused", err.Error())
	})
}
