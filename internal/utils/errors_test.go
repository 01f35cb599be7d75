package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleAppError(t *testing.T) {
	rr := httptest.NewRecorder()
	HandleAppError(rr, &AppError{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       ErrCodeMissingConfiguration,
		Message:    "no unit mix configured for floor 2",
		Details:    map[string]int{"floors_created": 1},
		Err:        ErrMissingConfiguration,
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, ErrCodeMissingConfiguration, body.Code)
	assert.Equal(t, map[string]any{"floors_created": float64(1)}, body.Details)
}

func TestHandleAppErrorFallback(t *testing.T) {
	rr := httptest.NewRecorder()
	HandleAppError(rr, errors.New("kaboom"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, ErrCodeInternal, body.Code)
	assert.Nil(t, body.Details)
}

func TestAppErrorUnwrap(t *testing.T) {
	err := &AppError{Message: "public", Err: ErrExternalServiceFailure}
	assert.ErrorIs(t, err, ErrExternalServiceFailure)
	assert.Equal(t, "external_service_failure", err.Error())
	assert.Equal(t, "public", (&AppError{Message: "public"}).Error())
}

func TestAppNameHook(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.AddHook(&appNameHook{appName: "structure-service"})
	hook := test.NewLocal(logger)
	logger.Info("hello")
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "[structure-service] hello", hook.LastEntry().Message)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
}

func TestAppNameHookAsField(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.AddHook(&appNameHook{appName: "structure-service", asField: true})
	hook := test.NewLocal(logger)
	logger.Info("hello")
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "hello", hook.LastEntry().Message)
	assert.Equal(t, "structure-service", hook.LastEntry().Data["app"])
}

func TestNewFormatter(t *testing.T) {
	for _, env := range []string{"", "dev", "dev-test", "DEV"} {
		_, ok := newFormatter(env).(*logrus.TextFormatter)
		assert.True(t, ok, env)
	}
	for _, env := range []string{"staging", "prod"} {
		_, ok := newFormatter(env).(*logrus.JSONFormatter)
		assert.True(t, ok, env)
	}

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(newFormatter("prod"))
	logger.AddHook(&appNameHook{appName: "structure-service", asField: true})
	logger.WithField("building_id", "B1").Info("Generation batch completed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Generation batch completed", line["message"])
	assert.Equal(t, "structure-service", line["app"])
	assert.Equal(t, "B1", line["building_id"])
	assert.Contains(t, line, "ts")
}

func TestPtrVal(t *testing.T) {
	assert.Equal(t, 5, *Ptr(5))
	assert.Equal(t, "x", Val(Ptr("x")))
	assert.Equal(t, "", Val[string](nil))
}
