package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// DoJSON sends body as JSON through engine. A non-empty token is sent as
// a bearer token; a nil body sends no payload.
func DoJSON(t *testing.T, engine http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err, "Failed to marshal request body")
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func readEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "Failed to parse response envelope: %s", rec.Body.String())
	return env
}

// DecodeData unmarshals the data field of a successful response
func DecodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	env := readEnvelope(t, rec)
	require.True(t, env.Success, "Expected a successful response: %s", rec.Body.String())

	var data T
	require.NoError(t, json.Unmarshal(env.Data, &data), "Failed to parse response data")
	return data
}

// ErrorCode returns error.code of a failed response
func ErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	env := readEnvelope(t, rec)
	require.False(t, env.Success, "Expected a failed response: %s", rec.Body.String())
	require.NotNil(t, env.Error, "Expected an error object: %s", rec.Body.String())
	return env.Error.Code
}
