package api

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestRoutesAbsentOutsideTestingMode(t *testing.T) {
	_, ts := testServer(t, newStubAgent())

	for _, path := range []string{"/test/api/reset", "/test/logs", "/test/snapshot"} {
		res := doRequest(t, ts, http.MethodPost, path, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode, path)
		res.Body.Close()
	}
}

func TestCommandReset(t *testing.T) {
	s, ts := testServer(t, newStubAgent(), WithTesting())
	s.Testing().SetVersion("x")
	s.Testing().SetFault("/percy/idle", FaultError)
	s.facility.Log("info", "stale entry")

	res := doRequest(t, ts, http.MethodPost, "/test/api/reset", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	body := decodeBody(t, res)
	assert.Equal(t, true, body["success"])
	assert.Empty(t, body["testing"])

	assert.Nil(t, s.Testing().Version())
	_, faulted := s.Testing().Fault("/percy/idle")
	assert.False(t, faulted)
	assert.Equal(t, 0, s.facility.Buffer().Len())
}

func TestCommandVersionString(t *testing.T) {
	s, ts := testServer(t, newStubAgent(), WithTesting())

	res := doRequest(t, ts, http.MethodPost, "/test/api/version", []byte(`"2.0.0"`))
	require.Equal(t, http.StatusOK, res.StatusCode)

	body := decodeBody(t, res)
	state, ok := body["testing"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2.0.0", state["version"])
	assert.Equal(t, "2.0.0", s.Testing().Version())
}

func TestCommandVersionFalse(t *testing.T) {
	s, ts := testServer(t, newStubAgent(), WithTesting())

	res := doRequest(t, ts, http.MethodPost, "/test/api/version", []byte(`false`))
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()
	assert.Equal(t, false, s.Testing().Version())
}

func TestCommandVersionRawBody(t *testing.T) {
	s, ts := testServer(t, newStubAgent(), WithTesting())

	// A body that is not valid JSON is taken verbatim as the version.
	res := doRequest(t, ts, http.MethodPost, "/test/api/version", []byte(`1.2.3-beta+x`))
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()
	assert.Equal(t, "1.2.3-beta+x", s.Testing().Version())
}

func TestCommandErrorAndDisconnect(t *testing.T) {
	s, ts := testServer(t, newStubAgent(), WithTesting())

	res := doRequest(t, ts, http.MethodPost, "/test/api/error", []byte(`"/percy/config"`))
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	res = doRequest(t, ts, http.MethodPost, "/test/api/disconnect", []byte(`"/percy/idle"`))
	require.Equal(t, http.StatusOK, res.StatusCode)

	body := decodeBody(t, res)
	api, ok := body["testing"].(map[string]any)["api"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "error", api["/percy/config"])
	assert.Equal(t, "disconnect", api["/percy/idle"])

	mode, _ := s.Testing().Fault("/percy/config")
	assert.Equal(t, FaultError, mode)
}

func TestCommandUnknown(t *testing.T) {
	_, ts := testServer(t, newStubAgent(), WithTesting())

	res := doRequest(t, ts, http.MethodPost, "/test/api/explode", nil)
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	// Not-found, not an error envelope: no error message is reported.
	body := decodeBody(t, res)
	assert.Equal(t, false, body["success"])
	assert.NotContains(t, body, "error")
}

func TestLogsEndpoint(t *testing.T) {
	s, ts := testServer(t, newStubAgent(), WithTesting())
	s.facility.Log("info", "first")
	s.facility.Log("warn", "second")

	res := doRequest(t, ts, http.MethodGet, "/test/logs", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	body := decodeBody(t, res)
	logs, ok := body["logs"].([]any)
	require.True(t, ok)
	require.Len(t, logs, 2)
	first := logs[0].(map[string]any)
	assert.Equal(t, "first", first["message"])
}

func TestSnapshotTargetPage(t *testing.T) {
	_, ts := testServer(t, newStubAgent(), WithTesting())

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		res := doRequest(t, ts, method, "/test/snapshot", nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "text/html", res.Header.Get("Content-Type"))
		body, err := io.ReadAll(res.Body)
		res.Body.Close()
		require.NoError(t, err)
		assert.Contains(t, string(body), "Snapshot Me!")
	}
}
