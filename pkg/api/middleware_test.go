package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionHeaderRealVersion(t *testing.T) {
	s, ts := testServer(t, newStubAgent())

	res := doRequest(t, ts, http.MethodGet, "/percy/healthcheck", nil)
	defer res.Body.Close()

	assert.Equal(t, s.version, res.Header.Get(VersionHeader))
	assert.Equal(t, "*, "+VersionHeader, res.Header.Get("Access-Control-Expose-Headers"))
}

func TestVersionHeaderOverride(t *testing.T) {
	s, ts := testServer(t, newStubAgent(), WithTesting())
	s.Testing().SetVersion("0.0.1-test")

	res := doRequest(t, ts, http.MethodGet, "/percy/healthcheck", nil)
	res.Body.Close()
	assert.Equal(t, "0.0.1-test", res.Header.Get(VersionHeader))

	// The override applies to every response until changed.
	res = doRequest(t, ts, http.MethodGet, "/percy/config", nil)
	res.Body.Close()
	assert.Equal(t, "0.0.1-test", res.Header.Get(VersionHeader))
}

func TestVersionHeaderSuppressed(t *testing.T) {
	s, ts := testServer(t, newStubAgent(), WithTesting())
	s.Testing().SetVersion(false)

	res := doRequest(t, ts, http.MethodGet, "/percy/healthcheck", nil)
	res.Body.Close()
	_, present := res.Header[VersionHeader]
	assert.False(t, present)
}

func TestVersionHeaderSetOnErrorResponses(t *testing.T) {
	a := newStubAgent()
	a.setConfigErr = assert.AnError
	s, ts := testServer(t, a)

	res := doRequest(t, ts, http.MethodPost, "/percy/config", []byte(`{"a":1}`))
	res.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, s.version, res.Header.Get(VersionHeader))
}

func TestFaultErrorShortCircuits(t *testing.T) {
	a := newStubAgent()
	s, ts := testServer(t, a, WithTesting())
	s.Testing().SetFault("/percy/config", FaultError)

	res := doRequest(t, ts, http.MethodPost, "/percy/config", []byte(`{"a":1}`))
	require.Equal(t, http.StatusInternalServerError, res.StatusCode)

	body := decodeBody(t, res)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Error: testing", body["error"])

	// The real handler never ran.
	assert.Empty(t, a.Config())
}

func TestFaultErrorAppliesRegardlessOfRoute(t *testing.T) {
	s, ts := testServer(t, newStubAgent(), WithTesting())
	s.Testing().SetFault("/percy/healthcheck", FaultError)

	res := doRequest(t, ts, http.MethodGet, "/percy/healthcheck", nil)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, "Error: testing", decodeBody(t, res)["error"])
}

func TestFaultDisconnectClosesConnection(t *testing.T) {
	s, ts := testServer(t, newStubAgent(), WithTesting())
	s.Testing().SetFault("/percy/healthcheck", FaultDisconnect)

	_, err := ts.Client().Get(ts.URL + "/percy/healthcheck")
	require.Error(t, err)
}

func TestFaultDoesNotAffectOtherPaths(t *testing.T) {
	s, ts := testServer(t, newStubAgent(), WithTesting())
	s.Testing().SetFault("/percy/config", FaultError)

	res := doRequest(t, ts, http.MethodGet, "/percy/healthcheck", nil)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestMalformedBodyDoesNotFailRequest(t *testing.T) {
	a := newStubAgent()
	_, ts := testServer(t, a)

	// A body that fails to parse as JSON is left raw; the request itself
	// is not rejected by the pipeline. The config handler treats the
	// absence of a parsed object as an empty config.
	res := doRequest(t, ts, http.MethodPost, "/percy/config", []byte("not json"))
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
