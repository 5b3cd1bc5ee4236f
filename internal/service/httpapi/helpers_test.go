package httpapi

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type testResponse struct {
	status int
	body   string
	header http.Header
}

func doRequest(t *testing.T, method, url, body, token string, headers map[string]string) testResponse {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return testResponse{status: resp.StatusCode, body: string(raw), header: resp.Header}
}

func postJSON(t *testing.T, url, body, token string) testResponse {
	t.Helper()
	return doRequest(t, http.MethodPost, url, body, token, nil)
}

func getWithToken(t *testing.T, url, token string) testResponse {
	t.Helper()
	return doRequest(t, http.MethodGet, url, "", token, nil)
}
