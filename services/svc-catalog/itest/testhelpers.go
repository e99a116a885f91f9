//go:build integration

package itest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/architeacher/storefront/services/svc-catalog/testserver"
)

type (
	envelope struct {
		Data       json.RawMessage `json:"data"`
		Pagination struct {
			Page       uint `json:"page"`
			Size       uint `json:"size"`
			TotalItems uint `json:"totalItems"`
			TotalPages uint `json:"totalPages"`
		} `json:"pagination"`
	}

	errorBody struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}

	apiClient struct {
		t       *testing.T
		baseURL string
		client  *http.Client
	}

	apiResponse struct {
		status int
		header http.Header
		body   []byte
	}
)

func newAPIClient(t *testing.T, server *testserver.TestServer) *apiClient {
	return &apiClient{t: t, baseURL: server.URL(), client: server.HTTPServer.Client()}
}

func (c *apiClient) do(ctx context.Context, method, path, token string, body any) apiResponse {
	c.t.Helper()

	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(c.t, err)

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	require.NoError(c.t, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	require.NoError(c.t, err)

	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)

	return apiResponse{status: resp.StatusCode, header: resp.Header, body: raw}
}

func (c *apiClient) login(ctx context.Context, email, password string) string {
	c.t.Helper()

	resp := c.do(ctx, http.MethodPost, "/v1/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(c.t, http.StatusOK, resp.status, string(resp.body))

	var token struct {
		AccessToken string `json:"accessToken"`
	}
	resp.decode(c.t, &token)

	return token.AccessToken
}

func (r apiResponse) decode(t *testing.T, dst any) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(r.body, &env), string(r.body))

	if dst != nil {
		require.NoError(t, json.Unmarshal(env.Data, dst))
	}

	return env
}

func (r apiResponse) requireError(t *testing.T, status int, code string) {
	t.Helper()

	require.Equal(t, status, r.status, string(r.body))

	var body errorBody
	require.NoError(t, json.Unmarshal(r.body, &body))
	require.Equal(t, code, body.Code)
}
