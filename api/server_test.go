package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer() *Server {
	return NewServer(Config{
		Port:           8080,
		RequestTimeout: 5 * time.Second,
		MaxRequestSize: 1 << 20,
	})
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func pipelineRequest() CompileRequest {
	return CompileRequest{
		Nodes: []NodeRequest{
			{ID: "n1", Kind: "s3", Properties: map[string]any{"name": "uploads"}},
			{ID: "n2", Kind: "lambda", Properties: map[string]any{"name": "processor"}},
		},
		Edges: []EdgeRequest{
			{ID: "e1", From: "n1", To: "n2", Category: "trigger"},
		},
	}
}

func TestCompileEndpoint(t *testing.T) {
	router := testServer().Router()

	rec := postJSON(t, router, "/api/v1/compile", pipelineRequest())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CompileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "main.tf", resp.Filename)
	assert.Contains(t, resp.Text, `resource "aws_lambda_function" "processor"`)
	assert.Contains(t, resp.Text, `resource "aws_s3_bucket_notification" "uploads_notification"`)
	assert.Empty(t, resp.Warnings)
}

func TestCompileEndpointRejectsMalformedJSON(t *testing.T) {
	router := testServer().Router()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compile", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request")
}

func TestCompileEndpointRejectsSelfEdge(t *testing.T) {
	router := testServer().Router()

	body := pipelineRequest()
	body.Edges[0].To = body.Edges[0].From

	rec := postJSON(t, router, "/api/v1/compile", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCompileEndpointRejectsBadCategory(t *testing.T) {
	router := testServer().Router()

	body := pipelineRequest()
	body.Edges[0].Category = "teleport"

	rec := postJSON(t, router, "/api/v1/compile", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestValidateEndpointReportsWarnings(t *testing.T) {
	router := testServer().Router()

	body := CompileRequest{
		Nodes: []NodeRequest{
			{ID: "n1", Kind: "s3"},
			{ID: "n2", Kind: "vpc"},
		},
		Edges: []EdgeRequest{
			{ID: "e1", From: "n1", To: "n2", Category: "data_flow"},
		},
	}

	rec := postJSON(t, router, "/api/v1/validate", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Passed   bool `json:"passed"`
		Warnings []struct {
			EdgeID  string `json:"edge_id"`
			Message string `json:"message"`
		} `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Passed)
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, "e1", resp.Warnings[0].EdgeID)
}

func TestHealthAndVersion(t *testing.T) {
	router := testServer().Router()

	for path, want := range map[string]string{
		"/health":  "healthy",
		"/version": Version,
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), want, path)
	}
}
