package cortex

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/killallgit/cortex-chat/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	client *http.Client
	err    error
}

func (f *fakeSession) Authorize(ctx context.Context, req *http.Request) error {
	if f.err != nil {
		return f.err
	}
	req.Header.Set("Authorization", "Bearer test-token")
	return nil
}

func (f *fakeSession) HTTPClient() *http.Client {
	return f.client
}

var testResources = config.ResourcesConfig{
	SupplyChainSemanticModel:    "@DB.S.MODELS/supply_chain.yaml",
	SupportTicketsSemanticModel: "@DB.S.MODELS/support.yaml",
	SearchService:               "DB.S.VEHICLES_INFO",
	SearchTitleColumn:           "title",
	SearchIDColumn:              "relative_path",
}

func TestClientRun(t *testing.T) {
	t.Run("should post the payload and return the stream", func(t *testing.T) {
		var received map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/v2/cortex/agent:run", r.URL.Path)
			assert.NotEmpty(t, r.URL.Query().Get("requestId"))
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

			w.Header().Set("Content-Type", "text/event-stream")
			io.WriteString(w, "data: [DONE]\n")
		}))
		defer server.Close()

		client := NewClient(server.URL+"/api/v2/cortex/agent:run", &fakeSession{client: server.Client()})
		body, err := client.Run(context.Background(), NewRunRequest("llama3.1-70b", "hello", testResources, 1))
		require.NoError(t, err)
		defer body.Close()

		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "data: [DONE]\n", string(data))
		assert.Equal(t, "llama3.1-70b", received["model"])
	})

	t.Run("should return transport error on non-success status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "warehouse suspended", http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(server.URL, &fakeSession{client: server.Client()})
		_, err := client.Run(context.Background(), NewRunRequest("m", "q", testResources, 1))
		require.Error(t, err)

		var transportErr *TransportError
		require.True(t, errors.As(err, &transportErr))
		assert.Equal(t, http.StatusInternalServerError, transportErr.StatusCode)
		assert.Equal(t, "warehouse suspended", transportErr.Body)
		assert.Contains(t, err.Error(), "500")
		assert.True(t, IsTransportError(err))
	})

	t.Run("should return transport error when the server is unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		endpoint := server.URL
		server.Close()

		client := NewClient(endpoint, &fakeSession{client: &http.Client{Timeout: time.Second}})
		_, err := client.Run(context.Background(), NewRunRequest("m", "q", testResources, 1))
		require.Error(t, err)
		assert.True(t, IsTransportError(err))
	})

	t.Run("should return transport error when authorization fails", func(t *testing.T) {
		authErr := errors.New("no key")
		client := NewClient("http://127.0.0.1:1", &fakeSession{client: http.DefaultClient, err: authErr})

		_, err := client.Run(context.Background(), NewRunRequest("m", "q", testResources, 1))
		assert.True(t, IsTransportError(err))
		assert.ErrorIs(t, err, authErr)
	})
}

func TestNewRunRequest(t *testing.T) {
	req := NewRunRequest("llama3.1-70b", "Which parts are late?", testResources, 1)

	data, err := json.Marshal(req)
	require.NoError(t, err)

	var payload struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"messages"`
		Tools []struct {
			ToolSpec struct {
				Type string `json:"type"`
				Name string `json:"name"`
			} `json:"tool_spec"`
		} `json:"tools"`
		ToolResources map[string]map[string]any `json:"tool_resources"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))

	assert.Equal(t, "llama3.1-70b", payload.Model)
	require.Len(t, payload.Messages, 1)
	assert.Equal(t, "user", payload.Messages[0].Role)
	require.Len(t, payload.Messages[0].Content, 1)
	assert.Equal(t, "text", payload.Messages[0].Content[0].Type)
	assert.Equal(t, "Which parts are late?", payload.Messages[0].Content[0].Text)

	require.Len(t, payload.Tools, 3)
	assert.Equal(t, ToolTypeTextToSQL, payload.Tools[0].ToolSpec.Type)
	assert.Equal(t, ToolSupplyChain, payload.Tools[0].ToolSpec.Name)
	assert.Equal(t, ToolSupport, payload.Tools[1].ToolSpec.Name)
	assert.Equal(t, ToolTypeSearch, payload.Tools[2].ToolSpec.Type)
	assert.Equal(t, ToolVehiclesSearch, payload.Tools[2].ToolSpec.Name)

	assert.Equal(t, map[string]any{"semantic_model_file": "@DB.S.MODELS/supply_chain.yaml"}, payload.ToolResources[ToolSupplyChain])
	assert.Equal(t, map[string]any{"semantic_model_file": "@DB.S.MODELS/support.yaml"}, payload.ToolResources[ToolSupport])
	assert.Equal(t, map[string]any{
		"name":         "DB.S.VEHICLES_INFO",
		"max_results":  float64(1),
		"title_column": "title",
		"id_column":    "relative_path",
	}, payload.ToolResources[ToolVehiclesSearch])
}

func TestNewRunRequestDefaultLimit(t *testing.T) {
	req := NewRunRequest("m", "q", testResources, 0)
	assert.Equal(t, DefaultSearchLimit, req.ToolResources[ToolVehiclesSearch].MaxResults)
}
