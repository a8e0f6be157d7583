package allocclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	client := New("http://localhost:8080")
	assert.NotNil(t, client)
	assert.Equal(t, "http://localhost:8080", client.baseURL)
}

func TestDoWithSuccess(t *testing.T) {
	type Response struct {
		Message string `json:"message"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(Response{Message: "success"})
	}))
	defer server.Close()

	client := New(server.URL)

	var resp Response
	err := client.get(context.Background(), "/test", &resp)
	require.NoError(t, err)
	assert.Equal(t, "success", resp.Message)
}

func TestDoWithAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(APIError{
			Title:  "Bad Request",
			Status: http.StatusBadRequest,
			Detail: "invalid stack_id path parameter",
		})
	}))
	defer server.Close()

	client := New(server.URL)
	err := client.get(context.Background(), "/test", nil)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.True(t, apiErr.IsBadRequest())
}

func TestNextStackID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/stacks/next_id", r.URL.Path)
		_ = json.NewEncoder(w).Encode(nextStackIDResponse{StackID: 42})
	}))
	defer server.Close()

	client := New(server.URL)
	id, err := client.NextStackID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
}

func TestRegisterAndQueryStackSource(t *testing.T) {
	var stored []string

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/stacks/7/source", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			var req locationsRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			stored = req.Locations
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(locationsRequest{Locations: stored})
		}
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := New(server.URL)
	require.NoError(t, client.RegisterStackSource(context.Background(), 7, []string{"node-a", "node-b"}))

	got, err := client.QueryRegisteredSource(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"node-a", "node-b"}, got)
}

func TestPreLoadAndUnPreLoad(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/stacks/9/preloads", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req preLoadRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assignments := make([]PreloadAssignment, req.Replicas)
			for i := range assignments {
				assignments[i] = PreloadAssignment{ID: "a", StackID: 9, State: "Init"}
			}
			_ = json.NewEncoder(w).Encode(assignments)
		case http.MethodDelete:
			w.WriteHeader(http.StatusOK)
		}
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := New(server.URL)
	assignments, err := client.PreLoad(context.Background(), 9, 3)
	require.NoError(t, err)
	assert.Len(t, assignments, 3)

	require.NoError(t, client.UnPreLoad(context.Background(), 9))
}

func TestUpdateAssignmentState(t *testing.T) {
	var gotState string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/v1/preloads/abc/state", r.URL.Path)
		var req assignmentStateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotState = req.State
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(server.URL)
	require.NoError(t, client.UpdateAssignmentState(context.Background(), "abc", "Loading"))
	assert.Equal(t, "Loading", gotState)
}
