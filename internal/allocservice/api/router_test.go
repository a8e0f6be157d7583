//go:build integration

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/stackhaus/internal/allocservice/models"
	"github.com/marmos91/stackhaus/internal/allocservice/store"
	"github.com/marmos91/stackhaus/internal/cli/health"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	st, err := store.New(&store.Config{
		Type:   store.DatabaseTypeSQLite,
		SQLite: store.SQLiteConfig{Path: ":memory:"},
	})
	require.NoError(t, err)
	return NewRouter(st)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthzReady(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp health.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp.Status)
	require.Equal(t, "stackhaus-allocd", resp.Data.Service)
}

func TestNextStackIDEndpoint(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/stacks/next_id", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp nextStackIDResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
}

func TestRegisterSourceRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	body, _ := json.Marshal(locationsRequest{Locations: []string{"node-a"}})
	req := httptest.NewRequest(http.MethodPut, "/v1/stacks/10/source", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/stacks/10/source", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got locationsRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, []string{"node-a"}, got.Locations)
}

func TestRegisterSourceMalformedStackID(t *testing.T) {
	router := newTestRouter(t)
	body, _ := json.Marshal(locationsRequest{Locations: []string{"node-a"}})
	req := httptest.NewRequest(http.MethodPut, "/v1/stacks/not-a-number/source", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreLoadAndUnPreLoadEndpoints(t *testing.T) {
	router := newTestRouter(t)

	body, _ := json.Marshal(preLoadRequest{Replicas: 2})
	req := httptest.NewRequest(http.MethodPost, "/v1/stacks/20/preloads", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/v1/stacks/20/preloads", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/stacks/20/preloads", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateAssignmentStateEndpoint(t *testing.T) {
	router := newTestRouter(t)

	body, _ := json.Marshal(preLoadRequest{Replicas: 1})
	req := httptest.NewRequest(http.MethodPost, "/v1/stacks/30/preloads", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var assignments []struct {
		ID string `json:"ID"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &assignments))
	require.Len(t, assignments, 1)

	stateBody, _ := json.Marshal(assignmentStateRequest{State: models.PreloadLoading})
	req = httptest.NewRequest(http.MethodPatch, "/v1/preloads/"+assignments[0].ID+"/state", bytes.NewReader(stateBody))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
