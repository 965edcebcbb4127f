package acapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"airwise-backend/config"
	"airwise-backend/internal/apperr"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.ACAPIConfig{BaseURL: server.URL + "/api/ac", Timeout: 5 * time.Second}, zap.NewNop())
}

func TestClient_GetState(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/ac/SN-100", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Response{
			Message: "ok",
			Code:    200,
			ACState: &State{Serial: "SN-100", Power: false, Temperature: 24, Mode: "COOL", FanSpeed: "LOW", Motion: true},
		})
	})

	resp, err := client.GetState(context.Background(), "SN-100")
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, 24.0, resp.ACState.Temperature)
	assert.True(t, resp.ACState.Motion)
}

func TestClient_SetState(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/ac/SN-100/set", r.URL.Path)
		var body Setting
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, Setting{Power: true, Temperature: 22, Mode: "HEAT", FanSpeed: "HIGH"}, body)
		json.NewEncoder(w).Encode(Response{Message: "AC updated", Code: 200, ACState: &State{Serial: "SN-100", Power: true}})
	})

	resp, err := client.SetState(context.Background(), "SN-100", Setting{Power: true, Temperature: 22, Mode: "HEAT", FanSpeed: "HIGH"})
	require.NoError(t, err)
	assert.Equal(t, "AC updated", resp.Message)
}

func TestClient_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		set      bool
		expected error
	}{
		{"get not found", http.StatusNotFound, false, apperr.ErrObjectNotFound},
		{"set not found", http.StatusNotFound, true, apperr.ErrObjectNotFound},
		{"set bad request", http.StatusBadRequest, true, apperr.ErrInvalidInput},
		{"get bad request", http.StatusBadRequest, false, apperr.ErrExternalAPI},
		{"server error", http.StatusInternalServerError, true, apperr.ErrExternalAPI},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(`{"message":"nope"}`))
			})

			var err error
			if tc.set {
				_, err = client.SetState(context.Background(), "SN", Setting{})
			} else {
				_, err = client.GetState(context.Background(), "SN")
			}
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestClient_TransportAndDecodeErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})
	_, err := client.GetState(context.Background(), "SN")
	assert.ErrorIs(t, err, apperr.ErrExternalAPI)

	unreachable := NewClient(config.ACAPIConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, zap.NewNop())
	_, err = unreachable.GetState(context.Background(), "SN")
	assert.ErrorIs(t, err, apperr.ErrExternalAPI)
}
