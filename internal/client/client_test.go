package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powereye/internal/model"
)

const goodToken = "good-token"

var ctx = context.Background()

// fakeAPI serves the handful of endpoints the client uses. profileStatus
// controls what GET /api/profile answers for a valid token.
type fakeAPI struct {
	profileStatus int
	logouts       atomic.Int32
}

func (f *fakeAPI) server(t *testing.T) *httptest.Server {
	t.Helper()
	user := model.Profile{ID: 1, Email: "alice@example.com", Name: "Alice", Role: model.RoleAdmin}

	writeJSON := func(w http.ResponseWriter, status int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	authorized := func(w http.ResponseWriter, r *http.Request) bool {
		if r.Header.Get("Authorization") != "Bearer "+goodToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
			return false
		}
		return true
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Email != user.Email || body.Password != "pw123" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Login successful", "token": goodToken, "user": user})
	})
	mux.HandleFunc("GET /api/profile", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		if f.profileStatus == http.StatusNotFound {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "User not found"})
			return
		}
		if f.profileStatus == http.StatusInternalServerError {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error"})
			return
		}
		renamed := user
		renamed.Name = "Alice Cooper"
		writeJSON(w, http.StatusOK, renamed)
	})
	mux.HandleFunc("POST /api/logout", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		f.logouts.Add(1)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
	})
	mux.HandleFunc("GET /api/machines", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, []map[string]interface{}{
			{"id": 3, "name": "Pump1", "model": "Unknown", "status": "active", "rated_power": "2.5", "user_id": 1},
		})
	})
	mux.HandleFunc("GET /api/alerts", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, []map[string]interface{}{
			{"id": 9, "machine_id": 3, "alert_type": "overheat", "severity": "high", "machine_name": "Pump1", "machine": "Pump1"},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Login(t *testing.T) {
	srv := (&fakeAPI{}).server(t)
	c := New(srv.URL+"/", nil)

	res, err := c.Login(ctx, "alice@example.com", "pw123")
	require.NoError(t, err)
	assert.Equal(t, goodToken, res.Token)
	assert.Equal(t, "Alice", res.User.Name)
	assert.Equal(t, model.RoleAdmin, res.User.Role)
}

func TestClient_LoginRejected(t *testing.T) {
	srv := (&fakeAPI{}).server(t)
	c := New(srv.URL, srv.Client())

	_, err := c.Login(ctx, "alice@example.com", "nope")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid email or password", apiErr.Message)
}

func TestClient_Lists(t *testing.T) {
	srv := (&fakeAPI{}).server(t)
	c := New(srv.URL, srv.Client())

	machines, err := c.Machines(ctx, goodToken)
	require.NoError(t, err)
	require.Len(t, machines, 1)
	assert.Equal(t, "Pump1", machines[0].Name)
	assert.Equal(t, "2.5", machines[0].RatedPower.Decimal.String())

	alerts, err := c.Alerts(ctx, goodToken)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Pump1", alerts[0].MachineName)
	assert.Equal(t, "high", alerts[0].Severity)
}

func TestClient_Unauthorized(t *testing.T) {
	srv := (&fakeAPI{}).server(t)
	c := New(srv.URL, srv.Client())

	_, err := c.Machines(ctx, "stale")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid or expired token", apiErr.Message)
}

func TestClient_ErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	_, err := New(srv.URL, srv.Client()).Profile(ctx, goodToken)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}
