package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrale/wrale-scheduler/api/types/v1alpha1"
)

func respond(t *testing.T, w http.ResponseWriter, message string, data interface{}) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v1alpha1.Result{Success: true, Message: message, Data: raw}))
}

// run executes the CLI against server and returns its output
func run(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append([]string{
		"--config", filepath.Join(t.TempDir(), "config.yaml"),
		"--server", server,
		"--token", "tok",
		"--timezone", "UTC",
	}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestShowList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1alpha1/schedule/shows", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("device"))
		assert.Equal(t, "1709510400", r.URL.Query().Get("start"))
		assert.Equal(t, "1709596800", r.URL.Query().Get("end"))
		respond(t, w, "Schedule data.", []v1alpha1.Occurrence{{
			Kind: "show", ID: 5, Recurring: true, UserID: 2, DeviceID: 3,
			Start: 1709542800, Duration: 3600, Mode: "weekly", ItemType: "media", ItemID: 42,
		}})
	}))
	defer srv.Close()

	out, err := run(t, srv.URL, "show", "list", "--device=3", "--start=2024-03-04", "--days=1")
	require.NoError(t, err)
	assert.Contains(t, out, "5r")
	assert.Contains(t, out, "2024-03-04 09:00")
	assert.Contains(t, out, "2024-03-04 10:00")
	assert.Contains(t, out, "media/42")
}

func TestShowSave(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		method string
		path   string
		id     string
	}{
		{
			name:   "create",
			args:   []string{"show", "save"},
			method: http.MethodPost,
			path:   "/api/v1alpha1/schedule/shows",
		},
		{
			name:   "edit",
			args:   []string{"show", "save", "17"},
			method: http.MethodPut,
			path:   "/api/v1alpha1/schedule/shows/17",
			id:     "17",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.method, r.Method)
				assert.Equal(t, tt.path, r.URL.Path)

				var req v1alpha1.SaveShowRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, tt.id, req.ID)
				assert.Equal(t, "3", req.DeviceID)
				assert.Equal(t, "1709542800", req.Start)
				assert.Equal(t, "0", req.DurationDays)
				assert.Equal(t, "1", req.DurationHours)
				assert.Equal(t, "30", req.DurationMinutes)
				assert.Equal(t, "42", req.ItemID)
				respond(t, w, "Show added.", v1alpha1.Show{ID: 17})
			}))
			defer srv.Close()

			args := append(tt.args, "--device=3", "--start=2024-03-04 09:00", "--duration=90m", "--item-id=42")
			out, err := run(t, srv.URL, args...)
			require.NoError(t, err)
			assert.Contains(t, out, "Show added. (id 17")
		})
	}
}

func TestShowSaveUsesLastDevice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1alpha1/schedule/shows/last-device":
			respond(t, w, "Last schedule device.", v1alpha1.LastDevice{Device: 8})
		case "/api/v1alpha1/schedule/shows":
			var req v1alpha1.SaveShowRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "8", req.DeviceID)
			respond(t, w, "Show added.", v1alpha1.Show{ID: 1})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	_, err := run(t, srv.URL, "show", "save", "--start=2024-03-04", "--duration=1h")
	require.NoError(t, err)
}

func TestPermissionListFiltersUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1alpha1/schedule/permissions", r.URL.Path)
		assert.Equal(t, "12", r.URL.Query().Get("user_id"))
		respond(t, w, "Schedule permissions data.", []v1alpha1.Occurrence{{
			Kind: "permission", ID: 4, UserID: 12, Start: 1709542800, Duration: 60, Mode: "once",
			Description: "afternoon block",
		}})
	}))
	defer srv.Close()

	out, err := run(t, srv.URL, "permission", "list", "--device=3", "--user=12", "--start=2024-03-04")
	require.NoError(t, err)
	assert.Contains(t, out, "DESCRIPTION")
	assert.Contains(t, out, "afternoon block")
}

func TestDeleteRejectsBadID(t *testing.T) {
	_, err := run(t, "http://127.0.0.1:1", "show", "delete", "abc")
	assert.ErrorContains(t, err, `invalid ID "abc"`)
}

func TestDeviceList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1alpha1/schedule/devices", r.URL.Path)
		respond(t, w, "Devices.", []v1alpha1.Device{{ID: 3, Name: "lobby"}})
	}))
	defer srv.Close()

	out, err := run(t, srv.URL, "device", "list", "-o", "json")
	require.NoError(t, err)

	var devices []v1alpha1.Device
	require.NoError(t, json.Unmarshal([]byte(out), &devices))
	assert.Equal(t, []v1alpha1.Device{{ID: 3, Name: "lobby"}}, devices)
}
