package odoo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mgilsanz/presencia/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.URL = url
	cfg.Database = "testdb"
	return cfg
}

func testIdentity() domain.Identity {
	return domain.Identity{UID: 7, Login: "ana", Password: "secret"}
}

func rpcResult(t *testing.T, w http.ResponseWriter, result any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0",
		"result":  result,
	}))
}

func rpcFault(t *testing.T, w http.ResponseWriter, message string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0",
		"error": map[string]any{
			"code":    200,
			"message": "Odoo Server Error",
			"data":    map[string]any{"name": "odoo.exceptions.UserError", "message": message},
		},
	}))
}

func TestAuthenticate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2.0", req.JSONRPC)
		assert.Equal(t, "call", req.Method)
		assert.Equal(t, "common", req.Params.Service)
		assert.Equal(t, "authenticate", req.Params.Method)
		assert.NotEmpty(t, req.ID)
		require.Len(t, req.Params.Args, 4)
		assert.Equal(t, "testdb", req.Params.Args[0])
		assert.Equal(t, "ana", req.Params.Args[1])

		rpcResult(t, w, 7)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), NoopObserver{})
	id, err := client.Authenticate(context.Background(), "ana", "secret")

	require.NoError(t, err)
	assert.Equal(t, int64(7), id.UID)
	assert.Equal(t, "ana", id.Login)
}

func TestAuthenticate_BadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Odoo answers false, not a fault, on wrong credentials.
		rpcResult(t, w, false)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), NoopObserver{})
	_, err := client.Authenticate(context.Background(), "ana", "wrong")

	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestFetchAssignedProjects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "object", req.Params.Service)
		assert.Equal(t, "execute_kw", req.Params.Method)
		assert.Equal(t, "project.project", req.Params.Args[3])
		assert.Equal(t, "search_read", req.Params.Args[4])

		rpcResult(t, w, []map[string]any{
			{"id": 3, "name": "Obra Norte"},
			{"id": 9, "name": "Interna"},
		})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), NoopObserver{})
	projects, err := client.FetchAssignedProjects(context.Background(), testIdentity())

	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, domain.Project{ID: 3, Label: "Obra Norte"}, projects[0])
	assert.Equal(t, domain.Project{ID: 9, Label: "Interna"}, projects[1])
}

func TestFetchProjectActivities_StageTuple(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rpcResult(t, w, []map[string]any{
			{"id": 21, "name": "Replanteo", "stage_id": []any{4, "En curso"}},
			{"id": 22, "name": "Cimentación", "stage_id": false},
		})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), NoopObserver{})
	tasks, err := client.FetchProjectActivities(context.Background(), testIdentity(), 3)

	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, domain.Task{ID: 21, Label: "Replanteo", Stage: "En curso"}, tasks[0])
	assert.Equal(t, domain.Task{ID: 22, Label: "Cimentación", Stage: ""}, tasks[1])
}

func TestSubmitAttendance_Payload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hr.employee", req.Params.Args[3])
		assert.Equal(t, "attendance_manual", req.Params.Args[4])

		posArgs, ok := req.Params.Args[5].([]any)
		require.True(t, ok)
		vals, ok := posArgs[0].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "check_in", vals["next_action"])
		assert.Equal(t, float64(3), vals["project_id"])
		assert.Equal(t, float64(21), vals["actividad_id"])
		assert.Equal(t, "avanzando bien", vals["observation"])
		assert.Equal(t, true, vals["quality"])
		assert.Equal(t, float64(40), vals["progress"])
		assert.InDelta(t, 40.4168, vals["lat"], 0.0001)
		assert.InDelta(t, -3.7038, vals["long"], 0.0001)

		rpcResult(t, w, true)
	}))
	defer srv.Close()

	progress := 40
	client := NewClient(testConfig(srv.URL), NoopObserver{})
	err := client.SubmitAttendance(context.Background(), testIdentity(), domain.AttendanceEvent{
		Action: domain.ActionCheckIn,
		Selection: domain.Selection{
			Project: domain.Project{ID: 3, Label: "Obra Norte"},
			Task:    domain.Task{ID: 21, Label: "Replanteo"},
		},
		Observations: "avanzando bien",
		Quality:      true,
		Progress:     &progress,
		Coordinates:  domain.Coordinates{Latitude: 40.4168, Longitude: -3.7038},
	})

	require.NoError(t, err)
}

func TestSubmitAttendance_OmitsUnsetProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		posArgs := req.Params.Args[5].([]any)
		vals := posArgs[0].(map[string]any)
		_, present := vals["progress"]
		assert.False(t, present, "unset progress must not be sent as zero")
		rpcResult(t, w, true)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), NoopObserver{})
	err := client.SubmitAttendance(context.Background(), testIdentity(), domain.AttendanceEvent{
		Action: domain.ActionCheckOut,
		Selection: domain.Selection{
			Project: domain.Project{ID: 3},
			Task:    domain.Task{ID: 21},
		},
	})
	require.NoError(t, err)
}

func TestSubmitAttendance_NoOpenRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rpcFault(t, w, "Employee has no open attendance record to close.")
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), NoopObserver{})
	err := client.SubmitAttendance(context.Background(), testIdentity(), domain.AttendanceEvent{
		Action:    domain.ActionCheckOut,
		Selection: domain.Selection{Project: domain.Project{ID: 3}, Task: domain.Task{ID: 21}},
	})

	assert.ErrorIs(t, err, ErrNoOpenRecord)
}

func TestSubmitAttendance_RemoteFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rpcFault(t, w, "ValidationError: task does not belong to project")
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), NoopObserver{})
	err := client.SubmitAttendance(context.Background(), testIdentity(), domain.AttendanceEvent{
		Action:    domain.ActionCheckIn,
		Selection: domain.Selection{Project: domain.Project{ID: 3}, Task: domain.Task{ID: 99}},
	})

	assert.ErrorIs(t, err, ErrRemote)
	assert.Contains(t, err.Error(), "task does not belong")
}

func TestCall_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.TimeoutMs = 50

	client := NewClient(cfg, NoopObserver{})
	_, err := client.FetchAssignedProjects(context.Background(), testIdentity())

	assert.ErrorIs(t, err, ErrTimeout)
}

func TestCall_Unavailable(t *testing.T) {
	client := NewClient(testConfig("http://127.0.0.1:1"), NoopObserver{})
	_, err := client.FetchAssignedProjects(context.Background(), testIdentity())

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFetch_RetriesTransientError(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			// Connection-level failure: hijack and drop.
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		rpcResult(t, w, []map[string]any{})
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 1

	client := NewClient(cfg, NoopObserver{})
	_, err := client.FetchAssignedProjects(context.Background(), testIdentity())

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestReconfigure_SwapsEndpoint(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		rpcResult(t, w, []map[string]any{})
	}))
	defer srv.Close()

	client := NewClient(testConfig("http://127.0.0.1:1"), NoopObserver{})
	client.Reconfigure(srv.URL)
	assert.Equal(t, srv.URL, client.URL())

	_, err := client.FetchAssignedProjects(context.Background(), testIdentity())
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
}

func TestObserver_ReceivesFailureCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rpcFault(t, w, "Employee has no open attendance record to close.")
	}))
	defer srv.Close()

	var captured RPCCallEvent
	obs := &captureObserver{fn: func(e RPCCallEvent) { captured = e }}

	client := NewClient(testConfig(srv.URL), obs)
	err := client.SubmitAttendance(context.Background(), testIdentity(), domain.AttendanceEvent{
		Action:    domain.ActionCheckOut,
		Selection: domain.Selection{Project: domain.Project{ID: 1}, Task: domain.Task{ID: 2}},
	})

	assert.ErrorIs(t, err, ErrNoOpenRecord)
	assert.False(t, captured.Success)
	assert.Equal(t, "NO_OPEN_RECORD", captured.ErrorCode)
	assert.Equal(t, "hr.employee", captured.Model)
}

type captureObserver struct {
	fn func(RPCCallEvent)
}

func (o *captureObserver) OnCallComplete(e RPCCallEvent) { o.fn(e) }
