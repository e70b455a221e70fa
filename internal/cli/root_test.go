package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/shift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"clock-in", "clock-out", "sync", "queue", "watch", "token"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	list, _, err := cmd.Find([]string{"queue", "list"})
	require.NoError(t, err)
	assert.Equal(t, "list", list.Name())
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	for _, name := range []string{"format", "api", "token", "queue"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

// execute runs shiftctl with args against an isolated queue file
func execute(t *testing.T, queuePath string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SHIFT_API_TOKEN", "")
	t.Setenv("JWT_SECRET_KEY", "cli-test-secret")

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--queue", queuePath, "--format", "json"}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestClockIn_SubmitsDirectly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(shift.SyncResponse{Results: []shift.ActionResult{{Type: "clock_in", Status: shift.StatusOK}}})
	}))
	defer srv.Close()
	queuePath := filepath.Join(t.TempDir(), "queue.db")

	out, err := execute(t, queuePath, "--api", srv.URL, "clock-in")
	require.NoError(t, err)

	var result clockResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Queued)
	require.NotNil(t, result.Result)
	assert.Equal(t, shift.StatusOK, result.Result.Status)
}

func TestClockIn_QueuesWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	queuePath := filepath.Join(t.TempDir(), "queue.db")

	out, err := execute(t, queuePath, "--api", url, "clock-in", "--at", "2025-03-02T08:00:00Z")
	require.NoError(t, err)

	var result clockResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Queued)
	assert.NotEmpty(t, result.QueueID)

	out, err = execute(t, queuePath, "queue", "list")
	require.NoError(t, err)

	var entries []queueEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, result.QueueID, entries[0].ID)
	assert.Equal(t, "2025-03-02T08:00:00Z", entries[0].ClientTimestamp)
}

// academyServer keeps one trainer's shift state like the sync endpoint does
type academyServer struct {
	mu    sync.Mutex
	order []shift.ActionType
	open  bool
}

func (s *academyServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req shift.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	results := make([]shift.ActionResult, len(req.Actions))
	for i, a := range req.Actions {
		s.order = append(s.order, a.Type)
		results[i] = shift.ActionResult{Type: string(a.Type), Status: shift.StatusOK}
		switch {
		case a.Type == shift.ActionClockIn && s.open:
			results[i].Status, results[i].Error = shift.StatusError, shift.ReasonAlreadyActive
		case a.Type == shift.ActionClockIn:
			s.open = true
		case a.Type == shift.ActionClockOut && !s.open:
			results[i].Status, results[i].Error = shift.StatusError, shift.ReasonNoActiveShift
		default:
			s.open = false
		}
	}
	json.NewEncoder(w).Encode(shift.SyncResponse{Results: results})
}

func TestClockOut_FlushesEarlierQueuedActionsFirst(t *testing.T) {
	academy := &academyServer{}
	srv := httptest.NewServer(academy)
	defer srv.Close()
	queuePath := filepath.Join(t.TempDir(), "queue.db")

	clockedIn := time.Now().Add(-30 * time.Minute).Format(time.RFC3339)
	_, err := execute(t, queuePath, "clock-in", "--offline", "--at", clockedIn)
	require.NoError(t, err)

	out, err := execute(t, queuePath, "--api", srv.URL, "clock-out")
	require.NoError(t, err)

	var result clockResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Queued)
	require.NotNil(t, result.Result)
	assert.Equal(t, shift.StatusOK, result.Result.Status)

	academy.mu.Lock()
	assert.Equal(t, []shift.ActionType{shift.ActionClockIn, shift.ActionClockOut}, academy.order)
	assert.False(t, academy.open)
	academy.mu.Unlock()

	out, err = execute(t, queuePath, "queue", "list")
	require.NoError(t, err)
	var entries []queueEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Empty(t, entries)
}

func TestClockOut_StaysQueuedBehindUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	queuePath := filepath.Join(t.TempDir(), "queue.db")

	_, err := execute(t, queuePath, "clock-in", "--offline")
	require.NoError(t, err)

	out, err := execute(t, queuePath, "--api", url, "clock-out")
	require.NoError(t, err)

	var result clockResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Queued)

	out, err = execute(t, queuePath, "queue", "list")
	require.NoError(t, err)
	var entries []queueEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Len(t, entries, 2)
}

func TestSync_AuthNeededExitCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()
	queuePath := filepath.Join(t.TempDir(), "queue.db")

	_, err := execute(t, queuePath, "clock-out", "--offline")
	require.NoError(t, err)

	_, err = execute(t, queuePath, "--api", srv.URL, "sync")
	require.Error(t, err)
	assert.Equal(t, ExitAuthNeeded, GetExitCode(err))

	out, err := execute(t, queuePath, "queue", "list")
	require.NoError(t, err)
	var entries []queueEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Len(t, entries, 1)
}

func TestToken_RejectsUnknownRole(t *testing.T) {
	_, err := execute(t, filepath.Join(t.TempDir(), "queue.db"), "token", "--user-id", "t-1", "--role", "coach")
	assert.Error(t, err)
}
