package extractor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"teambridge-backend/lib/testutil"
	"teambridge-backend/services/sessions"
	sessiondb "teambridge-backend/services/sessions/db"

	"github.com/stretchr/testify/require"
)

// fakeTaskApi is a minimal stand-in for the task-execution service:
// one task at a time, status flips when the test says so.
type fakeTaskApi struct {
	taskId string
	status string
	output string

	lastPrompt string
}

func (f *fakeTaskApi) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/tasks", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("API_KEY") == "" {
			http.Error(w, "missing api key", http.StatusUnauthorized)
			return
		}
		var req createTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.lastPrompt = req.Prompt
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(createTaskResponse{
			TaskId:  f.taskId,
			TaskUrl: "https://tasks.example.com/" + f.taskId,
		})
	})
	mux.HandleFunc("GET /v1/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != f.taskId {
			http.Error(w, "no such task", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(taskStatusResponse{
			TaskId: f.taskId,
			Status: f.status,
			Output: f.output,
		})
	})
	return mux
}

func setupManus(t *testing.T) (*ManusBackend, *fakeTaskApi) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "extractor-manus",
		DbSchema: sessiondb.Schema,
	})
	t.Cleanup(cleanup)

	api := &fakeTaskApi{taskId: "task-42", status: taskStatusRunning}
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)

	store := sessions.NewStore(res.DB, []byte("test-secret"))
	backend, err := NewManusBackend(Config{
		Kind:         KindManus,
		ManusBaseUrl: server.URL,
		ManusApiKey:  "key",
	}, store)
	require.NoError(t, err)
	return backend, api
}

func TestManusAuthenticateSubmitsTask(t *testing.T) {
	backend, api := setupManus(t)
	ctx := context.Background()

	auth, err := backend.Authenticate(ctx, "coach@example.com", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, auth.Token)
	require.Equal(t, "task-42", auth.TaskId)
	require.Contains(t, auth.TaskUrl, "task-42")
	require.Contains(t, api.lastPrompt, "coach@example.com")
	require.Contains(t, api.lastPrompt, "organizations")
}

func TestManusReturnsPlaceholderWhilePending(t *testing.T) {
	backend, _ := setupManus(t)
	ctx := context.Background()

	auth, err := backend.Authenticate(ctx, "coach@example.com", "hunter2")
	require.NoError(t, err)

	orgs, err := backend.GetOrganizations(ctx, auth.Token)
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	require.Contains(t, orgs[0].Name, "in progress")
	require.Contains(t, orgs[0].Description, auth.TaskUrl)

	teams, err := backend.GetTeamsForOrganization(ctx, auth.Token, "o1")
	require.NoError(t, err)
	require.Len(t, teams, 1)

	_, err = backend.GetTeamRoster(ctx, auth.Token, "t1")
	require.ErrorIs(t, err, ErrTaskPending)

	_, err = backend.GetMigrationPreview(ctx, auth.Token)
	require.ErrorIs(t, err, ErrTaskPending)
}

func TestManusResolvesByPolling(t *testing.T) {
	backend, api := setupManus(t)
	ctx := context.Background()

	auth, err := backend.Authenticate(ctx, "coach@example.com", "hunter2")
	require.NoError(t, err)

	status, err := backend.CheckTaskCompletion(ctx, auth.Token)
	require.NoError(t, err)
	require.False(t, status.Resolved)

	api.status = taskStatusCompleted
	api.output = taskOutputFixture

	status, err = backend.CheckTaskCompletion(ctx, auth.Token)
	require.NoError(t, err)
	require.True(t, status.Resolved)

	orgs, err := backend.GetOrganizations(ctx, auth.Token)
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	require.Equal(t, "Eagles", orgs[0].Name)

	roster, err := backend.GetTeamRoster(ctx, auth.Token, "t1")
	require.NoError(t, err)
	require.Len(t, roster.Players, 1)
}

func TestManusResolvesByWebhook(t *testing.T) {
	backend, _ := setupManus(t)
	ctx := context.Background()

	auth, err := backend.Authenticate(ctx, "coach@example.com", "hunter2")
	require.NoError(t, err)

	err = backend.HandleWebhook(ctx, WebhookEvent{
		EventType: "task_update",
		TaskDetail: WebhookTaskDetail{
			TaskId: "task-42",
			Status: taskStatusCompleted,
			Output: "```json\n" + taskOutputFixture + "\n```",
		},
	})
	require.NoError(t, err)

	preview, err := backend.GetMigrationPreview(ctx, auth.Token)
	require.NoError(t, err)
	require.Equal(t, 1, preview.Summary.OrganizationCount)
	require.Equal(t, 1, preview.Summary.PlayerCount)
}

func TestManusWebhookForUnknownTask(t *testing.T) {
	backend, _ := setupManus(t)

	err := backend.HandleWebhook(context.Background(), WebhookEvent{
		TaskDetail: WebhookTaskDetail{TaskId: "never-submitted", Status: taskStatusCompleted},
	})
	require.Error(t, err)
}

func TestManusResolvesBySubmittedData(t *testing.T) {
	backend, _ := setupManus(t)
	ctx := context.Background()

	auth, err := backend.Authenticate(ctx, "coach@example.com", "hunter2")
	require.NoError(t, err)

	err = backend.SubmitExtractedData(ctx, auth.Token, []byte(taskOutputFixture))
	require.NoError(t, err)

	orgs, err := backend.GetOrganizations(ctx, auth.Token)
	require.NoError(t, err)
	require.Equal(t, "o1", orgs[0].Id)

	// fresh data replaces the old snapshot outright
	replacement := strings.Replace(taskOutputFixture, "Eagles", "Falcons", 1)
	require.NoError(t, backend.SubmitExtractedData(ctx, auth.Token, []byte(replacement)))

	orgs, err = backend.GetOrganizations(ctx, auth.Token)
	require.NoError(t, err)
	require.Equal(t, "Falcons", orgs[0].Name)
}

func TestManusTaskApiDown(t *testing.T) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "extractor-manus-down",
		DbSchema: sessiondb.Schema,
	})
	t.Cleanup(cleanup)

	server := httptest.NewServer(http.NotFoundHandler())
	store := sessions.NewStore(res.DB, []byte("test-secret"))
	backend, err := NewManusBackend(Config{
		ManusBaseUrl: server.URL,
		ManusApiKey:  "key",
	}, store)
	require.NoError(t, err)
	server.Close()

	_, err = backend.Authenticate(context.Background(), "coach@example.com", "hunter2")
	require.ErrorIs(t, err, ErrBackendUnavailable)
}
