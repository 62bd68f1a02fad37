package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"teambridge-backend/lib/scrapers/sportsengine"
	"teambridge-backend/services/sessions"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel/codes"
)

// ErrTaskPending means the delegated extraction task has been submitted
// but has not resolved yet. Listing calls return placeholder entities
// instead of this error, but preview and roster calls surface it.
var ErrTaskPending = errors.New("delegated extraction task still pending")

const (
	DefaultManusBaseUrl = "https://api.manus.ai"

	taskStatusRunning   = "running"
	taskStatusCompleted = "completed"
	taskStatusFailed    = "failed"
)

// ManusBackend delegates extraction to an external task-execution API
// instead of driving the source site itself. Authenticate submits one
// natural-language task describing the full extraction and returns
// immediately, results resolve later by webhook, by manual poll, or by
// the caller pasting the task output in.
type ManusBackend struct {
	store  *sessions.Store
	client *resty.Client

	webhookUrl string

	// webhook events carry a task id but no bearer token, this maps
	// one back to the other for recently submitted tasks
	tasks *expirable.LRU[string, string]
}

func NewManusBackend(cfg Config, store *sessions.Store) (*ManusBackend, error) {
	if cfg.ManusApiKey == "" {
		return nil, errors.New("manus backend requires an api key")
	}
	baseUrl := cfg.ManusBaseUrl
	if baseUrl == "" {
		baseUrl = DefaultManusBaseUrl
	}

	client := resty.New().
		SetBaseURL(baseUrl).
		SetHeader("API_KEY", cfg.ManusApiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(time.Second * 30)

	return &ManusBackend{
		store:      store,
		client:     client,
		webhookUrl: cfg.WebhookUrl,
		tasks:      expirable.NewLRU[string, string](512, nil, sessions.TTL),
	}, nil
}

type createTaskRequest struct {
	Prompt     string `json:"prompt"`
	WebhookUrl string `json:"webhook_url,omitempty"`
}

type createTaskResponse struct {
	TaskId  string `json:"task_id"`
	TaskUrl string `json:"task_url"`
}

type taskStatusResponse struct {
	TaskId  string `json:"task_id"`
	TaskUrl string `json:"task_url"`
	Status  string `json:"status"`
	Output  string `json:"output"`
	Error   string `json:"error"`
}

type WebhookTaskDetail struct {
	TaskId  string `json:"task_id"`
	TaskUrl string `json:"task_url"`
	Status  string `json:"status"`
	Output  string `json:"output"`
}

type WebhookEvent struct {
	EventType  string            `json:"event_type"`
	TaskDetail WebhookTaskDetail `json:"task_detail"`
}

type TaskStatus struct {
	TaskId   string `json:"taskId"`
	TaskUrl  string `json:"taskUrl"`
	Status   string `json:"status"`
	Resolved bool   `json:"resolved"`
	Message  string `json:"message,omitempty"`
}

func extractionPrompt(email, password string) string {
	return fmt.Sprintf(`Log in to https://www.sportsengine.com with email %q and password %q.
Visit the account's organization list, then every organization's teams page, then every team's roster page.
Reply with ONLY a JSON object of this exact shape, no commentary:
{"organizations":[{"id":"...","name":"...","type":"...","sport":"...","teams":[{"id":"...","name":"...","sport":"...","gender":"...","players":[{"name":"...","jerseyNumber":"...","position":"...","rosterStatus":"..."}],"staff":[{"name":"...","title":"..."}]}]}]}
Use the last URL path segment of each organization and team page as its id.`, email, password)
}

func (b *ManusBackend) submitTask(ctx context.Context, prompt string) (createTaskResponse, error) {
	var out createTaskResponse
	res, err := b.client.R().
		SetContext(ctx).
		SetBody(createTaskRequest{Prompt: prompt, WebhookUrl: b.webhookUrl}).
		SetResult(&out).
		Post("/v1/tasks")
	if err != nil {
		return createTaskResponse{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if res.IsError() {
		return createTaskResponse{}, fmt.Errorf("%w: task api returned %s", ErrBackendUnavailable, res.Status())
	}
	if out.TaskId == "" {
		return createTaskResponse{}, fmt.Errorf("%w: task api returned no task id", ErrBackendUnavailable)
	}
	return out, nil
}

func (b *ManusBackend) Authenticate(ctx context.Context, email, password string) (AuthResult, error) {
	ctx, span := tracer.Start(ctx, "manus:Authenticate")
	defer span.End()

	task, err := b.submitTask(ctx, extractionPrompt(email, password))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "task submission failed")
		return AuthResult{}, err
	}

	creds, err := json.Marshal(sportsengine.Credentials{Email: email})
	if err != nil {
		return AuthResult{}, err
	}
	token, err := b.store.Create(ctx, email, creds)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create session")
		return AuthResult{}, err
	}

	err = storeCache(ctx, b.store, token, CachedExtraction{
		PendingTaskId:  task.TaskId,
		PendingTaskUrl: task.TaskUrl,
	})
	if err != nil {
		return AuthResult{}, err
	}
	b.tasks.Add(task.TaskId, token)

	return AuthResult{
		Token:   token,
		TaskId:  task.TaskId,
		TaskUrl: task.TaskUrl,
		SessionData: SessionData{
			Email:     email,
			CreatedAt: time.Now().UnixMilli(),
		},
	}, nil
}

// ValidateCredentials cannot actually try the login without running a
// full delegated task, so it only checks the shape of the input. The
// real verdict arrives when the extraction task resolves.
func (b *ManusBackend) ValidateCredentials(ctx context.Context, email, password string) (ValidationResult, error) {
	if !strings.Contains(email, "@") {
		return ValidationResult{Valid: false, Message: "email address looks malformed"}, nil
	}
	if password == "" {
		return ValidationResult{Valid: false, Message: "password is empty"}, nil
	}
	return ValidationResult{Valid: true, Message: "credentials accepted, verified when the extraction task runs"}, nil
}

func (b *ManusBackend) TestConnection(ctx context.Context, token string) error {
	session, err := b.store.Get(ctx, token)
	if err != nil {
		return err
	}
	if cache, ok := loadCache(session); ok && cache.PendingTaskId != "" && !cache.Resolved {
		res, err := b.client.R().SetContext(ctx).Get("/v1/tasks/" + cache.PendingTaskId)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		if res.IsError() {
			return fmt.Errorf("%w: task api returned %s", ErrBackendUnavailable, res.Status())
		}
	}
	return b.store.Touch(ctx, token)
}

func (b *ManusBackend) pendingPlaceholder(cache CachedExtraction) sportsengine.Organization {
	return sportsengine.Organization{
		Id:          "extraction-pending",
		Name:        "Extraction in progress",
		Description: "The delegated extraction task has not finished yet. Check " + cache.PendingTaskUrl,
		Url:         cache.PendingTaskUrl,
	}
}

func (b *ManusBackend) GetOrganizations(ctx context.Context, token string) ([]sportsengine.Organization, error) {
	session, err := b.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	_ = b.store.Touch(ctx, token)

	cache, ok := loadCache(session)
	if !ok {
		return nil, ErrTaskPending
	}
	if !cache.Resolved {
		return []sportsengine.Organization{b.pendingPlaceholder(cache)}, nil
	}
	return cache.Organizations, nil
}

func (b *ManusBackend) GetTeamsForOrganization(ctx context.Context, token, organizationId string) ([]sportsengine.Team, error) {
	session, err := b.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	_ = b.store.Touch(ctx, token)

	cache, ok := loadCache(session)
	if !ok {
		return nil, ErrTaskPending
	}
	if !cache.Resolved {
		placeholder := b.pendingPlaceholder(cache)
		return []sportsengine.Team{{
			Id:             placeholder.Id,
			Name:           placeholder.Name,
			OrganizationId: organizationId,
			Url:            placeholder.Url,
		}}, nil
	}
	return cache.TeamsByOrg[organizationId], nil
}

func (b *ManusBackend) GetTeamRoster(ctx context.Context, token, teamId string) (sportsengine.Roster, error) {
	session, err := b.store.Get(ctx, token)
	if err != nil {
		return sportsengine.Roster{}, err
	}
	_ = b.store.Touch(ctx, token)

	cache, ok := loadCache(session)
	if !ok || !cache.Resolved {
		return sportsengine.Roster{}, ErrTaskPending
	}
	roster, ok := cache.RostersByTeam[teamId]
	if !ok {
		return sportsengine.Roster{}, &sportsengine.ExtractionError{
			Step: "roster",
			Err:  fmt.Errorf("task output has no roster for team %q", teamId),
		}
	}
	return roster, nil
}

func (b *ManusBackend) GetMigrationPreview(ctx context.Context, token string) (Preview, error) {
	session, err := b.store.Get(ctx, token)
	if err != nil {
		return Preview{}, err
	}
	cache, ok := loadCache(session)
	if !ok || !cache.Resolved {
		return Preview{}, ErrTaskPending
	}
	return previewFromCache(cache), nil
}

// HandleWebhook resolves a pending task from an inbound completion
// notification. Events for tasks this process never submitted (or that
// aged out of the map) are dropped with a warning, the manual poll and
// submit paths still work for those sessions.
func (b *ManusBackend) HandleWebhook(ctx context.Context, event WebhookEvent) error {
	ctx, span := tracer.Start(ctx, "manus:HandleWebhook")
	defer span.End()

	if event.TaskDetail.Status != "" &&
		event.TaskDetail.Status != taskStatusCompleted {
		slog.InfoContext(ctx, "ignoring non-completion task event",
			slog.String("taskId", event.TaskDetail.TaskId),
			slog.String("status", event.TaskDetail.Status))
		return nil
	}

	token, ok := b.tasks.Get(event.TaskDetail.TaskId)
	if !ok {
		slog.WarnContext(ctx, "webhook for unknown task",
			slog.String("taskId", event.TaskDetail.TaskId))
		return fmt.Errorf("no session waiting on task %q", event.TaskDetail.TaskId)
	}

	cache, err := ParseTaskOutput([]byte(event.TaskDetail.Output))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "task output unparseable")
		return err
	}
	cache.PendingTaskId = event.TaskDetail.TaskId
	cache.PendingTaskUrl = event.TaskDetail.TaskUrl
	return storeCache(ctx, b.store, token, cache)
}

// CheckTaskCompletion is the manual fallback when the webhook never
// arrives: poll the task API directly and resolve the session if the
// task has finished.
func (b *ManusBackend) CheckTaskCompletion(ctx context.Context, token string) (TaskStatus, error) {
	ctx, span := tracer.Start(ctx, "manus:CheckTaskCompletion")
	defer span.End()

	session, err := b.store.Get(ctx, token)
	if err != nil {
		return TaskStatus{}, err
	}
	cache, ok := loadCache(session)
	if !ok || cache.PendingTaskId == "" {
		return TaskStatus{}, errors.New("session has no delegated task")
	}
	if cache.Resolved {
		return TaskStatus{
			TaskId:   cache.PendingTaskId,
			TaskUrl:  cache.PendingTaskUrl,
			Status:   taskStatusCompleted,
			Resolved: true,
		}, nil
	}

	var out taskStatusResponse
	res, err := b.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/v1/tasks/" + cache.PendingTaskId)
	if err != nil {
		return TaskStatus{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if res.IsError() {
		return TaskStatus{}, fmt.Errorf("%w: task api returned %s", ErrBackendUnavailable, res.Status())
	}

	status := TaskStatus{
		TaskId:  cache.PendingTaskId,
		TaskUrl: cache.PendingTaskUrl,
		Status:  out.Status,
	}
	switch out.Status {
	case taskStatusCompleted:
		resolved, err := ParseTaskOutput([]byte(out.Output))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "task output unparseable")
			status.Message = "task finished but its output could not be parsed: " + err.Error()
			return status, nil
		}
		resolved.PendingTaskId = cache.PendingTaskId
		resolved.PendingTaskUrl = cache.PendingTaskUrl
		if err := storeCache(ctx, b.store, token, resolved); err != nil {
			return TaskStatus{}, err
		}
		status.Resolved = true
	case taskStatusFailed:
		status.Message = out.Error
	default:
		status.Message = "task still running, check again later"
	}
	return status, nil
}

// SubmitExtractedData is the last-resort resolution path: the caller
// pastes the task's output in directly. It also serves as the explicit
// cache invalidation mechanism, a fresh submission replaces whatever
// snapshot the session held.
func (b *ManusBackend) SubmitExtractedData(ctx context.Context, token string, raw []byte) error {
	ctx, span := tracer.Start(ctx, "manus:SubmitExtractedData")
	defer span.End()

	session, err := b.store.Get(ctx, token)
	if err != nil {
		return err
	}

	cache, err := ParseTaskOutput(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submitted data unparseable")
		return err
	}
	if prev, ok := loadCache(session); ok {
		cache.PendingTaskId = prev.PendingTaskId
		cache.PendingTaskUrl = prev.PendingTaskUrl
	}
	return storeCache(ctx, b.store, token, cache)
}
