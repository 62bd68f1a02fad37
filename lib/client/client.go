// Package client is the SDK a calling application uses against the
// backend's HTTP surface. It mirrors the extraction contract, owns the
// bearer token, and persists it (plus any delegated-task info) to a
// local state file so separate invocations share one session.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"teambridge-backend/lib/scrapers/sportsengine"

	"github.com/go-resty/resty/v2"
)

type State struct {
	BaseUrl string `json:"baseUrl"`
	Token   string `json:"token"`
	Email   string `json:"email"`
	TaskId  string `json:"taskId,omitempty"`
	TaskUrl string `json:"taskUrl,omitempty"`
}

type Client struct {
	http      *resty.Client
	statePath string
	state     State
}

// New builds a client for the backend at baseUrl. statePath may point
// at a file that does not exist yet, it is created on the first
// successful authenticate.
func New(baseUrl, statePath string) (*Client, error) {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseUrl).
			SetTimeout(time.Minute * 2),
		statePath: statePath,
		state:     State{BaseUrl: baseUrl},
	}

	raw, err := os.ReadFile(statePath)
	if err == nil {
		if err := json.Unmarshal(raw, &c.state); err != nil {
			return nil, fmt.Errorf("state file %q is corrupt: %w", statePath, err)
		}
		c.state.BaseUrl = baseUrl
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	return c, nil
}

func (c *Client) Token() string  { return c.state.Token }
func (c *Client) TaskId() string { return c.state.TaskId }

func (c *Client) saveState() error {
	raw, err := json.MarshalIndent(c.state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(c.statePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(c.statePath, raw, 0o600)
}

type apiError struct {
	Message string `json:"error"`
}

// checkResponse folds a non-2xx response into an error carrying the
// server's own message when it sent one.
func checkResponse(res *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	if !res.IsError() {
		return nil
	}
	if apiErr, ok := res.Error().(*apiError); ok && apiErr.Message != "" {
		return fmt.Errorf("backend error (%s): %s", res.Status(), apiErr.Message)
	}
	return fmt.Errorf("backend error: %s", res.Status())
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx).SetError(&apiError{})
	if c.state.Token != "" {
		req.SetAuthToken(c.state.Token)
	}
	return req
}

type AuthResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	TaskId  string `json:"taskId"`
	TaskUrl string `json:"taskUrl"`
}

func (c *Client) Authenticate(ctx context.Context, email, password string) (AuthResponse, error) {
	var out AuthResponse
	res, err := c.request(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		Post("/api/authenticate")
	if err := checkResponse(res, err); err != nil {
		return AuthResponse{}, err
	}

	c.state.Token = out.Token
	c.state.Email = email
	c.state.TaskId = out.TaskId
	c.state.TaskUrl = out.TaskUrl
	if err := c.saveState(); err != nil {
		return AuthResponse{}, fmt.Errorf("persisting session state: %w", err)
	}
	return out, nil
}

type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

func (c *Client) ValidateCredentials(ctx context.Context, email, password string) (ValidationResult, error) {
	var out ValidationResult
	res, err := c.request(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		Post("/api/validate")
	if err := checkResponse(res, err); err != nil {
		return ValidationResult{}, err
	}
	return out, nil
}

func (c *Client) TestConnection(ctx context.Context) error {
	res, err := c.request(ctx).Get("/api/test")
	return checkResponse(res, err)
}

func (c *Client) GetOrganizations(ctx context.Context) ([]sportsengine.Organization, error) {
	var out struct {
		Organizations []sportsengine.Organization `json:"organizations"`
	}
	res, err := c.request(ctx).SetResult(&out).Get("/api/organizations")
	if err := checkResponse(res, err); err != nil {
		return nil, err
	}
	return out.Organizations, nil
}

func (c *Client) GetTeamsForOrganization(ctx context.Context, organizationId string) ([]sportsengine.Team, error) {
	var out struct {
		Teams []sportsengine.Team `json:"teams"`
	}
	res, err := c.request(ctx).SetResult(&out).
		Get("/api/organizations/" + organizationId + "/teams")
	if err := checkResponse(res, err); err != nil {
		return nil, err
	}
	return out.Teams, nil
}

func (c *Client) GetTeamRoster(ctx context.Context, teamId string) (sportsengine.Roster, error) {
	var out struct {
		Roster sportsengine.Roster `json:"roster"`
	}
	res, err := c.request(ctx).SetResult(&out).
		Get("/api/teams/" + teamId + "/roster")
	if err := checkResponse(res, err); err != nil {
		return sportsengine.Roster{}, err
	}
	return out.Roster, nil
}

type PreviewTeam struct {
	sportsengine.Team
	PlayerCount int `json:"playerCount"`
	StaffCount  int `json:"staffCount"`
}

type PreviewOrganization struct {
	sportsengine.Organization
	Teams []PreviewTeam `json:"teams"`
	Error string        `json:"error,omitempty"`
}

type PreviewSummary struct {
	OrganizationCount int `json:"organizationCount"`
	TeamCount         int `json:"teamCount"`
	PlayerCount       int `json:"playerCount"`
	StaffCount        int `json:"staffCount"`
}

type Preview struct {
	Organizations []PreviewOrganization `json:"organizations"`
	Summary       PreviewSummary        `json:"summary"`
}

func (c *Client) GetMigrationPreview(ctx context.Context) (Preview, error) {
	var out struct {
		Preview Preview `json:"preview"`
	}
	res, err := c.request(ctx).SetResult(&out).Get("/api/migration-preview")
	if err := checkResponse(res, err); err != nil {
		return Preview{}, err
	}
	return out.Preview, nil
}

type TaskStatus struct {
	TaskId   string `json:"taskId"`
	TaskUrl  string `json:"taskUrl"`
	Status   string `json:"status"`
	Resolved bool   `json:"resolved"`
	Message  string `json:"message"`
}

func (c *Client) CheckTaskCompletion(ctx context.Context) (TaskStatus, error) {
	var out TaskStatus
	res, err := c.request(ctx).SetResult(&out).Post("/api/check-task-completion")
	if err := checkResponse(res, err); err != nil {
		return TaskStatus{}, err
	}
	return out, nil
}

func (c *Client) SubmitExtractedData(ctx context.Context, raw string) error {
	res, err := c.request(ctx).
		SetBody(map[string]string{"extractedData": raw}).
		Post("/api/submit-extracted-data")
	return checkResponse(res, err)
}

type MigrationResult struct {
	RecordId      string   `json:"recordId"`
	Organizations int      `json:"organizations"`
	Teams         int      `json:"teams"`
	Members       int      `json:"members"`
	Errors        []string `json:"errors"`
}

func (c *Client) Migrate(ctx context.Context, userId string, organizationIds []string) (MigrationResult, error) {
	var out struct {
		Result MigrationResult `json:"result"`
	}
	res, err := c.request(ctx).
		SetBody(map[string]any{"userId": userId, "organizationIds": organizationIds}).
		SetResult(&out).
		Post("/api/migrate")
	if err := checkResponse(res, err); err != nil {
		return MigrationResult{}, err
	}
	return out.Result, nil
}

type MigrationProgress struct {
	State   string   `json:"state"`
	Current int      `json:"current"`
	Total   int      `json:"total"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

func (c *Client) MigrationStatus(ctx context.Context) (MigrationProgress, error) {
	var out MigrationProgress
	res, err := c.request(ctx).SetResult(&out).Get("/api/migration-status")
	if err := checkResponse(res, err); err != nil {
		return MigrationProgress{}, err
	}
	return out, nil
}
