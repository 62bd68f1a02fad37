package extractor

import (
	"context"
	"errors"
	"fmt"

	"teambridge-backend/lib/scrapers/sportsengine"
	"teambridge-backend/services/sessions"
)

// ErrBackendUnavailable means the extraction machinery itself is down
// (task API unreachable, scraping client could not be built). Callers
// decide whether to retry, the core never does.
var ErrBackendUnavailable = errors.New("extraction backend unavailable")

type SessionData struct {
	Email     string `json:"email"`
	CreatedAt int64  `json:"createdAt"`
}

type AuthResult struct {
	Token       string      `json:"token"`
	TaskId      string      `json:"taskId,omitempty"`
	TaskUrl     string      `json:"taskUrl,omitempty"`
	SessionData SessionData `json:"sessionData"`
}

type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// Backend is the capability contract every extraction variant honors.
// The migration engine and the preview aggregator only ever see this
// interface, never a concrete variant.
type Backend interface {
	Authenticate(ctx context.Context, email, password string) (AuthResult, error)
	ValidateCredentials(ctx context.Context, email, password string) (ValidationResult, error)
	TestConnection(ctx context.Context, token string) error
	GetOrganizations(ctx context.Context, token string) ([]sportsengine.Organization, error)
	GetTeamsForOrganization(ctx context.Context, token, organizationId string) ([]sportsengine.Team, error)
	GetTeamRoster(ctx context.Context, token, teamId string) (sportsengine.Roster, error)
	GetMigrationPreview(ctx context.Context, token string) (Preview, error)
}

// TaskResolver is the extra surface of the delegated variant: resolving
// an asynchronous extraction task by webhook, by manual poll, or by
// pasting the task output in directly.
type TaskResolver interface {
	HandleWebhook(ctx context.Context, event WebhookEvent) error
	CheckTaskCompletion(ctx context.Context, token string) (TaskStatus, error)
	SubmitExtractedData(ctx context.Context, token string, raw []byte) error
}

type Kind string

const (
	KindScraper Kind = "scraper"
	KindManus   Kind = "manus"
)

type Config struct {
	Kind Kind `json:"kind"`

	// scraper variant
	BaseUrl string `json:"base_url"`

	// delegated variant
	ManusBaseUrl string `json:"manus_base_url"`
	ManusApiKey  string `json:"manus_api_key"`
	WebhookUrl   string `json:"webhook_url"`
}

// New picks the backend variant once at composition time. Call sites
// never branch on the kind again.
func New(cfg Config, store *sessions.Store) (Backend, error) {
	switch cfg.Kind {
	case KindScraper, "":
		return NewScraperBackend(cfg, store), nil
	case KindManus:
		return NewManusBackend(cfg, store)
	default:
		return nil, fmt.Errorf("unknown extraction backend kind %q", cfg.Kind)
	}
}
