package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"teambridge-backend/lib/scrapers/sportsengine"
	"teambridge-backend/services/sessions"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/extractor")

// ScraperBackend drives the selector-cascade extractor directly. Every
// call is synchronous and opens its own isolated scraping session.
type ScraperBackend struct {
	opts  sportsengine.ClientOptions
	store *sessions.Store
}

func NewScraperBackend(cfg Config, store *sessions.Store) *ScraperBackend {
	return &ScraperBackend{
		opts:  sportsengine.ClientOptions{BaseUrl: cfg.BaseUrl},
		store: store,
	}
}

func (b *ScraperBackend) Authenticate(ctx context.Context, email, password string) (AuthResult, error) {
	ctx, span := tracer.Start(ctx, "scraper:Authenticate")
	defer span.End()

	creds, err := sportsengine.Authenticate(ctx, b.opts, email, password)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login against source site failed")
		return AuthResult{}, err
	}

	blob, err := json.Marshal(creds)
	if err != nil {
		return AuthResult{}, err
	}
	token, err := b.store.Create(ctx, email, blob)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create session")
		return AuthResult{}, err
	}

	return AuthResult{
		Token: token,
		SessionData: SessionData{
			Email:     email,
			CreatedAt: time.Now().UnixMilli(),
		},
	}, nil
}

func (b *ScraperBackend) ValidateCredentials(ctx context.Context, email, password string) (ValidationResult, error) {
	ctx, span := tracer.Start(ctx, "scraper:ValidateCredentials")
	defer span.End()

	_, err := sportsengine.Authenticate(ctx, b.opts, email, password)

	var authErr *sportsengine.AuthenticationError
	if errors.As(err, &authErr) {
		return ValidationResult{Valid: false, Message: authErr.Message}, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation could not complete")
		return ValidationResult{}, err
	}
	return ValidationResult{Valid: true, Message: "credentials verified"}, nil
}

func (b *ScraperBackend) TestConnection(ctx context.Context, token string) error {
	return b.store.Touch(ctx, token)
}

func (b *ScraperBackend) credentials(ctx context.Context, token string) (sportsengine.Credentials, error) {
	session, err := b.store.Get(ctx, token)
	if err != nil {
		return sportsengine.Credentials{}, err
	}
	var creds sportsengine.Credentials
	err = json.Unmarshal(session.Credentials, &creds)
	if err != nil {
		return sportsengine.Credentials{}, err
	}
	return creds, nil
}

func (b *ScraperBackend) GetOrganizations(ctx context.Context, token string) ([]sportsengine.Organization, error) {
	ctx, span := tracer.Start(ctx, "scraper:GetOrganizations")
	defer span.End()

	creds, err := b.credentials(ctx, token)
	if err != nil {
		return nil, err
	}
	orgs, err := sportsengine.ListOrganizations(ctx, b.opts, creds)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list organizations")
		return nil, err
	}
	_ = b.store.Touch(ctx, token)
	return orgs, nil
}

func (b *ScraperBackend) GetTeamsForOrganization(ctx context.Context, token, organizationId string) ([]sportsengine.Team, error) {
	ctx, span := tracer.Start(ctx, "scraper:GetTeamsForOrganization")
	defer span.End()

	creds, err := b.credentials(ctx, token)
	if err != nil {
		return nil, err
	}
	teams, err := sportsengine.ListTeams(ctx, b.opts, creds, organizationId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list teams")
		return nil, err
	}
	_ = b.store.Touch(ctx, token)
	return teams, nil
}

func (b *ScraperBackend) GetTeamRoster(ctx context.Context, token, teamId string) (sportsengine.Roster, error) {
	ctx, span := tracer.Start(ctx, "scraper:GetTeamRoster")
	defer span.End()

	creds, err := b.credentials(ctx, token)
	if err != nil {
		return sportsengine.Roster{}, err
	}
	roster, err := sportsengine.GetRoster(ctx, b.opts, creds, teamId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch roster")
		return sportsengine.Roster{}, err
	}
	_ = b.store.Touch(ctx, token)
	return roster, nil
}

func (b *ScraperBackend) GetMigrationPreview(ctx context.Context, token string) (Preview, error) {
	return buildPreview(ctx, b, b.store, token)
}
