package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"teambridge-backend/lib/scrapers/sportsengine"
	"teambridge-backend/lib/testutil"
	"teambridge-backend/services/extractor"
	"teambridge-backend/services/migration"
	migrationdb "teambridge-backend/services/migration/db"
	"teambridge-backend/services/sessions"
	sessiondb "teambridge-backend/services/sessions/db"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testToken = "tok-123"

// stubBackend accepts exactly one token and serves a single
// organization tree.
type stubBackend struct {
	rejectLogin bool
}

func (s *stubBackend) checkToken(token string) error {
	if token != testToken {
		return sessions.ErrNoSession
	}
	return nil
}

func (s *stubBackend) Authenticate(ctx context.Context, email, password string) (extractor.AuthResult, error) {
	if s.rejectLogin {
		return extractor.AuthResult{}, &sportsengine.AuthenticationError{Message: "Invalid email or password."}
	}
	return extractor.AuthResult{
		Token:       testToken,
		SessionData: extractor.SessionData{Email: email},
	}, nil
}

func (s *stubBackend) ValidateCredentials(ctx context.Context, email, password string) (extractor.ValidationResult, error) {
	if s.rejectLogin {
		return extractor.ValidationResult{Valid: false, Message: "Invalid email or password."}, nil
	}
	return extractor.ValidationResult{Valid: true, Message: "credentials verified"}, nil
}

func (s *stubBackend) TestConnection(ctx context.Context, token string) error {
	return s.checkToken(token)
}

func (s *stubBackend) GetOrganizations(ctx context.Context, token string) ([]sportsengine.Organization, error) {
	if err := s.checkToken(token); err != nil {
		return nil, err
	}
	return []sportsengine.Organization{{Id: "o1", Name: "Eagles"}}, nil
}

func (s *stubBackend) GetTeamsForOrganization(ctx context.Context, token, organizationId string) ([]sportsengine.Team, error) {
	if err := s.checkToken(token); err != nil {
		return nil, err
	}
	if organizationId != "o1" {
		return nil, nil
	}
	return []sportsengine.Team{{Id: "t1", Name: "Eagles Varsity", OrganizationId: "o1"}}, nil
}

func (s *stubBackend) GetTeamRoster(ctx context.Context, token, teamId string) (sportsengine.Roster, error) {
	if err := s.checkToken(token); err != nil {
		return sportsengine.Roster{}, err
	}
	if teamId != "t1" {
		return sportsengine.Roster{}, &sportsengine.ExtractionError{Step: "roster", Err: errors.New("no such team")}
	}
	return sportsengine.Roster{
		Players: []sportsengine.Player{{Name: "A B", JerseyNumber: "#9"}},
		Staff:   []sportsengine.Staff{{Name: "C D", Title: "Head Coach"}},
	}, nil
}

func (s *stubBackend) GetMigrationPreview(ctx context.Context, token string) (extractor.Preview, error) {
	if err := s.checkToken(token); err != nil {
		return extractor.Preview{}, err
	}
	return extractor.Preview{
		Summary: extractor.PreviewSummary{OrganizationCount: 1, TeamCount: 1, PlayerCount: 1, StaffCount: 1},
	}, nil
}

func setupGateway(t *testing.T, backend extractor.Backend) *gin.Engine {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "gateway",
		DbSchema: sessiondb.Schema + "\n" + migrationdb.Schema,
	})
	t.Cleanup(cleanup)

	store := sessions.NewStore(res.DB, []byte("test-secret"))
	engine := migration.NewEngine(res.DB, backend, string(extractor.KindScraper))
	return New(backend, store, engine).Router()
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	router := setupGateway(t, &stubBackend{})
	rec := doRequest(t, router, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticateFlow(t *testing.T) {
	router := setupGateway(t, &stubBackend{})

	rec := doRequest(t, router, http.MethodPost, "/api/authenticate", "",
		gin.H{"email": "coach@example.com", "password": "hunter2"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	require.Equal(t, true, body["success"])
	require.Equal(t, testToken, body["token"])

	rec = doRequest(t, router, http.MethodGet, "/api/test", testToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	router := setupGateway(t, &stubBackend{rejectLogin: true})

	rec := doRequest(t, router, http.MethodPost, "/api/authenticate", "",
		gin.H{"email": "coach@example.com", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decode(t, rec)
	require.Equal(t, false, body["success"])
	require.Contains(t, body["error"], "Invalid email or password")
}

func TestAuthenticateRequiresBody(t *testing.T) {
	router := setupGateway(t, &stubBackend{})

	rec := doRequest(t, router, http.MethodPost, "/api/authenticate", "",
		gin.H{"email": "coach@example.com"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidate(t *testing.T) {
	router := setupGateway(t, &stubBackend{rejectLogin: true})

	rec := doRequest(t, router, http.MethodPost, "/api/validate", "",
		gin.H{"email": "coach@example.com", "password": "wrong"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, decode(t, rec)["valid"])
}

func TestBearerTokenRequired(t *testing.T) {
	router := setupGateway(t, &stubBackend{})

	for _, path := range []string{
		"/api/test", "/api/organizations", "/api/organizations/o1/teams",
		"/api/teams/t1/roster", "/api/migration-preview",
	} {
		rec := doRequest(t, router, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "path %s", path)
	}
}

func TestExpiredSessionMapsToUnauthorized(t *testing.T) {
	router := setupGateway(t, &stubBackend{})

	rec := doRequest(t, router, http.MethodGet, "/api/organizations", "stale-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, decode(t, rec)["error"], "reauthenticate")
}

func TestListingEndpoints(t *testing.T) {
	router := setupGateway(t, &stubBackend{})

	rec := doRequest(t, router, http.MethodGet, "/api/organizations", testToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	orgs := decode(t, rec)["organizations"].([]any)
	require.Len(t, orgs, 1)

	rec = doRequest(t, router, http.MethodGet, "/api/organizations/o1/teams", testToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode(t, rec)["teams"].([]any), 1)

	// unknown org still answers with an empty list, not an error
	rec = doRequest(t, router, http.MethodGet, "/api/organizations/nope/teams", testToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode(t, rec)["teams"].([]any), 0)

	rec = doRequest(t, router, http.MethodGet, "/api/teams/t1/roster", testToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	roster := decode(t, rec)["roster"].(map[string]any)
	require.Len(t, roster["players"].([]any), 1)

	rec = doRequest(t, router, http.MethodGet, "/api/teams/nope/roster", testToken, nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/migration-preview", testToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	preview := decode(t, rec)["preview"].(map[string]any)
	summary := preview["summary"].(map[string]any)
	require.EqualValues(t, 1, summary["organizationCount"])
}

func TestTaskEndpointsWithoutDelegatedBackend(t *testing.T) {
	router := setupGateway(t, &stubBackend{})

	rec := doRequest(t, router, http.MethodPost, "/api/manus-webhook", "",
		gin.H{"event_type": "task_update"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/check-task-completion", testToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/submit-extracted-data", testToken,
		gin.H{"extractedData": "{}"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMigrateEndpoint(t *testing.T) {
	router := setupGateway(t, &stubBackend{})

	rec := doRequest(t, router, http.MethodPost, "/api/migrate", testToken,
		gin.H{"userId": "user-1", "organizationIds": []string{"o1"}})
	require.Equal(t, http.StatusOK, rec.Code)

	result := decode(t, rec)["result"].(map[string]any)
	require.EqualValues(t, 1, result["organizations"])
	require.EqualValues(t, 1, result["teams"])
	require.EqualValues(t, 2, result["members"])

	rec = doRequest(t, router, http.MethodGet, "/api/migration-status", testToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "completed", decode(t, rec)["state"])
}
