package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"teambridge-backend/lib/scrapers/sportsengine"
	"teambridge-backend/lib/textutil"
	"teambridge-backend/services/extractor"
	"teambridge-backend/services/migration/db"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/migration")

var ErrAlreadyRunning = errors.New("a migration is already running")

// Result summarizes one finished run. Errors holds per-entity failures
// that did not stop the run, so the counts can be non-zero next to a
// non-empty error list. Organizations and Teams count the group rows
// actually written at each level.
type Result struct {
	RecordId      string   `json:"recordId"`
	Organizations int      `json:"organizations"`
	Teams         int      `json:"teams"`
	Members       int      `json:"members"`
	Errors        []string `json:"errors,omitempty"`
}

// migratedTeam and migratedOrganization make up the run manifest
// persisted on the audit record: which source entity became which
// target group.
type migratedTeam struct {
	ExternalId string `json:"externalId"`
	GroupId    string `json:"groupId"`
	Members    int    `json:"members"`
}

type migratedOrganization struct {
	ExternalId string         `json:"externalId"`
	GroupId    string         `json:"groupId"`
	Teams      []migratedTeam `json:"teams"`
}

// Engine copies the extracted organization tree into the target
// database. Entities are processed strictly one at a time in extraction
// order, which keeps the progress counters monotonic and makes every
// error attributable to exactly one entity.
type Engine struct {
	backend  extractor.Backend
	database *sql.DB
	qry      *db.Queries
	source   string

	mu         sync.Mutex
	progress   Progress
	onProgress ProgressFunc
}

// NewEngine builds an engine over the given extraction backend. Source
// names the backend variant and is recorded on every audit row.
func NewEngine(database *sql.DB, backend extractor.Backend, source string) *Engine {
	return &Engine{
		backend:  backend,
		database: database,
		qry:      db.New(database),
		source:   source,
		progress: Progress{State: StateIdle},
	}
}

// Migrate runs the full pipeline for the given session: organizations
// filtered by selection, their teams as child groups, every roster
// member as a profile plus membership row. An empty selection takes
// every organization. The run finishes in completed even when the
// error list is non-empty, only a failure to list organizations at all
// ends it in error.
func (e *Engine) Migrate(ctx context.Context, token, userId string, selectedOrganizationIds []string) (Result, error) {
	ctx, span := tracer.Start(ctx, "Migrate")
	defer span.End()

	e.mu.Lock()
	if e.progress.State == StateRunning {
		e.mu.Unlock()
		return Result{}, ErrAlreadyRunning
	}
	e.progress = Progress{State: StateRunning, Message: "listing organizations"}
	e.mu.Unlock()

	startedAt := time.Now()

	orgs, err := e.backend.GetOrganizations(ctx, token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "listing organizations failed")
		e.update(func(p *Progress) {
			p.State = StateError
			p.Message = "could not list organizations"
			p.Errors = append(p.Errors, err.Error())
		})
		return Result{}, err
	}
	orgs = filterOrganizations(orgs, selectedOrganizationIds)

	// walk the teams up front so the progress total is fixed before
	// any row is written. An organization whose team listing fails is
	// dropped from the run, its siblings are unaffected.
	teamsByOrg := map[string][]sportsengine.Team{}
	total := 0
	var migratable []sportsengine.Organization
	for _, org := range orgs {
		teams, err := e.backend.GetTeamsForOrganization(ctx, token, org.Id)
		if err != nil {
			e.recordError("organization %q: listing teams: %v", org.Id, err)
			continue
		}
		migratable = append(migratable, org)
		teamsByOrg[org.Id] = teams
		total += 1 + len(teams)
	}
	orgs = migratable
	e.update(func(p *Progress) {
		p.Total = total
		p.Message = fmt.Sprintf("migrating %d organizations", len(orgs))
	})

	var result Result
	var manifest []migratedOrganization
	for _, org := range orgs {
		groupId, err := e.migrateOrganization(ctx, org, userId)
		e.advance(fmt.Sprintf("migrated organization %s", org.Name))
		if err != nil {
			e.recordError("organization %q: %v", org.Id, err)
			// teams without a parent group cannot be migrated
			for range teamsByOrg[org.Id] {
				e.advance("skipping team of failed organization")
			}
			continue
		}
		result.Organizations++
		orgEntry := migratedOrganization{
			ExternalId: org.Id,
			GroupId:    groupId,
			Teams:      []migratedTeam{},
		}

		for _, team := range teamsByOrg[org.Id] {
			teamGroupId, members, err := e.migrateTeam(ctx, token, team, groupId, userId)
			e.advance(fmt.Sprintf("migrated team %s", team.Name))
			result.Members += members
			if teamGroupId != "" {
				// the group row exists even when the roster under it
				// failed, so it counts either way
				result.Teams++
				orgEntry.Teams = append(orgEntry.Teams, migratedTeam{
					ExternalId: team.Id,
					GroupId:    teamGroupId,
					Members:    members,
				})
			}
			if err != nil {
				e.recordError("team %q: %v", team.Id, err)
			}
		}
		manifest = append(manifest, orgEntry)
	}

	result.Errors = e.Progress().Errors
	record, err := e.persistRecord(ctx, userId, result, manifest, startedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persisting migration record failed")
		e.update(func(p *Progress) {
			p.State = StateError
			p.Message = "could not persist migration record"
			p.Errors = append(p.Errors, err.Error())
		})
		return Result{}, err
	}
	result.RecordId = record

	e.update(func(p *Progress) {
		p.State = StateCompleted
		if len(p.Errors) > 0 {
			p.Message = fmt.Sprintf("completed with %d errors", len(p.Errors))
		} else {
			p.Message = "completed"
		}
	})
	slog.InfoContext(ctx, "migration finished",
		slog.Int("organizations", result.Organizations),
		slog.Int("teams", result.Teams),
		slog.Int("members", result.Members),
		slog.Int("errors", len(result.Errors)))
	return result, nil
}

func filterOrganizations(orgs []sportsengine.Organization, selected []string) []sportsengine.Organization {
	if len(selected) == 0 {
		return orgs
	}
	want := map[string]bool{}
	for _, id := range selected {
		want[id] = true
	}
	var out []sportsengine.Organization
	for _, org := range orgs {
		if want[org.Id] {
			out = append(out, org)
		}
	}
	return out
}

func (e *Engine) migrateOrganization(ctx context.Context, org sportsengine.Organization, userId string) (string, error) {
	groupId := uuid.NewString()
	now := time.Now().UnixMilli()

	err := e.qry.CreateGroup(ctx, db.CreateGroupParams{
		ID:          groupId,
		Name:        org.Name,
		Description: org.Description,
		Sport:       org.Sport,
		ExternalID:  org.Id,
		MigratedAt:  now,
	})
	if err != nil {
		return "", fmt.Errorf("creating group: %w", err)
	}

	err = e.qry.CreateGroupMember(ctx, db.CreateGroupMemberParams{
		ID:        uuid.NewString(),
		GroupID:   groupId,
		ProfileID: userId,
		Role:      RoleAdmin,
		CreatedAt: now,
	})
	if err != nil {
		return "", fmt.Errorf("adding admin membership: %w", err)
	}
	return groupId, nil
}

// migrateTeam writes the team group plus its memberships. The returned
// group id is non-empty as soon as the group row exists, even when a
// later step fails, so callers can still account for the row.
func (e *Engine) migrateTeam(ctx context.Context, token string, team sportsengine.Team, parentGroupId, userId string) (string, int, error) {
	groupId := uuid.NewString()
	now := time.Now().UnixMilli()

	err := e.qry.CreateGroup(ctx, db.CreateGroupParams{
		ID:         groupId,
		Name:       team.Name,
		Sport:      team.Sport,
		ParentID:   sql.NullString{String: parentGroupId, Valid: true},
		ExternalID: team.Id,
		MigratedAt: now,
	})
	if err != nil {
		return "", 0, fmt.Errorf("creating group: %w", err)
	}
	err = e.qry.CreateGroupMember(ctx, db.CreateGroupMemberParams{
		ID:        uuid.NewString(),
		GroupID:   groupId,
		ProfileID: userId,
		Role:      RoleAdmin,
		CreatedAt: now,
	})
	if err != nil {
		return groupId, 0, fmt.Errorf("adding admin membership: %w", err)
	}

	roster, err := e.backend.GetTeamRoster(ctx, token, team.Id)
	if err != nil {
		return groupId, 0, fmt.Errorf("fetching roster: %w", err)
	}

	migrated := 0
	for _, player := range roster.Players {
		err := e.addMember(ctx, groupId, memberRow{
			name:         player.Name,
			firstName:    player.FirstName,
			lastName:     player.LastName,
			role:         RoleMember,
			jerseyNumber: player.JerseyNumber,
			rosterStatus: player.RosterStatus,
		})
		if err != nil {
			e.recordError("player %q on team %q: %v", player.Name, team.Id, err)
			continue
		}
		migrated++
	}
	for _, staff := range roster.Staff {
		err := e.addMember(ctx, groupId, memberRow{
			name:         staff.Name,
			firstName:    staff.FirstName,
			lastName:     staff.LastName,
			role:         MapStaffRole(staff.Title),
			title:        staff.Title,
			rosterStatus: staff.RosterStatus,
		})
		if err != nil {
			e.recordError("staff %q on team %q: %v", staff.Name, team.Id, err)
			continue
		}
		migrated++
	}
	return groupId, migrated, nil
}

type memberRow struct {
	name         string
	firstName    string
	lastName     string
	role         string
	jerseyNumber string
	title        string
	rosterStatus string
}

func (e *Engine) addMember(ctx context.Context, groupId string, row memberRow) error {
	profileId, err := e.resolveProfile(ctx, row)
	if err != nil {
		return fmt.Errorf("resolving profile: %w", err)
	}
	err = e.qry.CreateGroupMember(ctx, db.CreateGroupMemberParams{
		ID:           uuid.NewString(),
		GroupID:      groupId,
		ProfileID:    profileId,
		Role:         row.role,
		JerseyNumber: row.jerseyNumber,
		Title:        row.title,
		RosterStatus: row.rosterStatus,
		CreatedAt:    time.Now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("inserting membership: %w", err)
	}
	return nil
}

// resolveProfile finds or creates the target profile for a roster
// member. The source roster pages expose no stable member ids, so the
// slugged display name serves as the external dedup key: the same
// person appearing on several teams maps to one profile.
func (e *Engine) resolveProfile(ctx context.Context, row memberRow) (string, error) {
	externalId := textutil.Slugify(row.name)
	if externalId == "" {
		return "", fmt.Errorf("member has no usable name")
	}

	existing, err := e.qry.GetProfileByExternalId(ctx, externalId)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	profileId := uuid.NewString()
	err = e.qry.CreateProfile(ctx, db.CreateProfileParams{
		ID:          profileId,
		ExternalID:  externalId,
		DisplayName: row.name,
		FirstName:   row.firstName,
		LastName:    row.lastName,
		CreatedAt:   time.Now().UnixMilli(),
	})
	if err != nil {
		return "", err
	}
	return profileId, nil
}

func (e *Engine) persistRecord(ctx context.Context, userId string, result Result, manifest []migratedOrganization, startedAt time.Time) (string, error) {
	errorList, err := json.Marshal(result.Errors)
	if err != nil {
		return "", err
	}
	if manifest == nil {
		manifest = []migratedOrganization{}
	}
	migrationData, err := json.Marshal(manifest)
	if err != nil {
		return "", err
	}
	recordId := uuid.NewString()
	err = e.qry.CreateMigrationRecord(ctx, db.CreateMigrationRecordParams{
		ID:                recordId,
		UserID:            userId,
		Source:            e.source,
		Status:            string(StateCompleted),
		OrganizationCount: int64(result.Organizations),
		TeamCount:         int64(result.Teams),
		MemberCount:       int64(result.Members),
		ErrorCount:        int64(len(result.Errors)),
		Errors:            string(errorList),
		MigrationData:     string(migrationData),
		StartedAt:         startedAt.UnixMilli(),
		FinishedAt:        time.Now().UnixMilli(),
	})
	if err != nil {
		return "", err
	}
	return recordId, nil
}

func (e *Engine) advance(message string) {
	e.update(func(p *Progress) {
		p.Current++
		p.Message = message
	})
}

func (e *Engine) recordError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	e.update(func(p *Progress) {
		p.Errors = append(p.Errors, msg)
	})
}
