package extractor

import (
	"context"
	"log/slog"
	"time"

	"teambridge-backend/lib/scrapers/sportsengine"
	"teambridge-backend/services/sessions"
)

type PreviewTeam struct {
	sportsengine.Team
	PlayerCount int `json:"playerCount"`
	StaffCount  int `json:"staffCount"`
}

type PreviewOrganization struct {
	sportsengine.Organization
	Teams []PreviewTeam `json:"teams"`

	// Error carries the failure for this organization's subtree, if
	// any. Siblings are still aggregated.
	Error string `json:"error,omitempty"`
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

// buildPreview walks organizations -> teams -> rosters through whatever
// backend is active and rolls the counts up. A failure under one
// organization is recorded on that organization and does not stop the
// walk. The walked tree is cached on the session, so a second preview
// serves from the cache with identical counts.
func buildPreview(ctx context.Context, backend Backend, store *sessions.Store, token string) (Preview, error) {
	ctx, span := tracer.Start(ctx, "buildPreview")
	defer span.End()

	session, err := store.Get(ctx, token)
	if err != nil {
		return Preview{}, err
	}
	if cache, ok := loadCache(session); ok && cache.Resolved {
		return previewFromCache(cache), nil
	}

	orgs, err := backend.GetOrganizations(ctx, token)
	if err != nil {
		return Preview{}, err
	}

	cache := CachedExtraction{
		Organizations: orgs,
		TeamsByOrg:    map[string][]sportsengine.Team{},
		RostersByTeam: map[string]sportsengine.Roster{},
		ErrorsByOrg:   map[string]string{},
	}
	preview := Preview{
		Organizations: make([]PreviewOrganization, 0, len(orgs)),
	}
	preview.Summary.OrganizationCount = len(orgs)

	for _, org := range orgs {
		entry := PreviewOrganization{Organization: org, Teams: []PreviewTeam{}}

		teams, err := backend.GetTeamsForOrganization(ctx, token, org.Id)
		if err != nil {
			slog.WarnContext(ctx, "preview: skipping organization subtree",
				slog.String("organization", org.Id), slog.String("err", err.Error()))
			entry.Error = err.Error()
			cache.ErrorsByOrg[org.Id] = err.Error()
			preview.Organizations = append(preview.Organizations, entry)
			continue
		}
		cache.TeamsByOrg[org.Id] = teams

		for _, team := range teams {
			pt := PreviewTeam{Team: team}
			roster, err := backend.GetTeamRoster(ctx, token, team.Id)
			if err != nil {
				slog.WarnContext(ctx, "preview: roster unavailable",
					slog.String("team", team.Id), slog.String("err", err.Error()))
			} else {
				cache.RostersByTeam[team.Id] = roster
				pt.PlayerCount = len(roster.Players)
				pt.StaffCount = len(roster.Staff)
			}
			preview.Summary.TeamCount++
			preview.Summary.PlayerCount += pt.PlayerCount
			preview.Summary.StaffCount += pt.StaffCount
			entry.Teams = append(entry.Teams, pt)
		}
		preview.Organizations = append(preview.Organizations, entry)
	}

	cache.Resolved = true
	cache.ResolvedAt = time.Now().UnixMilli()
	if err := storeCache(ctx, store, token, cache); err != nil {
		slog.WarnContext(ctx, "preview: failed to cache extraction", slog.String("err", err.Error()))
	}
	return preview, nil
}

func previewFromCache(cache CachedExtraction) Preview {
	preview := Preview{
		Organizations: make([]PreviewOrganization, 0, len(cache.Organizations)),
	}
	preview.Summary.OrganizationCount = len(cache.Organizations)

	for _, org := range cache.Organizations {
		entry := PreviewOrganization{
			Organization: org,
			Teams:        []PreviewTeam{},
			Error:        cache.ErrorsByOrg[org.Id],
		}
		for _, team := range cache.TeamsByOrg[org.Id] {
			pt := PreviewTeam{Team: team}
			if roster, ok := cache.RostersByTeam[team.Id]; ok {
				pt.PlayerCount = len(roster.Players)
				pt.StaffCount = len(roster.Staff)
			}
			preview.Summary.TeamCount++
			preview.Summary.PlayerCount += pt.PlayerCount
			preview.Summary.StaffCount += pt.StaffCount
			entry.Teams = append(entry.Teams, pt)
		}
		preview.Organizations = append(preview.Organizations, entry)
	}
	return preview
}
