package extractor

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"teambridge-backend/lib/scrapers/sportsengine"
)

// taskOutput is the JSON shape the delegated extraction task is asked
// to produce. Rosters ride along on each team instead of a separate
// map because that is the easiest shape to describe in prose.
type taskOutput struct {
	Organizations []struct {
		sportsengine.Organization
		Teams []struct {
			sportsengine.Team
			Players []sportsengine.Player `json:"players"`
			Staff   []sportsengine.Staff  `json:"staff"`
		} `json:"teams"`
	} `json:"organizations"`
}

// ParseTaskOutput turns the raw text a delegated task produced into a
// resolved extraction snapshot. The text may be bare JSON or JSON
// inside a fenced code block, with prose around it.
func ParseTaskOutput(raw []byte) (CachedExtraction, error) {
	body := extractJsonBody(string(raw))

	var out taskOutput
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return CachedExtraction{}, fmt.Errorf("task output is not valid extraction JSON: %w", err)
	}

	cache := CachedExtraction{
		Resolved:      true,
		ResolvedAt:    time.Now().UnixMilli(),
		Organizations: make([]sportsengine.Organization, 0, len(out.Organizations)),
		TeamsByOrg:    map[string][]sportsengine.Team{},
		RostersByTeam: map[string]sportsengine.Roster{},
	}
	for _, org := range out.Organizations {
		cache.Organizations = append(cache.Organizations, org.Organization)
		teams := make([]sportsengine.Team, 0, len(org.Teams))
		for _, team := range org.Teams {
			t := team.Team
			if t.OrganizationId == "" {
				t.OrganizationId = org.Id
			}
			if t.PlayerCount == 0 {
				t.PlayerCount = len(team.Players)
			}
			if t.StaffCount == 0 {
				t.StaffCount = len(team.Staff)
			}
			teams = append(teams, t)
			cache.RostersByTeam[t.Id] = sportsengine.Roster{
				Players: team.Players,
				Staff:   team.Staff,
			}
		}
		cache.TeamsByOrg[org.Id] = teams
	}
	return cache, nil
}

// extractJsonBody pulls the JSON payload out of surrounding prose:
// a ```json fence wins, then a bare ``` fence, then the widest
// brace-delimited span.
func extractJsonBody(text string) string {
	for _, fence := range []string{"```json", "```"} {
		start := strings.Index(text, fence)
		if start < 0 {
			continue
		}
		rest := text[start+len(fence):]
		end := strings.Index(rest, "```")
		if end < 0 {
			continue
		}
		return strings.TrimSpace(rest[:end])
	}

	open := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if open >= 0 && end > open {
		return text[open : end+1]
	}
	return strings.TrimSpace(text)
}
