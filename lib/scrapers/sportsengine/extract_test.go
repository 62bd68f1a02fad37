package sportsengine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const organizationsPage = `<html><body>
	<nav><a href="/">Home</a><a href="/help">Help</a><a href="/user/sign_out">Sign Out</a></nav>
	<div class="organization-card" data-sport="football">
		<a href="/org/eagles-youth">Eagles Youth Football</a>
	</div>
	<div class="organization-card" data-sport="soccer">
		<a href="/org/riverside-sc">Riverside Soccer Club</a>
	</div>
</body></html>`

func TestExtractOrganizations(t *testing.T) {
	orgs := extractOrganizations(mustDoc(t, organizationsPage))
	require.Len(t, orgs, 2)

	require.Equal(t, "eagles-youth", orgs[0].Id)
	require.Equal(t, "Eagles Youth Football", orgs[0].Name)
	require.Equal(t, "football", orgs[0].Sport)
	require.Equal(t, "organization", orgs[0].Type)

	require.Equal(t, "riverside-sc", orgs[1].Id)
}

const organizationsRedesignedPage = `<html><body>
	<nav><a href="/">Home</a><a href="/settings">Settings</a></nav>
	<div class="totally-new-layout">
		<a href="/organizations/eagles-youth">Eagles Youth Football</a>
		<a href="/organizations/all">My</a>
	</div>
</body></html>`

func TestExtractOrganizationsFallbackScan(t *testing.T) {
	// none of the structural selectors survive the redesign, but the
	// page-wide anchor scan still finds the organization link while
	// filtering nav chrome and too-short labels.
	orgs := extractOrganizations(mustDoc(t, organizationsRedesignedPage))
	require.Len(t, orgs, 1)
	require.Equal(t, "eagles-youth", orgs[0].Id)
	require.Equal(t, "Eagles Youth Football", orgs[0].Name)
}

func TestExtractOrganizationsEmpty(t *testing.T) {
	orgs := extractOrganizations(mustDoc(t, `<html><body><p>nothing here</p></body></html>`))
	require.Empty(t, orgs)
}

const teamsPage = `<html><body>
	<table class="teams"><tbody>
		<tr data-sport="football" data-gender="boys">
			<td><a href="/team/t1">Varsity Football</a></td>
		</tr>
		<tr data-sport="football" data-gender="girls">
			<td><a href="/team/t2">JV Flag</a></td>
		</tr>
	</tbody></table>
</body></html>`

func TestExtractTeams(t *testing.T) {
	teams := extractTeams(mustDoc(t, teamsPage), "eagles-youth")
	require.Len(t, teams, 2)

	require.Equal(t, "t1", teams[0].Id)
	require.Equal(t, "Varsity Football", teams[0].Name)
	require.Equal(t, "eagles-youth", teams[0].OrganizationId)
	require.Equal(t, "football", teams[0].Sport)
	require.Equal(t, "boys", teams[0].Gender)
	require.Equal(t, "girls", teams[1].Gender)
}

const rosterPage = `<html><body>
	<section class="roster-players"><table><tbody>
		<tr><td>Alex Brown</td><td>#9</td><td>QB</td><td>active</td></tr>
		<tr><td>Casey Drew</td><td>#12</td><td>WR</td><td></td></tr>
	</tbody></table></section>
	<section class="roster-staff"><table><tbody>
		<tr><td>Chris Dale</td><td>Head Coach</td><td>active</td></tr>
		<tr><td>Pat Quinn</td><td>Team Manager</td><td></td></tr>
	</tbody></table></section>
</body></html>`

func TestExtractRoster(t *testing.T) {
	roster := extractRoster(mustDoc(t, rosterPage))

	require.Len(t, roster.Players, 2)
	require.Equal(t, "Alex Brown", roster.Players[0].Name)
	require.Equal(t, "Alex", roster.Players[0].FirstName)
	require.Equal(t, "Brown", roster.Players[0].LastName)
	require.Equal(t, "#9", roster.Players[0].JerseyNumber)
	require.Equal(t, "QB", roster.Players[0].Position)
	require.Equal(t, "active", roster.Players[1].RosterStatus)

	require.Len(t, roster.Staff, 2)
	require.Equal(t, "Chris Dale", roster.Staff[0].Name)
	require.Equal(t, "Head Coach", roster.Staff[0].Title)
	require.Equal(t, "Team Manager", roster.Staff[1].Title)
}

func TestExtractRosterEmptyPage(t *testing.T) {
	roster := extractRoster(mustDoc(t, `<html><body></body></html>`))
	require.Empty(t, roster.Players)
	require.Empty(t, roster.Staff)
}

func TestIdFromHrefFallsBackToSlug(t *testing.T) {
	require.Equal(t, "t42", idFromHref("/team/t42", "Varsity"))
	require.Equal(t, "eagles-youth-football", idFromHref("", "Eagles Youth Football"))
	require.Equal(t, "eagles-youth-football", idFromHref("/org/", "Eagles Youth Football"))
}
