package sportsengine

import (
	"net/url"
	"strings"

	"teambridge-backend/lib/htmlutil"
	"teambridge-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Pure page -> entity transforms. Nothing in this file performs I/O so
// every transform can be tested against captured page fixtures.

var organizationCascade = []Locator{
	SelectorLocator{Selector: `a[data-qa="organization-link"]`},
	SelectorLocator{Selector: `.organization-card a[href]`},
	SelectorLocator{Selector: `nav.org-list li a[href]`},
	SelectorLocator{Selector: `a[href*="/org/"]`},
}

var teamCascade = []Locator{
	SelectorLocator{Selector: `a[data-qa="team-link"]`},
	SelectorLocator{Selector: `.team-card a[href]`},
	SelectorLocator{Selector: `table.teams tbody tr a[href]`},
	SelectorLocator{Selector: `a[href*="/team/"]`},
}

var playerRowCascade = []Locator{
	SelectorLocator{Selector: `table[data-qa="roster-players"] tbody tr`},
	SelectorLocator{Selector: `section.roster-players table tbody tr`},
	SelectorLocator{Selector: `table.roster tbody tr`},
}

var staffRowCascade = []Locator{
	SelectorLocator{Selector: `table[data-qa="roster-staff"] tbody tr`},
	SelectorLocator{Selector: `section.roster-staff table tbody tr`},
	SelectorLocator{Selector: `ul.staff-list li`},
}

// non-entity link labels that show up on every page of the source site.
var excludedLinkText = []string{
	"home", "help", "support", "settings", "sign out", "log out",
	"privacy", "terms", "contact", "about", "dashboard", "back",
}

const minEntityLabelLength = 3

func entityAnchor(a htmlutil.Anchor) bool {
	if len(a.Name) < minEntityLabelLength {
		return false
	}
	return !textutil.MatchName(a.Name, excludedLinkText)
}

func idFromHref(href, name string) string {
	link, err := url.Parse(href)
	if err == nil {
		segments := strings.Split(strings.Trim(link.Path, "/"), "/")
		if len(segments) > 0 {
			last := segments[len(segments)-1]
			if last != "" && last != "org" && last != "team" {
				return last
			}
		}
	}
	// no stable id in the url, fall back to a best-effort slug
	return textutil.Slugify(name)
}

func extractOrganizations(doc *goquery.Document) []Organization {
	var out []Organization
	seen := map[string]bool{}

	add := func(name, href, sport string) {
		if name == "" {
			return
		}
		id := idFromHref(href, name)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, Organization{
			Id:    id,
			Name:  name,
			Type:  "organization",
			Url:   href,
			Sport: sport,
		})
	}

	for _, sel := range LocateAll(doc, "organization list", organizationCascade) {
		name := htmlutil.CleanText(sel.Nodes[0])
		href := sel.AttrOr("href", "")
		sport := sel.Closest("[data-sport]").AttrOr("data-sport", "")
		if !entityAnchor(htmlutil.Anchor{Name: name, Href: href}) {
			continue
		}
		add(name, href, sport)
	}
	if len(out) > 0 {
		return out
	}

	// primary extraction found nothing, scan the whole page for links
	// that plausibly point at organizations.
	for _, a := range htmlutil.GetAnchors(doc.Find("a")) {
		if !entityAnchor(a) {
			continue
		}
		if !strings.Contains(a.Href, "/org") {
			continue
		}
		add(a.Name, a.Href, "")
	}
	return out
}

func extractTeams(doc *goquery.Document, organizationId string) []Team {
	var out []Team
	seen := map[string]bool{}

	add := func(name, href, sport, gender string) {
		if name == "" {
			return
		}
		id := idFromHref(href, name)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, Team{
			Id:             id,
			Name:           name,
			Sport:          sport,
			Gender:         gender,
			OrganizationId: organizationId,
			Url:            href,
		})
	}

	for _, sel := range LocateAll(doc, "team list", teamCascade) {
		name := htmlutil.CleanText(sel.Nodes[0])
		href := sel.AttrOr("href", "")
		if !entityAnchor(htmlutil.Anchor{Name: name, Href: href}) {
			continue
		}
		row := sel.Closest("tr, .team-card, li")
		add(
			name,
			href,
			row.AttrOr("data-sport", ""),
			row.AttrOr("data-gender", ""),
		)
	}
	if len(out) > 0 {
		return out
	}

	for _, a := range htmlutil.GetAnchors(doc.Find("a")) {
		if !entityAnchor(a) {
			continue
		}
		if !strings.Contains(a.Href, "/team") {
			continue
		}
		add(a.Name, a.Href, "", "")
	}
	return out
}

func cellText(row *goquery.Selection, idx int) string {
	cell := row.Find("td").Eq(idx)
	if len(cell.Nodes) == 0 {
		return ""
	}
	return htmlutil.CleanText(cell.Nodes[0])
}

func extractRoster(doc *goquery.Document) Roster {
	var roster Roster

	for _, row := range LocateAll(doc, "player rows", playerRowCascade) {
		name := cellText(row, 0)
		if name == "" {
			name = htmlutil.CleanText(firstNode(row.Find(".player-name")))
		}
		if name == "" {
			continue
		}
		first, last := textutil.SplitName(name)
		roster.Players = append(roster.Players, Player{
			Name:         name,
			FirstName:    first,
			LastName:     last,
			JerseyNumber: cellText(row, 1),
			Position:     cellText(row, 2),
			RosterStatus: defaultStatus(cellText(row, 3)),
		})
	}

	for _, row := range LocateAll(doc, "staff rows", staffRowCascade) {
		name := cellText(row, 0)
		title := cellText(row, 1)
		if name == "" {
			name = htmlutil.CleanText(firstNode(row.Find(".staff-name")))
			title = htmlutil.CleanText(firstNode(row.Find(".staff-title")))
		}
		if name == "" {
			continue
		}
		first, last := textutil.SplitName(name)
		roster.Staff = append(roster.Staff, Staff{
			Name:         name,
			FirstName:    first,
			LastName:     last,
			Title:        title,
			RosterStatus: defaultStatus(cellText(row, 2)),
		})
	}

	return roster
}

func defaultStatus(status string) string {
	if status == "" {
		return "active"
	}
	return status
}

func firstNode(sel *goquery.Selection) *html.Node {
	if len(sel.Nodes) == 0 {
		return nil
	}
	return sel.Nodes[0]
}
