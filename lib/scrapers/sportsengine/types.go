package sportsengine

import "time"

type Organization struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Url         string `json:"url"`
	Sport       string `json:"sport,omitempty"`
}

// Team is always scoped to one Organization, referenced by id.
type Team struct {
	Id             string `json:"id"`
	Name           string `json:"name"`
	Sport          string `json:"sport"`
	Gender         string `json:"gender"`
	OrganizationId string `json:"organizationId"`
	Url            string `json:"url"`
	PlayerCount    int    `json:"playerCount"`
	StaffCount     int    `json:"staffCount"`
}

type Player struct {
	Name         string `json:"name"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	JerseyNumber string `json:"jerseyNumber"`
	Position     string `json:"position"`
	RosterStatus string `json:"rosterStatus"`
}

type Staff struct {
	Name         string `json:"name"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Title        string `json:"title"`
	RosterStatus string `json:"rosterStatus"`
}

type Roster struct {
	Players []Player `json:"players"`
	Staff   []Staff  `json:"staff"`
}

// SessionCookie mirrors the http.Cookie fields worth keeping between
// top-level calls. Everything else is rebuilt on a fresh client.
type SessionCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Domain  string    `json:"domain"`
	Path    string    `json:"path"`
	Expires time.Time `json:"expires"`
}

// Credentials is the portable outcome of a successful login.
type Credentials struct {
	Email   string          `json:"email"`
	Cookies []SessionCookie `json:"cookies"`
}
