package sportsengine

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"teambridge-backend/lib/htmlutil"
	"teambridge-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/sportsengine")

const DefaultBaseUrl = "https://www.sportsengine.com"

const (
	loginPath         = "/user/sign_in"
	organizationsPath = "/user/organizations"
	teamsPathFormat   = "/org/%s/teams"
	rosterPathFormat  = "/team/%s/roster"
)

type ClientOptions struct {
	BaseUrl string
}

// client is the I/O shell around the pure extraction functions. One is
// created per top-level call and torn down on every exit path, no
// scraping session is ever shared between calls.
type client struct {
	baseUrl *url.URL
	http    *resty.Client
	jar     http.CookieJar
}

func newClient(opts ClientOptions) (*client, error) {
	rawBase := opts.BaseUrl
	if rawBase == "" {
		rawBase = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(rawBase)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(rawBase)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)

	httpClient.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	httpClient.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(httpClient, "scrapers/sportsengine/http")

	return &client{
		baseUrl: baseUrl,
		http:    httpClient,
		jar:     jar,
	}, nil
}

func (c *client) close() {
	c.http.GetClient().CloseIdleConnections()
}

func (c *client) restore(creds Credentials) {
	cookies := make([]*http.Cookie, len(creds.Cookies))
	for i, saved := range creds.Cookies {
		cookies[i] = &http.Cookie{
			Name:    saved.Name,
			Value:   saved.Value,
			Domain:  saved.Domain,
			Path:    saved.Path,
			Expires: saved.Expires,
		}
	}
	c.jar.SetCookies(c.baseUrl, cookies)
}

func (c *client) cookies() []SessionCookie {
	live := c.jar.Cookies(c.baseUrl)
	out := make([]SessionCookie, len(live))
	for i, cookie := range live {
		out[i] = SessionCookie{
			Name:    cookie.Name,
			Value:   cookie.Value,
			Domain:  cookie.Domain,
			Path:    cookie.Path,
			Expires: cookie.Expires,
		}
	}
	return out
}

func (c *client) getDocument(ctx context.Context, path string) (*goquery.Document, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		return nil, &ExtractionError{Step: fmt.Sprintf("fetch %s", path), Err: err}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, &ExtractionError{Step: fmt.Sprintf("parse %s", path), Err: err}
	}
	return doc, nil
}

func (c *client) resolveHref(href string) string {
	link, err := c.baseUrl.Parse(href)
	if err != nil {
		return href
	}
	return link.String()
}

var emailFieldCascade = []Locator{
	SelectorLocator{Selector: `input[type=email]`},
	SelectorLocator{Selector: `input[name="user[login]"]`},
	SelectorLocator{Selector: `form input[name*=email]`},
	SelectorLocator{Selector: `form input[name*=login]`},
}

var passwordFieldCascade = []Locator{
	SelectorLocator{Selector: `input[type=password]`},
	SelectorLocator{Selector: `input[name="user[password]"]`},
	SelectorLocator{Selector: `form input[name*=password]`},
}

var errorBannerCascade = []Locator{
	SelectorLocator{Selector: `.alert-danger`},
	SelectorLocator{Selector: `.flash-error`},
	SelectorLocator{Selector: `[role=alert]`},
	TextLocator{Tags: []string{"div", "p", "span"}, Text: "invalid email or password"},
}

var skipOnboardingCascade = []Locator{
	SelectorLocator{Selector: `a[data-qa="skip-onboarding"]`},
	TextLocator{Tags: []string{"a", "button"}, Text: "skip for now"},
	TextLocator{Tags: []string{"a"}, Text: "skip"},
}

// Authenticate performs the login flow against the source site and
// returns portable session credentials on success.
func Authenticate(ctx context.Context, opts ClientOptions, email, password string) (Credentials, error) {
	ctx, span := tracer.Start(ctx, "Authenticate")
	defer span.End()

	c, err := newClient(opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to construct scraping client")
		return Credentials{}, err
	}
	defer c.close()

	doc, err := c.getDocument(ctx, loginPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch login page")
		return Credentials{}, &AuthenticationError{Message: "could not reach the login page"}
	}

	emailField := Locate(doc, "login email field", emailFieldCascade)
	passwordField := Locate(doc, "login password field", passwordFieldCascade)
	if emailField == nil || passwordField == nil {
		span.SetStatus(codes.Error, "login form did not resolve")
		return Credentials{}, &AuthenticationError{Message: "could not locate the login form"}
	}

	form := emailField.Closest("form")
	action := form.AttrOr("action", loginPath)

	formData := map[string]string{
		emailField.AttrOr("name", "user[login]"):       email,
		passwordField.AttrOr("name", "user[password]"): password,
	}
	// carry hidden inputs through, the login form includes a csrf token
	form.Find("input[type=hidden]").Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok {
			return
		}
		formData[name] = s.AttrOr("value", "")
	})

	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(formData).
		Post(action)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit login form")
		return Credentials{}, &AuthenticationError{Message: "could not submit the login form"}
	}

	landing, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse post-login page")
		return Credentials{}, &AuthenticationError{Message: "could not read the post-login page"}
	}

	if banner := Locate(landing, "login error banner", errorBannerCascade); banner != nil {
		message := htmlutil.CleanText(banner.Nodes[0])
		if message == "" {
			message = "authentication failed"
		}
		span.SetStatus(codes.Error, message)
		return Credentials{}, &AuthenticationError{Message: message}
	}
	if still := Locate(landing, "login password field", passwordFieldCascade); still != nil {
		span.SetStatus(codes.Error, "login form still present after submit")
		return Credentials{}, &AuthenticationError{Message: "authentication failed"}
	}

	// onboarding interstitials show up for new accounts, skipping them
	// is optional: absence just means there is nothing to skip.
	if skip := Locate(landing, "skip onboarding", skipOnboardingCascade); skip != nil {
		if href, ok := skip.Attr("href"); ok {
			_, _ = c.http.R().SetContext(ctx).Get(href)
		}
	}

	return Credentials{
		Email:   email,
		Cookies: c.cookies(),
	}, nil
}

// ListOrganizations extracts the organizations visible to the session.
func ListOrganizations(ctx context.Context, opts ClientOptions, creds Credentials) ([]Organization, error) {
	ctx, span := tracer.Start(ctx, "ListOrganizations")
	defer span.End()

	c, err := newClient(opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to construct scraping client")
		return nil, err
	}
	defer c.close()
	c.restore(creds)

	doc, err := c.getDocument(ctx, organizationsPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch organizations page")
		return nil, err
	}

	orgs := extractOrganizations(doc)
	for i := range orgs {
		orgs[i].Url = c.resolveHref(orgs[i].Url)
	}
	return orgs, nil
}

// ListTeams extracts the teams under one organization.
func ListTeams(ctx context.Context, opts ClientOptions, creds Credentials, organizationId string) ([]Team, error) {
	ctx, span := tracer.Start(ctx, "ListTeams")
	defer span.End()

	c, err := newClient(opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to construct scraping client")
		return nil, err
	}
	defer c.close()
	c.restore(creds)

	doc, err := c.getDocument(ctx, fmt.Sprintf(teamsPathFormat, organizationId))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch teams page")
		return nil, err
	}

	teams := extractTeams(doc, organizationId)
	for i := range teams {
		teams[i].Url = c.resolveHref(teams[i].Url)
	}
	return teams, nil
}

// GetRoster extracts the players and staff of one team.
func GetRoster(ctx context.Context, opts ClientOptions, creds Credentials, teamId string) (Roster, error) {
	ctx, span := tracer.Start(ctx, "GetRoster")
	defer span.End()

	c, err := newClient(opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to construct scraping client")
		return Roster{}, err
	}
	defer c.close()
	c.restore(creds)

	doc, err := c.getDocument(ctx, fmt.Sprintf(rosterPathFormat, teamId))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch roster page")
		return Roster{}, err
	}

	return extractRoster(doc), nil
}
