package sportsengine

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, page string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func TestLocateFallsThroughToLaterStrategy(t *testing.T) {
	// only the third strategy matches, the result must be the same as
	// if the third strategy were the only one.
	doc := mustDoc(t, `<html><body>
		<form><input class="login-input" name="session[email]"/></form>
	</body></html>`)

	cascade := []Locator{
		SelectorLocator{Selector: `input[type=email]`},
		SelectorLocator{Selector: `input[name="user[login]"]`},
		SelectorLocator{Selector: `form input[name*=email]`},
	}

	sel := Locate(doc, "email field", cascade)
	require.NotNil(t, sel)
	require.Equal(t, "session[email]", sel.AttrOr("name", ""))

	only := Locate(doc, "email field", cascade[2:])
	require.NotNil(t, only)
	require.Equal(t, sel.AttrOr("name", ""), only.AttrOr("name", ""))
}

func TestLocateSkipsInvisibleAndAmbiguousMatches(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<input type="email" style="display:none" name="decoy"/>
		<div><a href="/a">duplicate</a><a href="/b">duplicate</a></div>
		<a href="/real" id="real">duplicate entry two</a>
	</body></html>`)

	require.Nil(t, Locate(doc, "email field", []Locator{
		SelectorLocator{Selector: `input[type=email]`},
	}))

	// two visible matches is ambiguous, not a resolution
	require.Nil(t, Locate(doc, "link", []Locator{
		SelectorLocator{Selector: `div a`},
	}))
}

func TestLocateReturnsNilWhenNothingResolves(t *testing.T) {
	doc := mustDoc(t, `<html><body><p>maintenance page</p></body></html>`)
	require.Nil(t, Locate(doc, "email field", emailFieldCascade))
	require.Nil(t, Locate(doc, "password field", passwordFieldCascade))
}

func TestTextLocatorFuzzyMatch(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<a href="/onboarding/skip">Skip for now!</a>
		<a href="/other">Continue setup</a>
	</body></html>`)

	sel := Locate(doc, "skip", []Locator{
		TextLocator{Tags: []string{"a"}, Text: "skip for now"},
	})
	require.NotNil(t, sel)
	require.Equal(t, "/onboarding/skip", sel.AttrOr("href", ""))
}

func TestLocateAllPrefersEarlierStrategy(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<a data-qa="team-link" href="/team/t1">Varsity</a>
		<a href="/team/t2">Other Link</a>
	</body></html>`)

	matches := LocateAll(doc, "teams", teamCascade)
	require.Len(t, matches, 1)
	require.Equal(t, "/team/t1", matches[0].AttrOr("href", ""))
}
