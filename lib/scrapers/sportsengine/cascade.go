package sportsengine

import (
	"fmt"
	"log/slog"
	"strings"

	"teambridge-backend/lib/htmlutil"
	"teambridge-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
)

// The source site ships UI changes without notice, so no single selector
// can be trusted. Every element lookup instead runs an ordered cascade
// of locator strategies and takes the first one that resolves.

type Locator interface {
	// Find returns candidate nodes for this strategy within the document.
	Find(doc *goquery.Document) *goquery.Selection
	Describe() string
}

// SelectorLocator matches by CSS selector, used for both attribute-based
// selectors (input[name=email]) and known structural ones (form .submit).
type SelectorLocator struct {
	Selector string
}

func (l SelectorLocator) Find(doc *goquery.Document) *goquery.Selection {
	return doc.Find(l.Selector)
}

func (l SelectorLocator) Describe() string {
	return fmt.Sprintf("css(%s)", l.Selector)
}

// TextLocator matches elements of the given tags by their visible label.
// An exact (normalized, substring) match is preferred, with a
// JaroWinkler pass to absorb small copy changes in the UI.
type TextLocator struct {
	Tags []string
	Text string
}

const fuzzyTextThreshold = 0.88

func (l TextLocator) Find(doc *goquery.Document) *goquery.Selection {
	want := textutil.NormalizeName(l.Text)
	sel := doc.Find(strings.Join(l.Tags, ", "))
	return sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
		if len(s.Nodes) == 0 {
			return false
		}
		label := textutil.NormalizeName(htmlutil.CleanText(s.Nodes[0]))
		if label == "" {
			return false
		}
		if strings.Contains(label, want) {
			return true
		}
		return matchr.JaroWinkler(label, want, false) >= fuzzyTextThreshold
	})
}

func (l TextLocator) Describe() string {
	return fmt.Sprintf("text(%s ~ %q)", strings.Join(l.Tags, ","), l.Text)
}

// Locate runs the cascade and returns the first strategy's result that
// resolves to exactly one visible element. A nil return means no
// strategy resolved; whether that is fatal is up to the caller.
func Locate(doc *goquery.Document, step string, cascade []Locator) *goquery.Selection {
	for _, locator := range cascade {
		matches := visible(locator.Find(doc))
		if len(matches) == 1 {
			slog.Debug("locator resolved", "step", step, "strategy", locator.Describe())
			return matches[0]
		}
		slog.Debug(
			"locator skipped",
			"step", step,
			"strategy", locator.Describe(),
			"visible_matches", len(matches),
		)
	}
	return nil
}

// LocateAll runs the cascade and returns the first strategy's result
// that resolves to at least one visible element.
func LocateAll(doc *goquery.Document, step string, cascade []Locator) []*goquery.Selection {
	for _, locator := range cascade {
		matches := visible(locator.Find(doc))
		if len(matches) > 0 {
			slog.Debug(
				"locator resolved",
				"step", step,
				"strategy", locator.Describe(),
				"visible_matches", len(matches),
			)
			return matches
		}
	}
	return nil
}

func visible(sel *goquery.Selection) []*goquery.Selection {
	var out []*goquery.Selection
	sel.Each(func(_ int, s *goquery.Selection) {
		if htmlutil.IsVisible(s) {
			out = append(out, s)
		}
	})
	return out
}
