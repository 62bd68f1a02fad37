package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText collapses a node's text content into a single printable line.
func CleanText(node *html.Node) string {
	text := removeNonPrintable(GetText(node))
	text = strings.Trim(text, " \t\n")
	return innerWhitespace.ReplaceAllString(text, " ")
}

type Anchor struct {
	Name string
	Href string
}

// GetAnchors harvests every link in the selection, skipping the
// invisible ones, the empty ones and anything without an href.
func GetAnchors(sel *goquery.Selection) []Anchor {
	anchors := []Anchor{}
	sel.Each(func(_ int, a *goquery.Selection) {
		if !IsVisible(a) {
			return
		}
		href, ok := a.Attr("href")
		if !ok || href == "" {
			return
		}
		if len(a.Nodes) == 0 {
			return
		}
		name := CleanText(a.Nodes[0])
		if name == "" {
			return
		}
		anchors = append(anchors, Anchor{
			Name: name,
			Href: href,
		})
	})
	return anchors
}

// IsVisible is a best-effort check for whether an element would render.
// Server-rendered HTML can only tell us so much, so this only catches
// inline styles and the standard hiding attributes.
func IsVisible(sel *goquery.Selection) bool {
	if len(sel.Nodes) == 0 {
		return false
	}
	if _, hidden := sel.Attr("hidden"); hidden {
		return false
	}
	if typ, _ := sel.Attr("type"); typ == "hidden" {
		return false
	}
	style, _ := sel.Attr("style")
	style = strings.ReplaceAll(style, " ", "")
	if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
		return false
	}
	if strings.Contains(sel.AttrOr("aria-hidden", ""), "true") {
		return false
	}
	return true
}
