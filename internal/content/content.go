// Package content extracts plain text from message markup for previews and
// for the summarizer.
package content

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultCharLimit bounds the text handed to the summarizer.
const DefaultCharLimit = 6000

func parse(markup string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse email body: %w", err)
	}
	doc.Find("script, style, head").Remove()
	return doc, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ForAI flattens markup to text, keeping link targets inline as
// "label (href)", and truncates to limit characters.
func ForAI(markup string, limit int) (string, error) {
	if strings.TrimSpace(markup) == "" {
		return "", nil
	}
	doc, err := parse(markup)
	if err != nil {
		return "", err
	}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") {
			return
		}
		a.SetText(fmt.Sprintf("%s (%s)", strings.TrimSpace(a.Text()), href))
	})

	return Truncate(collapse(doc.Text()), limit), nil
}

// Snippet returns the first words of the text content, with an ellipsis
// when anything was cut.
func Snippet(markup string, words int) string {
	if strings.TrimSpace(markup) == "" || words <= 0 {
		return ""
	}
	doc, err := parse(markup)
	if err != nil {
		return ""
	}
	parts := strings.Fields(doc.Text())
	if len(parts) <= words {
		return strings.Join(parts, " ")
	}
	return strings.Join(parts[:words], " ") + "..."
}

// PreviewImage picks a representative image: the second one when there are
// several (the first is usually a logo), otherwise the only one.
func PreviewImage(markup string) string {
	if strings.TrimSpace(markup) == "" {
		return ""
	}
	doc, err := parse(markup)
	if err != nil {
		return ""
	}
	imgs := doc.Find("img[src]")
	switch {
	case imgs.Length() >= 2:
		return imgs.Eq(1).AttrOr("src", "")
	case imgs.Length() == 1:
		return imgs.First().AttrOr("src", "")
	}
	return ""
}

// Truncate cuts s to at most limit runes. A non-positive limit disables it.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
