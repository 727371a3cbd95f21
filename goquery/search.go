// Package goquery extracts lookup results from rendered pages using goquery.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/tabrelay"
)

var _ tabrelay.PageParser = (*SearchParser)(nil)

// Selectors for the title search results page. Each result is a row whose
// fourth cell holds the category label.
const (
	categorySelector    = "section > article > div > div > div:nth-child(4)"
	titleSelector       = "div:nth-child(2) > header > span > span > a"
	artistSelector      = "div:nth-child(1) > span"
	priorArtistSelector = "div > span"
)

// DefaultCategories are the result categories kept by SearchParser.
func DefaultCategories() []string {
	return []string{"chords", "tab", "bass"}
}

// SearchParser extracts title search records.
type SearchParser struct {
	categories map[string]bool
}

// NewSearchParser creates a SearchParser that keeps rows labeled with one of
// categories. DefaultCategories are used when none are given.
func NewSearchParser(categories ...string) *SearchParser {
	if len(categories) == 0 {
		categories = DefaultCategories()
	}
	m := make(map[string]bool, len(categories))
	for _, c := range categories {
		m[c] = true
	}
	return &SearchParser{categories: m}
}

// Parse returns one record per accepted row, in document order.
//
// Rows of the same artist only label the first row; an empty artist is
// inherited from the nearest previous row that has one. A row with no such
// predecessor makes the whole page EINVALID.
func (p *SearchParser) Parse(html string) (*tabrelay.Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, tabrelay.Errorf(tabrelay.EINVALID, "failed to parse HTML: %v", err)
	}

	records := []tabrelay.SearchRecord{}
	doc.Find(categorySelector).EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		category := text(cell)
		if !p.categories[category] {
			return true
		}

		row := cell.Parent()
		anchor := row.Find(titleSelector).First()
		if anchor.Length() == 0 {
			return true
		}

		artist, ok := inheritArtist(row)
		if !ok {
			err = tabrelay.Errorf(tabrelay.EINVALID, "no artist for %q", text(anchor))
			return false
		}

		href, _ := anchor.Attr("href")
		records = append(records, tabrelay.SearchRecord{
			Type:   category,
			Song:   text(anchor),
			Artist: artist,
			Href:   href,
		})
		return true
	})
	if err != nil {
		return nil, err
	}

	return &tabrelay.Result{Records: records}, nil
}

// inheritArtist returns the artist of row, walking back through previous
// sibling rows while the label is empty.
func inheritArtist(row *goquery.Selection) (string, bool) {
	artist := text(row.Find(artistSelector).First())
	for cur := row; artist == ""; {
		cur = cur.Prev()
		if cur.Length() == 0 {
			return "", false
		}
		artist = text(cur.Find(priorArtistSelector).First())
	}
	return artist, true
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}
