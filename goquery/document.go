package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/tabrelay"
)

var _ tabrelay.PageParser = (*DocumentParser)(nil)

// DocumentSelector locates the preformatted tab body.
const DocumentSelector = "article section section pre"

// DocumentParser extracts the text of a tab page.
type DocumentParser struct{}

// NewDocumentParser creates a new DocumentParser.
func NewDocumentParser() *DocumentParser {
	return &DocumentParser{}
}

// Parse returns the text of the first tab body. A page without one yields
// an empty result.
func (p *DocumentParser) Parse(html string) (*tabrelay.Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, tabrelay.Errorf(tabrelay.EINVALID, "failed to parse HTML: %v", err)
	}

	pre := doc.Find(DocumentSelector).First()
	if pre.Length() == 0 {
		return &tabrelay.Result{}, nil
	}
	return &tabrelay.Result{Text: pre.Text()}, nil
}
