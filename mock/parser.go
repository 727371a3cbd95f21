package mock

import "github.com/fwojciec/tabrelay"

var _ tabrelay.PageParser = (*PageParser)(nil)

// PageParser is a mock implementation of tabrelay.PageParser.
type PageParser struct {
	ParseFn func(html string) (*tabrelay.Result, error)
}

func (p *PageParser) Parse(html string) (*tabrelay.Result, error) {
	return p.ParseFn(html)
}
