package tabrelay

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultSiteURL is the content source.
const DefaultSiteURL = "https://www.ultimate-guitar.com"

// Site derives the URLs and selectors used against the content source.
type Site struct {
	BaseURL string
}

// NewSite returns a Site rooted at baseURL without a trailing slash.
func NewSite(baseURL string) Site {
	return Site{BaseURL: strings.TrimRight(baseURL, "/")}
}

// SearchURL returns the title search page for query.
func (s Site) SearchURL(query string) string {
	return s.BaseURL + "/search.php?search_type=title&value=" + url.QueryEscape(query)
}

// SuggestionPrefix is the URL prefix of typeahead suggestion responses.
func (s Site) SuggestionPrefix() string {
	return s.BaseURL + "/static/article/suggestions"
}

// InputSelector locates the typeahead search input on the home page.
func (s Site) InputSelector() string {
	return fmt.Sprintf(`form[action="%s/search.php"] input[placeholder="Enter artist name or song title"]`, s.BaseURL)
}

// ValidateDocumentURL returns EINVALID unless raw is an absolute http(s)
// URL on the site's host.
func (s Site) ValidateDocumentURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return Errorf(EINVALID, "music must be an absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Errorf(EINVALID, "unsupported URL scheme %q", u.Scheme)
	}
	base, err := url.Parse(s.BaseURL)
	if err != nil {
		return Errorf(EINVALID, "invalid site URL: %v", err)
	}
	if !strings.EqualFold(u.Hostname(), base.Hostname()) {
		return Errorf(EINVALID, "music URL must be on %s", base.Hostname())
	}
	return nil
}
