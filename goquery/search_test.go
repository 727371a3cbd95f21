package goquery_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fwojciec/tabrelay"
	"github.com/fwojciec/tabrelay/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	artist   string
	song     string
	href     string
	category string
}

// resultsPage renders rows the way the title search page lays them out.
func resultsPage(rows ...row) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><body><section><article><div>`)
	b.WriteString(`<div><div><span>ARTIST</span></div><div><span>SONG</span></div><div>RATING</div><div>TYPE</div></div>`)
	for _, r := range rows {
		fmt.Fprintf(&b, `<div class="row">`+
			`<div><span>%s</span></div>`+
			`<div><header><span><span><a href="%s">%s</a></span></span></header></div>`+
			`<div>4.8</div>`+
			`<div>%s</div>`+
			`</div>`, r.artist, r.href, r.song, r.category)
	}
	b.WriteString(`</div></article></section></body></html>`)
	return b.String()
}

func TestSearchParser_Parse(t *testing.T) {
	t.Parallel()

	t.Run("keeps accepted categories", func(t *testing.T) {
		t.Parallel()

		html := resultsPage(
			row{"Oasis", "Wonderwall", "https://example.com/tab/oasis/wonderwall-chords-1", "chords"},
			row{"Oasis", "Wonderwall", "https://example.com/tab/oasis/wonderwall-official-2", "official"},
			row{"Oasis", "Wonderwall", "https://example.com/tab/oasis/wonderwall-tabs-3", "tab"},
		)

		res, err := goquery.NewSearchParser().Parse(html)

		require.NoError(t, err)
		require.Len(t, res.Records, 2)
		assert.Equal(t, tabrelay.SearchRecord{
			Type:   "chords",
			Song:   "Wonderwall",
			Artist: "Oasis",
			Href:   "https://example.com/tab/oasis/wonderwall-chords-1",
		}, res.Records[0])
		assert.Equal(t, "tab", res.Records[1].Type)
		assert.Equal(t, "https://example.com/tab/oasis/wonderwall-tabs-3", res.Records[1].Href)
	})

	t.Run("inherits artist from previous rows", func(t *testing.T) {
		t.Parallel()

		html := resultsPage(
			row{"A", "One", "/1", "chords"},
			row{"", "Two", "/2", "tab"},
			row{"", "Three", "/3", "bass"},
		)

		res, err := goquery.NewSearchParser().Parse(html)

		require.NoError(t, err)
		require.Len(t, res.Records, 3)
		for _, r := range res.Records {
			assert.Equal(t, "A", r.Artist, "record %q", r.Song)
		}
	})

	t.Run("inherits through rejected rows", func(t *testing.T) {
		t.Parallel()

		html := resultsPage(
			row{"Nirvana", "Lithium", "/1", "official"},
			row{"", "Lithium", "/2", "chords"},
			row{"Hole", "Celebrity Skin", "/3", "tab"},
			row{"", "Malibu", "/4", "chords"},
		)

		res, err := goquery.NewSearchParser().Parse(html)

		require.NoError(t, err)
		require.Len(t, res.Records, 3)
		assert.Equal(t, "Nirvana", res.Records[0].Artist)
		assert.Equal(t, "Hole", res.Records[1].Artist)
		assert.Equal(t, "Hole", res.Records[2].Artist)
	})

	t.Run("first row without artist is invalid", func(t *testing.T) {
		t.Parallel()

		html := `<section><article><div>` +
			`<div><div><span></span></div><div><header><span><span><a href="/1">Orphan</a></span></span></header></div><div>1</div><div>chords</div></div>` +
			`</div></article></section>`

		_, err := goquery.NewSearchParser().Parse(html)

		assert.Equal(t, tabrelay.EINVALID, tabrelay.ErrorCode(err))
	})

	t.Run("custom categories", func(t *testing.T) {
		t.Parallel()

		html := resultsPage(
			row{"Oasis", "Wonderwall", "/1", "chords"},
			row{"Oasis", "Wonderwall", "/2", "ukulele"},
		)

		res, err := goquery.NewSearchParser("ukulele").Parse(html)

		require.NoError(t, err)
		require.Len(t, res.Records, 1)
		assert.Equal(t, "ukulele", res.Records[0].Type)
	})

	t.Run("page without results yields empty records", func(t *testing.T) {
		t.Parallel()

		res, err := goquery.NewSearchParser().Parse(`<html><body><p>No results</p></body></html>`)

		require.NoError(t, err)
		assert.NotNil(t, res.Records)
		assert.Empty(t, res.Records)
		assert.True(t, res.Empty())
	})
}
