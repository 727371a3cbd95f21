package goquery_test

import (
	"testing"

	"github.com/fwojciec/tabrelay/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentParser_Parse(t *testing.T) {
	t.Parallel()

	t.Run("returns tab body text", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><article><section><h1>Wonderwall</h1><section>` +
			`<pre>[Intro]
<span>Em7</span>  <span>G</span>
Today is gonna be the day</pre>` +
			`</section></section></article></body></html>`

		res, err := goquery.NewDocumentParser().Parse(html)

		require.NoError(t, err)
		assert.Equal(t, "[Intro]\nEm7  G\nToday is gonna be the day", res.Text)
	})

	t.Run("missing body yields empty result", func(t *testing.T) {
		t.Parallel()

		res, err := goquery.NewDocumentParser().Parse(`<html><body><article><p>Removed</p></article></body></html>`)

		require.NoError(t, err)
		assert.True(t, res.Empty())
	})
}
