package tabrelay_test

import (
	"encoding/json"
	"testing"

	"github.com/fwojciec/tabrelay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := tabrelay.Errorf(tabrelay.EINVALID, "unknown field %q", "lyrics")

	assert.Equal(t, tabrelay.EINVALID, tabrelay.ErrorCode(err))
	assert.Equal(t, "unknown field \"lyrics\"", tabrelay.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, tabrelay.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, tabrelay.ErrorMessage(nil))
}

func TestNormalizeQuery(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Wonder Wall", tabrelay.NormalizeQuery("  Wonder Wall\t"))
	assert.Empty(t, tabrelay.NormalizeQuery("   "))
}

func TestResponse_MarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		resp *tabrelay.Response
		want string
	}{
		{
			name: "suggestions",
			resp: tabrelay.NewResponse(tabrelay.KindSuggestion, "nirvana", &tabrelay.Result{Suggestions: []string{"nirvana"}}),
			want: `{"suggest":"nirvana","results":["nirvana"]}`,
		},
		{
			name: "empty suggestions",
			resp: tabrelay.NewResponse(tabrelay.KindSuggestion, "zz", &tabrelay.Result{}),
			want: `{"suggest":"zz","results":[]}`,
		},
		{
			name: "search records",
			resp: tabrelay.NewResponse(tabrelay.KindSearch, "wonderwall", &tabrelay.Result{Records: []tabrelay.SearchRecord{
				{Type: "chords", Song: "Wonderwall", Artist: "Oasis", Href: "/1"},
			}}),
			want: `{"search":"wonderwall","results":[{"type":"chords","song":"Wonderwall","artist":"Oasis","href":"/1"}]}`,
		},
		{
			name: "document text",
			resp: tabrelay.NewResponse(tabrelay.KindDocument, "https://x/1", &tabrelay.Result{Text: "[Intro]"}),
			want: `{"music":"https://x/1","results":["[Intro]"]}`,
		},
		{
			name: "document not found",
			resp: tabrelay.NewResponse(tabrelay.KindDocument, "https://x/2", nil),
			want: `{"music":"https://x/2","results":[]}`,
		},
		{
			name: "lookup error",
			resp: &tabrelay.Response{Kind: tabrelay.KindSearch, Query: "q", Error: "lookup timed out"},
			want: `{"search":"q","results":[],"error":"lookup timed out"}`,
		},
		{
			name: "protocol error",
			resp: &tabrelay.Response{Error: "malformed message"},
			want: `{"error":"malformed message"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := json.Marshal(tt.resp)

			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}
