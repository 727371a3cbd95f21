package websocket

import (
	"encoding/json"

	"github.com/fwojciec/tabrelay"
)

// message is the wire shape of a client request. Exactly one field is set.
type message struct {
	Search  *string `json:"search"`
	Suggest *string `json:"suggest"`
	Music   *string `json:"music"`
}

// DecodeRequest parses a client frame such as {"search":"wonderwall"}.
// Returns EINVALID unless the frame is a JSON object with exactly one of
// search, suggest or music.
func DecodeRequest(data []byte) (*tabrelay.Request, error) {
	var m message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, tabrelay.Errorf(tabrelay.EINVALID, "malformed message: %v", err)
	}

	var req *tabrelay.Request
	for _, f := range []struct {
		kind  tabrelay.LookupKind
		value *string
	}{
		{tabrelay.KindSearch, m.Search},
		{tabrelay.KindSuggestion, m.Suggest},
		{tabrelay.KindDocument, m.Music},
	} {
		if f.value == nil {
			continue
		}
		if req != nil {
			return nil, tabrelay.Errorf(tabrelay.EINVALID, "expected exactly one of search, suggest or music")
		}
		req = &tabrelay.Request{Kind: f.kind, Query: *f.value}
	}
	if req == nil {
		return nil, tabrelay.Errorf(tabrelay.EINVALID, "expected one of search, suggest or music")
	}
	return req, nil
}
