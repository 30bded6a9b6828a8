package testutils

import (
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
)

type FakeMarketServer struct {
	s *httptest.Server
}

func NewFakeMarketServer() *FakeMarketServer {
	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Get("/transfers", transfersHandler)
	})

	return &FakeMarketServer{
		s: httptest.NewServer(r),
	}
}

func (f *FakeMarketServer) Close() {
	f.s.Close()
}

func (f *FakeMarketServer) URL() string {
	return f.s.URL
}

// transfersHandler serves canned feeds keyed by the competition query
// param. Unknown competitions get an empty feed, which is also what the
// real provider does for leagues with no activity.
func transfersHandler(w http.ResponseWriter, r *http.Request) {
	competition := r.URL.Query().Get("competition")

	body, ok := marketFeeds[competition]
	if !ok {
		body = `{"transfers": []}`
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

// marketFeeds mirrors real provider responses. The premier-league feed
// includes one row with an unparsable date, which clients are expected to
// drop without counting a failure.
var marketFeeds = map[string]string{
	"premier-league": `{
		"transfers": [
			{
				"transfer_id": "TM-1001",
				"player_name": "Florian Wirtz",
				"from_club": "Bayer Leverkusen",
				"to_club": "Liverpool",
				"league": "Premier League",
				"transfer_type": "transfer",
				"fee": "€125m",
				"date": "2025-06-20"
			},
			{
				"transfer_id": "TM-1002",
				"player_name": "Viktor Gyokeres",
				"from_club": "Sporting CP",
				"to_club": "Arsenal",
				"league": "Premier League",
				"transfer_type": "transfer",
				"fee": "€63.5m",
				"date": "2025-07-26"
			},
			{
				"transfer_id": "TM-1099",
				"player_name": "Broken Row",
				"from_club": "Nowhere FC",
				"to_club": "Anywhere FC",
				"league": "Premier League",
				"transfer_type": "transfer",
				"fee": "free",
				"date": "sometime in june"
			}
		]
	}`,
	"la-liga": `{
		"transfers": [
			{
				"transfer_id": "TM-2001",
				"player_name": "Dean Huijsen",
				"from_club": "Bournemouth",
				"to_club": "Real Madrid",
				"league": "La Liga",
				"transfer_type": "transfer",
				"fee": "€59m",
				"date": "2025-06-14"
			}
		]
	}`,
}
