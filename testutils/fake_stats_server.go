package testutils

import (
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
)

type FakeStatsServer struct {
	s *httptest.Server
}

func NewFakeStatsServer() *FakeStatsServer {
	r := chi.NewRouter()
	r.Route("/v2", func(r chi.Router) {
		r.Get("/players/{playerID}/profile", playerProfileHandler)
	})

	return &FakeStatsServer{
		s: httptest.NewServer(r),
	}
}

func (f *FakeStatsServer) Close() {
	f.s.Close()
}

func (f *FakeStatsServer) URL() string {
	return f.s.URL
}

func playerProfileHandler(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")

	body, ok := playerProfiles[playerID]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

var playerProfiles = map[string]string{
	"TM-1001": `{
		"age": 22,
		"nationality": "Germany",
		"photo_url": "https://img.example.com/wirtz.jpg",
		"statistics": [
			{"competition": "Bundesliga", "position": "Attacking Midfield"},
			{"competition": "Champions League", "position": "Attacking Midfield"},
			{"competition": "DFB-Pokal", "position": "Second Striker"}
		]
	}`,
	"TM-1002": `{
		"age": 27,
		"nationality": "Sweden",
		"photo_url": "https://img.example.com/gyokeres.jpg",
		"statistics": [
			{"competition": "Primeira Liga", "position": "Centre-Forward"},
			{"competition": "Champions League", "position": "Centre-Forward"}
		]
	}`,
	"TM-2001": `{
		"age": 20,
		"nationality": "Spain",
		"photo_url": "https://img.example.com/huijsen.jpg",
		"statistics": [
			{"competition": "Premier League", "position": "Centre-Back"}
		]
	}`,
}
