package testutils

import (
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/itbasis/go-clock"
)

type TestController struct {
	Clock      *clock.Mock
	fakeMarket *FakeMarketServer
	fakeStats  *FakeStatsServer
	fakeOAuth  *httptest.Server
}

func (c *TestController) Close() {
	c.fakeMarket.Close()
	c.fakeStats.Close()
	c.fakeOAuth.Close()
}

func (c *TestController) MarketURL() string {
	return c.fakeMarket.URL()
}

func (c *TestController) StatsURL() string {
	return c.fakeStats.URL()
}

// OAuthTokenURL points at a token endpoint that hands out a static
// client-credentials token.
func (c *TestController) OAuthTokenURL() string {
	return fmt.Sprintf("%s/token", c.fakeOAuth.URL)
}

func NewTestController() *TestController {
	fakeOAuthServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"access_token": "access_token",
			"token_type": "bearer",
			"expires_in": 3600
		}`))
	}))

	return &TestController{
		Clock:      clock.NewMock(),
		fakeMarket: NewFakeMarketServer(),
		fakeStats:  NewFakeStatsServer(),
		fakeOAuth:  fakeOAuthServer,
	}
}
