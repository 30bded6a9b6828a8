package transfermarket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cameza/transfer_manager/model"
	"github.com/cameza/transfer_manager/ratelimit"
)

const TransferMarketURL = "https://transfer-market-data.p.rapidapi.com"

const (
	headerRapidApiHost = "x-rapidapi-host"
	headerRapidApiKey  = "x-rapidapi-key"

	rapidApiHost = "transfer-market-data.p.rapidapi.com"
)

type FetchParams struct {
	Season  string
	GroupID string
}

type Client interface {
	FetchTransfers(ctx context.Context, params FetchParams) ([]model.Transfer, error)
}

type client struct {
	url        string
	key        string
	limiter    *ratelimit.Limiter
	httpClient *http.Client
}

func New(key string, limiter *ratelimit.Limiter) (Client, error) {
	c := &client{
		url:     TransferMarketURL,
		key:     key,
		limiter: limiter,
		httpClient: &http.Client{
			Timeout: 1 * time.Minute,
		},
	}
	return c, nil
}

func NewForTest(url string, limiter *ratelimit.Limiter) Client {
	return &client{
		url:        url,
		key:        "not-important",
		limiter:    limiter,
		httpClient: http.DefaultClient,
	}
}

// FetchTransfers pulls one source group's transfer rows for the season and
// normalizes them. Rows with no usable id, player or date are dropped
// silently; the quota is only charged after a successful response.
func (c *client) FetchTransfers(ctx context.Context, params FetchParams) ([]model.Transfer, error) {
	if a := c.limiter.CanAdmit(); !a.Allowed {
		return nil, fmt.Errorf("fetching group %s: %w", params.GroupID, ratelimit.ErrQuotaExhausted)
	}

	url := fmt.Sprintf("%s/v1/transfers?season=%s&competition=%s", c.url, params.Season, params.GroupID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating http request: %w", err)
	}
	req.Header.Add(headerRapidApiHost, rapidApiHost)
	req.Header.Add(headerRapidApiKey, c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	c.limiter.RecordCall()

	var parsed struct {
		Transfers []transferRow `json:"transfers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("error parsing response from transfer market: %w", err)
	}

	result := make([]model.Transfer, 0, len(parsed.Transfers))
	for _, row := range parsed.Transfers {
		t, ok := row.toTransfer(params.Season)
		if !ok {
			continue
		}
		result = append(result, *t)
	}

	return result, nil
}
