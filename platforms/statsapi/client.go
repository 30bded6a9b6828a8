package statsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/cameza/transfer_manager/model"
)

const StatsAPIURL = "https://api.football-stats-hub.com"

// Config holds the client-credential settings for the stats provider.
type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
}

type Client interface {
	GetPlayerStats(ctx context.Context, apiTransferID string) (*model.PlayerStats, error)
}

type client struct {
	url        string
	httpClient *http.Client
}

// New builds a client whose transport fetches and refreshes OAuth2
// client-credential tokens automatically.
func New(cfg Config) (Client, error) {
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}

	httpClient := cc.Client(context.Background())
	httpClient.Timeout = 30 * time.Second

	return &client{
		url:        StatsAPIURL,
		httpClient: httpClient,
	}, nil
}

func NewForTest(url string) Client {
	return &client{
		url:        url,
		httpClient: http.DefaultClient,
	}
}

func (c *client) GetPlayerStats(ctx context.Context, apiTransferID string) (*model.PlayerStats, error) {
	var profile playerProfile
	if err := c.statsRequest(ctx, &profile, "/v2/players/%s/profile", apiTransferID); err != nil {
		return nil, err
	}
	return profile.toPlayerStats(), nil
}

func (c *client) statsRequest(ctx context.Context, res any, path string, args ...any) error {
	p := fmt.Sprintf(path, args...)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s%s", c.url, p), nil)
	if err != nil {
		return fmt.Errorf("error creating stats api http request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending stats api http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code from stats api: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(res); err != nil {
		return fmt.Errorf("error parsing response from stats api: %w", err)
	}

	return nil
}
