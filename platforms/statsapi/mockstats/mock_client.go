package mockstats

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cameza/transfer_manager/model"
)

type Client struct {
	mock.Mock
}

func (m *Client) GetPlayerStats(ctx context.Context, apiTransferID string) (*model.PlayerStats, error) {
	args := m.Called(ctx, apiTransferID)

	var s *model.PlayerStats
	if args.Get(0) != nil {
		s = args.Get(0).(*model.PlayerStats)
	}
	return s, args.Error(1)
}
